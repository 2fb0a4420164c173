package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wipesim_enterprise/internal/wipe"
)

func sampleResult() (*wipe.Device, wipe.WipeOptions, *wipe.WipeResult) {
	device := &wipe.Device{
		ID:       "dev-42",
		Name:     "audit-laptop",
		Type:     wipe.DeviceLaptop,
		OSType:   wipe.OSWindows,
		Capacity: "1 TB",
	}
	opts := wipe.WipeOptions{
		Method: wipe.MethodDoD3Pass,
		Level:  wipe.LevelStandard,
	}
	result := &wipe.WipeResult{
		Success:          true,
		VerificationHash: strings.Repeat("ab", 32),
		PassesCompleted:  3,
		Method:           wipe.MethodDoD3Pass,
		DurationMinutes:  2,
		OSCompatible:     true,
		SectorsWiped:     300000,
	}
	return device, opts, result
}

func TestBuildCertificate(t *testing.T) {
	device, opts, result := sampleResult()

	cert := BuildCertificate(device, opts, result, "auditor@corp.local")

	assert.NotEmpty(t, cert.RunID)
	assert.Equal(t, *device, cert.Device)
	assert.Equal(t, "dod_3_pass", cert.Method)
	assert.Equal(t, "standard", cert.Level)
	assert.Equal(t, 3, cert.PassesCompleted)
	assert.Equal(t, result.VerificationHash, cert.VerificationHash)
	assert.Equal(t, "auditor@corp.local", cert.Operator)
	assert.Contains(t, cert.Compliance, "DoD 5220.22-M")
	assert.Equal(t, Disclaimer, cert.Disclaimer)
}

func TestBuildCertificateOperatorFallback(t *testing.T) {
	device, opts, result := sampleResult()

	cert := BuildCertificate(device, opts, result, "")
	assert.Equal(t, wipe.OperatorFallback, cert.Operator)
}

func TestSaveCertificateJSONRoundTrip(t *testing.T) {
	device, opts, result := sampleResult()
	cert := BuildCertificate(device, opts, result, "auditor@corp.local")

	dir := t.TempDir()
	path, err := SaveCertificate(cert, "json", dir, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "wipesim_certificate_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Certificate
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, cert.RunID, loaded.RunID)
	assert.Equal(t, cert.VerificationHash, loaded.VerificationHash)
}

func TestSaveCertificateCSV(t *testing.T) {
	device, opts, result := sampleResult()
	cert := BuildCertificate(device, opts, result, "auditor@corp.local")

	path, err := SaveCertificate(cert, "csv", t.TempDir(), "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "Verification Hash,"+cert.VerificationHash)
	assert.Contains(t, content, "Device Name,audit-laptop")
}

func TestSaveCertificateUnknownFormat(t *testing.T) {
	device, opts, result := sampleResult()
	cert := BuildCertificate(device, opts, result, "")

	_, err := SaveCertificate(cert, "pdf", t.TempDir(), "")
	assert.Error(t, err)
}

func TestSigningRoundTrip(t *testing.T) {
	dir := t.TempDir()

	key, err := EnsureSigningKeys(dir)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "server_rsa_priv.pem"))
	require.FileExists(t, filepath.Join(dir, "server_rsa_pub.pem"))

	// Повторный вызов загружает существующий ключ
	again, err := EnsureSigningKeys(dir)
	require.NoError(t, err)
	assert.Equal(t, key.D, again.D)

	device, opts, result := sampleResult()
	cert := BuildCertificate(device, opts, result, "auditor@corp.local")

	sig, err := SignCertificate(cert, key)
	require.NoError(t, err)
	require.NoError(t, VerifyCertificate(cert, &key.PublicKey, sig))

	// Изменённый сертификат не проходит проверку
	cert.PassesCompleted = 99
	assert.Error(t, VerifyCertificate(cert, &key.PublicKey, sig))
}

func TestSaveSignature(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.json")
	require.NoError(t, os.WriteFile(certPath, []byte("{}"), 0644))

	sigPath, err := SaveSignature(certPath, []byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, certPath+".sig", sigPath)
	require.FileExists(t, sigPath)
}
