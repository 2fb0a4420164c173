package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"wipesim_enterprise/internal/wipe"
)

// Disclaimer фиксируется в каждом сертификате: хеш верификации
// идентифицирует сессию, но не доказывает физическое уничтожение данных.
const Disclaimer = "Verification hash is a session fingerprint, not a forensic proof of data destruction"

// Certificate сертификат завершённой симуляции затирания
type Certificate struct {
	RunID            string      `json:"run_id"`
	GeneratedAt      time.Time   `json:"generated_at"`
	Device           wipe.Device `json:"device"`
	Method           string      `json:"method"`
	MethodLabel      string      `json:"method_label"`
	Level            string      `json:"level"`
	PassesCompleted  int         `json:"passes_completed"`
	SectorsWiped     int64       `json:"sectors_wiped"`
	DurationMinutes  int         `json:"duration_minutes"`
	VerificationHash string      `json:"verification_hash"`
	OSCompatible     bool        `json:"os_compatible"`
	HPAIncluded      bool        `json:"hpa_included"`
	SSDOptimized     bool        `json:"ssd_optimized"`
	Operator         string      `json:"operator"`
	Compliance       []string    `json:"compliance"`
	Disclaimer       string      `json:"disclaimer"`
}

// BuildCertificate собирает сертификат из результата симуляции
func BuildCertificate(device *wipe.Device, opts wipe.WipeOptions, result *wipe.WipeResult, operator string) *Certificate {
	if operator == "" {
		operator = wipe.OperatorFallback
	}

	policy := wipe.ResolveMethod(result.Method)

	return &Certificate{
		RunID:            GenerateRunID(),
		GeneratedAt:      time.Now().UTC(),
		Device:           *device,
		Method:           string(result.Method),
		MethodLabel:      policy.Label,
		Level:            string(wipe.ValidateLevel(opts.Level)),
		PassesCompleted:  result.PassesCompleted,
		SectorsWiped:     result.SectorsWiped,
		DurationMinutes:  result.DurationMinutes,
		VerificationHash: result.VerificationHash,
		OSCompatible:     result.OSCompatible,
		HPAIncluded:      result.HPAIncluded,
		SSDOptimized:     result.SSDOptimized,
		Operator:         operator,
		Compliance:       complianceForMethod(result.Method),
		Disclaimer:       Disclaimer,
	}
}

// SaveCertificate сохраняет сертификат в указанном формате. Пустой
// outputPath приводит к автоматическому имени файла в директории dir.
// Возвращает фактический путь сохранения.
func SaveCertificate(cert *Certificate, format, dir, outputPath string) (string, error) {
	switch format {
	case "json":
		return saveCertificateJSON(cert, dir, outputPath)
	case "csv":
		return saveCertificateCSV(cert, dir, outputPath)
	default:
		return "", fmt.Errorf("неподдерживаемый формат: %s", format)
	}
}

func saveCertificateJSON(cert *Certificate, dir, outputPath string) (string, error) {
	data, err := json.MarshalIndent(cert, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	if outputPath == "" {
		outputPath = autoPath(cert, dir, "json")
	}

	if err := writeCertificateFile(outputPath, data); err != nil {
		return "", err
	}

	return outputPath, nil
}

func saveCertificateCSV(cert *Certificate, dir, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = autoPath(cert, dir, "csv")
	}

	csvContent := fmt.Sprintf(`# WipeSim Wipe Certificate
# Generated: %s
# Run ID: %s

Metric,Value
Device ID,%s
Device Name,%s
Device Type,%s
OS Type,%s
Capacity,%s
Method,%s
Method Label,%s
Security Level,%s
Passes Completed,%d
Sectors Wiped,%d
Duration (minutes),%d
Verification Hash,%s
OS Compatible,%t
HPA Included,%t
SSD Optimized,%t
Operator,%s
Compliance,"%s"
Disclaimer,"%s"
`,
		cert.GeneratedAt.Format(time.RFC3339),
		cert.RunID,
		cert.Device.ID,
		cert.Device.Name,
		cert.Device.Type,
		cert.Device.OSType,
		cert.Device.Capacity,
		cert.Method,
		cert.MethodLabel,
		cert.Level,
		cert.PassesCompleted,
		cert.SectorsWiped,
		cert.DurationMinutes,
		cert.VerificationHash,
		cert.OSCompatible,
		cert.HPAIncluded,
		cert.SSDOptimized,
		cert.Operator,
		strings.Join(cert.Compliance, "|"),
		cert.Disclaimer,
	)

	if err := writeCertificateFile(outputPath, []byte(csvContent)); err != nil {
		return "", err
	}

	return outputPath, nil
}

func writeCertificateFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания директории сертификатов: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}
	return nil
}

func autoPath(cert *Certificate, dir, ext string) string {
	if dir == "" {
		dir = "."
	}
	timestamp := cert.GeneratedAt.Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("wipesim_certificate_%s.%s", timestamp, ext))
}

func complianceForMethod(method wipe.WipeMethod) []string {
	switch method {
	case wipe.MethodNISTClear:
		return []string{"NIST SP 800-88 Rev.1 Clear"}
	case wipe.MethodNISTPurge:
		return []string{"NIST SP 800-88 Rev.1 Purge"}
	case wipe.MethodDoD3Pass:
		return []string{"DoD 5220.22-M"}
	case wipe.MethodSecureErase:
		return []string{"ATA-8 ACS Secure Erase", "NIST SP 800-88 Rev.1 Purge"}
	case wipe.MethodCryptoErase:
		return []string{"NIST SP 800-88 Rev.1 Cryptographic Erase"}
	default:
		return []string{"NIST SP 800-88 Rev.1 Clear"}
	}
}

// GenerateRunID генерирует уникальный ID запуска
func GenerateRunID() string {
	return "wipe_" + uuid.NewString()
}
