package reporting

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

const (
	privateKeyFile = "server_rsa_priv.pem"
	publicKeyFile  = "server_rsa_pub.pem"
)

// EnsureSigningKeys загружает серверную RSA пару из dir либо создаёт её
// при первом запуске. Подпись сертификатов — демонстрационная возможность,
// ключ не привязан к какому-либо доверенному корню.
func EnsureSigningKeys(dir string) (*rsa.PrivateKey, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории ключей: %w", err)
	}

	privPath := filepath.Join(dir, privateKeyFile)
	if data, err := os.ReadFile(privPath); err == nil {
		block, _ := pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("повреждён PEM файл ключа: %s", privPath)
		}
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора приватного ключа: %w", err)
		}
		return key, nil
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации RSA ключа: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(privPath, privPEM, 0600); err != nil {
		return nil, fmt.Errorf("ошибка сохранения приватного ключа: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации публичного ключа: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	if err := os.WriteFile(filepath.Join(dir, publicKeyFile), pubPEM, 0644); err != nil {
		return nil, fmt.Errorf("ошибка сохранения публичного ключа: %w", err)
	}

	return key, nil
}

// SignCertificate подписывает каноническую JSON форму сертификата
// (PKCS#1 v1.5, SHA-256)
func SignCertificate(cert *Certificate, key *rsa.PrivateKey) ([]byte, error) {
	data, err := json.Marshal(cert)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации сертификата: %w", err)
	}

	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи сертификата: %w", err)
	}

	return sig, nil
}

// VerifyCertificate проверяет подпись сертификата
func VerifyCertificate(cert *Certificate, pub *rsa.PublicKey, sig []byte) error {
	data, err := json.Marshal(cert)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сертификата: %w", err)
	}

	digest := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return fmt.Errorf("подпись сертификата недействительна: %w", err)
	}

	return nil
}

// SaveSignature сохраняет подпись рядом с файлом сертификата (.sig)
func SaveSignature(certPath string, sig []byte) (string, error) {
	sigPath := certPath + ".sig"
	if err := os.WriteFile(sigPath, sig, 0644); err != nil {
		return "", fmt.Errorf("ошибка сохранения подписи: %w", err)
	}
	return sigPath, nil
}
