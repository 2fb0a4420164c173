package wipe

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// verificationRecord каноническая запись для хеша верификации.
// Поля объявлены в алфавитном порядке ключей, сериализация детерминирована.
type verificationRecord struct {
	DeviceID      string `json:"device_id"`
	DeviceName    string `json:"device_name"`
	DeviceType    string `json:"device_type"`
	Level         string `json:"level"`
	Method        string `json:"method"`
	Nonce         string `json:"nonce"`
	OperatorEmail string `json:"operator_email"`
	OSType        string `json:"os_type"`
	SSDOptimized  bool   `json:"ssd_optimized"`
	Timestamp     string `json:"timestamp"`
	WipeScope     string `json:"wipe_scope"`
}

// OperatorFallback подставляется вместо пустого email оператора
const OperatorFallback = "unknown@local"

// GenerateVerificationHash строит SHA-256 отпечаток сессии затирания.
// Хеш идентифицирует сессию, но криптографически НЕ доказывает уничтожение
// данных: подпись устройства и аттестация не выполняются.
func GenerateVerificationHash(device *Device, method WipeMethod, level SecurityLevel, operator string, hpaIncluded, ssdOptimized bool) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	if operator == "" {
		operator = OperatorFallback
	}

	scope := "standard"
	if hpaIncluded {
		scope = "full_plus_hidden"
	}

	record := verificationRecord{
		DeviceID:      device.ID,
		DeviceName:    device.Name,
		DeviceType:    string(device.Type),
		Level:         string(level),
		Method:        string(method),
		Nonce:         hex.EncodeToString(nonce),
		OperatorEmail: operator,
		OSType:        string(device.OSType),
		SSDOptimized:  ssdOptimized,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		WipeScope:     scope,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации записи верификации: %w", err)
	}

	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}
