package wipe

import "errors"

// DeviceType классифицирует устройство для симуляции
type DeviceType string

const (
	DeviceLaptop        DeviceType = "laptop"
	DeviceDesktop       DeviceType = "desktop"
	DeviceSmartphone    DeviceType = "smartphone"
	DeviceTablet        DeviceType = "tablet"
	DeviceExternalDrive DeviceType = "external_drive"
	DeviceServer        DeviceType = "server"
	DeviceUnknown       DeviceType = "unknown"
)

// OSType семейство операционной системы устройства
type OSType string

const (
	OSWindows OSType = "windows"
	OSMacOS   OSType = "macos"
	OSLinux   OSType = "linux"
	OSAndroid OSType = "android"
	OSIOS     OSType = "ios"
	OSUnknown OSType = "unknown"
)

// WipeScope определяет область затирания
type WipeScope string

const (
	ScopeFullDevice   WipeScope = "full_device"
	ScopePartialFiles WipeScope = "partial_files"
)

// Device описывает целевое устройство. Дескриптор неизменяем на время
// одного запуска симуляции.
type Device struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           DeviceType `json:"type"`
	OSType         OSType     `json:"os_type"`
	Capacity       string     `json:"capacity"`
	IsSSD          bool       `json:"is_ssd"`
	SupportsHPADCO bool       `json:"supports_hpa_dco"`
}

// WipeOptions параметры запуска симуляции
type WipeOptions struct {
	Method WipeMethod    `json:"method"`
	Level  SecurityLevel `json:"level"`
	Scope  WipeScope     `json:"scope,omitempty"`
}

// ProgressFunc получает события прогресса (percent 0-100, message).
// Вызывается синхронно; получатель не должен блокировать вызов надолго.
type ProgressFunc func(percent float64, message string)

// WipeResult результат успешного завершения симуляции
type WipeResult struct {
	Success          bool       `json:"success"`
	VerificationHash string     `json:"verification_hash"`
	PassesCompleted  int        `json:"passes_completed"`
	Method           WipeMethod `json:"method"`
	DurationMinutes  int        `json:"duration_minutes"`
	OSCompatible     bool       `json:"os_compatible"`
	HPAIncluded      bool       `json:"hpa_included"`
	SSDOptimized     bool       `json:"ssd_optimized"`
	SectorsWiped     int64      `json:"sectors_wiped"`
}

var (
	// ErrCancelled запуск остановлен через Stop() или контекст
	ErrCancelled = errors.New("операция отменена")
	// ErrBusy движок уже выполняет запуск
	ErrBusy = errors.New("движок уже выполняет затирание")
)
