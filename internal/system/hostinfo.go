package system

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	"wipesim_enterprise/internal/wipe"
)

// PartitionInfo информация о разделе локального хоста
type PartitionInfo struct {
	Mountpoint string
	Fstype     string
	TotalSize  uint64
	FreeSize   uint64
}

// DetectHostDevice строит дескриптор устройства из локального хоста.
// Используется как seed для демонстрации; дескрипторы реальных целевых
// устройств приходят от внешних коллабораторов.
func DetectHostDevice() (*wipe.Device, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о хосте: %w", err)
	}

	var total uint64
	partitions, err := disk.Partitions(false)
	if err == nil {
		for _, p := range partitions {
			usage, err := disk.Usage(p.Mountpoint)
			if err != nil {
				continue
			}
			total += usage.Total
		}
	}

	return &wipe.Device{
		ID:             uuid.NewString(),
		Name:           info.Hostname,
		Type:           deviceTypeForHost(),
		OSType:         osTypeForHost(info.OS),
		Capacity:       FormatCapacity(total),
		IsSSD:          true, // локальные демо-хосты считаем SSD
		SupportsHPADCO: false,
	}, nil
}

// ListPartitions возвращает разделы локального хоста
func ListPartitions() ([]PartitionInfo, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения разделов: %w", err)
	}

	var result []PartitionInfo
	for _, p := range partitions {
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}
		result = append(result, PartitionInfo{
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
			TotalSize:  usage.Total,
			FreeSize:   usage.Free,
		})
	}

	return result, nil
}

// FormatCapacity форматирует ёмкость в строку вида "512 GB"
func FormatCapacity(bytes uint64) string {
	const gb = 1024 * 1024 * 1024
	if bytes == 0 {
		return "unknown"
	}
	if bytes < gb {
		return fmt.Sprintf("%d MB", bytes/(1024*1024))
	}
	if bytes < 1024*gb {
		return fmt.Sprintf("%d GB", bytes/gb)
	}
	return fmt.Sprintf("%.1f TB", float64(bytes)/float64(1024*gb))
}

func osTypeForHost(osName string) wipe.OSType {
	switch strings.ToLower(osName) {
	case "windows":
		return wipe.OSWindows
	case "darwin":
		return wipe.OSMacOS
	case "linux":
		return wipe.OSLinux
	default:
		return wipe.OSUnknown
	}
}

func deviceTypeForHost() wipe.DeviceType {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return wipe.DeviceLaptop
	}
	return wipe.DeviceDesktop
}
