package jobs

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wipesim_enterprise/internal/wipe"
)

// ErrDeviceNotFound устройство с указанным ID не зарегистрировано
var ErrDeviceNotFound = errors.New("устройство не найдено")

// DeviceRegistry in-memory реестр зарегистрированных устройств
type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[string]*wipe.Device
}

// NewDeviceRegistry создаёт пустой реестр устройств
func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string]*wipe.Device),
	}
}

// Add регистрирует устройство; пустой ID заменяется новым UUID
func (r *DeviceRegistry) Add(device *wipe.Device) *wipe.Device {
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	if device.Type == "" {
		device.Type = wipe.DeviceUnknown
	}
	if device.OSType == "" {
		device.OSType = wipe.OSUnknown
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[device.ID] = device
	return device
}

// Get возвращает устройство по ID
func (r *DeviceRegistry) Get(id string) (*wipe.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return device, nil
}

// List возвращает устройства в стабильном порядке по имени
func (r *DeviceRegistry) List() []*wipe.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]*wipe.Device, 0, len(r.devices))
	for _, device := range r.devices {
		devices = append(devices, device)
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Name == devices[j].Name {
			return devices[i].ID < devices[j].ID
		}
		return devices[i].Name < devices[j].Name
	})
	return devices
}

// Delete удаляет устройство из реестра
func (r *DeviceRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return ErrDeviceNotFound
	}
	delete(r.devices, id)
	return nil
}
