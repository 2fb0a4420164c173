package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wipesim_enterprise/internal/jobs"
	"wipesim_enterprise/internal/system"
	"wipesim_enterprise/internal/wipe"
)

type createDeviceRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	OSType         string `json:"os_type"`
	Capacity       string `json:"capacity"`
	IsSSD          bool   `json:"is_ssd"`
	SupportsHPADCO bool   `json:"supports_hpa_dco"`
}

// POST /api/v1/devices
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "device name is required")
		return
	}

	device := s.devices.Add(&wipe.Device{
		Name:           req.Name,
		Type:           wipe.DeviceType(req.Type),
		OSType:         wipe.OSType(req.OSType),
		Capacity:       req.Capacity,
		IsSSD:          req.IsSSD,
		SupportsHPADCO: req.SupportsHPADCO,
	})

	s.logger.Log("INFO", "Устройство зарегистрировано", "device", device.ID, "name", device.Name)
	writeJSON(w, http.StatusCreated, device)
}

// POST /api/v1/devices/detect регистрирует локальный хост как демо-устройство
func (s *Server) handleDetectDevice(w http.ResponseWriter, r *http.Request) {
	device, err := system.DetectHostDevice()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	device = s.devices.Add(device)
	s.logger.Log("INFO", "Хост зарегистрирован как устройство", "device", device.ID, "name", device.Name)
	writeJSON(w, http.StatusCreated, device)
}

// GET /api/v1/devices
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.devices.List())
}

// GET /api/v1/devices/{id}
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.devices.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, jobs.ErrDeviceNotFound) {
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// DELETE /api/v1/devices/{id}
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, jobs.ErrDeviceNotFound) {
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
