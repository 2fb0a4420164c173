package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"wipesim_enterprise/internal/jobs"
	"wipesim_enterprise/internal/security"
	"wipesim_enterprise/internal/wipe"
)

type startWipeRequest struct {
	DeviceID     string `json:"device_id"`
	Method       string `json:"method"`
	Level        string `json:"level"`
	Scope        string `json:"scope,omitempty"`
	OwnerConfirm string `json:"owner_confirm"`
}

type startWipeResponse struct {
	JobID string `json:"job_id"`
}

// POST /api/v1/wipe/start
func (s *Server) handleStartWipe(w http.ResponseWriter, r *http.Request) {
	var req startWipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := security.ConfirmOwnership(s.cfg, req.OwnerConfirm); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	device, err := s.devices.Get(req.DeviceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}

	opts := wipe.WipeOptions{
		Method: wipe.WipeMethod(req.Method),
		Level:  wipe.ValidateLevel(wipe.SecurityLevel(req.Level)),
		Scope:  wipe.WipeScope(req.Scope),
	}

	job := s.tracker.StartJob(device, opts)
	view := job.Snapshot()
	s.logger.Log("INFO", "Запущена задача затирания", "job", view.ID, "device", device.ID)

	writeJSON(w, http.StatusAccepted, startWipeResponse{JobID: view.ID})
}

// GET /api/v1/wipe/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.List())
}

// GET /api/v1/wipe/jobs/{id}
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.tracker.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// POST /api/v1/wipe/jobs/{id}/cancel
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Cancel(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancellation requested"})
}

// GET /api/v1/wipe/jobs/{id}/certificate
func (s *Server) handleCertificate(w http.ResponseWriter, r *http.Request) {
	job, err := s.tracker.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	view := job.Snapshot()
	if view.Status != jobs.StatusFinished || view.CertificatePath == "" {
		writeError(w, http.StatusBadRequest, "certificate not ready")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(view.CertificatePath))
	http.ServeFile(w, r, view.CertificatePath)
}
