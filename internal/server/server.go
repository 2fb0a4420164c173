package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wipesim_enterprise/internal/config"
	"wipesim_enterprise/internal/jobs"
	"wipesim_enterprise/internal/logging"
)

// Server HTTP API демо-дашборда затирания
type Server struct {
	cfg     *config.Config
	logger  *logging.Logger
	tracker *jobs.Tracker
	devices *jobs.DeviceRegistry
}

// New создаёт сервер с собственным реестром устройств и задач
func New(cfg *config.Config, logger *logging.Logger) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		tracker: jobs.NewTracker(cfg, logger),
		devices: jobs.NewDeviceRegistry(),
	}
}

// Router собирает маршруты API
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/devices", func(r chi.Router) {
			r.Post("/", s.handleCreateDevice)
			r.Post("/detect", s.handleDetectDevice)
			r.Get("/", s.handleListDevices)
			r.Get("/{id}", s.handleGetDevice)
			r.Delete("/{id}", s.handleDeleteDevice)
		})

		r.Route("/wipe", func(r chi.Router) {
			r.Post("/start", s.handleStartWipe)
			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{id}", s.handleJobStatus)
			r.Post("/jobs/{id}/cancel", s.handleCancelJob)
			r.Get("/jobs/{id}/certificate", s.handleCertificate)
		})
	})

	return r
}

// ListenAndServe запускает сервер до отмены контекста, затем выполняет
// graceful shutdown в пределах настроенного таймаута
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Log("INFO", "HTTP API запущен", "listen", s.cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()

	s.logger.Log("INFO", "Остановка HTTP API")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
