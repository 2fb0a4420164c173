package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"wipesim_enterprise/internal/config"
	"wipesim_enterprise/internal/logging"
	"wipesim_enterprise/internal/reporting"
	"wipesim_enterprise/internal/security"
	"wipesim_enterprise/internal/wipe"
)

// Status состояние фоновой задачи затирания
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// ErrJobNotFound задача с указанным ID не зарегистрирована
var ErrJobNotFound = errors.New("задача не найдена")

// Job фоновая задача симуляции затирания одного устройства
type Job struct {
	mu sync.Mutex

	id       string
	device   *wipe.Device
	options  wipe.WipeOptions
	status   Status
	progress float64
	message  string
	log      []string

	result          *wipe.WipeResult
	errText         string
	certificatePath string
	startedAt       time.Time
	completedAt     *time.Time

	engine *wipe.SimulationEngine
	// ctx живёт всё время задачи; cancel делает отмену видимой движку даже
	// до входа в Start (отмена в очереди не теряется)
	ctx    context.Context
	cancel context.CancelFunc
}

// JobView JSON-представление снимка состояния задачи
type JobView struct {
	ID              string           `json:"id"`
	DeviceID        string           `json:"device_id"`
	Method          string           `json:"method"`
	Level           string           `json:"level"`
	Status          Status           `json:"status"`
	Progress        float64          `json:"progress"`
	Message         string           `json:"message"`
	Log             []string         `json:"log"`
	Result          *wipe.WipeResult `json:"result,omitempty"`
	Error           string           `json:"error,omitempty"`
	CertificatePath string           `json:"certificate_path,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

// Snapshot возвращает копию состояния задачи
func (j *Job) Snapshot() JobView {
	j.mu.Lock()
	defer j.mu.Unlock()

	view := JobView{
		ID:              j.id,
		DeviceID:        j.device.ID,
		Method:          string(j.options.Method),
		Level:           string(j.options.Level),
		Status:          j.status,
		Progress:        j.progress,
		Message:         j.message,
		Log:             append([]string(nil), j.log...),
		Result:          j.result,
		Error:           j.errText,
		CertificatePath: j.certificatePath,
		StartedAt:       j.startedAt,
		CompletedAt:     j.completedAt,
	}
	return view
}

func (j *Job) appendLog(line string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	j.log = append(j.log, fmt.Sprintf("[%s] %s", timestamp, line))
}

// Tracker in-memory реестр фоновых задач затирания
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	cfg    *config.Config
	logger *logging.Logger
}

// NewTracker создаёт реестр задач
func NewTracker(cfg *config.Config, logger *logging.Logger) *Tracker {
	return &Tracker{
		jobs:   make(map[string]*Job),
		cfg:    cfg,
		logger: logger,
	}
}

// StartJob регистрирует задачу и запускает симуляцию в фоне.
// Каждая задача получает собственный движок: экземпляры независимы и
// могут выполняться параллельно.
func (t *Tracker) StartJob(device *wipe.Device, opts wipe.WipeOptions) *Job {
	engine := wipe.NewSimulationEngine(&wipe.EngineConfig{
		SSDStepDelay: t.cfg.SSDStepDelay(),
		HDDStepDelay: t.cfg.HDDStepDelay(),
		Operator:     security.Operator(t.cfg),
		Logger:       t.logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		id:        uuid.NewString(),
		device:    device,
		options:   opts,
		status:    StatusQueued,
		startedAt: time.Now(),
		engine:    engine,
		ctx:       ctx,
		cancel:    cancel,
	}
	job.appendLog(fmt.Sprintf("Job queued: device=%s method=%s level=%s", device.ID, opts.Method, opts.Level))

	t.mu.Lock()
	t.jobs[job.id] = job
	t.mu.Unlock()

	go t.run(job)

	return job
}

func (t *Tracker) run(job *Job) {
	defer job.cancel()

	job.mu.Lock()
	job.status = StatusRunning
	job.appendLog("Simulation started")
	job.mu.Unlock()

	observer := func(percent float64, message string) {
		job.mu.Lock()
		job.progress = percent
		job.message = message
		job.mu.Unlock()
	}

	result, err := job.engine.Start(job.ctx, job.device, job.options, observer)

	now := time.Now()
	job.mu.Lock()
	defer job.mu.Unlock()
	job.completedAt = &now

	if err != nil {
		if errors.Is(err, wipe.ErrCancelled) {
			job.status = StatusCancelled
			job.appendLog("Simulation cancelled by operator")
			t.logger.Log("WARN", "Задача отменена", "job", job.id)
		} else {
			job.status = StatusFailed
			job.errText = err.Error()
			job.appendLog("Simulation failed: " + err.Error())
			t.logger.Log("ERROR", "Задача завершилась с ошибкой", "job", job.id, "error", err.Error())
		}
		return
	}

	job.status = StatusFinished
	job.result = result
	job.appendLog(fmt.Sprintf("Simulation finished: %d passes, hash %s", result.PassesCompleted, result.VerificationHash))

	// Сертификат не создаётся для отменённых и аварийных запусков
	if t.cfg.Reporting.Enabled {
		cert := reporting.BuildCertificate(job.device, job.options, result, security.Operator(t.cfg))
		path, err := reporting.SaveCertificate(cert, t.cfg.Reporting.Format, t.cfg.Reporting.LocalPath, "")
		if err != nil {
			job.appendLog("Certificate save failed: " + err.Error())
			t.logger.Log("WARN", "Ошибка сохранения сертификата", "job", job.id, "error", err.Error())
			return
		}
		job.certificatePath = path
		job.appendLog("Certificate generated: " + path)

		if t.cfg.Reporting.SignCertificates {
			if err := t.signCertificate(job, cert, path); err != nil {
				job.appendLog("Certificate signing failed: " + err.Error())
				t.logger.Log("WARN", "Ошибка подписи сертификата", "job", job.id, "error", err.Error())
			}
		}
	}

	t.logger.Log("INFO", "Задача завершена", "job", job.id, "passes", result.PassesCompleted)
}

func (t *Tracker) signCertificate(job *Job, cert *reporting.Certificate, certPath string) error {
	key, err := reporting.EnsureSigningKeys(t.cfg.Reporting.KeyDir)
	if err != nil {
		return err
	}
	sig, err := reporting.SignCertificate(cert, key)
	if err != nil {
		return err
	}
	sigPath, err := reporting.SaveSignature(certPath, sig)
	if err != nil {
		return err
	}
	job.appendLog("Certificate signed: " + sigPath)
	return nil
}

// Get возвращает задачу по ID
func (t *Tracker) Get(id string) (*Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Cancel запрашивает кооперативную отмену задачи. Отмена контекста
// перекрывает окно между постановкой в очередь и входом в Start: движок
// увидит её на первой контрольной точке.
func (t *Tracker) Cancel(id string) error {
	job, err := t.Get(id)
	if err != nil {
		return err
	}

	job.cancel()
	job.engine.Stop()
	job.mu.Lock()
	job.appendLog("Cancellation requested")
	job.mu.Unlock()

	return nil
}

// List возвращает снимки всех задач
func (t *Tracker) List() []JobView {
	t.mu.RLock()
	jobs := make([]*Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		jobs = append(jobs, job)
	}
	t.mu.RUnlock()

	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, job.Snapshot())
	}
	return views
}
