package wipe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"wipesim_enterprise/internal/logging"
)

const (
	sectorsDefault    = 100000
	sectorsSmartphone = 50000
	subStepsPerPass   = 50

	defaultSSDStepDelay = 2 * time.Millisecond
	defaultHDDStepDelay = 6 * time.Millisecond
)

// EngineConfig конфигурация движка симуляции
type EngineConfig struct {
	// SSDStepDelay пауза под-шага для SSD устройств (короче HDD)
	SSDStepDelay time.Duration
	// HDDStepDelay пауза под-шага для прочих устройств
	HDDStepDelay time.Duration
	// Operator email оператора, попадает в запись верификации
	Operator string
	Logger   *logging.Logger
}

// SimulationEngine симулирует многопроходное затирание одного устройства.
// Один экземпляр выполняет не более одного запуска одновременно; повторный
// Start при активном запуске отклоняется с ErrBusy. Отмена кооперативная:
// Stop() сбрасывает флаг, запуск наблюдает его на ближайшей контрольной
// точке под-шага.
type SimulationEngine struct {
	active atomic.Bool

	ssdStepDelay time.Duration
	hddStepDelay time.Duration
	operator     string
	logger       *logging.Logger

	// перекрывается в тестах для проверки пути отказа
	hashFn func(device *Device, method WipeMethod, level SecurityLevel, operator string, hpaIncluded, ssdOptimized bool) (string, error)
}

// NewSimulationEngine создает движок симуляции
func NewSimulationEngine(cfg *EngineConfig) *SimulationEngine {
	e := &SimulationEngine{
		ssdStepDelay: defaultSSDStepDelay,
		hddStepDelay: defaultHDDStepDelay,
		hashFn:       GenerateVerificationHash,
	}
	if cfg != nil {
		if cfg.SSDStepDelay > 0 {
			e.ssdStepDelay = cfg.SSDStepDelay
		}
		if cfg.HDDStepDelay > 0 {
			e.hddStepDelay = cfg.HDDStepDelay
		}
		e.operator = cfg.Operator
		e.logger = cfg.Logger
	}
	return e
}

// Active сообщает, выполняется ли запуск
func (e *SimulationEngine) Active() bool {
	return e.active.Load()
}

// Stop запрашивает отмену текущего запуска. Идемпотентен; запуск
// завершается с ErrCancelled на следующей контрольной точке.
func (e *SimulationEngine) Stop() {
	e.active.Store(false)
}

// Start выполняет полную симуляцию затирания устройства. Блокирует до
// завершения; отдает прогресс через observer (nil допустим). Возвращает
// ErrBusy при активном запуске, ErrCancelled при отмене, иначе ошибку
// генерации хеша.
func (e *SimulationEngine) Start(ctx context.Context, device *Device, opts WipeOptions, observer ProgressFunc) (result *WipeResult, err error) {
	if device == nil {
		return nil, fmt.Errorf("не задан дескриптор устройства")
	}

	if !e.active.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer func() {
		// При отмене флаг уже сброшен (Stop или контекст); не трогаем его,
		// чтобы не задеть запуск, стартовавший следом.
		if !errors.Is(err, ErrCancelled) {
			e.active.Store(false)
		}
	}()

	emit := observer
	if emit == nil {
		emit = func(float64, string) {}
	}

	policy := ResolveMethod(opts.Method)
	level := ValidateLevel(opts.Level)
	stepDelay := e.hddStepDelay
	if device.IsSSD {
		stepDelay = e.ssdStepDelay
	}

	startTime := time.Now()
	e.log("INFO", "Запуск симуляции затирания", "device", device.ID, "method", policy.Method, "level", level)

	// Фаза 1: анализ устройства и подготовка окружения ОС (0-8%)
	emit(0, fmt.Sprintf("Analyzing device %s (%s, %s)", device.Name, device.Type, device.Capacity))
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(3, fmt.Sprintf("Detecting %s architecture", device.OSType))
	profile := ProfileForOS(device.OSType)
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(6, fmt.Sprintf("Preparing environment: %s via %s", profile.Method, profile.BootMethod))
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(8, fmt.Sprintf("Environment ready, features: %d", len(profile.Features)))

	// Фаза 2: оценка перед затиранием (8-12%)
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(10, "Running pre-wipe assessment")
	if !profile.Compatible {
		emit(11, fmt.Sprintf("Warning: OS %q not fully supported, continuing best effort", device.OSType))
		e.log("WARN", "Неизвестная ОС, деградация к best effort", "os", device.OSType)
	}
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(12, "Pre-wipe assessment complete")

	// Фаза 3: скрытые области HPA/DCO (12-20%, условная)
	hpaIncluded := false
	if device.SupportsHPADCO {
		if err := e.wait(ctx, stepDelay); err != nil {
			return nil, err
		}
		emit(14, "Scanning for Host Protected Area (HPA)")
		if err := e.wait(ctx, stepDelay); err != nil {
			return nil, err
		}
		emit(17, "Scanning Device Configuration Overlay (DCO)")
		if err := e.wait(ctx, stepDelay); err != nil {
			return nil, err
		}
		emit(20, "Hidden areas included in wipe scope")
		hpaIncluded = true
	}

	// Фаза 4: подготовка SSD (20-25%, условная)
	ssdOptimized := false
	if device.IsSSD {
		if err := e.wait(ctx, stepDelay); err != nil {
			return nil, err
		}
		emit(21, "Preparing wear-leveling aware pass schedule")
		if err := e.wait(ctx, stepDelay); err != nil {
			return nil, err
		}
		emit(25, "SSD pre-processing complete")
		ssdOptimized = true
	}

	// Фаза 5: цикл проходов (25-85%)
	totalPasses := CalculatePasses(level, policy.BasePasses)
	sectors := sectorsDefault
	if device.Type == DeviceSmartphone {
		sectors = sectorsSmartphone
	}
	sectorStep := sectors / subStepsPerPass

	for pass := 1; pass <= totalPasses; pass++ {
		pattern := PatternForPass(policy, pass)
		passStart := 25 + float64(pass-1)/float64(totalPasses)*60
		passEnd := 25 + float64(pass)/float64(totalPasses)*60

		for step := 1; step <= subStepsPerPass; step++ {
			if err := e.wait(ctx, stepDelay); err != nil {
				e.log("WARN", "Симуляция отменена", "device", device.ID, "pass", pass)
				return nil, err
			}
			percent := passStart + (passEnd-passStart)*float64(step)/float64(subStepsPerPass)
			emit(percent, fmt.Sprintf("Pass %d/%d: writing %s pattern, sector %d of %d",
				pass, totalPasses, pattern, step*sectorStep, sectors))
		}
		emit(passEnd, fmt.Sprintf("Pass %d/%d verification complete", pass, totalPasses))
	}

	// Фаза 6: завершающая очистка (85-94%)
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(86, "Running post-wipe cleanup")
	if ssdOptimized {
		if err := e.wait(ctx, stepDelay); err != nil {
			return nil, err
		}
		emit(89, "Issuing TRIM commands")
		if err := e.wait(ctx, stepDelay); err != nil {
			return nil, err
		}
		emit(92, "Verifying SSD controller state")
	}
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(94, "Post-wipe cleanup complete")

	// Фаза 7: генерация хеша верификации (94-97%) — единственный шаг с
	// реальным вычислением
	emit(95, "Generating verification hash")
	hash, err := e.hashFn(device, policy.Method, level, e.operator, hpaIncluded, ssdOptimized)
	if err != nil {
		e.log("ERROR", "Ошибка генерации хеша верификации", "device", device.ID, "error", err.Error())
		return nil, fmt.Errorf("ошибка генерации хеша верификации: %w", err)
	}
	emit(97, "Verification hash generated")

	// Фаза 8: финальная проверка целостности (97-100%)
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(98, "Running final integrity check")
	if err := e.wait(ctx, stepDelay); err != nil {
		return nil, err
	}
	emit(100, fmt.Sprintf("Wipe completed: %d passes, %s", totalPasses, policy.Label))

	minutes := int(math.Round(time.Since(startTime).Minutes()))
	if minutes < 2 {
		minutes = 2
	}

	e.log("INFO", "Симуляция завершена", "device", device.ID, "passes", totalPasses, "hash", hash)

	return &WipeResult{
		Success:          true,
		VerificationHash: hash,
		PassesCompleted:  totalPasses,
		Method:           policy.Method,
		DurationMinutes:  minutes,
		OSCompatible:     profile.Compatible,
		HPAIncluded:      hpaIncluded,
		SSDOptimized:     ssdOptimized,
		SectorsWiped:     int64(sectors) * int64(totalPasses),
	}, nil
}

// wait контрольная точка: пауза шага с наблюдением отмены. Отмена через
// контекст приравнивается к Stop() и также сбрасывает флаг активности.
func (e *SimulationEngine) wait(ctx context.Context, delay time.Duration) error {
	if !e.active.Load() {
		return ErrCancelled
	}
	select {
	case <-ctx.Done():
		e.active.Store(false)
		return ErrCancelled
	case <-time.After(delay):
	}
	if !e.active.Load() {
		return ErrCancelled
	}
	return nil
}

func (e *SimulationEngine) log(level, message string, fields ...interface{}) {
	if e.logger != nil {
		e.logger.Log(level, message, fields...)
	}
}
