package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wipesim_enterprise/internal/config"
	"wipesim_enterprise/internal/logging"
	"wipesim_enterprise/internal/wipe"
)

func testTracker(t *testing.T) *Tracker {
	t.Helper()

	cfg := config.Default()
	cfg.Simulation.SSDStepDelayMs = 1
	cfg.Simulation.HDDStepDelayMs = 1
	cfg.Reporting.LocalPath = t.TempDir()
	cfg.Reporting.Format = "json"

	logger, err := logging.NewLogger(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })

	return NewTracker(cfg, logger)
}

func trackerDevice() *wipe.Device {
	return &wipe.Device{
		ID:       "dev-jobs",
		Name:     "jobs-laptop",
		Type:     wipe.DeviceLaptop,
		OSType:   wipe.OSLinux,
		Capacity: "256 GB",
	}
}

func TestJobRunsToCompletion(t *testing.T) {
	tracker := testTracker(t)

	job := tracker.StartJob(trackerDevice(), wipe.WipeOptions{
		Method: wipe.MethodNISTClear,
		Level:  wipe.LevelQuick,
	})

	require.Eventually(t, func() bool {
		return job.Snapshot().Status == StatusFinished
	}, 30*time.Second, 5*time.Millisecond)

	view := job.Snapshot()
	assert.Equal(t, 100.0, view.Progress)
	require.NotNil(t, view.Result)
	assert.Equal(t, 1, view.Result.PassesCompleted)
	assert.NotEmpty(t, view.CertificatePath)
	require.FileExists(t, view.CertificatePath)
	assert.NotNil(t, view.CompletedAt)
	assert.NotEmpty(t, view.Log)
}

func TestJobCancellation(t *testing.T) {
	tracker := testTracker(t)

	job := tracker.StartJob(trackerDevice(), wipe.WipeOptions{
		Method: wipe.MethodDoD3Pass,
		Level:  wipe.LevelSecure,
	})
	id := job.Snapshot().ID

	// Дожидаемся цикла проходов, затем отменяем
	require.Eventually(t, func() bool {
		return job.Snapshot().Progress > 25
	}, 30*time.Second, time.Millisecond)

	require.NoError(t, tracker.Cancel(id))

	require.Eventually(t, func() bool {
		return job.Snapshot().Status == StatusCancelled
	}, 30*time.Second, time.Millisecond)

	view := job.Snapshot()
	assert.Nil(t, view.Result)
	assert.Empty(t, view.CertificatePath, "сертификат не создаётся для отменённого запуска")
}

func TestCancelImmediatelyAfterStartIsHonored(t *testing.T) {
	tracker := testTracker(t)

	// Отмена до того, как фоновая горутина дошла до движка, не должна
	// теряться: задача обязана завершиться cancelled без сертификата
	job := tracker.StartJob(trackerDevice(), wipe.WipeOptions{
		Method: wipe.MethodNISTClear,
		Level:  wipe.LevelQuick,
	})
	require.NoError(t, tracker.Cancel(job.Snapshot().ID))

	require.Eventually(t, func() bool {
		status := job.Snapshot().Status
		return status == StatusCancelled || status == StatusFinished
	}, 30*time.Second, time.Millisecond)

	view := job.Snapshot()
	assert.Equal(t, StatusCancelled, view.Status)
	assert.Nil(t, view.Result)
	assert.Empty(t, view.CertificatePath)
}

func TestTrackerGetUnknownJob(t *testing.T) {
	tracker := testTracker(t)

	_, err := tracker.Get("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, tracker.Cancel("missing"), ErrJobNotFound)
}

func TestTrackerList(t *testing.T) {
	tracker := testTracker(t)

	first := tracker.StartJob(trackerDevice(), wipe.WipeOptions{Method: wipe.MethodNISTClear, Level: wipe.LevelQuick})
	second := tracker.StartJob(trackerDevice(), wipe.WipeOptions{Method: wipe.MethodNISTClear, Level: wipe.LevelQuick})

	views := tracker.List()
	assert.Len(t, views, 2)

	ids := map[string]bool{}
	for _, v := range views {
		ids[v.ID] = true
	}
	assert.True(t, ids[first.Snapshot().ID])
	assert.True(t, ids[second.Snapshot().ID])
}

func TestDeviceRegistryCRUD(t *testing.T) {
	registry := NewDeviceRegistry()

	device := registry.Add(&wipe.Device{Name: "zulu"})
	require.NotEmpty(t, device.ID)
	assert.Equal(t, wipe.DeviceUnknown, device.Type)
	assert.Equal(t, wipe.OSUnknown, device.OSType)

	registry.Add(&wipe.Device{ID: "fixed", Name: "alpha", Type: wipe.DeviceTablet, OSType: wipe.OSIOS})

	got, err := registry.Get("fixed")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)

	list := registry.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name, "сортировка по имени")
	assert.Equal(t, "zulu", list[1].Name)

	require.NoError(t, registry.Delete("fixed"))
	assert.ErrorIs(t, registry.Delete("fixed"), ErrDeviceNotFound)

	_, err = registry.Get("fixed")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}
