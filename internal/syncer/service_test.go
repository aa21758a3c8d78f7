package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRunner blocks every run until release is closed.
type blockingRunner struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{}, 10), release: make(chan struct{})}
}

func (r *blockingRunner) Run(ctx context.Context, trigger models.SyncTrigger) models.SyncResult {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	r.started <- struct{}{}
	<-r.release
	return models.SyncResult{Success: true, Message: "ok", Stats: models.SyncStats{Total: 1, Created: 1}}
}

func (r *blockingRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type staticConfig struct {
	mu  sync.Mutex
	cfg models.IntegrationConfig
}

func (c *staticConfig) Get(context.Context) (models.IntegrationConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg, nil
}

func (c *staticConfig) set(enabled bool, interval int) {
	c.mu.Lock()
	c.cfg.Enabled = enabled
	c.cfg.SyncInterval = interval
	c.mu.Unlock()
}

func TestService_SingleFlight(t *testing.T) {
	runner := newBlockingRunner()
	svc := New(runner, &staticConfig{})

	done := make(chan models.SyncResult)
	go func() { done <- svc.RunSync(context.Background(), models.TriggerScheduled) }()
	<-runner.started

	assert.True(t, svc.Status().IsRunning)

	res, err := svc.ForceSync(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.False(t, res.Success)
	assert.Equal(t, "Sync already in progress.", res.Message)
	assert.Equal(t, models.SyncStats{}, res.Stats)

	close(runner.release)
	first := <-done
	assert.True(t, first.Success)
	assert.Equal(t, 1, runner.Calls())
	assert.False(t, svc.Status().IsRunning)

	// the guard is released after the run
	res, err = svc.ForceSync(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, runner.Calls())
	assert.NotNil(t, svc.Status().LastRun)
}

func TestService_ConcurrentCallersOnlyOneRuns(t *testing.T) {
	runner := newBlockingRunner()
	svc := New(runner, &staticConfig{})

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Run(context.Background(), models.TriggerManual)
			results <- err
		}()
	}

	<-runner.started
	// give the rest a chance to hit the guard before releasing
	time.Sleep(50 * time.Millisecond)
	close(runner.release)
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrSyncInProgress)
			rejected++
		}
	}
	assert.GreaterOrEqual(t, ok, 1)
	assert.Equal(t, callers, ok+rejected)
	assert.Equal(t, ok, runner.Calls())
}

func TestService_CheckAndSchedule(t *testing.T) {
	cfg := &staticConfig{}
	svc := New(newBlockingRunner(), cfg, WithCheckInterval(time.Hour))
	ctx := context.Background()

	svc.CheckAndSchedule(ctx)
	assert.False(t, svc.Status().IsScheduled)

	cfg.set(true, 5)
	svc.CheckAndSchedule(ctx)
	st := svc.Status()
	assert.True(t, st.IsScheduled)
	assert.Equal(t, 5, st.CurrentInterval)
	firstID := svc.syncID

	// unchanged interval keeps the same job
	svc.CheckAndSchedule(ctx)
	assert.Equal(t, firstID, svc.syncID)

	cfg.set(true, 10)
	svc.CheckAndSchedule(ctx)
	assert.Equal(t, 10, svc.Status().CurrentInterval)
	assert.NotEqual(t, firstID, svc.syncID)

	cfg.set(false, 10)
	svc.CheckAndSchedule(ctx)
	st = svc.Status()
	assert.False(t, st.IsScheduled)
	assert.Zero(t, st.CurrentInterval)
}

func TestService_StartStop(t *testing.T) {
	cfg := &staticConfig{}
	cfg.set(true, 5)
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)
	svc := New(newBlockingRunner(), cfg, WithCheckInterval(time.Hour), WithLocation(loc))

	require.NoError(t, svc.Start(context.Background()))
	st := svc.Status()
	assert.True(t, st.IsScheduled)
	require.NotNil(t, st.NextRun)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), *st.NextRun, 5*time.Second)

	status, err := svc.SyncStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, 5, status.SyncInterval)

	svc.Stop()
	assert.False(t, svc.Status().IsScheduled)
}

func TestService_AfterRunHooks(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)

	var got []models.SyncResult
	svc := New(runner, &staticConfig{}, WithAfterRun(func(res models.SyncResult) {
		got = append(got, res)
	}))

	_, err := svc.Run(context.Background(), models.TriggerScheduled)
	require.NoError(t, err)
	_, err = svc.ForceSync(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Stats.Created)
	assert.False(t, svc.Status().IsRunning)
}
