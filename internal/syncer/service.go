// Package syncer schedules external syncs and makes sure only one runs at a time.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrSyncInProgress = errors.New("sync already in progress")

const DefaultCheckInterval = time.Minute

// Runner performs one sync run.
type Runner interface {
	Run(ctx context.Context, trigger models.SyncTrigger) models.SyncResult
}

type ConfigReader interface {
	Get(ctx context.Context) (models.IntegrationConfig, error)
}

// Status describes the scheduler itself.
type Status struct {
	IsRunning       bool       `json:"isRunning"`
	IsScheduled     bool       `json:"isScheduled"`
	LastRun         *time.Time `json:"lastRun"`
	NextRun         *time.Time `json:"nextRun"`
	CurrentInterval int        `json:"currentInterval"`
}

// SyncStatus joins the stored sync settings with the scheduler state.
type SyncStatus struct {
	Enabled       bool              `json:"enabled"`
	LastSync      *time.Time        `json:"lastSync"`
	SyncInterval  int               `json:"syncInterval"`
	LastSyncStats *models.SyncStats `json:"lastSyncStats,omitempty"`
	Scheduler     Status            `json:"scheduler"`
}

type Option func(*Service)

// WithCheckInterval sets how often the config is re-read to adjust the schedule.
func WithCheckInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.checkInterval = d
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithAfterRun registers fn to be called with the result of every run that
// was not rejected, scheduled or manual.
func WithAfterRun(fn func(models.SyncResult)) Option {
	return func(s *Service) {
		if fn != nil {
			s.afterRun = append(s.afterRun, fn)
		}
	}
}

// Service owns the single-flight guard and the recurring timer.
type Service struct {
	runner        Runner
	configs       ConfigReader
	checkInterval time.Duration
	location      *time.Location
	cron          *cron.Cron
	afterRun      []func(models.SyncResult)
	log           *zap.Logger

	mu       sync.Mutex
	running  bool
	started  bool
	baseCtx  context.Context
	lastRun  *time.Time
	syncID   cron.EntryID
	checkID  cron.EntryID
	interval int
}

func New(runner Runner, configs ConfigReader, opts ...Option) *Service {
	s := &Service{
		runner:        runner,
		configs:       configs,
		checkInterval: DefaultCheckInterval,
		location:      time.Local,
		baseCtx:       context.Background(),
		log:           logger.Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithLocation(s.location))
	return s
}

// Start schedules the config check job and applies the current config once.
// Scheduled runs use ctx; cancel it to abort a run in flight.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.baseCtx = ctx
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.checkInterval), func() {
		s.CheckAndSchedule(s.baseCtx)
	})
	if err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, "schedule config check")
	}
	s.checkID = id
	s.started = true
	s.cron.Start()
	s.mu.Unlock()

	s.log.Info("sync scheduler started", zap.Duration("checkInterval", s.checkInterval))
	s.CheckAndSchedule(ctx)
	return nil
}

// Stop cancels every timer and waits for running jobs to return.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()

	s.mu.Lock()
	for _, id := range []cron.EntryID{s.checkID, s.syncID} {
		if id != 0 {
			s.cron.Remove(id)
		}
	}
	s.checkID, s.syncID, s.interval = 0, 0, 0
	s.mu.Unlock()
	s.log.Info("sync scheduler stopped")
}

// CheckAndSchedule re-reads the config and adds, replaces or removes the sync
// job so it matches the stored interval.
func (s *Service) CheckAndSchedule(ctx context.Context) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		s.log.Error("failed to read integration config", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !cfg.Enabled || cfg.SyncInterval <= 0 {
		if s.syncID != 0 {
			s.cron.Remove(s.syncID)
			s.syncID, s.interval = 0, 0
			s.log.Info("sync schedule cancelled")
		}
		return
	}
	if s.syncID != 0 && s.interval == cfg.SyncInterval {
		return
	}

	if s.syncID != 0 {
		s.cron.Remove(s.syncID)
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", cfg.SyncInterval), func() {
		s.RunSync(s.baseCtx, models.TriggerScheduled)
	})
	if err != nil {
		s.syncID, s.interval = 0, 0
		s.log.Error("failed to schedule sync", zap.Int("interval", cfg.SyncInterval), zap.Error(err))
		return
	}
	s.syncID, s.interval = id, cfg.SyncInterval
	s.log.Info("sync scheduled", zap.Int("intervalMinutes", cfg.SyncInterval))
}

func (s *Service) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	now := time.Now()
	s.lastRun = &now
	return true
}

func (s *Service) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Run executes one sync unless another is already running, in which case it
// returns ErrSyncInProgress without touching any state.
func (s *Service) Run(ctx context.Context, trigger models.SyncTrigger) (models.SyncResult, error) {
	if !s.acquire() {
		s.log.Warn("sync rejected, another run is in progress", zap.String("trigger", string(trigger)))
		return models.SyncResult{Success: false, Message: "Sync already in progress."}, ErrSyncInProgress
	}
	res := func() models.SyncResult {
		defer s.release()
		return s.runner.Run(ctx, trigger)
	}()
	for _, fn := range s.afterRun {
		fn(res)
	}
	return res, nil
}

// RunSync is Run for callers that only want the result.
func (s *Service) RunSync(ctx context.Context, trigger models.SyncTrigger) models.SyncResult {
	res, _ := s.Run(ctx, trigger)
	return res
}

func (s *Service) ForceSync(ctx context.Context) (models.SyncResult, error) {
	return s.Run(ctx, models.TriggerManual)
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		IsRunning:       s.running,
		IsScheduled:     s.syncID != 0,
		LastRun:         s.lastRun,
		CurrentInterval: s.interval,
	}
	if s.syncID != 0 {
		if next := s.cron.Entry(s.syncID).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	return st
}

func (s *Service) SyncStatus(ctx context.Context) (SyncStatus, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{
		Enabled:       cfg.Enabled,
		LastSync:      cfg.LastSync,
		SyncInterval:  cfg.SyncInterval,
		LastSyncStats: cfg.LastSyncStats,
		Scheduler:     s.Status(),
	}, nil
}
