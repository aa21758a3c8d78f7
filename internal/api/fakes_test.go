package api

import (
	"context"
	"time"

	"github.com/cleanflow/bedsync/internal/cleaning"
	"github.com/cleanflow/bedsync/internal/etl"
	"github.com/cleanflow/bedsync/internal/store"
	"github.com/cleanflow/bedsync/internal/syncer"
	"github.com/cleanflow/bedsync/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSync struct {
	result      models.SyncResult
	err         error
	rescheduled int
}

func (f *fakeSync) ForceSync(context.Context) (models.SyncResult, error) { return f.result, f.err }

func (f *fakeSync) SyncStatus(context.Context) (syncer.SyncStatus, error) {
	return syncer.SyncStatus{Enabled: true, SyncInterval: 5, Scheduler: syncer.Status{IsScheduled: true, CurrentInterval: 5}}, nil
}

func (f *fakeSync) CheckAndSchedule(context.Context) { f.rescheduled++ }

type fakeIntegration struct {
	cfg models.IntegrationConfig
}

func (f *fakeIntegration) Get(context.Context) (models.IntegrationConfig, error) { return f.cfg, nil }

func (f *fakeIntegration) Save(_ context.Context, patch models.IntegrationConfigPatch) (models.IntegrationConfig, error) {
	next := patch.Apply(f.cfg)
	if err := next.Validate(); err != nil {
		return f.cfg, err
	}
	f.cfg = next
	return next, nil
}

type fakeHistory struct {
	entries []models.SyncHistoryEntry
	calls   int
}

func (f *fakeHistory) Recent(_ context.Context, limit int64) ([]models.SyncHistoryEntry, error) {
	if int64(len(f.entries)) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeHistory) Statistics(context.Context, time.Time) (models.SyncStatistics, error) {
	f.calls++
	return models.SyncStatistics{TotalSyncs: f.calls, SuccessRate: 100}, nil
}

type fakeTester struct {
	got models.IntegrationConfig
}

func (f *fakeTester) TestConnection(_ context.Context, cfg models.IntegrationConfig) etl.ConnectionResult {
	f.got = cfg
	if cfg.Host == "" {
		return etl.ConnectionResult{Success: false, Message: "Could not connect to the server. Check the host and port."}
	}
	return etl.ConnectionResult{Success: true, Message: "Connection established successfully."}
}

type fakeMappings struct {
	items []models.LocationMapping
}

func (f *fakeMappings) List(context.Context) ([]models.LocationMapping, error) { return f.items, nil }

func (f *fakeMappings) ListActive(context.Context) ([]models.LocationMapping, error) {
	var out []models.LocationMapping
	for _, m := range f.items {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMappings) Create(_ context.Context, m *models.LocationMapping) error {
	if err := models.Validator().Struct(m); err != nil {
		return err
	}
	for _, existing := range f.items {
		if existing.ExternalCode == m.ExternalCode {
			return store.ErrDuplicateMapping
		}
	}
	m.ID = primitive.NewObjectID()
	store.DeriveCodes(m)
	f.items = append(f.items, *m)
	return nil
}

func (f *fakeMappings) Update(_ context.Context, id primitive.ObjectID, m *models.LocationMapping) error {
	for i := range f.items {
		if f.items[i].ID == id {
			m.ID = id
			f.items[i] = *m
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeMappings) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsActive = active
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeLocations struct {
	items []models.Location
}

func (f *fakeLocations) List(context.Context) ([]models.Location, error) { return f.items, nil }

type fakeCleaning struct {
	err error
}

func (f *fakeCleaning) Start(_ context.Context, id string, t models.CleaningType, userID, userName string) (*models.Location, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !t.Valid() {
		return nil, cleaning.ErrInvalidType
	}
	return &models.Location{Name: "Quarto", Number: "101", Status: models.StatusInCleaning,
		CurrentCleaning: &models.CurrentCleaning{Type: t, UserID: userID, UserName: userName}}, nil
}

func (f *fakeCleaning) Finish(context.Context, string) (*models.CleaningRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CleaningRecord{LocationName: "Quarto - 101", ActualDuration: 50, ExpectedDuration: 45, Delayed: true}, nil
}

type fakeSettings struct {
	s models.CleaningSettings
}

func (f *fakeSettings) Settings(context.Context) (models.CleaningSettings, error) { return f.s, nil }

func (f *fakeSettings) SaveSettings(_ context.Context, s models.CleaningSettings) error {
	if err := models.Validator().Struct(s); err != nil {
		return err
	}
	f.s = s
	return nil
}

func (f *fakeSettings) Occurrences(context.Context) ([]models.CleaningOccurrence, error) {
	return []models.CleaningOccurrence{}, nil
}
