package etl

import (
	"context"
	"sync"
	"time"

	"github.com/cleanflow/bedsync/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memLocations is an in-memory LocationStore.
type memLocations struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*models.Location
	order   []primitive.ObjectID
	failOn  string
	inserts int
	updates int

	// beforeUpdate runs inside UpdateFromSync before the status check.
	beforeUpdate func(loc *models.Location)
}

func newMemLocations(locs ...models.Location) *memLocations {
	m := &memLocations{byID: map[primitive.ObjectID]*models.Location{}}
	for i := range locs {
		loc := locs[i]
		if loc.ID.IsZero() {
			loc.ID = primitive.NewObjectID()
		}
		m.byID[loc.ID] = &loc
		m.order = append(m.order, loc.ID)
	}
	return m
}

func (m *memLocations) FindByExternalCode(_ context.Context, code string) (*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code == m.failOn {
		return nil, errBoom
	}
	for _, id := range m.order {
		if loc := m.byID[id]; loc.ExternalCode == code {
			cp := *loc
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memLocations) FindUnlinkedByNameNumber(_ context.Context, name, number string) (*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if loc := m.byID[id]; loc.ExternalCode == "" && loc.Name == name && loc.Number == number {
			cp := *loc
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memLocations) Insert(_ context.Context, loc *models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc.ID = primitive.NewObjectID()
	cp := *loc
	m.byID[loc.ID] = &cp
	m.order = append(m.order, loc.ID)
	m.inserts++
	return nil
}

func (m *memLocations) UpdateFromSync(_ context.Context, id primitive.ObjectID, upd LocationSyncUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(loc)
	}
	if loc.Status == models.StatusInCleaning {
		return false, nil
	}
	loc.Name, loc.Number, loc.Status = upd.Name, upd.Number, upd.Status
	loc.ExternalCode = upd.ExternalCode
	loc.CurrentCleaning = upd.CurrentCleaning
	at := upd.LastExternalUpdate
	loc.LastExternalUpdate = &at
	loc.UpdatedAt = upd.UpdatedAt
	m.updates++
	return true, nil
}

func (m *memLocations) all() []models.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Location, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out
}

func (m *memLocations) byCode(code string) *models.Location {
	for _, loc := range m.all() {
		if loc.ExternalCode == code {
			l := loc
			return &l
		}
	}
	return nil
}

type memConfig struct {
	cfg      models.IntegrationConfig
	getErr   error
	lastSync *time.Time
	stats    *models.SyncStats
}

func (m *memConfig) Get(context.Context) (models.IntegrationConfig, error) {
	return m.cfg, m.getErr
}

func (m *memConfig) RecordSync(_ context.Context, at time.Time, stats models.SyncStats) error {
	m.lastSync = &at
	m.stats = &stats
	return nil
}

type memHistory struct {
	entries []models.SyncHistoryEntry
}

func (m *memHistory) Append(_ context.Context, e models.SyncHistoryEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

type memMappings []models.LocationMapping

func (m memMappings) ListActive(context.Context) ([]models.LocationMapping, error) {
	return m, nil
}

type stubSource struct {
	rows  []ExternalRow
	err   error
	calls int
}

func (s *stubSource) FetchRows(context.Context, models.IntegrationConfig) ([]ExternalRow, error) {
	s.calls++
	return s.rows, s.err
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom error = boomError{}

func enabledConfig() models.IntegrationConfig {
	cfg := models.DefaultIntegrationConfig()
	cfg.Enabled = true
	cfg.Host = "db.hospital.local"
	cfg.Database = "his"
	return cfg
}
