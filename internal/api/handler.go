package api

import (
	"context"
	"time"

	"github.com/cleanflow/bedsync/internal/etl"
	"github.com/cleanflow/bedsync/internal/store"
	"github.com/cleanflow/bedsync/internal/syncer"
	"github.com/cleanflow/bedsync/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SyncService interface {
	ForceSync(ctx context.Context) (models.SyncResult, error)
	SyncStatus(ctx context.Context) (syncer.SyncStatus, error)
	CheckAndSchedule(ctx context.Context)
}

type IntegrationStore interface {
	Get(ctx context.Context) (models.IntegrationConfig, error)
	Save(ctx context.Context, patch models.IntegrationConfigPatch) (models.IntegrationConfig, error)
}

type HistoryStore interface {
	Recent(ctx context.Context, limit int64) ([]models.SyncHistoryEntry, error)
	Statistics(ctx context.Context, since time.Time) (models.SyncStatistics, error)
}

type ConnectionTester interface {
	TestConnection(ctx context.Context, cfg models.IntegrationConfig) etl.ConnectionResult
}

type MappingStore interface {
	List(ctx context.Context) ([]models.LocationMapping, error)
	ListActive(ctx context.Context) ([]models.LocationMapping, error)
	Create(ctx context.Context, m *models.LocationMapping) error
	Update(ctx context.Context, id primitive.ObjectID, m *models.LocationMapping) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

type LocationLister interface {
	List(ctx context.Context) ([]models.Location, error)
}

type CleaningService interface {
	Start(ctx context.Context, locationID string, t models.CleaningType, userID, userName string) (*models.Location, error)
	Finish(ctx context.Context, locationID string) (*models.CleaningRecord, error)
}

type CleaningStore interface {
	Settings(ctx context.Context) (models.CleaningSettings, error)
	SaveSettings(ctx context.Context, s models.CleaningSettings) error
	Occurrences(ctx context.Context) ([]models.CleaningOccurrence, error)
}

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Sync        SyncService
	Integration IntegrationStore
	History     HistoryStore
	Connections ConnectionTester
	Mappings    MappingStore
	Locations   LocationLister
	Cleaning    CleaningService
	Settings    CleaningStore
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

var _ MappingStore = (*store.MappingRepo)(nil)
