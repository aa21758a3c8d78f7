package etl

import (
	"context"
	"time"

	"github.com/cleanflow/bedsync/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExternalRow is one record exactly as the external database returned it.
// Untyped access stops at the Transformer; everything downstream is typed.
type ExternalRow map[string]interface{}

// Extractor reads raw rows from the external system.
type Extractor interface {
	FetchRows(ctx context.Context, cfg models.IntegrationConfig) ([]ExternalRow, error)
}

// LocationStore is what reconciliation needs from the location repository.
// Finders return (nil, nil) when nothing matches.
type LocationStore interface {
	FindByExternalCode(ctx context.Context, code string) (*models.Location, error)
	FindUnlinkedByNameNumber(ctx context.Context, name, number string) (*models.Location, error)
	Insert(ctx context.Context, loc *models.Location) error
	// UpdateFromSync applies upd unless the stored record is in cleaning, and
	// reports whether a document was written.
	UpdateFromSync(ctx context.Context, id primitive.ObjectID, upd LocationSyncUpdate) (bool, error)
}

// LocationSyncUpdate is the set of fields a sync is allowed to change.
type LocationSyncUpdate struct {
	Name               string
	Number             string
	Status             models.LocationStatus
	ExternalCode       string
	CurrentCleaning    *models.CurrentCleaning
	LastExternalUpdate time.Time
	UpdatedAt          time.Time
}

type MappingSource interface {
	ListActive(ctx context.Context) ([]models.LocationMapping, error)
}

type ConfigStore interface {
	Get(ctx context.Context) (models.IntegrationConfig, error)
	RecordSync(ctx context.Context, at time.Time, stats models.SyncStats) error
}

type HistoryStore interface {
	Append(ctx context.Context, entry models.SyncHistoryEntry) error
}
