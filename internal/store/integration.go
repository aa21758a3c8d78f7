package store

import (
	"context"
	"time"

	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IntegrationRepo stores the single integration config document.
type IntegrationRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewIntegrationRepo(coll *mongo.Collection) *IntegrationRepo {
	return &IntegrationRepo{coll: coll, now: time.Now}
}

// Get returns the stored config, creating it with defaults on first read.
func (r *IntegrationRepo) Get(ctx context.Context) (models.IntegrationConfig, error) {
	var cfg models.IntegrationConfig
	err := r.coll.FindOne(ctx, bson.M{"_id": models.IntegrationConfigID}).Decode(&cfg)
	if isNoDocuments(err) {
		cfg = models.DefaultIntegrationConfig()
		if _, err := r.coll.InsertOne(ctx, cfg); err != nil && !mongo.IsDuplicateKeyError(err) {
			return cfg, errors.Wrap(err, "insert default integration config")
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "load integration config")
	}
	if cfg.Driver == "" {
		cfg.Driver = models.DriverPostgres
	}
	return cfg, nil
}

// Save merges patch onto the stored config, validates the result and writes
// the config fields only. lastSync and lastSyncStats belong to RecordSync and
// are never written here, so a run finishing mid-save keeps its stats.
// A validation failure leaves the stored document untouched.
func (r *IntegrationRepo) Save(ctx context.Context, patch models.IntegrationConfigPatch) (models.IntegrationConfig, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return current, err
	}
	next := patch.Apply(current)
	next.ID = models.IntegrationConfigID
	next.UpdatedAt = r.now()
	if err := next.Validate(); err != nil {
		return current, err
	}

	update := bson.M{
		"$set":         configFields(next),
		"$setOnInsert": bson.M{"createdAt": next.CreatedAt},
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": models.IntegrationConfigID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return current, errors.Wrap(err, "save integration config")
	}
	return next, nil
}

func configFields(cfg models.IntegrationConfig) bson.M {
	return bson.M{
		"enabled":        cfg.Enabled,
		"driver":         cfg.Driver,
		"host":           cfg.Host,
		"port":           cfg.Port,
		"database":       cfg.Database,
		"username":       cfg.Username,
		"password":       cfg.Password,
		"syncInterval":   cfg.SyncInterval,
		"query":          cfg.Query,
		"statusMappings": cfg.StatusMappings,
		"fieldMappings":  cfg.FieldMappings,
		"transformation": cfg.Transformation,
		"updatedAt":      cfg.UpdatedAt,
	}
}

func (r *IntegrationRepo) RecordSync(ctx context.Context, at time.Time, stats models.SyncStats) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": models.IntegrationConfigID}, bson.M{"$set": bson.M{
		"lastSync":      at,
		"lastSyncStats": stats,
		"updatedAt":     at,
	}})
	return errors.Wrap(err, "record last sync")
}
