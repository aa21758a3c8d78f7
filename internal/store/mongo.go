// Package store persists locations, sync state and cleaning data in MongoDB.
package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collLocations   = "locations"
	collIntegration = "integration_config"
	collHistory     = "sync_history"
	collMappings    = "location_mappings"
	collSettings    = "system_settings"
	collRecords     = "cleaning_records"
	collOccurrences = "cleaning_occurrences"
)

var ErrNotFound = errors.New("not found")

// Store groups the repositories that share one database handle.
type Store struct {
	db *mongo.Database

	Locations   *LocationRepo
	Integration *IntegrationRepo
	History     *HistoryRepo
	Mappings    *MappingRepo
	Cleaning    *CleaningRepo
}

func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		db:          db,
		Locations:   NewLocationRepo(db.Collection(collLocations)),
		Integration: NewIntegrationRepo(db.Collection(collIntegration)),
		History:     NewHistoryRepo(db.Collection(collHistory)),
		Mappings:    NewMappingRepo(db.Collection(collMappings)),
		Cleaning:    NewCleaningRepo(db.Collection(collSettings), db.Collection(collRecords), db.Collection(collOccurrences)),
	}
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call on every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		collLocations: {
			{
				Keys: bson.D{{Key: "externalCode", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(
					bson.M{"externalCode": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "number", Value: 1}}},
		},
		collHistory: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		collMappings: {
			{Keys: bson.D{{Key: "externalCode", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collOccurrences: {
			{Keys: bson.D{{Key: "occurredAt", Value: -1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Wrapf(err, "create indexes on %s", coll)
		}
	}
	return nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
