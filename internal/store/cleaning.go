package store

import (
	"context"

	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsID = "default"

// CleaningRepo holds SLA settings, finished cleanings and delay occurrences.
type CleaningRepo struct {
	settings    *mongo.Collection
	records     *mongo.Collection
	occurrences *mongo.Collection
}

func NewCleaningRepo(settings, records, occurrences *mongo.Collection) *CleaningRepo {
	return &CleaningRepo{settings: settings, records: records, occurrences: occurrences}
}

// Settings falls back to the defaults when nothing was saved yet.
func (r *CleaningRepo) Settings(ctx context.Context) (models.CleaningSettings, error) {
	var s models.CleaningSettings
	err := r.settings.FindOne(ctx, bson.M{"_id": settingsID}).Decode(&s)
	if isNoDocuments(err) {
		return models.DefaultCleaningSettings(), nil
	}
	if err != nil {
		return s, errors.Wrap(err, "load cleaning settings")
	}
	return s, nil
}

func (r *CleaningRepo) SaveSettings(ctx context.Context, s models.CleaningSettings) error {
	if err := models.Validator().Struct(s); err != nil {
		return err
	}
	_, err := r.settings.UpdateOne(ctx, bson.M{"_id": settingsID}, bson.M{"$set": s}, options.Update().SetUpsert(true))
	return errors.Wrap(err, "save cleaning settings")
}

func (r *CleaningRepo) AddRecord(ctx context.Context, rec models.CleaningRecord) error {
	_, err := r.records.InsertOne(ctx, rec)
	return errors.Wrap(err, "insert cleaning record")
}

func (r *CleaningRepo) AddOccurrence(ctx context.Context, occ models.CleaningOccurrence) error {
	_, err := r.occurrences.InsertOne(ctx, occ)
	return errors.Wrap(err, "insert cleaning occurrence")
}

func (r *CleaningRepo) Occurrences(ctx context.Context) ([]models.CleaningOccurrence, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurredAt", Value: -1}})
	cur, err := r.occurrences.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list cleaning occurrences")
	}
	out := []models.CleaningOccurrence{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode cleaning occurrences")
	}
	return out, nil
}
