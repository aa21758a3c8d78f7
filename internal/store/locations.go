package store

import (
	"context"
	"time"

	"github.com/cleanflow/bedsync/internal/etl"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LocationRepo struct {
	coll *mongo.Collection
}

func NewLocationRepo(coll *mongo.Collection) *LocationRepo {
	return &LocationRepo{coll: coll}
}

var _ etl.LocationStore = (*LocationRepo)(nil)

func (r *LocationRepo) findOne(ctx context.Context, filter interface{}) (*models.Location, error) {
	var loc models.Location
	err := r.coll.FindOne(ctx, filter).Decode(&loc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find location")
	}
	return &loc, nil
}

func (r *LocationRepo) FindByExternalCode(ctx context.Context, code string) (*models.Location, error) {
	return r.findOne(ctx, bson.M{"externalCode": code})
}

// FindUnlinkedByNameNumber only considers locations that no external code owns yet.
func (r *LocationRepo) FindUnlinkedByNameNumber(ctx context.Context, name, number string) (*models.Location, error) {
	return r.findOne(ctx, bson.M{
		"name":   name,
		"number": number,
		"$or": bson.A{
			bson.M{"externalCode": bson.M{"$exists": false}},
			bson.M{"externalCode": ""},
			bson.M{"externalCode": nil},
		},
	})
}

func (r *LocationRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	loc, err := r.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrNotFound
	}
	return loc, nil
}

func (r *LocationRepo) List(ctx context.Context) ([]models.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "number", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list locations")
	}
	locs := []models.Location{}
	if err := cur.All(ctx, &locs); err != nil {
		return nil, errors.Wrap(err, "decode locations")
	}
	return locs, nil
}

func (r *LocationRepo) Insert(ctx context.Context, loc *models.Location) error {
	res, err := r.coll.InsertOne(ctx, loc)
	if err != nil {
		return errors.Wrap(err, "insert location")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		loc.ID = id
	}
	return nil
}

// UpdateFromSync writes only while the stored status is not in_cleaning, so a
// cleaning that starts after the reconciler read the record still wins.
func (r *LocationRepo) UpdateFromSync(ctx context.Context, id primitive.ObjectID, upd etl.LocationSyncUpdate) (bool, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.StatusInCleaning}}
	update := bson.M{"$set": bson.M{
		"name":               upd.Name,
		"number":             upd.Number,
		"status":             upd.Status,
		"externalCode":       upd.ExternalCode,
		"currentCleaning":    upd.CurrentCleaning,
		"lastExternalUpdate": upd.LastExternalUpdate,
		"updatedAt":          upd.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "update location from sync")
	}
	return res.MatchedCount > 0, nil
}

// StartCleaning moves a location into cleaning. It reports false when the
// location is already being cleaned.
func (r *LocationRepo) StartCleaning(ctx context.Context, id primitive.ObjectID, c models.CurrentCleaning) (bool, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.StatusInCleaning}}
	update := bson.M{"$set": bson.M{
		"status":          models.StatusInCleaning,
		"currentCleaning": c,
		"updatedAt":       c.StartTime,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "start cleaning")
	}
	return res.MatchedCount > 0, nil
}

// FinishCleaning releases a location in cleaning. It reports false when no
// cleaning was active.
func (r *LocationRepo) FinishCleaning(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	filter := bson.M{"_id": id, "status": models.StatusInCleaning}
	update := bson.M{"$set": bson.M{
		"status":          models.StatusAvailable,
		"currentCleaning": nil,
		"updatedAt":       at,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "finish cleaning")
	}
	return res.MatchedCount > 0, nil
}
