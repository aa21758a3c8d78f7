package store

import (
	"context"
	"math"
	"time"

	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultHistoryLimit = 50

type HistoryRepo struct {
	coll *mongo.Collection
}

func NewHistoryRepo(coll *mongo.Collection) *HistoryRepo {
	return &HistoryRepo{coll: coll}
}

func (r *HistoryRepo) Append(ctx context.Context, entry models.SyncHistoryEntry) error {
	_, err := r.coll.InsertOne(ctx, entry)
	return errors.Wrap(err, "append sync history")
}

// Recent returns up to limit entries, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int64) ([]models.SyncHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list sync history")
	}
	entries := []models.SyncHistoryEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "decode sync history")
	}
	return entries, nil
}

type historyAggregate struct {
	Total       int       `bson:"total"`
	Successful  int       `bson:"successful"`
	AvgDuration float64   `bson:"avgDuration"`
	LastSync    time.Time `bson:"lastSync"`
}

// Statistics summarizes the runs recorded since the given time.
func (r *HistoryRepo) Statistics(ctx context.Context, since time.Time) (models.SyncStatistics, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: since}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "successful", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$success", 1, 0}},
			}}}},
			{Key: "avgDuration", Value: bson.D{{Key: "$avg", Value: "$duration"}}},
			{Key: "lastSync", Value: bson.D{{Key: "$max", Value: "$timestamp"}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.SyncStatistics{}, errors.Wrap(err, "aggregate sync history")
	}
	var rows []historyAggregate
	if err := cur.All(ctx, &rows); err != nil {
		return models.SyncStatistics{}, errors.Wrap(err, "decode sync statistics")
	}
	if len(rows) == 0 {
		return summarize(historyAggregate{}), nil
	}
	return summarize(rows[0]), nil
}

func summarize(agg historyAggregate) models.SyncStatistics {
	stats := models.SyncStatistics{
		TotalSyncs:      agg.Total,
		SuccessfulSyncs: agg.Successful,
		FailedSyncs:     agg.Total - agg.Successful,
		AvgDurationMs:   math.Round(agg.AvgDuration),
	}
	if agg.Total > 0 {
		stats.SuccessRate = math.Round(float64(agg.Successful)/float64(agg.Total)*1000) / 10
	}
	if !agg.LastSync.IsZero() {
		last := agg.LastSync
		stats.LastSync = &last
	}
	return stats
}
