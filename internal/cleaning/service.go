// Package cleaning runs the start/finish lifecycle of a cleaning task.
package cleaning

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/cleanflow/bedsync/internal/store"
	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrInvalidType      = errors.New("invalid cleaning type")
	ErrLocationNotFound = errors.New("location not found")
	ErrAlreadyCleaning  = errors.New("location is already being cleaned")
	ErrNotCleaning      = errors.New("no active cleaning for this location")
	ErrMissingUser      = errors.New("user is required")
)

type LocationStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
	StartCleaning(ctx context.Context, id primitive.ObjectID, c models.CurrentCleaning) (bool, error)
	FinishCleaning(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
}

type Repo interface {
	Settings(ctx context.Context) (models.CleaningSettings, error)
	AddRecord(ctx context.Context, rec models.CleaningRecord) error
	AddOccurrence(ctx context.Context, occ models.CleaningOccurrence) error
}

type Service struct {
	locations LocationStore
	repo      Repo
	now       func() time.Time
	log       *zap.Logger
}

func NewService(locations LocationStore, repo Repo) *Service {
	return &Service{locations: locations, repo: repo, now: time.Now, log: logger.Named("cleaning")}
}

func (s *Service) load(ctx context.Context, locationID string) (primitive.ObjectID, *models.Location, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(locationID))
	if err != nil {
		return id, nil, ErrLocationNotFound
	}
	loc, err := s.locations.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return id, nil, ErrLocationNotFound
	}
	if err != nil {
		return id, nil, err
	}
	return id, loc, nil
}

// Start puts a location into cleaning for the given user.
func (s *Service) Start(ctx context.Context, locationID string, t models.CleaningType, userID, userName string) (*models.Location, error) {
	if !t.Valid() {
		return nil, ErrInvalidType
	}
	if strings.TrimSpace(userName) == "" {
		return nil, ErrMissingUser
	}
	id, loc, err := s.load(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc.Status == models.StatusInCleaning {
		return nil, ErrAlreadyCleaning
	}

	c := models.CurrentCleaning{Type: t, UserID: userID, UserName: userName, StartTime: s.now()}
	ok, err := s.locations.StartCleaning(ctx, id, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyCleaning
	}

	loc.Status = models.StatusInCleaning
	loc.CurrentCleaning = &c
	loc.UpdatedAt = c.StartTime
	s.log.Info("cleaning started",
		zap.String("location", loc.DisplayName()),
		zap.String("type", string(t)),
		zap.String("user", userName))
	return loc, nil
}

// Finish closes the active cleaning, records it and flags it when it ran
// longer than the configured time for its type. The location is released
// first; record and occurrence writes that fail after that are logged and
// the finished record is still returned.
func (s *Service) Finish(ctx context.Context, locationID string) (*models.CleaningRecord, error) {
	id, loc, err := s.load(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc.Status != models.StatusInCleaning || loc.CurrentCleaning == nil {
		return nil, ErrNotCleaning
	}
	settings, err := s.repo.Settings(ctx)
	if err != nil {
		return nil, err
	}

	finish := s.now()
	ok, err := s.locations.FinishCleaning(ctx, id, finish)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotCleaning
	}

	c := loc.CurrentCleaning
	expected := settings.Expected(c.Type)
	actual := int(math.Round(finish.Sub(c.StartTime).Minutes()))
	rec := models.CleaningRecord{
		LocationID:       id.Hex(),
		LocationName:     loc.DisplayName(),
		LocationType:     loc.LocationType,
		CleaningType:     c.Type,
		UserID:           c.UserID,
		UserName:         c.UserName,
		StartTime:        c.StartTime,
		FinishTime:       finish,
		ExpectedDuration: expected,
		ActualDuration:   actual,
		Status:           "completed",
		Delayed:          actual > expected,
		Date:             finish,
	}

	if rec.Delayed {
		occ := models.CleaningOccurrence{
			LocationName:   rec.LocationName,
			CleaningType:   c.Type,
			UserName:       c.UserName,
			DelayInMinutes: actual - expected,
			OccurredAt:     finish,
		}
		if err := s.repo.AddOccurrence(ctx, occ); err != nil {
			s.log.Error("failed to record cleaning occurrence", zap.Error(err))
		}
	}
	// the location is already free; a failed history write must not make the
	// caller retry a cleaning that no longer exists
	if err := s.repo.AddRecord(ctx, rec); err != nil {
		s.log.Error("failed to record finished cleaning",
			zap.String("location", rec.LocationName), zap.Error(err))
	}

	s.log.Info("cleaning finished",
		zap.String("location", rec.LocationName),
		zap.Int("actualMinutes", actual),
		zap.Int("expectedMinutes", expected),
		zap.Bool("delayed", rec.Delayed))
	return &rec, nil
}
