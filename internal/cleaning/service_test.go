package cleaning

import (
	"context"
	"testing"
	"time"

	"github.com/cleanflow/bedsync/internal/store"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memLocations struct {
	locs map[primitive.ObjectID]*models.Location
}

func (m *memLocations) Get(_ context.Context, id primitive.ObjectID) (*models.Location, error) {
	loc, ok := m.locs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

func (m *memLocations) StartCleaning(_ context.Context, id primitive.ObjectID, c models.CurrentCleaning) (bool, error) {
	loc := m.locs[id]
	if loc.Status == models.StatusInCleaning {
		return false, nil
	}
	loc.Status, loc.CurrentCleaning = models.StatusInCleaning, &c
	return true, nil
}

func (m *memLocations) FinishCleaning(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	loc := m.locs[id]
	if loc.Status != models.StatusInCleaning {
		return false, nil
	}
	loc.Status, loc.CurrentCleaning, loc.UpdatedAt = models.StatusAvailable, nil, at
	return true, nil
}

type memRepo struct {
	settings    models.CleaningSettings
	records     []models.CleaningRecord
	occurrences []models.CleaningOccurrence
	recordErr   error
}

func (m *memRepo) Settings(context.Context) (models.CleaningSettings, error) { return m.settings, nil }

func (m *memRepo) AddRecord(_ context.Context, r models.CleaningRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memRepo) AddOccurrence(_ context.Context, o models.CleaningOccurrence) error {
	m.occurrences = append(m.occurrences, o)
	return nil
}

func setup(status models.LocationStatus) (*Service, *memLocations, *memRepo, primitive.ObjectID, *time.Time) {
	id := primitive.NewObjectID()
	locs := &memLocations{locs: map[primitive.ObjectID]*models.Location{
		id: {ID: id, Name: "Quarto", Number: "101", Status: status, LocationType: models.LocationTypeBed},
	}}
	repo := &memRepo{settings: models.DefaultCleaningSettings()}
	svc := NewService(locs, repo)
	clock := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, locs, repo, id, &clock
}

func TestStart(t *testing.T) {
	svc, locs, _, id, _ := setup(models.StatusOccupied)

	loc, err := svc.Start(context.Background(), id.Hex(), models.CleaningTerminal, "u1", "Ana")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInCleaning, loc.Status)
	require.NotNil(t, locs.locs[id].CurrentCleaning)
	assert.Equal(t, "Ana", locs.locs[id].CurrentCleaning.UserName)

	_, err = svc.Start(context.Background(), id.Hex(), models.CleaningTerminal, "u2", "Bia")
	assert.ErrorIs(t, err, ErrAlreadyCleaning)
}

func TestStart_Rejects(t *testing.T) {
	svc, _, _, id, _ := setup(models.StatusAvailable)

	_, err := svc.Start(context.Background(), id.Hex(), "deep", "u1", "Ana")
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Start(context.Background(), primitive.NewObjectID().Hex(), models.CleaningConcurrent, "u1", "Ana")
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = svc.Start(context.Background(), "not-an-id", models.CleaningConcurrent, "u1", "Ana")
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = svc.Start(context.Background(), id.Hex(), models.CleaningConcurrent, "u1", " ")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestFinish_OnTime(t *testing.T) {
	svc, locs, repo, id, clock := setup(models.StatusAvailable)
	_, err := svc.Start(context.Background(), id.Hex(), models.CleaningConcurrent, "u1", "Ana")
	require.NoError(t, err)

	*clock = clock.Add(20 * time.Minute)
	rec, err := svc.Finish(context.Background(), id.Hex())
	require.NoError(t, err)

	assert.Equal(t, 20, rec.ActualDuration)
	assert.Equal(t, 30, rec.ExpectedDuration)
	assert.False(t, rec.Delayed)
	assert.Equal(t, "Quarto - 101", rec.LocationName)
	assert.Len(t, repo.records, 1)
	assert.Empty(t, repo.occurrences)
	assert.Equal(t, models.StatusAvailable, locs.locs[id].Status)
	assert.Nil(t, locs.locs[id].CurrentCleaning)
}

func TestFinish_Delayed(t *testing.T) {
	svc, _, repo, id, clock := setup(models.StatusAvailable)
	_, err := svc.Start(context.Background(), id.Hex(), models.CleaningTerminal, "u1", "Ana")
	require.NoError(t, err)

	*clock = clock.Add(52 * time.Minute)
	rec, err := svc.Finish(context.Background(), id.Hex())
	require.NoError(t, err)

	assert.True(t, rec.Delayed)
	require.Len(t, repo.occurrences, 1)
	assert.Equal(t, 7, repo.occurrences[0].DelayInMinutes)
	assert.Equal(t, models.CleaningTerminal, repo.occurrences[0].CleaningType)
}

func TestFinish_WithoutCleaning(t *testing.T) {
	svc, _, _, id, _ := setup(models.StatusAvailable)
	_, err := svc.Finish(context.Background(), id.Hex())
	assert.ErrorIs(t, err, ErrNotCleaning)
}

func TestFinish_RecordWriteFailureStillReleases(t *testing.T) {
	svc, locs, repo, id, clock := setup(models.StatusOccupied)
	ctx := context.Background()

	_, err := svc.Start(ctx, id.Hex(), models.CleaningConcurrent, "u1", "Ana")
	require.NoError(t, err)

	repo.recordErr = errors.New("write failed")
	*clock = clock.Add(20 * time.Minute)
	rec, err := svc.Finish(ctx, id.Hex())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 20, rec.ActualDuration)
	assert.Empty(t, repo.records)
	assert.Equal(t, models.StatusAvailable, locs.locs[id].Status)

	_, err = svc.Finish(ctx, id.Hex())
	assert.ErrorIs(t, err, ErrNotCleaning)
}
