package etl

import (
	"context"
	"time"

	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ExternalCleanerName attributes a cleaning that the external system reported.
const ExternalCleanerName = "Sistema externo"

type ReconcileFailure struct {
	ExternalCode string `json:"externalCode"`
	Error        string `json:"error"`
}

type ReconcileResult struct {
	Created  int                `json:"created"`
	Updated  int                `json:"updated"`
	Skipped  int                `json:"skipped"`
	Errors   int                `json:"errors"`
	Failures []ReconcileFailure `json:"failures,omitempty"`
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeUpdated
)

// Reconciler applies candidates to the location store. A location that is
// being cleaned is never modified by a sync.
type Reconciler struct {
	store LocationStore
	now   func() time.Time
	log   *zap.Logger
}

func NewReconciler(store LocationStore) *Reconciler {
	return &Reconciler{store: store, now: time.Now, log: logger.Named("reconcile")}
}

func (r *Reconciler) Reconcile(ctx context.Context, candidates []models.CandidateLocation) ReconcileResult {
	var res ReconcileResult
	for _, c := range candidates {
		out, err := r.reconcileOne(ctx, c)
		if err != nil {
			res.Errors++
			res.Failures = append(res.Failures, ReconcileFailure{ExternalCode: c.ExternalCode, Error: err.Error()})
			r.log.Error("reconcile failed", zap.String("externalCode", c.ExternalCode), zap.Error(err))
			continue
		}
		switch out {
		case outcomeCreated:
			res.Created++
		case outcomeUpdated:
			res.Updated++
		default:
			res.Skipped++
		}
	}
	return res
}

func (r *Reconciler) reconcileOne(ctx context.Context, c models.CandidateLocation) (outcome, error) {
	existing, err := r.store.FindByExternalCode(ctx, c.ExternalCode)
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "lookup by external code")
	}
	if existing == nil {
		existing, err = r.store.FindUnlinkedByNameNumber(ctx, c.Name, c.Number)
		if err != nil {
			return outcomeSkipped, errors.Wrap(err, "lookup by name and number")
		}
	}

	now := r.now()
	if existing == nil {
		loc := &models.Location{
			Name:               c.Name,
			Number:             c.Number,
			Status:             c.Status,
			ExternalCode:       c.ExternalCode,
			LocationType:       models.LocationTypeBed,
			CurrentCleaning:    externalCleaning(c, now),
			LastExternalUpdate: &c.LastExternalUpdate,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := r.store.Insert(ctx, loc); err != nil {
			return outcomeSkipped, errors.Wrap(err, "insert location")
		}
		r.log.Info("location created", zap.String("externalCode", c.ExternalCode), zap.String("status", string(c.Status)))
		return outcomeCreated, nil
	}

	if existing.Status == models.StatusInCleaning {
		r.log.Debug("location in cleaning, skipping", zap.String("externalCode", c.ExternalCode))
		return outcomeSkipped, nil
	}

	changed := existing.Status != c.Status ||
		existing.Name != c.Name ||
		existing.Number != c.Number ||
		existing.ExternalCode == ""
	if !changed {
		return outcomeSkipped, nil
	}

	written, err := r.store.UpdateFromSync(ctx, existing.ID, LocationSyncUpdate{
		Name:               c.Name,
		Number:             c.Number,
		Status:             c.Status,
		ExternalCode:       c.ExternalCode,
		CurrentCleaning:    externalCleaning(c, now),
		LastExternalUpdate: c.LastExternalUpdate,
		UpdatedAt:          now,
	})
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "update location")
	}
	if !written {
		// a cleaning started between the read and the write
		return outcomeSkipped, nil
	}
	r.log.Info("location updated",
		zap.String("externalCode", c.ExternalCode),
		zap.String("from", string(existing.Status)),
		zap.String("to", string(c.Status)))
	return outcomeUpdated, nil
}

// externalCleaning keeps currentCleaning set whenever the status is in_cleaning.
func externalCleaning(c models.CandidateLocation, at time.Time) *models.CurrentCleaning {
	if c.Status != models.StatusInCleaning {
		return nil
	}
	return &models.CurrentCleaning{
		Type:      models.CleaningConcurrent,
		UserName:  ExternalCleanerName,
		StartTime: at,
	}
}
