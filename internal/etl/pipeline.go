package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline runs one synchronization end to end: load config, fetch,
// transform, reconcile, persist. It holds no run state; single-flight is
// the caller's job.
type Pipeline struct {
	configs   ConfigStore
	source    Extractor
	mappings  MappingSource
	locations LocationStore
	history   HistoryStore

	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

func NewPipeline(configs ConfigStore, source Extractor, mappings MappingSource, locations LocationStore, history HistoryStore) *Pipeline {
	return &Pipeline{
		configs:   configs,
		source:    source,
		mappings:  mappings,
		locations: locations,
		history:   history,
		now:       time.Now,
		newID:     func() string { return "sync-" + uuid.NewString() },
		log:       logger.Named("sync"),
	}
}

// Run never returns an error: every failure becomes an unsuccessful result.
func (p *Pipeline) Run(ctx context.Context, trigger models.SyncTrigger) (result models.SyncResult) {
	syncID := p.newID()
	start := p.now()
	log := p.log.With(zap.String("syncId", syncID), zap.String("trigger", string(trigger)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("sync panicked", zap.Any("panic", r))
			result = models.SyncResult{
				Success: false,
				Message: fmt.Sprintf("Sync failed: %v", r),
				Stats:   models.SyncStats{Errors: 1},
				SyncID:  syncID,
			}
		}
	}()

	log.Info("sync started")

	cfg, err := p.configs.Get(ctx)
	if err != nil {
		log.Error("failed to load integration config", zap.Error(err))
		return models.SyncResult{Message: "Failed to load integration config: " + err.Error(), SyncID: syncID}
	}
	if !cfg.Enabled {
		log.Warn("integration disabled, nothing to do")
		return models.SyncResult{Message: "Integration is not enabled.", SyncID: syncID}
	}
	if missing := ValidateForSync(cfg); len(missing) > 0 {
		cerr := &ConfigError{Missing: missing}
		log.Error("integration config incomplete", zap.Strings("missing", missing))
		return models.SyncResult{Message: "Configuration error: " + cerr.Error(), SyncID: syncID}
	}
	source := &models.SyncSource{Host: cfg.Host, Database: cfg.Database}

	rows, err := p.source.FetchRows(ctx, cfg)
	if err != nil {
		return p.fail(ctx, log, syncID, trigger, start, source, "Failed to fetch external data: "+err.Error(), err)
	}

	if len(rows) == 0 {
		log.Info("no rows returned by external query")
		stats := models.SyncStats{}
		p.persist(ctx, log, syncID, trigger, start, source, stats)
		return models.SyncResult{
			Success: true,
			Message: "Sync finished. No data found in the external system.",
			Stats:   stats,
			SyncID:  syncID,
		}
	}

	mappings, err := p.mappings.ListActive(ctx)
	if err != nil {
		return p.fail(ctx, log, syncID, trigger, start, source, "Failed to load location mappings: "+err.Error(), err)
	}
	transformer, err := NewTransformer(cfg, mappings)
	if err != nil {
		return p.fail(ctx, log, syncID, trigger, start, source, "Configuration error: "+err.Error(), err)
	}

	tr := transformer.Transform(rows)
	for _, itemErr := range tr.Errors {
		log.Error("row transformation failed", zap.Any("row", itemErr.Row), zap.String("error", itemErr.Error))
	}

	rec := NewReconciler(p.locations).Reconcile(ctx, tr.Data)

	stats := models.SyncStats{
		Total:   tr.Stats.Total,
		Created: rec.Created,
		Updated: rec.Updated,
		Skipped: rec.Skipped + tr.Stats.Skipped,
		Errors:  rec.Errors + tr.Stats.Errors,
	}
	p.persist(ctx, log, syncID, trigger, start, source, stats)

	return models.SyncResult{
		Success: stats.Errors == 0,
		Message: fmt.Sprintf("Sync finished: %d created, %d updated, %d skipped, %d errors.",
			stats.Created, stats.Updated, stats.Skipped, stats.Errors),
		Stats:  stats,
		SyncID: syncID,
	}
}

// persist records a completed run. Store failures here are logged only; the
// locations are already written.
func (p *Pipeline) persist(ctx context.Context, log *zap.Logger, syncID string, trigger models.SyncTrigger,
	start time.Time, source *models.SyncSource, stats models.SyncStats) {
	finished := p.now()
	if err := p.configs.RecordSync(ctx, finished, stats); err != nil {
		log.Error("failed to record last sync", zap.Error(err))
	}
	entry := models.SyncHistoryEntry{
		SyncID:    syncID,
		Timestamp: finished,
		Type:      trigger,
		Success:   stats.Errors == 0,
		Stats:     &stats,
		Duration:  finished.Sub(start).Milliseconds(),
		Source:    source,
	}
	if err := p.history.Append(ctx, entry); err != nil {
		log.Error("failed to append sync history", zap.Error(err))
	}
	log.Info("sync finished",
		zap.Int("total", stats.Total),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors),
		zap.Int64("durationMs", entry.Duration))
}

func (p *Pipeline) fail(ctx context.Context, log *zap.Logger, syncID string, trigger models.SyncTrigger,
	start time.Time, source *models.SyncSource, message string, cause error) models.SyncResult {
	log.Error("sync failed", zap.Error(cause))
	finished := p.now()
	stats := models.SyncStats{Errors: 1}
	entry := models.SyncHistoryEntry{
		SyncID:    syncID,
		Timestamp: finished,
		Type:      trigger,
		Success:   false,
		Stats:     &stats,
		Duration:  finished.Sub(start).Milliseconds(),
		Error:     cause.Error(),
		Source:    source,
	}
	if err := p.history.Append(ctx, entry); err != nil {
		log.Error("failed to append sync history", zap.Error(err))
	}
	return models.SyncResult{Success: false, Message: message, Stats: stats, SyncID: syncID}
}
