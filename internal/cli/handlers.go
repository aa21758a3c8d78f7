package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleanflow/bedsync/internal/api"
	"github.com/cleanflow/bedsync/internal/cleaning"
	"github.com/cleanflow/bedsync/internal/config"
	"github.com/cleanflow/bedsync/internal/etl"
	"github.com/cleanflow/bedsync/internal/mw"
	"github.com/cleanflow/bedsync/internal/store"
	"github.com/cleanflow/bedsync/internal/syncer"
	"github.com/cleanflow/bedsync/pkg/database"
	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// app is the wiring shared by every command.
type app struct {
	cfg    *config.Config
	client *mongo.Client
	store  *store.Store
	source *etl.SQLSource
	sync   *syncer.Service
	stats  *mw.ResponseCache
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}

	client, err := database.ConnectMongo(cfg.MongoConnString)
	if err != nil {
		logger.Close()
		return nil, err
	}

	st := store.New(client, cfg.MongoDatabase)
	if err := st.EnsureIndexes(ctx); err != nil {
		database.DisconnectMongo(client)
		logger.Close()
		return nil, err
	}

	source := etl.NewSQLSource()
	pipeline := etl.NewPipeline(st.Integration, source, st.Mappings, st.Locations, st.History)
	stats := mw.NewResponseCache(cfg.StatsCacheTTL)
	svc := syncer.New(pipeline, st.Integration,
		syncer.WithCheckInterval(cfg.SyncCheckInterval),
		syncer.WithLocation(cfg.Location()),
		syncer.WithAfterRun(func(models.SyncResult) { stats.Invalidate() }),
	)

	return &app{cfg: cfg, client: client, store: st, source: source, sync: svc, stats: stats}, nil
}

func (a *app) Close() {
	database.DisconnectMongo(a.client)
	logger.Close()
}

func runServe(ctx context.Context, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sync.Start(ctx); err != nil {
		return err
	}
	defer a.sync.Stop()

	router := api.NewRouter(api.Deps{
		Sync:        a.sync,
		Integration: a.store.Integration,
		History:     a.store.History,
		Connections: a.source,
		Mappings:    a.store.Mappings,
		Locations:   a.store.Locations,
		Cleaning:    cleaning.NewService(a.store.Locations, a.store.Cleaning),
		Settings:    a.store.Cleaning,
	}, api.RouterOptions{
		ForceSyncPerMinute: a.cfg.ForceSyncRatePerMin,
		StatsCacheTTL:      a.cfg.StatsCacheTTL,
		StatsCache:         a.stats,
		AllowedOrigins:     a.cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runSyncOnce(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.sync.RunSync(ctx, models.TriggerManual)
	fmt.Println(res.Message)
	fmt.Printf("total=%d created=%d updated=%d skipped=%d errors=%d\n",
		res.Stats.Total, res.Stats.Created, res.Stats.Updated, res.Stats.Skipped, res.Stats.Errors)
	if !res.Success {
		return errors.New("sync finished with errors")
	}
	return nil
}

func runSyncStatus(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.sync.SyncStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Enabled: %t\n", status.Enabled)
	fmt.Printf("Interval: %d min\n", status.SyncInterval)
	if status.LastSync != nil {
		fmt.Printf("Last sync: %s\n", status.LastSync.Format(time.DateTime))
	} else {
		fmt.Println("Last sync: never")
	}

	entries, err := a.store.History.Recent(ctx, 10)
	if err != nil {
		return err
	}
	fmt.Println("----------------------------------")
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-9s success=%t duration=%dms", e.Timestamp.Format(time.DateTime), e.Type, e.Success, e.Duration)
		if e.Stats != nil {
			line += fmt.Sprintf(" total=%d created=%d updated=%d errors=%d", e.Stats.Total, e.Stats.Created, e.Stats.Updated, e.Stats.Errors)
		}
		if e.Error != "" {
			line += " error=" + e.Error
		}
		fmt.Println(line)
	}
	return nil
}

func runShowIntegration(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := a.store.Integration.Get(ctx)
	if err != nil {
		return err
	}
	return printJSON(cfg.Redacted())
}

func runTestConnection(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := a.store.Integration.Get(ctx)
	if err != nil {
		return err
	}
	res := a.source.TestConnection(ctx, cfg)
	fmt.Println(res.Message)
	if !res.Success {
		return errors.New("connection test failed")
	}
	return nil
}

func runTestTransformation(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := a.store.Integration.Get(ctx)
	if err != nil {
		return err
	}
	mappings, err := a.store.Mappings.ListActive(ctx)
	if err != nil {
		return err
	}
	preview := etl.TestTransformation(cfg, mappings)
	if err := printJSON(preview); err != nil {
		return err
	}
	if !preview.Success {
		return errors.New(preview.Message)
	}
	return nil
}

func runMappingImport(ctx context.Context, opts *rootOptions, importOpts *importOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Infof("Attempting to load mapping file: %s", importOpts.File)
	mappings, err := config.LoadMapping(importOpts.File)
	if err != nil {
		return err
	}

	res, err := a.store.Mappings.Import(ctx, mappings)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d mappings: %d new, %d modified, %d invalid\n",
		len(mappings), res.Upserted, res.Modified, len(res.Invalid))
	for _, msg := range res.Invalid {
		fmt.Println("  invalid:", msg)
	}
	return nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
