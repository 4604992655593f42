package app

import (
	"context"
	"log/slog"
	"time"

	"CampaignIndexer/internal/config"
	"CampaignIndexer/internal/identity"
	"CampaignIndexer/internal/index"
	"CampaignIndexer/internal/infrastructure/scheduler"
	"CampaignIndexer/internal/infrastructure/source"
	"CampaignIndexer/internal/infrastructure/storage"
	"CampaignIndexer/internal/infrastructure/telegram"
	"CampaignIndexer/internal/logging"
	"CampaignIndexer/internal/normalize"
	"CampaignIndexer/internal/ports"
	"CampaignIndexer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a minimal runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.JSON)
	}

	fileSource := source.NewFileSource(cfg.Inputs.Dir, cfg.Inputs.Pattern,
		baseLogger.With("component", "source"))
	store := storage.NewFileStore(
		cfg.Artifacts.BaselineDir,
		cfg.Artifacts.DeltaDir,
		cfg.Artifacts.IndexPath,
		cfg.Artifacts.LightPath,
		baseLogger.With("component", "storage"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     fileSource,
		Baselines:  store,
		Artifacts:  store,
		Notifier:   notifier,
		Normalizer: normalize.New(baseLogger.With("component", "normalizer")),
		Resolver:   identity.NewResolver(cfg.URLPatterns()),
		Builder:    index.NewBuilder(cfg.SiteNames(), cfg.PointRates()),
		Logger:     baseLogger.With("component", "pipeline"),
	})
	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}
}

// Run executes the pipeline once, or keeps it running on the configured
// interval in daemon mode. The Postgres mirror attaches only when a DSN is
// configured, so a local run needs no database.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if dsn := a.cfg.Database.DSN; dsn != "" {
		db, err := storage.Open(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		a.pipeline.AttachRepository(storage.NewPostgresRepository(db))
	}

	if !a.cfg.Scheduler.Daemon {
		now := time.Now().In(a.cfg.Scheduler.Location())
		return a.pipeline.Run(ctx, now)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.IntervalDuration())
	runner := usecase.NewScheduler(driver, a.pipeline)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return runner.Stop(context.Background())
}
