package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/brunte71/mymaintlog/internal/config"
	"github.com/brunte71/mymaintlog/internal/notify"
	"github.com/brunte71/mymaintlog/internal/scheduler"
	"github.com/brunte71/mymaintlog/internal/storage/sqlite"
)

// App wires the reminder daemon: config, datastore handle, scheduler loop.
type App struct {
	version   string
	buildDate string
	log       *zap.Logger
	cfg       config.Config
	store     *sqlite.Store
	sched     *scheduler.Scheduler
}

// New builds the daemon. A nil notifier falls back to the log-only
// notifier; real deployments inject their SMTP transport here.
func New(version, buildDate string, notifier notify.Notifier, log *zap.Logger) (*App, error) {
	cfg := config.Load()
	store, err := sqlite.Open(cfg.DatabasePath, cfg.BusyTimeout)
	if err != nil {
		return nil, err
	}
	notifyCfg, err := config.LoadNotify(cfg.NotifyConfigPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if notifier == nil {
		notifier = notify.LogNotifier(log)
	}
	return &App{
		version:   version,
		buildDate: buildDate,
		log:       log,
		cfg:       cfg,
		store:     store,
		sched:     scheduler.New(store, notifier, notifyCfg, log),
	}, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = a.store.Close() }()

	a.log.Info("maintd started",
		zap.String("version", a.version),
		zap.String("build_date", a.buildDate),
		zap.String("db", a.cfg.DatabasePath),
		zap.Duration("poll_interval", a.cfg.PollInterval))

	err := a.sched.Run(ctx, a.cfg.PollInterval)
	if errors.Is(err, context.Canceled) {
		a.log.Info("maintd stopped")
		return nil
	}
	return err
}
