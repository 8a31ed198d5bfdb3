// Package app wires the configured components into a running toolcrib
// instance.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"toolcrib/internal/archive"
	"toolcrib/internal/auth"
	"toolcrib/internal/blob"
	"toolcrib/internal/config"
	"toolcrib/internal/inventory"
	"toolcrib/internal/journal"
	"toolcrib/internal/logs"
	"toolcrib/internal/metrics"
	"toolcrib/internal/store"
)

// App holds the wired components.
type App struct {
	Config   config.Config
	Logger   *logs.Logger
	Registry *prometheus.Registry // nil unless metrics are prometheus
	Metrics  store.MetricsRecorder
	Archive  *archive.Archive // nil when snapshots are disabled
	Journal  journal.Journal
	Store    *store.Store
	Service  *inventory.Service
	Gate     *auth.Gate
}

// Option customizes Open.
type Option func(*options)

type options struct {
	terminal io.Writer
}

// WithTerminal sends human-readable log output to w instead of stderr.
func WithTerminal(w io.Writer) Option {
	return func(o *options) { o.terminal = w }
}

// Open builds every component described by cfg. On error the components
// opened so far are released.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Journal: journal.Discard}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.Logger, err = logs.New(logs.Options{Level: cfg.LogLevel, File: cfg.LogFile, Terminal: o.terminal}); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger := a.Logger.Logger

	if err = a.openMetrics(); err != nil {
		return nil, err
	}
	if err = a.openArchive(ctx); err != nil {
		return nil, err
	}
	if err = a.openJournal(ctx); err != nil {
		return nil, err
	}

	storeOpts := []store.Option{store.WithLogger(logger), store.WithMetricsRecorder(a.Metrics)}
	if a.Archive != nil {
		storeOpts = append(storeOpts, store.WithArchiver(a.Archive))
	}
	a.Store = store.New(store.DefaultPaths(cfg.ToolsFile, cfg.UsersFile), storeOpts...)
	a.Service = inventory.NewService(a.Store,
		inventory.WithJournal(a.Journal),
		inventory.WithLogger(logger),
		inventory.WithMachines(cfg.Machines...),
	)
	a.Gate = auth.NewGate(a.Store, logger)

	logger.Info("toolcrib opened",
		"tools", cfg.ToolsFile,
		"users", cfg.UsersFile,
		"metrics", cfg.Metrics,
		"archive", cfg.Archive.Driver,
		"journal", cfg.Journal.Driver,
	)
	return a, nil
}

func (a *App) openMetrics() error {
	switch a.Config.Metrics {
	case "prometheus":
		a.Registry = prometheus.NewRegistry()
		p, err := metrics.NewPrometheus(a.Registry)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		a.Metrics = p
	case "expvar":
		a.Metrics = metrics.NewExpvar("")
	default:
		a.Metrics = metrics.Discard{}
	}
	return nil
}

func (a *App) openArchive(ctx context.Context) error {
	ac := a.Config.Archive
	if ac.Driver == "" || ac.Driver == "none" {
		return nil
	}
	bs, err := blob.Open(ctx, blob.Config{
		Driver: blob.Driver(ac.Driver),
		FSRoot: ac.FSRoot,
		S3: blob.S3Config{
			Region:          ac.S3.Region,
			Bucket:          ac.S3.Bucket,
			Endpoint:        ac.S3.Endpoint,
			AccessKeyID:     ac.S3.AccessKeyID,
			SecretAccessKey: ac.S3.SecretAccessKey,
			PathStyle:       ac.S3.UsePathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	a.Archive = archive.New(bs, ac.Keep)
	return nil
}

func (a *App) openJournal(ctx context.Context) error {
	jc := a.Config.Journal
	var (
		j   journal.Journal
		err error
	)
	switch jc.Driver {
	case "sqlite":
		j, err = journal.OpenSQLite(ctx, jc.SQLitePath)
	case "postgres":
		j, err = journal.OpenPostgres(ctx, jc.PostgresDSN)
	case "memory":
		j = journal.NewMemory()
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	a.Journal = j
	return nil
}

// Close releases the journal and the log file.
func (a *App) Close() error {
	var errs []error
	if a.Journal != nil {
		errs = append(errs, a.Journal.Close())
	}
	if a.Logger != nil {
		errs = append(errs, a.Logger.Close())
	}
	return errors.Join(errs...)
}
