// Package store reads and writes the tool-crib flat files: the primary tool
// list, its per-toolbox overlay, the fixture-tool list, the user list and the
// drawer grid configuration. Every collection is cached after the first load
// and written back only through explicit save calls.
//
// A Store is not safe for concurrent use.
package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"toolcrib/internal/core"
	"toolcrib/pkg/domain"
)

// Default file names.
const (
	DefaultToolsFile = "werkzeuge.csv"
	DefaultUsersFile = "users.csv"
	OverlayFile      = "WKZKästen.csv"
	FixtureFile      = "ruestwerkzeuge.csv"
	DrawerConfigFile = "drawer_config.json"
)

// Paths locates the files backing a Store.
type Paths struct {
	Tools        string
	Overlay      string
	Fixtures     string
	Users        string
	DrawerConfig string
}

// DefaultPaths places the overlay, fixture and drawer files next to the
// primary tools file.
func DefaultPaths(toolsPath, usersPath string) Paths {
	dir := filepath.Dir(toolsPath)
	return Paths{
		Tools:        toolsPath,
		Overlay:      filepath.Join(dir, OverlayFile),
		Fixtures:     filepath.Join(dir, FixtureFile),
		Users:        usersPath,
		DrawerConfig: filepath.Join(dir, DrawerConfigFile),
	}
}

// MetricsRecorder observes store operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Archiver receives the bytes of every successfully written file.
type Archiver interface {
	Snapshot(ctx context.Context, name string, payload []byte) error
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder sets the recorder observing load and save operations.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithArchiver snapshots every written file into a.
func WithArchiver(a Archiver) Option {
	return func(s *Store) {
		if a != nil {
			s.archive = a
		}
	}
}

// WithRulesEngine replaces the engine consulted before fixture-tool writes.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(s *Store) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// Store owns the cached collections and the observed file headers.
type Store struct {
	paths   Paths
	logger  *slog.Logger
	metrics MetricsRecorder
	archive Archiver
	engine  *domain.RulesEngine

	toolColumns    []string
	overlayColumns []string

	tools    []domain.Tool
	fixtures []domain.FixtureTool
	users    []domain.UserAccount
	drawers  domain.DrawerConfig
}

// New constructs a Store over paths. Without WithRulesEngine the default
// rule set is used.
func New(paths Paths, opts ...Option) *Store {
	s := &Store{
		paths:   paths,
		logger:  slog.New(slog.DiscardHandler),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = core.NewDefaultRulesEngine()
	}
	return s
}

// Paths returns the files backing the store.
func (s *Store) Paths() Paths { return s.paths }

// RulesEngine returns the engine consulted before fixture-tool writes.
func (s *Store) RulesEngine() *domain.RulesEngine { return s.engine }

// ClearCache forces the next load of tools, fixture tools and users to read
// from disk. The drawer configuration cache is kept.
func (s *Store) ClearCache() {
	s.tools = nil
	s.fixtures = nil
	s.users = nil
}

func (s *Store) observe(ctx context.Context, operation string, start time.Time, err error) {
	s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}
