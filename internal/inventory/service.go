// Package inventory implements the workshop operations on top of the record
// store: moving tools between toolboxes and machines, maintaining the tool
// catalogue, and taking or returning fixture tools. Every mutation is
// recorded in the movement journal.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"toolcrib/internal/journal"
	"toolcrib/internal/store"
	"toolcrib/pkg/domain"
)

// Operation errors.
var (
	ErrToolIDRequired = errors.New("tool id required")
	ErrOutOfStock     = errors.New("fixture tool out of stock")
)

// ErrNotFound reports a missing record.
type ErrNotFound struct {
	Entity domain.EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Option customizes a Service.
type Option func(*Service)

// WithJournal records movements into j.
func WithJournal(j journal.Journal) Option {
	return func(s *Service) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithLogger sets the logger used for journal failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMachines sets the machines tools can be loaded into. An empty list
// leaves machine names unrestricted.
func WithMachines(machines ...string) Option {
	return func(s *Service) { s.machines = slices.Clone(machines) }
}

// Service exposes the inventory operations.
type Service struct {
	store    *store.Store
	journal  journal.Journal
	logger   *slog.Logger
	machines []string
}

// NewService constructs a service backed by st.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:   st,
		journal: journal.Discard,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying record store.
func (s *Service) Store() *store.Store { return s.store }

// Machines returns the configured machine names.
func (s *Service) Machines() []string { return slices.Clone(s.machines) }

// Journal returns the movement journal.
func (s *Service) Journal() journal.Journal { return s.journal }

// record writes entries to the journal. Failures are logged and swallowed so
// a journal outage never undoes a saved change.
func (s *Service) record(ctx context.Context, entries ...journal.Entry) {
	for _, e := range entries {
		if _, err := s.journal.Record(ctx, e); err != nil {
			s.logger.Error("journal record failed", "kind", e.Kind, "tool", e.ToolID, "error", err)
		}
	}
}
