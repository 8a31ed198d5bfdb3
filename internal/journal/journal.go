// Package journal records inventory movements: machine loads and unloads,
// toolbox resets, fixture stock changes and catalogue edits. Entries are
// append-only.
package journal

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a journal entry.
type Kind string

// Entry kinds.
const (
	KindMachineLoad    Kind = "machine_load"
	KindMachineUnload  Kind = "machine_unload"
	KindToolboxReset   Kind = "toolbox_reset"
	KindStockTake      Kind = "stock_take"
	KindStockReturn    Kind = "stock_return"
	KindToolAdded      Kind = "tool_added"
	KindToolUpdated    Kind = "tool_updated"
	KindToolDeleted    Kind = "tool_deleted"
	KindFixtureAdded   Kind = "fixture_added"
	KindFixtureUpdated Kind = "fixture_updated"
	KindFixtureDeleted Kind = "fixture_deleted"
)

// Entry is one recorded movement. Slot is 1-based and zero when the
// movement is not tied to a toolbox.
type Entry struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	ToolID     string    `json:"tool_id"`
	ToolName   string    `json:"tool_name,omitempty"`
	Slot       int       `json:"slot,omitempty"`
	Machine    string    `json:"machine,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Filter narrows List results. Zero fields match everything; Limit keeps the
// most recent entries.
type Filter struct {
	ToolID string
	Kind   Kind
	Since  time.Time
	Limit  int
}

// Journal persists entries.
type Journal interface {
	// Record stores e, assigning an id, timestamp and actor when missing,
	// and returns the stored entry.
	Record(ctx context.Context, e Entry) (Entry, error)
	// List returns matching entries oldest first.
	List(ctx context.Context, f Filter) ([]Entry, error)
	Close() error
}

type actorKey struct{}

// WithActor attaches the acting user to ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor attached by WithActor.
func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// prepare completes e before it is stored.
func prepare(ctx context.Context, e Entry, now func() time.Time) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = now()
	}
	e.OccurredAt = e.OccurredAt.UTC()
	if e.Actor == "" {
		e.Actor = ActorFrom(ctx)
	}
	return e
}

func (f Filter) match(e Entry) bool {
	if f.ToolID != "" && e.ToolID != f.ToolID {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if !f.Since.IsZero() && e.OccurredAt.Before(f.Since) {
		return false
	}
	return true
}

// apply sorts entries oldest first and applies f. Entries with equal
// timestamps keep their input order.
func (f Filter) apply(entries []Entry) []Entry {
	out := slices.DeleteFunc(slices.Clone(entries), func(e Entry) bool { return !f.match(e) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// Discard drops every entry.
var Discard Journal = discard{}

type discard struct{}

func (discard) Record(ctx context.Context, e Entry) (Entry, error) {
	return prepare(ctx, e, time.Now), nil
}
func (discard) List(context.Context, Filter) ([]Entry, error) { return nil, nil }
func (discard) Close() error                                  { return nil }
