package inventory

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"toolcrib/internal/journal"
	"toolcrib/internal/store"
	"toolcrib/pkg/domain"
	"toolcrib/testutil"
)

func TestAvailableForToolboxSortsByPosition(t *testing.T) {
	f := newFixture(t)
	tools, err := f.svc.AvailableForToolbox(context.Background(), 1)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	want := []string{"105", "102", "101", "104"}
	if got := toolIDs(tools); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if _, err := f.svc.AvailableForToolbox(context.Background(), 5); !errors.Is(err, domain.ErrSlotOutOfRange) {
		t.Fatalf("expected slot range error, got %v", err)
	}
}

func TestMoveToMachineAndBack(t *testing.T) {
	f := newFixture(t, WithMachines("Hermle40", "Evo60"))
	ctx := journal.WithActor(context.Background(), "Bediener")

	if err := f.svc.MoveToMachine(ctx, 2, "Hermle40", "101", "105"); err != nil {
		t.Fatalf("move: %v", err)
	}
	f.store.ClearCache()
	contents := f.svc.MachineContents(ctx, "Hermle40")
	if len(contents) != 2 || contents[0].Tool.ID != "101" || contents[1].Tool.ID != "105" || contents[0].Slot != 2 {
		t.Fatalf("unexpected machine contents %+v", contents)
	}
	loaded := contents[0].Tool
	if loaded.Status != domain.StatusFixtureSet {
		t.Fatalf("main status must not change, got %q", loaded.Status)
	}
	if s := loaded.Slots[1]; s.Status != domain.StatusMachine || s.SavedStatus != domain.StatusFixtureSet {
		t.Fatalf("unexpected slot %+v", s)
	}
	if loaded.Machine != "Hermle40" || loaded.OriginCabinet != "Werkzeugkasten 2" {
		t.Fatalf("legacy fields not set: %+v", loaded)
	}
	avail, _ := f.svc.AvailableForToolbox(ctx, 2)
	if slices.Contains(toolIDs(avail), "101") {
		t.Fatalf("loaded tool must not be available in slot 2")
	}
	avail, _ = f.svc.AvailableForToolbox(ctx, 1)
	if !slices.Contains(toolIDs(avail), "101") {
		t.Fatalf("slot 1 is independent of slot 2")
	}
	if got := f.svc.Assignments(ctx); len(got["Hermle40"]) != 2 {
		t.Fatalf("unexpected assignments %+v", got)
	}

	if err := f.svc.ReturnToToolbox(ctx, SlotRef{ToolID: "101", Slot: 2}); err != nil {
		t.Fatalf("return: %v", err)
	}
	back, _ := f.svc.FindTool(ctx, "101")
	if back.Slots[1] != (domain.Slot{Status: domain.StatusFixtureSet}) || back.Machine != "" {
		t.Fatalf("slot not restored: %+v", back)
	}

	entries, err := f.journal.List(ctx, journal.Filter{ToolID: "101"})
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != journal.KindMachineLoad || entries[1].Kind != journal.KindMachineUnload {
		t.Fatalf("unexpected journal %+v", entries)
	}
	if entries[0].Actor != "Bediener" || entries[1].Machine != "Hermle40" {
		t.Fatalf("journal entries incomplete %+v", entries)
	}
}

func TestMoveToMachineIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var nf ErrNotFound
	if err := f.svc.MoveToMachine(ctx, 1, "Evo60", "101", "999"); !errors.As(err, &nf) || nf.ID != "999" {
		t.Fatalf("expected not found, got %v", err)
	}
	f.store.ClearCache()
	if len(f.svc.MachineContents(ctx, "Evo60")) != 0 {
		t.Fatalf("nothing must be saved when a tool is missing")
	}
	if err := f.svc.MoveToMachine(ctx, 1, "Evo60", "101"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := f.svc.MoveToMachine(ctx, 1, "Hermle40", "101"); !errors.Is(err, domain.ErrSlotInMachine) {
		t.Fatalf("expected slot in machine error, got %v", err)
	}
	if err := f.svc.ReturnToToolbox(ctx, SlotRef{ToolID: "101", Slot: 3}); !errors.Is(err, domain.ErrSlotNotInMachine) {
		t.Fatalf("expected slot not in machine error, got %v", err)
	}
	if err := f.svc.ReturnToToolbox(ctx, SlotRef{ToolID: "101", Slot: 9}); !errors.Is(err, domain.ErrSlotOutOfRange) {
		t.Fatalf("expected slot range error, got %v", err)
	}
}

func TestMoveToMachineRejectsUnknownMachine(t *testing.T) {
	f := newFixture(t, WithMachines("Hermle40"))
	if err := f.svc.MoveToMachine(context.Background(), 1, "DMU 50", "101"); err == nil || !strings.Contains(err.Error(), "unknown machine") {
		t.Fatalf("expected unknown machine error, got %v", err)
	}
	if got := f.svc.Machines(); len(got) != 1 || got[0] != "Hermle40" {
		t.Fatalf("unexpected machines %v", got)
	}
}

func TestResetToolboxes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.MoveToMachine(ctx, 1, "Evo60", "101", "102"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := f.svc.ResetToolboxes(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	f.store.ClearCache()
	for _, tool := range f.svc.Tools(ctx) {
		if tool.InAnyMachine() || tool.Machine != "" || tool.OriginCabinet != "" {
			t.Fatalf("tool %s not reset: %+v", tool.ID, tool)
		}
	}
	resets, _ := f.journal.List(ctx, journal.Filter{Kind: journal.KindToolboxReset})
	if len(resets) != 1 || resets[0].Quantity != 5 {
		t.Fatalf("unexpected reset journal %+v", resets)
	}
}

func TestAddUpdateDeleteTool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.AddTool(ctx, domain.Tool{Name: "no id"}); !errors.Is(err, ErrToolIDRequired) {
		t.Fatalf("expected id required, got %v", err)
	}
	ok, err := f.svc.AddTool(ctx, domain.Tool{ID: "101", Name: "duplicate"})
	if err != nil || ok {
		t.Fatalf("duplicate add should return false, got %v %v", ok, err)
	}
	ok, err = f.svc.AddTool(ctx, domain.Tool{ID: "200", Name: "Schaftfräser D12", Status: domain.StatusFree, StoragePosition: "40"})
	if err != nil || !ok {
		t.Fatalf("add: %v %v", ok, err)
	}
	tool := domain.Tool{ID: "200", Name: "Schaftfräser D12", Status: domain.StatusFixtureSet, StoragePosition: "41"}
	if ok, err := f.svc.UpdateTool(ctx, tool); err != nil || !ok {
		t.Fatalf("update: %v %v", ok, err)
	}
	if ok, err := f.svc.UpdateTool(ctx, domain.Tool{ID: "nope"}); err != nil || ok {
		t.Fatalf("update unknown: %v %v", ok, err)
	}
	f.store.ClearCache()
	got, found := f.svc.FindTool(ctx, "200")
	if !found || got.Status != domain.StatusFixtureSet || got.StoragePosition != "41" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if ok, err := f.svc.DeleteTool(ctx, "200"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := f.svc.DeleteTool(ctx, "200"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	entries, _ := f.journal.List(ctx, journal.Filter{ToolID: "200"})
	kinds := make([]journal.Kind, len(entries))
	for i, e := range entries {
		kinds[i] = e.Kind
	}
	if want := []journal.Kind{journal.KindToolAdded, journal.KindToolUpdated, journal.KindToolDeleted}; !slices.Equal(kinds, want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
}

func TestAddFixtureStatusToolRegistersFixture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ok, err := f.svc.AddTool(ctx, domain.Tool{ID: "R9", Name: "Spannmittel", Status: domain.StatusFixtureTool})
	if err != nil || !ok {
		t.Fatalf("add: %v %v", ok, err)
	}
	f.store.ClearCache()
	var fx domain.FixtureTool
	for _, candidate := range f.svc.FixtureTools(ctx) {
		if candidate.ID == "R9" {
			fx = candidate
		}
	}
	if fx.ID != "R9" || !fx.IsUnassigned() || fx.Stock != 0 {
		t.Fatalf("expected unassigned fixture tool, got %+v", fx)
	}
	overlay := string(testutil.ReadFile(t, f.store.Paths().Overlay))
	if strings.Contains(overlay, "Spannmittel") {
		t.Fatalf("fixture-status tools must not be written to the overlay")
	}
}

func TestSearchTools(t *testing.T) {
	drill := domain.Tool{ID: "102", Name: "Bohrer D5", Status: domain.StatusFree, StoragePosition: "A3"}
	drill.Attributes.Set("Hersteller", "Gühring")
	loaded := domain.Tool{ID: "101", Name: "Fräser D10", Status: domain.StatusFixtureSet, StoragePosition: "12"}
	loaded.Slots[2] = domain.Slot{Status: domain.StatusMachine, Machine: "Evo60", SavedStatus: domain.StatusFixtureSet}
	tools := []domain.Tool{loaded, drill}

	if got := SearchTools(tools, "", ""); len(got) != 2 {
		t.Fatalf("empty query should return all, got %d", len(got))
	}
	if got := SearchTools(tools, "fräser", ""); len(got) != 1 || got[0].ID != "101" {
		t.Fatalf("name search failed: %+v", got)
	}
	if got := SearchTools(tools, "a3", ""); len(got) != 1 || got[0].ID != "102" {
		t.Fatalf("position search failed: %+v", got)
	}
	if got := SearchTools(tools, "102", ""); len(got) != 1 {
		t.Fatalf("id search failed: %+v", got)
	}
	if got := SearchTools(tools, "GÜHRING", ""); len(got) != 1 || got[0].ID != "102" {
		t.Fatalf("attribute search failed: %+v", got)
	}
	if got := SearchTools(tools, "evo", ""); len(got) != 1 || got[0].ID != "101" {
		t.Fatalf("machine search failed: %+v", got)
	}
	if got := SearchTools(tools, "", "GERÜSTET"); len(got) != 1 || got[0].ID != "101" {
		t.Fatalf("status filter failed: %+v", got)
	}
	if got := SearchTools(tools, "bohrer", domain.StatusFixtureSet); len(got) != 0 {
		t.Fatalf("status filter must combine with query: %+v", got)
	}
}

func TestMachineContentsBlankName(t *testing.T) {
	f := newFixture(t)
	if got := f.svc.MachineContents(context.Background(), ""); got != nil {
		t.Fatalf("blank machine must match nothing, got %d entries", len(got))
	}
	if got := f.svc.MachineContents(context.Background(), "  "); got != nil {
		t.Fatalf("whitespace machine must match nothing, got %d entries", len(got))
	}
}

func TestSortByPosition(t *testing.T) {
	tools := []domain.Tool{
		{ID: "e", StoragePosition: ""},
		{ID: "d", StoragePosition: "B1"},
		{ID: "c", StoragePosition: "10"},
		{ID: "b", StoragePosition: "2,5"},
		{ID: "a", StoragePosition: "2"},
		{ID: "f", StoragePosition: "NaN"},
	}
	SortByPosition(tools)
	want := []string{"a", "b", "c", "d", "f", "e"}
	if got := toolIDs(tools); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestJournalFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, WithJournal(failingJournal{}))
	if err := f.svc.MoveToMachine(context.Background(), 1, "Evo60", "101"); err != nil {
		t.Fatalf("move should succeed despite journal failure: %v", err)
	}
	if !strings.Contains(f.logs.String(), "journal record failed") {
		t.Fatalf("expected journal failure to be logged, got %q", f.logs.String())
	}
}

func TestSaveFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := testutil.WriteFile(t, dir, "blocker", []byte("not a directory"))
	toolsPath := filepath.Join(blocker, store.DefaultToolsFile)
	svc := NewService(store.New(store.DefaultPaths(toolsPath, filepath.Join(dir, store.DefaultUsersFile))))
	if _, err := svc.AddTool(context.Background(), domain.Tool{ID: "1"}); err == nil {
		t.Fatalf("expected save error")
	}
}

type failingJournal struct{}

func (failingJournal) Record(context.Context, journal.Entry) (journal.Entry, error) {
	return journal.Entry{}, errors.New("journal down")
}
func (failingJournal) List(context.Context, journal.Filter) ([]journal.Entry, error) { return nil, nil }
func (failingJournal) Close() error                                                  { return nil }
