package inventory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"toolcrib/internal/journal"
	"toolcrib/pkg/domain"
)

// SlotRef names one toolbox slot of one tool.
type SlotRef struct {
	ToolID string
	Slot   int
}

// MachineEntry is a tool slot loaded into a machine.
type MachineEntry struct {
	Tool domain.Tool
	Slot int
}

// Tools returns the cached tool collection.
func (s *Service) Tools(ctx context.Context) []domain.Tool {
	return s.store.LoadTools(ctx, false)
}

// FindTool returns the tool with id.
func (s *Service) FindTool(ctx context.Context, id string) (domain.Tool, bool) {
	for _, t := range s.Tools(ctx) {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Tool{}, false
}

// MoveToMachine loads the given toolbox slot of every listed tool into
// machine and saves once. Nothing is saved when any tool fails to load.
func (s *Service) MoveToMachine(ctx context.Context, slot int, machine string, ids ...string) error {
	machine = strings.TrimSpace(machine)
	if len(s.machines) > 0 && !slices.Contains(s.machines, machine) {
		return fmt.Errorf("unknown machine %q", machine)
	}
	tools := s.Tools(ctx)
	entries := make([]journal.Entry, 0, len(ids))
	for _, id := range ids {
		idx := indexOfTool(tools, id)
		if idx < 0 {
			return ErrNotFound{Entity: domain.EntityTool, ID: id}
		}
		if err := tools[idx].LoadIntoMachine(slot, machine); err != nil {
			return fmt.Errorf("load tool %s: %w", id, err)
		}
		entries = append(entries, journal.Entry{Kind: journal.KindMachineLoad, ToolID: id, ToolName: tools[idx].Name, Slot: slot, Machine: machine})
	}
	if len(entries) == 0 {
		return nil
	}
	if err := s.store.SaveTools(ctx, tools); err != nil {
		return err
	}
	s.record(ctx, entries...)
	return nil
}

// ReturnToToolbox unloads every referenced slot, restoring the status it had
// before loading, and saves once.
func (s *Service) ReturnToToolbox(ctx context.Context, refs ...SlotRef) error {
	tools := s.Tools(ctx)
	entries := make([]journal.Entry, 0, len(refs))
	for _, ref := range refs {
		idx := indexOfTool(tools, ref.ToolID)
		if idx < 0 {
			return ErrNotFound{Entity: domain.EntityTool, ID: ref.ToolID}
		}
		machine := tools[idx].Slots[clampSlot(ref.Slot)].Machine
		if err := tools[idx].UnloadFromMachine(ref.Slot); err != nil {
			return fmt.Errorf("unload tool %s: %w", ref.ToolID, err)
		}
		entries = append(entries, journal.Entry{Kind: journal.KindMachineUnload, ToolID: ref.ToolID, ToolName: tools[idx].Name, Slot: ref.Slot, Machine: machine})
	}
	if len(entries) == 0 {
		return nil
	}
	if err := s.store.SaveTools(ctx, tools); err != nil {
		return err
	}
	s.record(ctx, entries...)
	return nil
}

// ResetToolboxes clears every toolbox overlay of every tool and saves.
func (s *Service) ResetToolboxes(ctx context.Context) error {
	tools := s.Tools(ctx)
	for i := range tools {
		tools[i].ResetToolboxes()
	}
	if err := s.store.SaveTools(ctx, tools); err != nil {
		return err
	}
	s.record(ctx, journal.Entry{Kind: journal.KindToolboxReset, Quantity: len(tools)})
	return nil
}

// AvailableForToolbox lists the set-up tools whose given slot is not loaded
// into a machine, ordered by storage position.
func (s *Service) AvailableForToolbox(ctx context.Context, slot int) ([]domain.Tool, error) {
	if slot < 1 || slot > domain.ToolboxSlots {
		return nil, fmt.Errorf("%w: %d", domain.ErrSlotOutOfRange, slot)
	}
	var out []domain.Tool
	for _, t := range s.Tools(ctx) {
		if !t.Status.Is(domain.StatusFixtureSet) || t.Slots[slot-1].InMachine() {
			continue
		}
		out = append(out, t)
	}
	SortByPosition(out)
	return out, nil
}

// MachineContents lists the tool slots loaded into machine, ordered by tool
// name. A blank machine name matches nothing.
func (s *Service) MachineContents(ctx context.Context, machine string) []MachineEntry {
	machine = strings.TrimSpace(machine)
	if machine == "" {
		return nil
	}
	var out []MachineEntry
	for _, t := range s.Tools(ctx) {
		for i, slot := range t.Slots {
			if slot.Machine == machine {
				out = append(out, MachineEntry{Tool: t, Slot: i + 1})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tool.Name < out[j].Tool.Name })
	return out
}

// Assignments groups every loaded slot by machine.
func (s *Service) Assignments(ctx context.Context) map[string][]MachineEntry {
	out := make(map[string][]MachineEntry)
	for _, t := range s.Tools(ctx) {
		for i, slot := range t.Slots {
			if slot.Machine != "" {
				out[slot.Machine] = append(out[slot.Machine], MachineEntry{Tool: t, Slot: i + 1})
			}
		}
	}
	for _, entries := range out {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Tool.Name < entries[j].Tool.Name })
	}
	return out
}

// AddTool appends tool and saves. It returns false without error when the id
// already exists. A tool with the fixture-tool status is also registered as
// an unassigned fixture tool without stock.
func (s *Service) AddTool(ctx context.Context, tool domain.Tool) (bool, error) {
	if strings.TrimSpace(tool.ID) == "" {
		return false, ErrToolIDRequired
	}
	tools := s.Tools(ctx)
	if indexOfTool(tools, tool.ID) >= 0 {
		return false, nil
	}
	if err := s.store.SaveTools(ctx, append(tools, tool)); err != nil {
		return false, err
	}
	s.record(ctx, journal.Entry{Kind: journal.KindToolAdded, ToolID: tool.ID, ToolName: tool.Name})
	if tool.Status.Is(domain.StatusFixtureTool) {
		if _, _, err := s.AddFixtureTool(ctx, domain.FixtureTool{ID: tool.ID, Name: tool.Name}); err != nil {
			return true, fmt.Errorf("register fixture tool: %w", err)
		}
	}
	return true, nil
}

// UpdateTool replaces the tool with the same id and saves. An unknown id
// returns false without error.
func (s *Service) UpdateTool(ctx context.Context, tool domain.Tool) (bool, error) {
	tools := s.Tools(ctx)
	idx := indexOfTool(tools, tool.ID)
	if idx < 0 {
		return false, nil
	}
	tools[idx] = tool
	if err := s.store.SaveTools(ctx, tools); err != nil {
		return false, err
	}
	s.record(ctx, journal.Entry{Kind: journal.KindToolUpdated, ToolID: tool.ID, ToolName: tool.Name})
	return true, nil
}

// DeleteTool removes the tool with id. It reports whether a tool was removed.
func (s *Service) DeleteTool(ctx context.Context, id string) (bool, error) {
	tool, found := s.FindTool(ctx, id)
	ok, err := s.store.DeleteTool(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	if found {
		s.record(ctx, journal.Entry{Kind: journal.KindToolDeleted, ToolID: id, ToolName: tool.Name})
	}
	return true, nil
}

// SearchTools returns the tools whose main status matches status and whose
// name, id, storage position, attribute values or machine assignments
// contain query, ignoring case. An empty status or query does not filter.
func SearchTools(tools []domain.Tool, query string, status domain.Status) []domain.Tool {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []domain.Tool
	for _, t := range tools {
		if status != "" && !t.Status.Is(status) {
			continue
		}
		if query == "" || toolMatches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

func toolMatches(t domain.Tool, query string) bool {
	fields := []string{t.ID, t.Name, t.StoragePosition, t.Machine, t.OriginCabinet}
	for _, slot := range t.Slots {
		fields = append(fields, slot.Machine)
	}
	for _, key := range t.Attributes.Keys() {
		fields = append(fields, t.Attributes.Value(key))
	}
	return slices.ContainsFunc(fields, func(v string) bool {
		return v != "" && strings.Contains(strings.ToLower(v), query)
	})
}

// SortByPosition orders tools by storage position: numeric positions
// (decimal comma allowed) by value first, then the rest as text, ties broken
// by id. An empty position sorts as "ZZZ".
func SortByPosition(tools []domain.Tool) {
	sort.SliceStable(tools, func(i, j int) bool {
		a, b := positionKeyOf(tools[i]), positionKeyOf(tools[j])
		switch {
		case a.less(b):
			return true
		case b.less(a):
			return false
		}
		return tools[i].ID < tools[j].ID
	})
}

type positionKey struct {
	numeric bool
	num     float64
	text    string
}

func positionKeyOf(t domain.Tool) positionKey {
	pos := strings.TrimSpace(t.StoragePosition)
	if pos == "" {
		pos = "ZZZ"
	}
	if n, err := strconv.ParseFloat(strings.Replace(pos, ",", ".", 1), 64); err == nil && !math.IsNaN(n) {
		return positionKey{numeric: true, num: n}
	}
	return positionKey{text: pos}
}

func (k positionKey) less(o positionKey) bool {
	if k.numeric != o.numeric {
		return k.numeric
	}
	if k.numeric {
		return k.num < o.num
	}
	return k.text < o.text
}

func indexOfTool(tools []domain.Tool, id string) int {
	return slices.IndexFunc(tools, func(t domain.Tool) bool { return t.ID == id })
}

// clampSlot maps a 1-based slot to an array index that is safe to read even
// for out-of-range input; the domain call reports the range error.
func clampSlot(slot int) int {
	return min(max(slot, 1), domain.ToolboxSlots) - 1
}
