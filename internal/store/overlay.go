package store

import (
	"fmt"
	"slices"
	"sort"

	"toolcrib/pkg/domain"
)

// Column names of the primary tools file. Each concept accepts the spellings
// listed, first match wins.
var (
	idColumns       = []string{"WZ.Nr.", "ID"}
	nameColumn      = "Name"
	statusColumns   = []string{"Status", "STATUS"}
	positionColumns = []string{"Pos.", "Lagerplatz"}

	defaultToolColumns = []string{"WZ.Nr.", "Name", "Status", "Pos."}
)

// Overlay column names.
const (
	machineColumn       = "Maschine"
	originCabinetColumn = "Herkunft_Kasten"
)

func slotStatusColumn(slot int) string  { return fmt.Sprintf("Status_Box_%d", slot) }
func slotMachineColumn(slot int) string { return fmt.Sprintf("Maschine_Box_%d", slot) }
func slotSavedColumn(slot int) string   { return fmt.Sprintf("OriginalStatus_Box_%d", slot) }

func defaultOverlayColumns() []string {
	cols := []string{nameColumn, originCabinetColumn, machineColumn}
	for i := 1; i <= domain.ToolboxSlots; i++ {
		cols = append(cols, slotStatusColumn(i))
	}
	for i := 1; i <= domain.ToolboxSlots; i++ {
		cols = append(cols, slotMachineColumn(i))
	}
	for i := 1; i <= domain.ToolboxSlots; i++ {
		cols = append(cols, slotSavedColumn(i))
	}
	return cols
}

// isCoreColumn reports whether col maps onto a typed Tool field rather than
// the attribute bag.
func isCoreColumn(col string) bool {
	return col == nameColumn ||
		slices.Contains(idColumns, col) ||
		slices.Contains(statusColumns, col) ||
		slices.Contains(positionColumns, col)
}

// extractOverlay moves the slot and legacy columns out of the attribute bag
// into the typed fields, then fills missing slot statuses: "maschine" when a
// machine is recorded, else the main status.
func extractOverlay(t *domain.Tool) {
	take := func(key string) string {
		v := t.Attributes.Value(key)
		t.Attributes.Delete(key)
		return v
	}
	for i := 1; i <= domain.ToolboxSlots; i++ {
		s := domain.Slot{
			Status:      domain.Status(take(slotStatusColumn(i))),
			Machine:     take(slotMachineColumn(i)),
			SavedStatus: domain.Status(take(slotSavedColumn(i))),
		}
		if s.Status == "" {
			if s.Machine != "" {
				s.Status = domain.StatusMachine
			} else {
				s.Status = t.Status
			}
		}
		t.Slots[i-1] = s
	}
	t.Machine = take(machineColumn)
	t.OriginCabinet = take(originCabinetColumn)
}

// flattenTool returns every non-core value of t keyed by column, in a stable
// order: attributes first, then the overlay columns that carry a value.
func flattenTool(t domain.Tool) ([]string, map[string]string) {
	keys := t.Attributes.Keys()
	values := make(map[string]string, len(keys)+3*domain.ToolboxSlots+2)
	for _, k := range keys {
		values[k] = t.Attributes.Value(k)
	}
	add := func(key, value string) {
		if value == "" {
			return
		}
		if _, ok := values[key]; !ok {
			keys = append(keys, key)
		}
		values[key] = value
	}
	for i, s := range t.Slots {
		add(slotStatusColumn(i+1), string(s.Status))
		add(slotMachineColumn(i+1), s.Machine)
		add(slotSavedColumn(i+1), string(s.SavedStatus))
	}
	add(machineColumn, t.Machine)
	add(originCabinetColumn, t.OriginCabinet)
	return keys, values
}

// overlayColumnsFor computes the overlay header: previously known columns
// keep their order, new attribute keys that the primary file does not carry
// are appended sorted, and the join column leads.
func overlayColumnsFor(known, primary []string, tools []domain.Tool) []string {
	if len(known) == 0 {
		known = defaultOverlayColumns()
	}
	seen := make(map[string]bool, len(known))
	for _, c := range known {
		seen[c] = true
	}
	inPrimary := make(map[string]bool, len(primary))
	for _, c := range primary {
		inPrimary[c] = true
	}
	var added []string
	for _, t := range tools {
		keys, _ := flattenTool(t)
		for _, k := range keys {
			if k == nameColumn || inPrimary[k] || seen[k] {
				continue
			}
			seen[k] = true
			added = append(added, k)
		}
	}
	sort.Strings(added)
	out := make([]string, 0, len(known)+len(added)+1)
	out = append(out, nameColumn)
	for _, c := range known {
		if c != nameColumn {
			out = append(out, c)
		}
	}
	return append(out, added...)
}
