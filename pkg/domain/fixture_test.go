package domain

import "testing"

func TestLocationAvailable(t *testing.T) {
	tools := []FixtureTool{
		{ID: "R1", Location: Location{Cabinet: 1, Drawer: 2, Compartment: 3}},
		{ID: "R2"},
		{ID: "R3"},
	}
	taken := Location{Cabinet: 1, Drawer: 2, Compartment: 3}
	if LocationAvailable(tools, taken, "") {
		t.Fatalf("expected occupied location")
	}
	if !LocationAvailable(tools, taken, "R1") {
		t.Fatalf("expected location free when ignoring its occupant")
	}
	if !LocationAvailable(tools, Location{Cabinet: 1, Drawer: 2, Compartment: 4}, "") {
		t.Fatalf("expected free compartment")
	}
	if !LocationAvailable(tools, Location{}, "") {
		t.Fatalf("sentinel location must always be available")
	}
	occupant, ok := LocationOccupant(tools, taken, "R9")
	if !ok || occupant.ID != "R1" {
		t.Fatalf("unexpected occupant %+v %v", occupant, ok)
	}
}

func TestLocationString(t *testing.T) {
	loc := Location{Cabinet: 2, Drawer: 15, Compartment: 24}
	if loc.String() != "K2/L15/F24" {
		t.Fatalf("unexpected %q", loc.String())
	}
	if loc.IsUnassigned() || !(Location{}).IsUnassigned() {
		t.Fatalf("unexpected sentinel detection")
	}
}

func TestBelowMinimum(t *testing.T) {
	if !(FixtureTool{Stock: 1, MinStock: 2}).BelowMinimum() {
		t.Fatalf("expected below minimum")
	}
	if (FixtureTool{Stock: 2, MinStock: 2}).BelowMinimum() {
		t.Fatalf("expected at minimum to be fine")
	}
}
