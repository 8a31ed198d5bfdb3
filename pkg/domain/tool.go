package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ToolboxSlots is the number of toolboxes a tool can be tracked in.
const ToolboxSlots = 4

// Slot transition errors.
var (
	ErrSlotOutOfRange   = errors.New("toolbox slot out of range")
	ErrSlotInMachine    = errors.New("toolbox slot already loaded into a machine")
	ErrSlotNotInMachine = errors.New("toolbox slot is not loaded into a machine")
	ErrMachineRequired  = errors.New("machine name required")
)

// Slot is the per-toolbox overlay of a tool.
//
// A slot is idle when Machine is empty and Status is not "maschine". While a
// slot is loaded, Machine names the machine and SavedStatus holds the status
// the slot had before loading. An empty Status means "derived from the
// tool's main status".
type Slot struct {
	Status      Status
	Machine     string
	SavedStatus Status
}

// InMachine reports whether the slot is loaded into a machine.
func (s Slot) InMachine() bool {
	return s.Machine != "" || s.Status.IsMachine()
}

// Tool is a general tool record.
type Tool struct {
	ID              string
	Name            string
	Status          Status
	StoragePosition string
	Slots           [ToolboxSlots]Slot
	// Machine and OriginCabinet are the legacy single-toolbox fields.
	Machine       string
	OriginCabinet string
	Attributes    Attributes
}

// Clone returns a deep copy of the tool.
func (t Tool) Clone() Tool {
	t.Attributes = t.Attributes.Clone()
	return t
}

// Slot returns the overlay for the 1-based toolbox slot.
func (t Tool) Slot(slot int) (Slot, error) {
	if err := checkSlot(slot); err != nil {
		return Slot{}, err
	}
	return t.Slots[slot-1], nil
}

// SlotStatus returns the effective status of the 1-based toolbox slot,
// falling back to the main status when no overlay is recorded.
func (t Tool) SlotStatus(slot int) Status {
	if checkSlot(slot) != nil {
		return t.Status
	}
	if s := t.Slots[slot-1].Status; s != "" {
		return s
	}
	return t.Status
}

// InAnyMachine reports whether any toolbox slot is loaded into a machine.
func (t Tool) InAnyMachine() bool {
	for _, s := range t.Slots {
		if s.InMachine() {
			return true
		}
	}
	return false
}

// LoadIntoMachine moves the tool from the given toolbox slot into machine,
// remembering the slot's current status for the return trip.
func (t *Tool) LoadIntoMachine(slot int, machine string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	machine = strings.TrimSpace(machine)
	if machine == "" {
		return ErrMachineRequired
	}
	s := &t.Slots[slot-1]
	if s.InMachine() {
		return fmt.Errorf("%w: slot %d holds %q", ErrSlotInMachine, slot, s.Machine)
	}
	s.SavedStatus = t.SlotStatus(slot)
	s.Status = StatusMachine
	s.Machine = machine
	t.Machine = machine
	t.OriginCabinet = ToolboxLabel(slot)
	return nil
}

// UnloadFromMachine returns the tool from its machine to the given toolbox
// slot, restoring the remembered status. The legacy machine field is cleared
// once no slot remains loaded.
func (t *Tool) UnloadFromMachine(slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	s := t.Slots[slot-1]
	if !s.InMachine() {
		return fmt.Errorf("%w: slot %d", ErrSlotNotInMachine, slot)
	}
	restored := s.SavedStatus
	if restored == "" {
		restored = t.Status
	}
	t.Slots[slot-1] = Slot{Status: restored}
	if !t.InAnyMachine() {
		t.Machine = ""
	}
	return nil
}

// ResetToolboxes clears every slot overlay and the legacy fields. A main
// status of "maschine" becomes "frei".
func (t *Tool) ResetToolboxes() {
	t.Slots = [ToolboxSlots]Slot{}
	if t.Status.IsMachine() {
		t.Status = StatusFree
	}
	t.Machine = ""
	t.OriginCabinet = ""
}

// ToolboxLabel names a toolbox slot the way it is recorded in the origin
// column.
func ToolboxLabel(slot int) string {
	return fmt.Sprintf("Werkzeugkasten %d", slot)
}

func checkSlot(slot int) error {
	if slot < 1 || slot > ToolboxSlots {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	return nil
}
