package domain

import "strings"

// Status is the main or per-slot state of a tool. The four canonical values
// are listed below; any other value read from disk is carried unchanged.
type Status string

// Canonical statuses.
const (
	StatusFree        Status = "frei"
	StatusMachine     Status = "maschine"
	StatusFixtureSet  Status = "gerüstet"
	StatusFixtureTool Status = "Rüstwerkzeuge"
)

// statusSpelling maps a canonical status to the spelling written on disk and
// the upper-cased spellings accepted when reading.
type statusSpelling struct {
	canonical Status
	disk      string
	accepts   []string
}

// The on-disk spelling MASCHIENE is historical and must be preserved.
var statusSpellings = []statusSpelling{
	{canonical: StatusMachine, disk: "MASCHIENE", accepts: []string{"MASCHIENE"}},
	{canonical: StatusFixtureSet, disk: "GERÜSTET", accepts: []string{"GERÜSTET"}},
	{canonical: StatusFixtureTool, disk: "RÜSTWERKZEUG", accepts: []string{"RÜSTWERKZEUG", "RÜSTWERKZEUGE"}},
}

// ParseStatus normalizes a raw status read from disk. Recognized synonyms
// map case-insensitively to their canonical value; anything else is
// returned trimmed but otherwise unchanged.
func ParseStatus(raw string) Status {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)
	for _, sp := range statusSpellings {
		for _, accepted := range sp.accepts {
			if upper == accepted {
				return sp.canonical
			}
		}
	}
	return Status(trimmed)
}

// DiskValue returns the spelling written to the primary tools file.
func (s Status) DiskValue() string {
	for _, sp := range statusSpellings {
		if s == sp.canonical {
			return sp.disk
		}
	}
	return string(s)
}

// Known reports whether s is one of the canonical statuses.
func (s Status) Known() bool {
	switch s {
	case StatusFree, StatusMachine, StatusFixtureSet, StatusFixtureTool:
		return true
	}
	return false
}

// Is compares two statuses after normalizing both, ignoring case.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(string(ParseStatus(string(s))), string(ParseStatus(string(other))))
}

// IsMachine reports whether s denotes "loaded into a machine".
func (s Status) IsMachine() bool { return s.Is(StatusMachine) }
