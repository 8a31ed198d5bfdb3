// Package domain defines the tool-crib records, the status vocabulary and the
// rule evaluation primitives shared by the record store and its callers.
package domain

import "strings"

// EntityType identifies the type of record a change or violation refers to.
type EntityType string

// Supported entity type identifiers used in Change records and violations.
const (
	// EntityTool identifies a general tool record.
	EntityTool EntityType = "tool"
	// EntityFixtureTool identifies a fixture tool stored in the drawer grid.
	EntityFixtureTool EntityType = "fixture_tool"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine write behavior and logging.
const (
	// SeverityBlock aborts the write.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows the write.
	SeverityWarn Severity = "warn"
)

// Change describes a mutation evaluated by the rules engine.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Blocking returns only the violations with block severity.
func (r Result) Blocking() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	blocking := e.Result.Blocking()
	if len(blocking) == 0 {
		return "write blocked by rules"
	}
	msgs := make([]string, 0, len(blocking))
	for _, v := range blocking {
		msgs = append(msgs, v.Message)
	}
	return "write blocked by rules: " + strings.Join(msgs, "; ")
}
