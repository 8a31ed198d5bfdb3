package core

import (
	"context"
	"fmt"

	"toolcrib/pkg/domain"
)

// NewLocationUniqueRule returns the blocking rule that keeps every assigned
// drawer compartment occupied by at most one fixture tool.
func NewLocationUniqueRule() domain.Rule {
	return locationUniqueRule{}
}

type locationUniqueRule struct{}

func (locationUniqueRule) Name() string { return RuleLocationUnique }

func (locationUniqueRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	existing := view.ListFixtureTools()
	for _, tool := range changedFixtures(changes) {
		occupant, taken := domain.LocationOccupant(existing, tool.Location, tool.ID)
		if !taken {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleLocationUnique,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("storage location %s is already occupied by %s (%s)", tool.Location, occupant.Name, occupant.ID),
			Entity:   domain.EntityFixtureTool,
			EntityID: tool.ID,
		})
	}
	return res, nil
}
