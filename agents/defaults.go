package agents

import (
	"fmt"

	"nutriguide/catalog"
	"nutriguide/reasoning"
)

// Registrar is the part of the registry RegisterDefaults needs.
type Registrar interface {
	Register(Agent) error
}

// Deps are the collaborators shared by the default agents.
type Deps struct {
	Catalog *catalog.Catalog
	// Reasoner is optional. Without it the goal, food-knowledge and motivation agents
	// work from the catalog and built-in content.
	Reasoner reasoning.Reasoner
	Limits   SafetyLimits
}

// Defaults returns the thirteen agents in declared registration order.
func Defaults(deps Deps) []Agent {
	c := deps.Catalog
	if c == nil {
		c = catalog.Default()
	}
	return []Agent{
		NewRestrictionSafety(c),
		NewMedical(c),
		NewEmergencyRisk(deps.Limits),
		NewPreference(),
		NewFeedback(),
		NewGoal(c, deps.Reasoner),
		NewFoodKnowledge(c, deps.Reasoner),
		NewCultural(c),
		NewBudget(c),
		NewTiming(),
		NewSustainability(c),
		NewAdaptation(),
		NewMotivation(deps.Reasoner),
	}
}

// RegisterDefaults registers the default agents in declared order.
func RegisterDefaults(reg Registrar, deps Deps) error {
	for _, a := range Defaults(deps) {
		if err := reg.Register(a); err != nil {
			return fmt.Errorf("failed to register %s: %w", a.Spec().ID, err)
		}
	}
	return nil
}
