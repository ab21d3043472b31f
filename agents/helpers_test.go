package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
)

// planDate is a Monday in January.
var planDate = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

var testCatalog = catalog.Default()

func baseProfile() nutriguide.UserProfile {
	return nutriguide.UserProfile{
		ID:            "p-1",
		Age:           30,
		Sex:           "male",
		HeightCM:      180,
		WeightKG:      80,
		ActivityLevel: "moderately active",
		Allergies:     []string{},
		Goals:         nutriguide.Goals{Type: nutriguide.GoalMaintenance},
	}
}

type reqOpts struct {
	noProfile bool
	phase     string
	draft     protocol.Fields
	candidate *nutriguide.NutritionPlan
}

func request(t *testing.T, profile nutriguide.UserProfile, opts reqOpts) protocol.Envelope {
	t.Helper()
	payload := protocol.Payload{protocol.KeyPlanDate: planDate}
	if !opts.noProfile {
		payload[protocol.KeyProfile] = profile
	}
	if opts.phase != "" {
		payload[protocol.KeyPhase] = opts.phase
	}
	if opts.draft != nil {
		payload[protocol.KeyDraft] = opts.draft
	}
	if opts.candidate != nil {
		payload[protocol.KeyCandidate] = *opts.candidate
	}
	env, err := protocol.NewRequest("req-1", "cycle-1", protocol.OrchestratorID, []string{"agent"}, protocol.PriorityNormal, payload)
	require.NoError(t, err)
	return env
}

// recipeItem builds a catalog item for a named built-in recipe.
func recipeItem(t *testing.T, name string) nutriguide.MealItem {
	t.Helper()
	r, ok := testCatalog.Recipe(name)
	require.True(t, ok, "unknown recipe %s", name)
	return testCatalog.Item(r.Name, r.Cuisine, r.Ingredients)
}

// candidate assembles a plan from slot/item pairs.
func candidate(items map[string]nutriguide.MealItem) *nutriguide.NutritionPlan {
	plan := &nutriguide.NutritionPlan{ProfileID: "p-1"}
	for _, slot := range nutriguide.SlotOrder {
		it, ok := items[slot]
		if !ok {
			continue
		}
		plan.Meals = append(plan.Meals, nutriguide.MealSlot{Slot: slot, Items: []nutriguide.MealItem{it}, Totals: it.Nutrition})
		plan.Totals = plan.Totals.Add(it.Nutrition)
	}
	return plan
}

// draftOf turns slot items into the draft fields a tier-3 agent receives.
func draftOf(items map[string]nutriguide.MealItem) protocol.Fields {
	d := protocol.Fields{}
	for slot, it := range items {
		d[nutriguide.SlotField(slot)] = it
	}
	return d
}

func notes(c protocol.Contribution, field string) []string {
	v, _ := c.Fields[field].([]string)
	return v
}
