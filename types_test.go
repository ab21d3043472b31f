package nutriguide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfileHas(t *testing.T) {
	p := UserProfile{Age: 30, Allergies: []string{}, Preferences: Preferences{Cuisines: []string{"thai"}}}

	tests := []struct {
		field string
		want  bool
	}{
		{FieldAge, true},
		{FieldSex, false},
		{FieldAllergies, true},
		{FieldPreferences, true},
		{FieldCulture, true},
		{FieldBudget, false},
		{"unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Has(tt.field))
		})
	}

	p.Allergies = nil
	assert.False(t, p.Has(FieldAllergies), "a nil allergy list is unknown, not empty")
}

func TestUserProfileApply(t *testing.T) {
	p := UserProfile{
		ID:          "p-1",
		Preferences: Preferences{Disliked: []string{"okra"}},
		Goals:       Goals{CalorieAdjustment: -100, TimeframeWeeks: 12},
	}
	patch := ProfilePatch{
		AgentID:           "feedback",
		AddDisliked:       []string{"okra", "lentil"},
		AddLifestyle:      []string{"variety"},
		CalorieAdjustment: -50,
		TimeframeWeeks:    8,
	}

	got := p.Apply(patch)
	assert.Equal(t, []string{"okra", "lentil"}, got.Preferences.Disliked)
	assert.True(t, got.HasTag("variety"))
	assert.Equal(t, -150.0, got.Goals.CalorieAdjustment)
	assert.Equal(t, 12, got.Goals.TimeframeWeeks, "an existing timeframe is kept")
	assert.Equal(t, []string{"okra"}, p.Preferences.Disliked, "the original is untouched")

	assert.True(t, ProfilePatch{AgentID: "x"}.IsEmpty())
	assert.False(t, patch.IsEmpty())
}

func TestProfilePatchThen(t *testing.T) {
	p := UserProfile{ID: "p-1", Preferences: Preferences{DietType: "omnivore", Disliked: []string{"okra"}}}

	tests := []struct {
		name  string
		first ProfilePatch
		next  ProfilePatch
	}{
		{
			name:  "additive patches",
			first: ProfilePatch{AgentID: "feedback", AddDisliked: []string{"lentil"}, CalorieAdjustment: -50},
			next:  ProfilePatch{AgentID: "feedback", AddDisliked: []string{"lentil", "tofu"}, AddLifestyle: []string{"variety"}, CalorieAdjustment: -25},
		},
		{
			name:  "later preferences replace earlier additions",
			first: ProfilePatch{AgentID: "preference", AddCuisines: []string{"thai"}, AddDisliked: []string{"lentil"}},
			next:  ProfilePatch{AgentID: "preference", Preferences: &Preferences{DietType: "vegetarian", Cuisines: []string{"indian"}}, AddDisliked: []string{"tofu"}},
		},
		{
			name:  "first timeframe wins",
			first: ProfilePatch{AgentID: "goal", TimeframeWeeks: 10},
			next:  ProfilePatch{AgentID: "goal", TimeframeWeeks: 4},
		},
		{
			name:  "timeframe from the later patch",
			first: ProfilePatch{AgentID: "goal", AddLifestyle: []string{"busy"}},
			next:  ProfilePatch{AgentID: "goal", TimeframeWeeks: 4, AddLifestyle: []string{"busy"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folded := tt.first.Then(tt.next)
			assert.Equal(t, tt.first.AgentID, folded.AgentID)
			assert.Equal(t, p.Apply(tt.first).Apply(tt.next), p.Apply(folded))
		})
	}
}

func TestUserProfileClone(t *testing.T) {
	p := UserProfile{
		Allergies:  []string{"peanut"},
		Biomarkers: map[string]float64{"ldl": 160},
		Feedback:   []Feedback{{Disliked: []string{"tofu"}}},
	}
	c := p.Clone()
	c.Allergies[0] = "shellfish"
	c.Biomarkers["ldl"] = 90
	c.Feedback[0].Disliked[0] = "okra"

	assert.Equal(t, "peanut", p.Allergies[0])
	assert.Equal(t, 160.0, p.Biomarkers["ldl"])
	assert.Equal(t, "tofu", p.Feedback[0].Disliked[0])
}

func TestNutritionPlanClone(t *testing.T) {
	plan := NutritionPlan{
		Meals: []MealSlot{{
			Slot:  SlotLunch,
			Items: []MealItem{{Name: "Grilled Chicken Quinoa Bowl", Ingredients: []Ingredient{{Name: "quinoa", Grams: 80}}}},
		}},
		Targets:    &Targets{Calories: 2000},
		Provenance: map[string]string{FieldTargets: "goal"},
		Notes:      map[string][]string{FieldMotivation: {"keep going"}},
		Conflicts:  []Conflict{{Field: "lunch_item", Winner: "goal", Losers: []string{"cultural"}}},
	}

	c := plan.Clone()
	c.Meals[0].Items[0].Ingredients[0].Grams = 200
	c.Targets.Calories = 1500
	c.Provenance[FieldTargets] = "budget"
	c.Notes[FieldMotivation][0] = "changed"
	c.Conflicts[0].Losers[0] = "timing"

	item, ok := plan.Item(SlotLunch)
	require.True(t, ok)
	assert.Equal(t, 80.0, item.Ingredients[0].Grams)
	assert.Equal(t, 2000.0, plan.Targets.Calories)
	assert.Equal(t, "goal", plan.Provenance[FieldTargets])
	assert.Equal(t, "keep going", plan.Notes[FieldMotivation][0])
	assert.Equal(t, "cultural", plan.Conflicts[0].Losers[0])

	_, ok = plan.Item(SlotDinner)
	assert.False(t, ok)
}

func TestFields(t *testing.T) {
	assert.Equal(t, "breakfast_item", SlotField(SlotBreakfast))
	slot, ok := SlotFromField("snack_item")
	assert.True(t, ok)
	assert.Equal(t, SlotSnack, slot)
	_, ok = SlotFromField("_item")
	assert.False(t, ok)

	assert.True(t, IsSafetyField(SafetyField("medical")))
	agent, ok := PatchAgent(PatchField("feedback"))
	assert.True(t, ok)
	assert.Equal(t, "feedback", agent)
	_, ok = PatchAgent("profile_patch.")
	assert.False(t, ok)
}
