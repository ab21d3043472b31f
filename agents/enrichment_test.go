package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriguide"
	"nutriguide/protocol"
	"nutriguide/reasoning"
	"nutriguide/reasoning/mock"
)

func TestFoodKnowledge(t *testing.T) {
	draft := func(t *testing.T) protocol.Fields {
		return draftOf(map[string]nutriguide.MealItem{
			nutriguide.SlotBreakfast: recipeItem(t, "Overnight Oats with Berries"),
			nutriguide.SlotDinner:    testCatalog.Item("Plain Tofu", "asian", []nutriguide.Ingredient{{Name: "tofu", Grams: 200}}),
		})
	}

	tests := []struct {
		name                string
		reasoner            reasoning.Reasoner
		empty               bool
		expectedResultCheck func(t *testing.T, c protocol.Contribution)
	}{
		{
			name: "catalog instructions without reasoning",
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				require.Equal(t, protocol.StatusOK, c.Status)
				recipes := c.Fields[nutriguide.FieldRecipes].(map[string]string)
				assert.Len(t, recipes, 2)
				assert.Contains(t, recipes[nutriguide.SlotBreakfast], "night")
				assert.Equal(t, "Prepare 200 g tofu.", recipes[nutriguide.SlotDinner])
				got := notes(c, nutriguide.FieldNutritionNotes)
				require.NotEmpty(t, got)
				assert.Contains(t, got[0], "Protein:")
			},
		},
		{
			name:     "reasoning instructions and notes",
			reasoner: mock.New(nil),
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				recipes := c.Fields[nutriguide.FieldRecipes].(map[string]string)
				assert.Equal(t, "Combine the base ingredients the night before and keep chilled.", recipes[nutriguide.SlotBreakfast])
				assert.Contains(t, notes(c, nutriguide.FieldNutritionNotes), "Spreading protein across meals supports satiety.")
			},
		},
		{
			name:     "reasoning failure falls back to catalog instructions",
			reasoner: mock.New(map[string]mock.Response{FoodKnowledgeID: {Err: errors.New("unavailable")}}),
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				require.Equal(t, protocol.StatusOK, c.Status)
				recipes := c.Fields[nutriguide.FieldRecipes].(map[string]string)
				assert.Contains(t, recipes[nutriguide.SlotBreakfast], "night")
				assert.Equal(t, "Prepare 200 g tofu.", recipes[nutriguide.SlotDinner])
				assert.NotContains(t, notes(c, nutriguide.FieldNutritionNotes), "Spreading protein across meals supports satiety.")
			},
		},
		{
			name:  "nothing to describe",
			empty: true,
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				assert.Equal(t, protocol.StatusSkipped, c.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := reqOpts{draft: draft(t)}
			if tt.empty {
				opts.draft = nil
			}
			agent := NewFoodKnowledge(testCatalog, tt.reasoner)
			tt.expectedResultCheck(t, agent.Handle(context.Background(), request(t, baseProfile(), opts)))
		})
	}
}

func TestCultural(t *testing.T) {
	agent := NewCultural(testCatalog)

	tests := []struct {
		name     string
		profile  func(p *nutriguide.UserProfile)
		draft    protocol.Fields
		status   protocol.Status
		expected map[string]string
	}{
		{
			name:    "omnivore indian",
			profile: func(p *nutriguide.UserProfile) { p.Culture = []string{"Indian"} },
			status:  protocol.StatusOK,
			expected: map[string]string{
				"cuisine":         "indian",
				"protein_swap":    "chicken",
				"grain_swap":      "quinoa",
				"spice_additions": "turmeric, cumin",
				"cooking_method":  "curry",
			},
		},
		{
			name:    "vegetarian from the draft gets the vegetarian protein",
			profile: func(p *nutriguide.UserProfile) { p.Culture = []string{"asian"} },
			draft:   protocol.Fields{nutriguide.FieldNormalizedPreferences: nutriguide.Preferences{DietType: "vegetarian"}},
			status:  protocol.StatusOK,
			expected: map[string]string{
				"cuisine":         "asian",
				"protein_swap":    "tofu",
				"spice_additions": "ginger, garlic",
				"cooking_method":  "stir-fry",
			},
		},
		{
			name: "swaps that carry an allergen are dropped",
			profile: func(p *nutriguide.UserProfile) {
				p.Culture = []string{"indian"}
				p.Preferences.DietType = "vegetarian"
				p.Allergies = []string{"milk"}
			},
			status: protocol.StatusOK,
			expected: map[string]string{
				"cuisine":         "indian",
				"grain_swap":      "quinoa",
				"spice_additions": "turmeric, cumin",
				"cooking_method":  "curry",
			},
		},
		{
			name:    "unknown cuisine is a skip",
			profile: func(p *nutriguide.UserProfile) { p.Culture = []string{"nordic"} },
			status:  protocol.StatusSkipped,
		},
		{
			name:    "no culture is a skip",
			profile: func(p *nutriguide.UserProfile) {},
			status:  protocol.StatusSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			tt.profile(&p)
			c := agent.Handle(context.Background(), request(t, p, reqOpts{draft: tt.draft}))
			require.Equal(t, tt.status, c.Status, c.Rationale)
			if tt.expected != nil {
				assert.Equal(t, tt.expected, c.Fields[nutriguide.FieldCulturalAdaptations])
			}
		})
	}
}

func TestBudget(t *testing.T) {
	agent := NewBudget(testCatalog)

	tests := []struct {
		name      string
		budget    nutriguide.Budget
		profile   func(p *nutriguide.UserProfile)
		items     []string
		status    protocol.Status
		wantSubs  map[string]string
		wantLines []string
	}{
		{
			name:      "low budget offers substitutions",
			budget:    nutriguide.Budget{Level: "Low"},
			items:     []string{"Overnight Oats with Berries", "Grilled Chicken Quinoa Bowl"},
			status:    protocol.StatusOK,
			wantSubs:  map[string]string{"quinoa": "brown rice", "berries": "apple"},
			wantLines: []string{"2 cheaper substitutions available"},
		},
		{
			name:      "over the daily limit offers substitutions",
			budget:    nutriguide.Budget{Level: "medium", DailyLimit: 1},
			items:     []string{"Grilled Chicken Quinoa Bowl"},
			status:    protocol.StatusOK,
			wantSubs:  map[string]string{"quinoa": "brown rice"},
			wantLines: []string{"Estimated cost: $3.60 per day", "Over the $1.00 daily limit by $2.60"},
		},
		{
			name:    "substitutions respect allergies and diet",
			budget:  nutriguide.Budget{Level: "low"},
			profile: func(p *nutriguide.UserProfile) {
				p.Allergies = []string{"peanut"}
				p.Preferences.DietType = "vegetarian"
			},
			items:   []string{"Handful of Almonds", "Baked Salmon with Sweet Potato"},
			status:  protocol.StatusOK,
		},
		{
			name:   "comfortable budget only estimates",
			budget: nutriguide.Budget{Level: "high"},
			items:  []string{"Grilled Chicken Quinoa Bowl"},
			status: protocol.StatusOK,
		},
		{
			name:   "nothing to price",
			status: protocol.StatusSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			p.Budget = tt.budget
			if tt.profile != nil {
				tt.profile(&p)
			}
			var opts reqOpts
			if len(tt.items) > 0 {
				items := map[string]nutriguide.MealItem{}
				for i, name := range tt.items {
					items[nutriguide.SlotOrder[i]] = recipeItem(t, name)
				}
				opts.draft = draftOf(items)
			}

			c := agent.Handle(context.Background(), request(t, p, opts))
			require.Equal(t, tt.status, c.Status, c.Rationale)
			if tt.status != protocol.StatusOK {
				return
			}
			subs, _ := c.Fields[nutriguide.FieldSubstitutions].(map[string]string)
			if tt.wantSubs == nil {
				assert.Empty(t, subs)
			} else {
				assert.Equal(t, tt.wantSubs, subs)
			}
			summary := notes(c, nutriguide.FieldBudgetSummary)
			assert.Contains(t, summary[0], "Estimated cost")
			for _, line := range tt.wantLines {
				assert.Contains(t, summary, line)
			}
		})
	}
}

func TestTiming(t *testing.T) {
	agent := NewTiming()

	tests := []struct {
		name      string
		profile   func(p *nutriguide.UserProfile)
		wantTimes map[string]string
		wantNote  string
	}{
		{
			name:      "training day",
			profile:   func(p *nutriguide.UserProfile) { p.TrainingDays = []string{"Mon", "thursday"} },
			wantTimes: map[string]string{"breakfast": "07:00", "lunch": "12:30", "dinner": "20:00", "snack": "17:00"},
			wantNote:  "Post-workout: protein and carbohydrates within 30 minutes",
		},
		{
			name:      "rest day",
			profile:   func(p *nutriguide.UserProfile) { p.TrainingDays = []string{"tuesday"} },
			wantTimes: map[string]string{"breakfast": "08:00", "lunch": "12:30", "dinner": "19:00", "snack": "15:30"},
			wantNote:  "Rest day: eat breakfast within an hour of waking and dinner 2-3 hours before bed",
		},
		{
			name:      "skipped lunch",
			profile:   func(p *nutriguide.UserProfile) { p.Lifestyle = []string{LifestyleSkipsLunch} },
			wantTimes: map[string]string{"breakfast": "08:00", "dinner": "19:00", "snack": "15:30"},
			wantNote:  "Lunch is skipped; calories are shifted to the remaining meals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			tt.profile(&p)
			c := agent.Handle(context.Background(), request(t, p, reqOpts{}))
			require.Equal(t, protocol.StatusOK, c.Status)
			assert.Equal(t, tt.wantTimes, c.Fields[nutriguide.FieldMealTiming])
			assert.Contains(t, notes(c, nutriguide.FieldTimingNotes), tt.wantNote)
		})
	}
}

func TestIsTrainingDay(t *testing.T) {
	assert.True(t, IsTrainingDay([]string{"MONDAY"}, planDate))
	assert.True(t, IsTrainingDay([]string{" mon "}, planDate))
	assert.False(t, IsTrainingDay([]string{"mo"}, planDate))
	assert.False(t, IsTrainingDay([]string{"monday"}, planDate.AddDate(0, 0, 1)))
}

func TestSustainability(t *testing.T) {
	agent := NewSustainability(testCatalog)

	steak := testCatalog.Item("Steak and Berries", "american", []nutriguide.Ingredient{{Name: "beef", Grams: 150}, {Name: "berries", Grams: 100}})
	c := agent.Handle(context.Background(), request(t, baseProfile(), reqOpts{draft: draftOf(map[string]nutriguide.MealItem{nutriguide.SlotDinner: steak})}))
	require.Equal(t, protocol.StatusOK, c.Status)
	assert.Equal(t, []string{
		"Sustainability score: -1",
		"Consider replacing beef with a plant-based alternative",
		"berries is not in season, consider local alternatives",
	}, notes(c, nutriguide.FieldSustainabilitySummary))

	c = agent.Handle(context.Background(), request(t, baseProfile(), reqOpts{}))
	assert.Equal(t, protocol.StatusSkipped, c.Status)
}

func TestAdaptation(t *testing.T) {
	agent := NewAdaptation()

	tests := []struct {
		name      string
		feedback  []nutriguide.Feedback
		status    protocol.Status
		wantPatch nutriguide.ProfilePatch
		wantNotes int
	}{
		{
			name:      "plateau and boredom",
			feedback:  []nutriguide.Feedback{{WeightPlateau: true}, {Boredom: true, Rating: 4}},
			status:    protocol.StatusOK,
			wantPatch: nutriguide.ProfilePatch{AgentID: AdaptationID, CalorieAdjustment: -100, AddCuisines: []string{"asian"}},
			wantNotes: 2,
		},
		{
			name:      "low rating only adds a note",
			feedback:  []nutriguide.Feedback{{Rating: 1}},
			status:    protocol.StatusOK,
			wantNotes: 1,
		},
		{
			name:     "content feedback needs nothing",
			feedback: []nutriguide.Feedback{{Rating: 5, Text: "great"}},
			status:   protocol.StatusSkipped,
		},
		{
			name:   "no feedback",
			status: protocol.StatusSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			p.Preferences.Cuisines = []string{"Mediterranean"}
			p.Feedback = tt.feedback
			c := agent.Handle(context.Background(), request(t, p, reqOpts{}))
			require.Equal(t, tt.status, c.Status, c.Rationale)
			if tt.status != protocol.StatusOK {
				return
			}
			assert.Len(t, notes(c, nutriguide.FieldAdaptationNotes), tt.wantNotes)
			patch, ok := c.Fields[nutriguide.PatchField(AdaptationID)].(nutriguide.ProfilePatch)
			if tt.wantPatch.IsEmpty() {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantPatch, patch)
		})
	}
}

func TestMotivation(t *testing.T) {
	tests := []struct {
		name                string
		reasoner            reasoning.Reasoner
		profile             func(p *nutriguide.UserProfile)
		expectedResultCheck func(t *testing.T, c protocol.Contribution)
	}{
		{
			name: "progress is celebrated",
			profile: func(p *nutriguide.UserProfile) {
				p.Goals.Type = nutriguide.GoalWeightLoss
				p.Feedback = []nutriguide.Feedback{{ProgressKG: 1.2}, {ProgressKG: 2.5, StreakDays: 9}}
			},
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				assert.Equal(t, "Congratulations! You've lost 2.5 kg. Your dedication is paying off!", c.Fields[nutriguide.FieldMotivation])
				assert.Equal(t, educationTips[nutriguide.GoalWeightLoss], c.Fields[nutriguide.FieldEducation])
			},
		},
		{
			name:    "streak without progress",
			profile: func(p *nutriguide.UserProfile) { p.Feedback = []nutriguide.Feedback{{StreakDays: 7}} },
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				assert.Contains(t, c.Fields[nutriguide.FieldMotivation], "consistent for 7 days")
			},
		},
		{
			name:    "tips are chosen deterministically",
			profile: func(p *nutriguide.UserProfile) { p.Goals.Type = "" },
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				message, education := fallbackMotivation(baseProfile())
				assert.Equal(t, message, c.Fields[nutriguide.FieldMotivation])
				assert.Contains(t, motivationTips, message)
				assert.Equal(t, defaultEducation, c.Fields[nutriguide.FieldEducation])
				assert.NotEqual(t, education, c.Fields[nutriguide.FieldEducation])
			},
		},
		{
			name:     "reasoning message",
			reasoner: mock.New(nil),
			profile:  func(p *nutriguide.UserProfile) {},
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				assert.Contains(t, c.Fields[nutriguide.FieldMotivation], "Small consistent choices")
				assert.Equal(t, "reasoning motivation", c.Rationale)
			},
		},
		{
			name:     "reasoning failure falls back to built-in content",
			reasoner: mock.New(map[string]mock.Response{MotivationID: {Err: errors.New("down")}}),
			profile:  func(p *nutriguide.UserProfile) { p.Feedback = []nutriguide.Feedback{{StreakDays: 3}} },
			expectedResultCheck: func(t *testing.T, c protocol.Contribution) {
				require.Equal(t, protocol.StatusOK, c.Status)
				assert.Equal(t, "built-in motivation", c.Rationale)
				assert.Contains(t, c.Fields[nutriguide.FieldMotivation], "3 days")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			tt.profile(&p)
			c := NewMotivation(tt.reasoner).Handle(context.Background(), request(t, p, reqOpts{}))
			require.Equal(t, protocol.StatusOK, c.Status, c.Rationale)
			tt.expectedResultCheck(t, c)
		})
	}
}
