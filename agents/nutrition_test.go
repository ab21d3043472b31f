package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nutriguide"
)

func TestComputeTargets(t *testing.T) {
	tests := []struct {
		name     string
		goals    nutriguide.Goals
		expected nutriguide.Targets
	}{
		{
			name:     "maintenance",
			goals:    nutriguide.Goals{Type: nutriguide.GoalMaintenance},
			expected: nutriguide.Targets{BMR: 1780, TDEE: 2759, Calories: 2759, ProteinG: 160, CarbsG: 357, FatG: 77, FiberG: 25, SodiumMG: 2300},
		},
		{
			name:     "weight loss subtracts 500 kcal",
			goals:    nutriguide.Goals{Type: nutriguide.GoalWeightLoss},
			expected: nutriguide.Targets{BMR: 1780, TDEE: 2759, Calories: 2259, ProteinG: 160, CarbsG: 264, FatG: 63, FiberG: 25, SodiumMG: 2300},
		},
		{
			name:     "muscle gain adds 300 kcal",
			goals:    nutriguide.Goals{Type: nutriguide.GoalMuscleGain},
			expected: nutriguide.Targets{BMR: 1780, TDEE: 2759, Calories: 3059, ProteinG: 160, CarbsG: 414, FatG: 85, FiberG: 25, SodiumMG: 2300},
		},
		{
			name:     "explicit target with adaptation adjustment",
			goals:    nutriguide.Goals{Type: nutriguide.GoalWeightLoss, TargetCalories: 2000, CalorieAdjustment: -100},
			expected: nutriguide.Targets{BMR: 1780, TDEE: 2759, Calories: 1900, ProteinG: 160, CarbsG: 196, FatG: 53, FiberG: 25, SodiumMG: 2300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			p.Goals = tt.goals
			assert.Equal(t, tt.expected, ComputeTargets(p))
		})
	}
}

func TestActivityMultiplier(t *testing.T) {
	assert.Equal(t, 1.55, ActivityMultiplier("Moderately_Active"))
	assert.Equal(t, 1.9, ActivityMultiplier(" extremely active "))
	assert.Equal(t, 1.2, ActivityMultiplier("couch"))
}

func TestBMI(t *testing.T) {
	assert.InDelta(t, 24.7, BMI(baseProfile()), 0.05)
	assert.Zero(t, BMI(nutriguide.UserProfile{WeightKG: 70}))
}

func TestWeeklyLossKG(t *testing.T) {
	assert.InDelta(t, 1.0, WeeklyLossKG(2800, 1700), 1e-9)
	assert.InDelta(t, -0.27, WeeklyLossKG(2000, 2300), 0.01)
}
