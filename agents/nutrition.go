package agents

import (
	"math"
	"strings"

	"nutriguide"
)

// kcalPerKG is the energy equivalent of one kilogram of body weight.
const kcalPerKG = 7700.0

var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly active":    1.375,
	"moderately active": 1.55,
	"very active":       1.725,
	"extremely active":  1.9,
}

// ActivityMultiplier maps an activity level onto its TDEE multiplier. Unknown levels are sedentary.
func ActivityMultiplier(level string) float64 {
	l := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(level, "_", " ")))
	if m, ok := activityMultipliers[l]; ok {
		return m
	}
	return 1.2
}

func isMale(sex string) bool {
	s := strings.ToLower(strings.TrimSpace(sex))
	return s == "male" || s == "m"
}

// BMR is the Mifflin-St Jeor basal metabolic rate.
func BMR(p nutriguide.UserProfile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if isMale(p.Sex) {
		return bmr + 5
	}
	return bmr - 161
}

// BMI returns 0 when height or weight is unknown.
func BMI(p nutriguide.UserProfile) float64 {
	if p.HeightCM <= 0 || p.WeightKG <= 0 {
		return 0
	}
	m := p.HeightCM / 100
	return p.WeightKG / (m * m)
}

// ComputeTargets derives daily energy and macro targets from the profile's anthropometrics and goal.
// An explicit calorie target replaces the goal adjustment; accumulated adaptation adjustments apply on top.
func ComputeTargets(p nutriguide.UserProfile) nutriguide.Targets {
	bmr := BMR(p)
	tdee := bmr * ActivityMultiplier(p.ActivityLevel)

	calories := tdee
	switch p.Goals.Type {
	case nutriguide.GoalWeightLoss:
		calories = tdee - 500
	case nutriguide.GoalMuscleGain:
		calories = tdee + 300
	}
	if p.Goals.TargetCalories > 0 {
		calories = p.Goals.TargetCalories
	}
	calories += p.Goals.CalorieAdjustment

	protein := p.WeightKG * 2
	if p.Goals.ProteinG > 0 {
		protein = p.Goals.ProteinG
	}
	fat := calories * 0.25 / 9
	if p.Goals.FatG > 0 {
		fat = p.Goals.FatG
	}
	carbs := math.Max(0, (calories-protein*4-fat*9)/4)
	if p.Goals.CarbsG > 0 {
		carbs = p.Goals.CarbsG
	}

	return nutriguide.Targets{
		BMR:      round0(bmr),
		TDEE:     round0(tdee),
		Calories: round0(calories),
		ProteinG: round0(protein),
		CarbsG:   round0(carbs),
		FatG:     round0(fat),
		FiberG:   25,
		SodiumMG: 2300,
	}
}

// WeeklyLossKG is the weight change implied by eating calories against tdee.
func WeeklyLossKG(tdee, calories float64) float64 {
	return (tdee - calories) * 7 / kcalPerKG
}

func round0(v float64) float64 { return math.Round(v) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
