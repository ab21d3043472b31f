package agents

import (
	"fmt"
	"math"

	"nutriguide"
	"nutriguide/protocol"
)

// Per-meal limits flagged by MealFindings.
const (
	mealMinProteinG = 15.0
	mealMaxFatG     = 40.0
	mealMaxCarbsG   = 120.0
)

// Daily thresholds used by ProgressTrend.
const (
	trendBalanceKcal = 200.0
	dailyMinProteinG = 70.0
)

// Energy balance trends reported by ProgressTrend.
const (
	TrendLoss        = "likely weight loss"
	TrendGain        = "likely weight gain"
	TrendMaintenance = "maintenance"
)

// MealFindings flags slots with missing calorie data, low protein or heavy fat and carbohydrate
// loads. Snacks are exempt from the protein floor.
func MealFindings(items []protocol.SlotItem) []string {
	var out []string
	for _, si := range items {
		n := si.Item.Nutrition
		if n.Calories <= 0 {
			out = append(out, fmt.Sprintf("%s: %s has no calorie data", si.Slot, si.Item.Name))
			continue
		}
		if si.Slot != nutriguide.SlotSnack && n.ProteinG < mealMinProteinG {
			out = append(out, fmt.Sprintf("%s: protein %.0f g is below %.0f g", si.Slot, n.ProteinG, mealMinProteinG))
		}
		if n.FatG > mealMaxFatG {
			out = append(out, fmt.Sprintf("%s: fat %.0f g is above %.0f g", si.Slot, n.FatG, mealMaxFatG))
		}
		if n.CarbsG > mealMaxCarbsG {
			out = append(out, fmt.Sprintf("%s: carbohydrates %.0f g are above %.0f g", si.Slot, n.CarbsG, mealMaxCarbsG))
		}
	}
	return out
}

// DailySummary reports the day's totals and, when targets are known, the distance to them.
func DailySummary(total nutriguide.Nutrition, targets *nutriguide.Targets) []string {
	out := []string{fmt.Sprintf("Total: %.0f kcal, protein %.0f g, carbohydrates %.0f g, fat %.0f g, fiber %.0f g",
		total.Calories, total.ProteinG, total.CarbsG, total.FatG, total.FiberG)}
	if targets == nil || targets.Calories <= 0 {
		return out
	}
	diff := total.Calories - targets.Calories
	out = append(out, fmt.Sprintf("Calories: %+.0f kcal against the %.0f kcal target", diff, targets.Calories))
	if targets.ProteinG > 0 {
		out = append(out, fmt.Sprintf("Protein: %+.0f g against the %.0f g target", total.ProteinG-targets.ProteinG, targets.ProteinG))
	}
	return out
}

// Trend classifies a daily energy balance in kcal.
func Trend(balance float64) string {
	switch {
	case balance < -trendBalanceKcal:
		return TrendLoss
	case balance > trendBalanceKcal:
		return TrendGain
	default:
		return TrendMaintenance
	}
}

// ProgressTrend projects the planned day against maintenance energy and summarises the progress
// reported in pending feedback. It returns nil when maintenance energy is unknown.
func ProgressTrend(profile nutriguide.UserProfile, total nutriguide.Nutrition, targets *nutriguide.Targets) []string {
	if targets == nil || targets.TDEE <= 0 {
		return nil
	}
	balance := total.Calories - targets.TDEE
	line := fmt.Sprintf("Trend: %s, %+.0f kcal/day against %.0f kcal maintenance", Trend(balance), balance, targets.TDEE)
	if weekly := balance * 7 / kcalPerKG; math.Abs(weekly) >= 0.05 {
		line += fmt.Sprintf(" (about %+.2f kg/week)", weekly)
	}
	out := []string{line}

	if total.ProteinG < dailyMinProteinG {
		out = append(out, fmt.Sprintf("Protein: %.0f g is below %.0f g, weight change may include lean mass", total.ProteinG, dailyMinProteinG))
	}

	var reported float64
	checkIns := 0
	for _, f := range profile.Feedback {
		if f.ProgressKG != 0 {
			reported += f.ProgressKG
			checkIns++
		}
	}
	if checkIns > 0 {
		out = append(out, fmt.Sprintf("Reported: %+.1f kg over %d check-ins", reported, checkIns))
	}
	return out
}

func dayTotal(items []protocol.SlotItem) nutriguide.Nutrition {
	var total nutriguide.Nutrition
	for _, si := range items {
		total = total.Add(si.Item.Nutrition)
	}
	return total
}
