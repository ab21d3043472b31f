package nutriguide

import "strings"

// Plan fields proposed by agents in their contributions.
const (
	FieldTargets               = "targets"
	FieldNormalizedPreferences = "preferences"
	FieldRecipes               = "recipes"
	FieldMealTiming            = "meal_timing"
	FieldTimingNotes           = "timing_notes"
	FieldNutritionNotes        = "nutrition_notes"
	FieldMealFindings          = "meal_findings"
	FieldDailySummary          = "daily_summary"
	FieldProgressTrend         = "progress_trend"
	FieldCulturalAdaptations   = "cultural_adaptations"
	FieldBudgetSummary         = "budget_summary"
	FieldSubstitutions         = "substitutions"
	FieldSustainabilitySummary = "sustainability_summary"
	FieldAdaptationNotes       = "adaptation_notes"
	FieldFeedbackInsights      = "feedback_insights"
	FieldMotivation            = "motivation"
	FieldEducation             = "education"

	slotItemSuffix     = "_item"
	safetyPrefix       = "safety."
	profilePatchPrefix = "profile_patch."
)

// SlotField is the field name an agent uses to propose the item for a meal slot.
func SlotField(slot string) string { return slot + slotItemSuffix }

// SlotFromField returns the meal slot named by a slot field.
func SlotFromField(field string) (string, bool) {
	slot, ok := strings.CutSuffix(field, slotItemSuffix)
	if !ok || slot == "" {
		return "", false
	}
	return slot, true
}

// SafetyField is the agent-scoped field carrying safety annotations.
func SafetyField(agentID string) string { return safetyPrefix + agentID }

// IsSafetyField reports whether field carries safety annotations.
func IsSafetyField(field string) bool { return strings.HasPrefix(field, safetyPrefix) }

// PatchField is the agent-scoped field carrying a staged profile patch.
func PatchField(agentID string) string { return profilePatchPrefix + agentID }

// PatchAgent returns the agent id a patch field belongs to.
func PatchAgent(field string) (string, bool) {
	id, ok := strings.CutPrefix(field, profilePatchPrefix)
	return id, ok && id != ""
}
