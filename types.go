package nutriguide

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// Planner is the inbound surface used by the HTTP server, the Lambda handler and the local CLI.
type Planner interface {
	GeneratePlan(ctx context.Context, profile UserProfile) (PlanOutcome, error)
	SubmitFeedback(ctx context.Context, profileID string, feedback Feedback) (FeedbackAck, error)
}

// Goal types understood by the goal and emergency-risk agents.
const (
	GoalWeightLoss  = "weight_loss"
	GoalMaintenance = "maintenance"
	GoalMuscleGain  = "muscle_gain"
)

// Meal slots in plan order.
const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotSnack     = "snack"
)

var SlotOrder = []string{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

// UserProfile is the person a plan is generated for. Agents only ever see a snapshot of it.
type UserProfile struct {
	ID            string  `json:"id"`
	Name          string  `json:"name,omitempty"`
	Age           int     `json:"age,omitempty"`
	Sex           string  `json:"sex,omitempty"`
	HeightCM      float64 `json:"height_cm,omitempty"`
	WeightKG      float64 `json:"weight_kg,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`

	Preferences Preferences `json:"preferences"`
	// Allergies is nil when allergy information was never collected and empty when none were declared.
	Allergies        []string `json:"allergies"`
	Intolerances     []string `json:"intolerances,omitempty"`
	HardRestrictions []string `json:"hard_restrictions,omitempty"`
	Conditions       []string `json:"conditions,omitempty"`
	Medications      []string `json:"medications,omitempty"`
	Supplements      []string `json:"supplements,omitempty"`

	Goals        Goals              `json:"goals"`
	Budget       Budget             `json:"budget"`
	Culture      []string           `json:"culture,omitempty"`
	Lifestyle    []string           `json:"lifestyle,omitempty"`
	TrainingDays []string           `json:"training_days,omitempty"`
	Biomarkers   map[string]float64 `json:"biomarkers,omitempty"`

	Feedback []Feedback `json:"feedback,omitempty"`
}

type Preferences struct {
	DietType string   `json:"diet_type,omitempty"`
	Cuisines []string `json:"cuisines,omitempty"`
	Disliked []string `json:"disliked,omitempty"`
}

type Goals struct {
	Type              string  `json:"type,omitempty"`
	TargetCalories    float64 `json:"target_calories,omitempty"`
	ProteinG          float64 `json:"protein_g,omitempty"`
	CarbsG            float64 `json:"carbs_g,omitempty"`
	FatG              float64 `json:"fat_g,omitempty"`
	TargetWeightKG    float64 `json:"target_weight_kg,omitempty"`
	TimeframeWeeks    int     `json:"timeframe_weeks,omitempty"`
	CalorieAdjustment float64 `json:"calorie_adjustment,omitempty"`
}

type Budget struct {
	Level      string  `json:"level,omitempty"`
	DailyLimit float64 `json:"daily_limit,omitempty"`
}

// Feedback is a user report routed to the feedback and adaptation agents on the next cycle.
type Feedback struct {
	ProfileID     string    `json:"profile_id"`
	Text          string    `json:"text,omitempty"`
	Rating        int       `json:"rating,omitempty"`
	WeightPlateau bool      `json:"weight_plateau,omitempty"`
	Boredom       bool      `json:"boredom,omitempty"`
	Disliked      []string  `json:"disliked,omitempty"`
	ProgressKG    float64   `json:"progress_kg,omitempty"`
	StreakDays    int       `json:"streak_days,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at,omitzero"`
}

// Profile fields an agent may declare as required input.
const (
	FieldAge           = "age"
	FieldSex           = "sex"
	FieldHeight        = "height_cm"
	FieldWeight        = "weight_kg"
	FieldAllergies     = "allergies"
	FieldGoals         = "goals"
	FieldPreferences   = "preferences"
	FieldCulture       = "culture"
	FieldBudget        = "budget"
	FieldFeedback      = "feedback"
	FieldTrainingDays  = "training_days"
	FieldActivityLevel = "activity_level"
)

// Has reports whether the named profile field carries usable data.
func (p UserProfile) Has(field string) bool {
	switch field {
	case FieldAge:
		return p.Age > 0
	case FieldSex:
		return p.Sex != ""
	case FieldHeight:
		return p.HeightCM > 0
	case FieldWeight:
		return p.WeightKG > 0
	case FieldAllergies:
		return p.Allergies != nil
	case FieldGoals:
		return p.Goals.Type != ""
	case FieldPreferences:
		return p.Preferences.DietType != "" || len(p.Preferences.Cuisines) > 0 || len(p.Preferences.Disliked) > 0
	case FieldCulture:
		return len(p.Culture) > 0 || len(p.Preferences.Cuisines) > 0
	case FieldBudget:
		return p.Budget.Level != "" || p.Budget.DailyLimit > 0
	case FieldFeedback:
		return len(p.Feedback) > 0
	case FieldTrainingDays:
		return len(p.TrainingDays) > 0
	case FieldActivityLevel:
		return p.ActivityLevel != ""
	}
	return false
}

// HasTag reports whether the lifestyle tag is present.
func (p UserProfile) HasTag(tag string) bool {
	return slices.Contains(p.Lifestyle, tag)
}

// HasCondition matches condition codes case-insensitively.
func (p UserProfile) HasCondition(code string) bool {
	return slices.ContainsFunc(p.Conditions, func(c string) bool { return strings.EqualFold(c, code) })
}

// Clone returns a deep copy so snapshots never alias caller-owned slices or maps.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Preferences = Preferences{
		DietType: p.Preferences.DietType,
		Cuisines: slices.Clone(p.Preferences.Cuisines),
		Disliked: slices.Clone(p.Preferences.Disliked),
	}
	out.Allergies = slices.Clone(p.Allergies)
	out.Intolerances = slices.Clone(p.Intolerances)
	out.HardRestrictions = slices.Clone(p.HardRestrictions)
	out.Conditions = slices.Clone(p.Conditions)
	out.Medications = slices.Clone(p.Medications)
	out.Supplements = slices.Clone(p.Supplements)
	out.Culture = slices.Clone(p.Culture)
	out.Lifestyle = slices.Clone(p.Lifestyle)
	out.TrainingDays = slices.Clone(p.TrainingDays)
	if p.Biomarkers != nil {
		out.Biomarkers = make(map[string]float64, len(p.Biomarkers))
		for k, v := range p.Biomarkers {
			out.Biomarkers[k] = v
		}
	}
	if p.Feedback != nil {
		out.Feedback = make([]Feedback, len(p.Feedback))
		for i, f := range p.Feedback {
			f.Disliked = slices.Clone(f.Disliked)
			out.Feedback[i] = f
		}
	}
	return out
}

// ProfilePatch is a staged profile mutation. Patches are applied at the start of the next cycle.
type ProfilePatch struct {
	AgentID           string       `json:"agent_id"`
	Preferences       *Preferences `json:"preferences,omitempty"`
	AddDisliked       []string     `json:"add_disliked,omitempty"`
	AddCuisines       []string     `json:"add_cuisines,omitempty"`
	AddLifestyle      []string     `json:"add_lifestyle,omitempty"`
	CalorieAdjustment float64      `json:"calorie_adjustment,omitempty"`
	TimeframeWeeks    int          `json:"timeframe_weeks,omitempty"`
}

// IsEmpty reports whether applying the patch would change nothing.
func (pp ProfilePatch) IsEmpty() bool {
	return pp.Preferences == nil && len(pp.AddDisliked) == 0 && len(pp.AddCuisines) == 0 &&
		len(pp.AddLifestyle) == 0 && pp.CalorieAdjustment == 0 && pp.TimeframeWeeks == 0
}

// Apply returns a copy of the profile with the patch applied.
func (p UserProfile) Apply(pp ProfilePatch) UserProfile {
	out := p.Clone()
	if pp.Preferences != nil {
		out.Preferences = Preferences{
			DietType: pp.Preferences.DietType,
			Cuisines: slices.Clone(pp.Preferences.Cuisines),
			Disliked: slices.Clone(pp.Preferences.Disliked),
		}
	}
	out.Preferences.Disliked = union(out.Preferences.Disliked, pp.AddDisliked)
	out.Preferences.Cuisines = union(out.Preferences.Cuisines, pp.AddCuisines)
	out.Lifestyle = union(out.Lifestyle, pp.AddLifestyle)
	out.Goals.CalorieAdjustment += pp.CalorieAdjustment
	if pp.TimeframeWeeks > 0 && out.Goals.TimeframeWeeks == 0 {
		out.Goals.TimeframeWeeks = pp.TimeframeWeeks
	}
	return out
}

// Then folds next into pp so that applying the result equals applying pp and then next.
func (pp ProfilePatch) Then(next ProfilePatch) ProfilePatch {
	out := ProfilePatch{
		AgentID:           pp.AgentID,
		Preferences:       pp.Preferences,
		AddDisliked:       union(pp.AddDisliked, next.AddDisliked),
		AddCuisines:       union(pp.AddCuisines, next.AddCuisines),
		AddLifestyle:      union(pp.AddLifestyle, next.AddLifestyle),
		CalorieAdjustment: pp.CalorieAdjustment + next.CalorieAdjustment,
		TimeframeWeeks:    pp.TimeframeWeeks,
	}
	if next.Preferences != nil {
		prefs := *next.Preferences
		out.Preferences = &prefs
		out.AddDisliked = slices.Clone(next.AddDisliked)
		out.AddCuisines = slices.Clone(next.AddCuisines)
	}
	if out.TimeframeWeeks == 0 {
		out.TimeframeWeeks = next.TimeframeWeeks
	}
	return out
}

func union(base, add []string) []string {
	out := slices.Clone(base)
	for _, v := range add {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Nutrition holds absolute amounts for an item, a slot or a whole day.
type Nutrition struct {
	Calories    float64 `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	FiberG      float64 `json:"fiber_g"`
	SodiumMG    float64 `json:"sodium_mg"`
	PotassiumMG float64 `json:"potassium_mg"`
}

// Add returns the field-wise sum.
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories:    n.Calories + o.Calories,
		ProteinG:    n.ProteinG + o.ProteinG,
		CarbsG:      n.CarbsG + o.CarbsG,
		FatG:        n.FatG + o.FatG,
		FiberG:      n.FiberG + o.FiberG,
		SodiumMG:    n.SodiumMG + o.SodiumMG,
		PotassiumMG: n.PotassiumMG + o.PotassiumMG,
	}
}

// Scale multiplies every amount by f.
func (n Nutrition) Scale(f float64) Nutrition {
	return Nutrition{
		Calories:    n.Calories * f,
		ProteinG:    n.ProteinG * f,
		CarbsG:      n.CarbsG * f,
		FatG:        n.FatG * f,
		FiberG:      n.FiberG * f,
		SodiumMG:    n.SodiumMG * f,
		PotassiumMG: n.PotassiumMG * f,
	}
}

// Targets are the daily energy and macro goals computed by the goal agent.
type Targets struct {
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SodiumMG float64 `json:"sodium_mg"`
}

type Ingredient struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

type MealItem struct {
	Name        string       `json:"name"`
	Cuisine     string       `json:"cuisine,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	PortionG    float64      `json:"portion_g"`
	Nutrition   Nutrition    `json:"nutrition"`
}

// Text is the lower-cased item name plus ingredient names, used for keyword safety checks.
func (mi MealItem) Text() []string {
	out := []string{strings.ToLower(mi.Name)}
	for _, in := range mi.Ingredients {
		out = append(out, strings.ToLower(in.Name))
	}
	return out
}

type MealSlot struct {
	Slot   string     `json:"slot"`
	Time   string     `json:"time,omitempty"`
	Recipe string     `json:"recipe,omitempty"`
	Items  []MealItem `json:"items"`
	Totals Nutrition  `json:"totals"`
}

// Conflict records a field claimed by more than one agent and which claim won.
type Conflict struct {
	Field  string   `json:"field"`
	Winner string   `json:"winner"`
	Losers []string `json:"losers"`
}

// NutritionPlan is the merged, safety-gated output of one cycle.
type NutritionPlan struct {
	ProfileID         string              `json:"profile_id"`
	Meals             []MealSlot          `json:"meals"`
	Totals            Nutrition           `json:"totals"`
	Targets           *Targets            `json:"targets,omitempty"`
	SafetyAnnotations []string            `json:"safety_annotations"`
	AdaptationNotes   []string            `json:"adaptation_notes,omitempty"`
	Notes             map[string][]string `json:"notes,omitempty"`
	Provenance        map[string]string   `json:"provenance"`
	Conflicts         []Conflict          `json:"conflicts,omitempty"`
	Degraded          bool                `json:"degraded"`
	MissingAgents     []string            `json:"missing_agents,omitempty"`
}

// Item returns the first item planned for slot.
func (np NutritionPlan) Item(slot string) (MealItem, bool) {
	for _, s := range np.Meals {
		if s.Slot == slot && len(s.Items) > 0 {
			return s.Items[0], true
		}
	}
	return MealItem{}, false
}

// Clone returns a deep copy of the plan.
func (np NutritionPlan) Clone() NutritionPlan {
	out := np
	out.Meals = make([]MealSlot, len(np.Meals))
	for i, s := range np.Meals {
		items := make([]MealItem, len(s.Items))
		for j, it := range s.Items {
			it.Ingredients = slices.Clone(it.Ingredients)
			items[j] = it
		}
		s.Items = items
		out.Meals[i] = s
	}
	if np.Targets != nil {
		t := *np.Targets
		out.Targets = &t
	}
	out.SafetyAnnotations = slices.Clone(np.SafetyAnnotations)
	out.AdaptationNotes = slices.Clone(np.AdaptationNotes)
	out.MissingAgents = slices.Clone(np.MissingAgents)
	if np.Notes != nil {
		out.Notes = make(map[string][]string, len(np.Notes))
		for k, v := range np.Notes {
			out.Notes[k] = slices.Clone(v)
		}
	}
	if np.Provenance != nil {
		out.Provenance = make(map[string]string, len(np.Provenance))
		for k, v := range np.Provenance {
			out.Provenance[k] = v
		}
	}
	if np.Conflicts != nil {
		out.Conflicts = make([]Conflict, len(np.Conflicts))
		for i, c := range np.Conflicts {
			c.Losers = slices.Clone(c.Losers)
			out.Conflicts[i] = c
		}
	}
	return out
}

// Rejection explains why no plan was produced.
type Rejection struct {
	AgentID string `json:"agent_id"`
	Stage   string `json:"stage"`
	Reason  string `json:"reason"`
}

// Outcome statuses.
const (
	StatusComplete = "COMPLETE"
	StatusRejected = "REJECTED"
)

// PlanOutcome is either a plan or a rejection, never both.
type PlanOutcome struct {
	CorrelationID string         `json:"correlation_id"`
	Status        string         `json:"status"`
	Plan          *NutritionPlan `json:"plan,omitempty"`
	Rejection     *Rejection     `json:"rejection,omitempty"`
	Transitions   []string       `json:"transitions"`
}

// FeedbackAck is returned by SubmitFeedback.
type FeedbackAck struct {
	ProfileID string `json:"profile_id"`
	Accepted  bool   `json:"accepted"`
	Pending   int    `json:"pending,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
