package agents

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
	"nutriguide/reasoning"
)

// Share of daily calories per meal slot.
var slotShares = map[string]float64{
	nutriguide.SlotBreakfast: 0.25,
	nutriguide.SlotLunch:     0.35,
	nutriguide.SlotDinner:    0.30,
	nutriguide.SlotSnack:     0.10,
}

// sustainableLossKG is the weekly rate used to suggest a timeframe when none was given.
const sustainableLossKG = 0.5

const goalSystemPrompt = `You are a registered dietitian planning one day of meals.
Propose exactly one dish per requested meal slot. Use whole-food ingredients with gram amounts.
Respect the diet type, preferred cuisines and disliked foods in the context.`

// Goal computes energy and macro targets and plans one item per meal slot scaled to those targets.
type Goal struct {
	catalog  *catalog.Catalog
	reasoner reasoning.Reasoner
}

// NewGoal returns the planner. With a nil reasoner items come from the catalog only.
func NewGoal(c *catalog.Catalog, r reasoning.Reasoner) *Goal {
	return &Goal{catalog: c, reasoner: r}
}

func (a *Goal) Spec() Spec {
	return Spec{
		ID:              GoalID,
		Name:            "Goal",
		Tier:            TierPlanning,
		MayPatchProfile: true,
		UsesReasoning:   a.reasoner != nil,
		Required: []string{
			nutriguide.FieldAge,
			nutriguide.FieldSex,
			nutriguide.FieldHeight,
			nutriguide.FieldWeight,
		},
	}
}

func (a *Goal) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.plan)
}

// PlanSlots returns the slots planned for a profile, in plan order.
func PlanSlots(profile nutriguide.UserProfile) []string {
	if !profile.HasTag(LifestyleSkipsLunch) {
		return slices.Clone(nutriguide.SlotOrder)
	}
	return slices.DeleteFunc(slices.Clone(nutriguide.SlotOrder), func(s string) bool { return s == nutriguide.SlotLunch })
}

// SlotCalories splits the daily calorie target across slots by their share.
func SlotCalories(calories float64, slots []string) map[string]float64 {
	total := 0.0
	for _, s := range slots {
		total += slotShares[s]
	}
	out := make(map[string]float64, len(slots))
	for _, s := range slots {
		out[s] = calories * slotShares[s] / total
	}
	return out
}

func (a *Goal) plan(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	targets := ComputeTargets(profile)
	slots := PlanSlots(profile)
	prefs := preferencesFor(req, profile)

	proposed := map[string]nutriguide.MealItem{}
	if a.reasoner != nil {
		var err error
		proposed, err = a.propose(ctx, profile, prefs, targets, slots)
		if err != nil {
			if ctx.Err() != nil {
				return protocol.Contribution{}, err
			}
			slog.Warn("AGENT: goal planning from catalog", "agent", GoalID, "error", err)
			proposed = map[string]nutriguide.MealItem{}
		}
	}

	fields := protocol.Fields{nutriguide.FieldTargets: targets}
	perSlot := SlotCalories(targets.Calories, slots)
	var used []string
	sources := map[string]int{}
	for _, slot := range slots {
		item, ok := proposed[slot]
		if ok {
			sources["reasoning"]++
		} else {
			recipe, err := a.pick(slot, profile, prefs, used)
			if err != nil {
				return protocol.Contribution{}, err
			}
			item = a.catalog.Item(recipe.Name, recipe.Cuisine, recipe.Ingredients)
			sources["catalog"]++
		}
		used = append(used, item.Name)
		fields[nutriguide.SlotField(slot)] = a.catalog.ScaleTo(item, perSlot[slot])
	}

	if g := profile.Goals; g.TargetWeightKG > 0 && g.TimeframeWeeks == 0 && profile.WeightKG > 0 {
		weeks := int(math.Ceil(math.Abs(profile.WeightKG-g.TargetWeightKG) / sustainableLossKG))
		if weeks > 0 {
			fields[nutriguide.PatchField(GoalID)] = nutriguide.ProfilePatch{AgentID: GoalID, TimeframeWeeks: weeks}
		}
	}

	return contribute(fields, fmt.Sprintf("%.0f kcal target over %d slots (%d proposed, %d from catalog)",
		targets.Calories, len(slots), sources["reasoning"], sources["catalog"])), nil
}

type mealProposal struct {
	Meals map[string]struct {
		Name        string                  `json:"name"`
		Cuisine     string                  `json:"cuisine"`
		Ingredients []nutriguide.Ingredient `json:"ingredients"`
	} `json:"meals"`
}

// propose asks the reasoning service for items. Proposals that break the diet or contain a
// disliked food are dropped; safety is left to the gate.
func (a *Goal) propose(ctx context.Context, profile nutriguide.UserProfile, prefs nutriguide.Preferences, t nutriguide.Targets, slots []string) (map[string]nutriguide.MealItem, error) {
	res, err := a.reasoner.Invoke(ctx, reasoning.Prompt{
		Agent:  GoalID,
		System: goalSystemPrompt,
		Input:  fmt.Sprintf("Plan %s for a %s goal at about %.0f kcal.", strings.Join(slots, ", "), goalType(profile), t.Calories),
		Context: map[string]any{
			"slots":     slots,
			"diet_type": prefs.DietType,
			"cuisines":  prefs.Cuisines,
			"disliked":  prefs.Disliked,
			"targets":   t,
		},
		Schema: catalog.MealProposalSchema(),
	})
	if err != nil {
		return nil, err
	}

	var mp mealProposal
	if err := reasoning.Decode(res, &mp); err != nil {
		return nil, fmt.Errorf("failed to decode meal proposal: %w", err)
	}

	out := map[string]nutriguide.MealItem{}
	for _, slot := range slots {
		p, ok := mp.Meals[slot]
		if !ok || p.Name == "" || len(p.Ingredients) == 0 {
			continue
		}
		item := a.catalog.Item(p.Name, p.Cuisine, p.Ingredients)
		if item.Nutrition.Calories <= 0 {
			continue
		}
		if !catalog.DietAllows(prefs.DietType, a.catalog.Diet(item.Ingredients)) || dislikes(prefs, item) {
			continue
		}
		out[slot] = item
	}
	return out, nil
}

func goalType(p nutriguide.UserProfile) string {
	if p.Goals.Type == "" {
		return nutriguide.GoalMaintenance
	}
	return p.Goals.Type
}

func dislikes(prefs nutriguide.Preferences, item nutriguide.MealItem) bool {
	for _, t := range item.Text() {
		for _, d := range prefs.Disliked {
			if strings.Contains(t, d) {
				return true
			}
		}
	}
	return false
}

// pick chooses a catalog recipe for slot honouring diet, dislikes, preferred cuisines and the
// profile's allergies, restrictions and conditions. Recipes already used today are avoided when possible.
func (a *Goal) pick(slot string, profile nutriguide.UserProfile, prefs nutriguide.Preferences, used []string) (catalog.Recipe, error) {
	var candidates []catalog.Recipe
	for _, r := range a.catalog.Recipes(slot) {
		item := a.catalog.Item(r.Name, r.Cuisine, r.Ingredients)
		if !catalog.DietAllows(prefs.DietType, a.catalog.Diet(r.Ingredients)) || dislikes(prefs, item) {
			continue
		}
		if !a.safeFor(profile, item) {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return catalog.Recipe{}, fmt.Errorf("no catalog recipe fits the %s slot for profile %s", slot, profile.ID)
	}

	fresh := slices.DeleteFunc(slices.Clone(candidates), func(r catalog.Recipe) bool { return slices.Contains(used, r.Name) })
	if len(fresh) > 0 {
		candidates = fresh
	}
	for _, r := range candidates {
		if slices.Contains(prefs.Cuisines, strings.ToLower(r.Cuisine)) {
			return r, nil
		}
	}
	return candidates[0], nil
}

// safeFor applies the soft safety filters used when choosing from the catalog.
func (a *Goal) safeFor(profile nutriguide.UserProfile, item nutriguide.MealItem) bool {
	texts := item.Text()
	for _, allergy := range append(slices.Clone(profile.Allergies), profile.Intolerances...) {
		if _, hit := a.catalog.ContainsAllergen(allergy, texts); hit {
			return false
		}
	}
	for _, r := range profile.HardRestrictions {
		if _, hit := a.catalog.ViolatesRestriction(r, texts); hit {
			return false
		}
	}
	if _, ok := hasAny(profile, conditionCKD); ok {
		if _, hit := a.catalog.HasTag(texts, catalog.TagHighPotassium); hit {
			return false
		}
	}
	if _, ok := hasAny(profile, conditionCeliac); ok {
		if _, hit := a.catalog.HasTag(texts, catalog.TagGluten); hit {
			return false
		}
	}
	return true
}
