// Package aggregate merges agent contributions into a nutrition plan.
package aggregate

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"

	"nutriguide"
	"nutriguide/protocol"
)

// Group holds the contributions of one tier.
type Group struct {
	Tier          int
	Contributions []protocol.Contribution
}

// Options supplies the registry facts the merge depends on.
type Options struct {
	// Order returns an agent's registration order. Nil falls back to position within the group.
	Order func(agentID string) int
	// MayPatch reports whether an agent may stage profile patches. Nil rejects every patch.
	MayPatch func(agentID string) bool
}

// ConflictError reports a winning field value that cannot be placed in a plan.
type ConflictError struct {
	Field  string
	Agent  string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot assemble field %s from %s: %s", e.Field, e.Agent, e.Reason)
}

// ValidationError reports a merged plan that is internally inconsistent.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "plan validation failed: " + e.Reason
}

// Resolution is the conflict-resolved view of a set of contributions.
type Resolution struct {
	Fields     protocol.Fields
	Provenance map[string]string
	Conflicts  []nutriguide.Conflict
}

type claim struct {
	agent    string
	tier     int
	order    int
	position int
	value    any
}

func (c claim) compare(o claim) int {
	return cmp.Or(
		cmp.Compare(c.tier, o.tier),
		cmp.Compare(c.order, o.order),
		cmp.Compare(c.position, o.position),
		strings.Compare(c.agent, o.agent),
	)
}

// Resolve picks one winner per field. A lower tier wins; within a tier the earlier registered
// agent wins. Only OK contributions take part.
func Resolve(groups []Group, opts Options) Resolution {
	claims := map[string][]claim{}
	position := 0
	for _, g := range groups {
		for _, c := range g.Contributions {
			position++
			if c.Status != protocol.StatusOK {
				continue
			}
			order := position
			if opts.Order != nil {
				order = opts.Order(c.AgentID)
			}
			for field, value := range c.Fields {
				if owner, ok := nutriguide.PatchAgent(field); ok {
					if owner != c.AgentID || opts.MayPatch == nil || !opts.MayPatch(c.AgentID) {
						slog.Warn("AGGREGATOR: dropping profile patch", "agent", c.AgentID, "field", field)
						continue
					}
				}
				claims[field] = append(claims[field], claim{agent: c.AgentID, tier: g.Tier, order: order, position: position, value: value})
			}
		}
	}

	res := Resolution{
		Fields:     make(protocol.Fields, len(claims)),
		Provenance: make(map[string]string, len(claims)),
	}
	for _, field := range slices.Sorted(maps.Keys(claims)) {
		cs := claims[field]
		slices.SortFunc(cs, claim.compare)
		winner := cs[0]
		res.Fields[field] = winner.value
		res.Provenance[field] = winner.agent
		if len(cs) > 1 {
			losers := make([]string, 0, len(cs)-1)
			for _, c := range cs[1:] {
				losers = append(losers, c.agent)
			}
			res.Conflicts = append(res.Conflicts, nutriguide.Conflict{Field: field, Winner: winner.agent, Losers: losers})
		}
	}
	return res
}

// Assemble builds a plan and the staged profile patches from resolved fields.
func Assemble(res Resolution, profileID string) (nutriguide.NutritionPlan, []nutriguide.ProfilePatch, error) {
	plan := nutriguide.NutritionPlan{
		ProfileID:         profileID,
		SafetyAnnotations: []string{},
		Provenance:        maps.Clone(res.Provenance),
		Conflicts:         slices.Clone(res.Conflicts),
	}
	if plan.Provenance == nil {
		plan.Provenance = map[string]string{}
	}

	slots := map[string]*nutriguide.MealSlot{}
	var recipes, timing map[string]string
	var patches []nutriguide.ProfilePatch

	for _, field := range res.Fields.Keys() {
		value := res.Fields[field]
		agent := res.Provenance[field]
		bad := func() error {
			return &ConflictError{Field: field, Agent: agent, Reason: fmt.Sprintf("unexpected value type %T", value)}
		}

		if slot, ok := nutriguide.SlotFromField(field); ok {
			item, ok := value.(nutriguide.MealItem)
			if !ok {
				return nutriguide.NutritionPlan{}, nil, bad()
			}
			slots[slot] = &nutriguide.MealSlot{Slot: slot, Items: []nutriguide.MealItem{item}, Totals: item.Nutrition}
			continue
		}
		if nutriguide.IsSafetyField(field) {
			notes, ok := value.([]string)
			if !ok {
				return nutriguide.NutritionPlan{}, nil, bad()
			}
			plan.SafetyAnnotations = append(plan.SafetyAnnotations, notes...)
			continue
		}
		if owner, ok := nutriguide.PatchAgent(field); ok {
			patch, ok := value.(nutriguide.ProfilePatch)
			if !ok {
				return nutriguide.NutritionPlan{}, nil, bad()
			}
			patch.AgentID = owner
			patches = append(patches, patch)
			continue
		}

		switch field {
		case nutriguide.FieldTargets:
			t, ok := value.(nutriguide.Targets)
			if !ok {
				return nutriguide.NutritionPlan{}, nil, bad()
			}
			plan.Targets = &t
		case nutriguide.FieldNormalizedPreferences:
			p, ok := value.(nutriguide.Preferences)
			if !ok {
				return nutriguide.NutritionPlan{}, nil, bad()
			}
			addNotes(&plan, field, preferenceLines(p))
		case nutriguide.FieldRecipes, nutriguide.FieldMealTiming:
			m, ok := value.(map[string]string)
			if !ok {
				return nutriguide.NutritionPlan{}, nil, bad()
			}
			if field == nutriguide.FieldRecipes {
				recipes = m
			} else {
				timing = m
			}
		case nutriguide.FieldAdaptationNotes:
			notes, ok := value.([]string)
			if !ok {
				return nutriguide.NutritionPlan{}, nil, bad()
			}
			plan.AdaptationNotes = slices.Clone(notes)
		default:
			switch tv := value.(type) {
			case string:
				addNotes(&plan, field, []string{tv})
			case []string:
				addNotes(&plan, field, tv)
			case map[string]string:
				lines := make([]string, 0, len(tv))
				for _, k := range slices.Sorted(maps.Keys(tv)) {
					lines = append(lines, k+": "+tv[k])
				}
				addNotes(&plan, field, lines)
			default:
				return nutriguide.NutritionPlan{}, nil, bad()
			}
		}
	}

	for _, name := range slotOrder(slots) {
		s := slots[name]
		s.Recipe = recipes[name]
		s.Time = timing[name]
		plan.Meals = append(plan.Meals, *s)
		plan.Totals = plan.Totals.Add(s.Totals)
	}
	plan.Totals = roundNutrition(plan.Totals)
	return plan, patches, nil
}

// Merge resolves and assembles in one step.
func Merge(groups []Group, opts Options, profileID string) (nutriguide.NutritionPlan, []nutriguide.ProfilePatch, error) {
	return Assemble(Resolve(groups, opts), profileID)
}

// Tolerance bounds how far plan totals may drift from the targets. Zero disables a check.
type Tolerance struct {
	Calories float64
	Macros   float64
}

// Validate checks slot contents and totals against the plan's targets.
func Validate(plan nutriguide.NutritionPlan, tol Tolerance) error {
	if len(plan.Meals) == 0 {
		return &ValidationError{Reason: "plan has no meal slots"}
	}
	for _, s := range plan.Meals {
		if len(s.Items) == 0 {
			return &ValidationError{Reason: fmt.Sprintf("slot %s has no items", s.Slot)}
		}
		for _, it := range s.Items {
			if it.PortionG < 0 || it.Nutrition.Calories < 0 {
				return &ValidationError{Reason: fmt.Sprintf("slot %s item %q has a negative portion", s.Slot, it.Name)}
			}
			for _, in := range it.Ingredients {
				if in.Grams < 0 {
					return &ValidationError{Reason: fmt.Sprintf("slot %s item %q has %.0f g of %s", s.Slot, it.Name, in.Grams, in.Name)}
				}
			}
		}
	}
	if plan.Targets == nil {
		return &ValidationError{Reason: "plan has no energy targets"}
	}

	t := plan.Targets
	if err := within("calories", plan.Totals.Calories, t.Calories, tol.Calories); err != nil {
		return err
	}
	if tol.Macros <= 0 {
		return nil
	}
	if err := within("protein", plan.Totals.ProteinG, t.ProteinG, tol.Macros); err != nil {
		return err
	}
	if err := within("carbohydrates", plan.Totals.CarbsG, t.CarbsG, tol.Macros); err != nil {
		return err
	}
	return within("fat", plan.Totals.FatG, t.FatG, tol.Macros)
}

func within(name string, got, target, tol float64) error {
	if tol <= 0 || target <= 0 {
		return nil
	}
	if dev := math.Abs(got-target) / target; dev > tol {
		return &ValidationError{Reason: fmt.Sprintf("%s %.0f deviate %.1f%% from target %.0f (tolerance %.1f%%)", name, got, dev*100, target, tol*100)}
	}
	return nil
}

func addNotes(plan *nutriguide.NutritionPlan, field string, lines []string) {
	if len(lines) == 0 {
		return
	}
	if plan.Notes == nil {
		plan.Notes = map[string][]string{}
	}
	plan.Notes[field] = slices.Clone(lines)
}

func preferenceLines(p nutriguide.Preferences) []string {
	var lines []string
	if p.DietType != "" {
		lines = append(lines, "diet: "+p.DietType)
	}
	if len(p.Cuisines) > 0 {
		lines = append(lines, "cuisines: "+strings.Join(p.Cuisines, ", "))
	}
	if len(p.Disliked) > 0 {
		lines = append(lines, "disliked: "+strings.Join(p.Disliked, ", "))
	}
	return lines
}

// slotOrder lists known slots in plan order followed by any others alphabetically.
func slotOrder(slots map[string]*nutriguide.MealSlot) []string {
	var out []string
	for _, s := range nutriguide.SlotOrder {
		if _, ok := slots[s]; ok {
			out = append(out, s)
		}
	}
	for _, s := range slices.Sorted(maps.Keys(slots)) {
		if !slices.Contains(nutriguide.SlotOrder, s) {
			out = append(out, s)
		}
	}
	return out
}

func roundNutrition(n nutriguide.Nutrition) nutriguide.Nutrition {
	r := func(v float64) float64 { return math.Round(v*10) / 10 }
	return nutriguide.Nutrition{
		Calories:    r(n.Calories),
		ProteinG:    r(n.ProteinG),
		CarbsG:      r(n.CarbsG),
		FatG:        r(n.FatG),
		FiberG:      r(n.FiberG),
		SodiumMG:    r(n.SodiumMG),
		PotassiumMG: r(n.PotassiumMG),
	}
}
