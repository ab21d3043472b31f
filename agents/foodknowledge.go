package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
	"nutriguide/reasoning"
)

const foodKnowledgeSystemPrompt = `You are a culinary nutrition expert.
For each meal slot in the context write short, practical cooking instructions for the listed dish.
Add at most three evidence-based nutrition notes about the day as a whole.`

// FoodKnowledge adds cooking instructions per slot and evidence notes about the planned day.
type FoodKnowledge struct {
	catalog  *catalog.Catalog
	reasoner reasoning.Reasoner
}

func NewFoodKnowledge(c *catalog.Catalog, r reasoning.Reasoner) *FoodKnowledge {
	return &FoodKnowledge{catalog: c, reasoner: r}
}

func (a *FoodKnowledge) Spec() Spec {
	return Spec{
		ID:            FoodKnowledgeID,
		Name:          "Food Knowledge",
		Tier:          TierEnrichment,
		UsesReasoning: a.reasoner != nil,
	}
}

func (a *FoodKnowledge) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.enrich)
}

type recipeNotes struct {
	Recipes map[string]string `json:"recipes"`
	Notes   []string          `json:"notes"`
}

func (a *FoodKnowledge) enrich(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	draft := req.Draft()
	items := draft.Items()
	if len(items) == 0 {
		return protocol.Skipped("no meal items to describe"), nil
	}

	var out recipeNotes
	if a.reasoner != nil {
		dishes := make(map[string]any, len(items))
		for _, si := range items {
			dishes[si.Slot] = map[string]any{"name": si.Item.Name, "ingredients": si.Item.Ingredients}
		}
		res, err := a.reasoner.Invoke(ctx, reasoning.Prompt{
			Agent:   FoodKnowledgeID,
			System:  foodKnowledgeSystemPrompt,
			Input:   "Write cooking instructions for each slot.",
			Context: map[string]any{"meals": dishes},
			Schema:  catalog.RecipeNotesSchema(),
		})
		switch {
		case err != nil && ctx.Err() != nil:
			return protocol.Contribution{}, err
		case err != nil:
			slog.Warn("AGENT: food knowledge falling back to catalog instructions", "agent", FoodKnowledgeID, "error", err)
		case reasoning.Decode(res, &out) != nil:
			slog.Warn("AGENT: recipe notes not decodable", "agent", FoodKnowledgeID)
			out = recipeNotes{}
		}
	}

	recipes := make(map[string]string, len(items))
	for _, si := range items {
		if text := strings.TrimSpace(out.Recipes[si.Slot]); text != "" {
			recipes[si.Slot] = text
			continue
		}
		recipes[si.Slot] = a.instructions(si.Item)
	}

	total := dayTotal(items)
	var targets *nutriguide.Targets
	if t, ok := draft.Targets(); ok {
		targets = &t
	}

	notes := evidenceNotes(profile, total, targets)
	for _, n := range out.Notes {
		if n = strings.TrimSpace(n); n != "" {
			notes = append(notes, n)
		}
	}

	fields := protocol.Fields{
		nutriguide.FieldRecipes:        recipes,
		nutriguide.FieldNutritionNotes: notes,
		nutriguide.FieldDailySummary:   DailySummary(total, targets),
	}
	findings := MealFindings(items)
	if len(findings) > 0 {
		fields[nutriguide.FieldMealFindings] = findings
	}
	if trend := ProgressTrend(profile, total, targets); len(trend) > 0 {
		fields[nutriguide.FieldProgressTrend] = trend
	}
	return contribute(fields, fmt.Sprintf("instructions for %d slots, %d meal findings", len(recipes), len(findings))), nil
}

func (a *FoodKnowledge) instructions(item nutriguide.MealItem) string {
	if r, ok := a.catalog.Recipe(item.Name); ok && r.Instructions != "" {
		return r.Instructions
	}
	names := make([]string, len(item.Ingredients))
	for i, in := range item.Ingredients {
		names[i] = fmt.Sprintf("%.0f g %s", in.Grams, in.Name)
	}
	return "Prepare " + strings.Join(names, ", ") + "."
}

func evidenceNotes(profile nutriguide.UserProfile, total nutriguide.Nutrition, targets *nutriguide.Targets) []string {
	var notes []string
	if profile.WeightKG > 0 {
		notes = append(notes, fmt.Sprintf("Protein: %.1f g/kg body weight (1.6-2.2 g/kg supports lean mass)", total.ProteinG/profile.WeightKG))
	}
	fiberTarget, sodiumTarget := 25.0, 2300.0
	if targets != nil {
		fiberTarget, sodiumTarget = targets.FiberG, targets.SodiumMG
	}
	if total.FiberG < fiberTarget {
		notes = append(notes, fmt.Sprintf("Fiber: %.0f g of %.0f g target, add legumes, vegetables or whole grains", total.FiberG, fiberTarget))
	} else {
		notes = append(notes, fmt.Sprintf("Fiber: %.0f g meets the %.0f g target", total.FiberG, fiberTarget))
	}
	if total.SodiumMG > sodiumTarget {
		notes = append(notes, fmt.Sprintf("Sodium: %.0f mg exceeds %.0f mg, choose low-sodium breads and sauces", total.SodiumMG, sodiumTarget))
	}
	return notes
}
