package agents

import (
	"context"
	"fmt"
	"strings"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
)

const budgetLow = "low"

// Cheaper alternatives offered on a low budget.
var budgetSubstitutions = []struct {
	from, to string
}{
	{from: "quinoa", to: "brown rice"},
	{from: "salmon", to: "chicken breast"},
	{from: "almonds", to: "peanuts"},
	{from: "walnuts", to: "peanuts"},
	{from: "avocado", to: "banana"},
	{from: "berries", to: "apple"},
}

// Budget estimates the cost of the planned day and offers cheaper substitutions.
type Budget struct {
	catalog *catalog.Catalog
}

func NewBudget(c *catalog.Catalog) *Budget { return &Budget{catalog: c} }

func (a *Budget) Spec() Spec {
	return Spec{
		ID:   BudgetID,
		Name: "Budget & Accessibility",
		Tier: TierEnrichment,
	}
}

func (a *Budget) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.estimate)
}

func (a *Budget) estimate(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	items := req.Draft().Items()
	if len(items) == 0 {
		return protocol.Skipped("no meal items to price"), nil
	}

	cost := 0.0
	var ingredients []string
	for _, si := range items {
		for _, in := range si.Item.Ingredients {
			cost += a.catalog.Price(in.Name, in.Grams)
			ingredients = append(ingredients, strings.ToLower(in.Name))
		}
	}
	cost = round2(cost)

	summary := []string{fmt.Sprintf("Estimated cost: $%.2f per day", cost)}
	overLimit := profile.Budget.DailyLimit > 0 && cost > profile.Budget.DailyLimit
	if overLimit {
		summary = append(summary, fmt.Sprintf("Over the $%.2f daily limit by $%.2f", profile.Budget.DailyLimit, round2(cost-profile.Budget.DailyLimit)))
	}

	subs := map[string]string{}
	if strings.EqualFold(profile.Budget.Level, budgetLow) || overLimit {
		for _, s := range budgetSubstitutions {
			if !containsSubstring(ingredients, s.from) || !a.allowed(profile, s.to) {
				continue
			}
			subs[s.from] = s.to
		}
	}
	if len(subs) > 0 {
		summary = append(summary, fmt.Sprintf("%d cheaper substitutions available", len(subs)))
	}

	return contribute(protocol.Fields{
		nutriguide.FieldBudgetSummary: summary,
		nutriguide.FieldSubstitutions: subs,
	}, fmt.Sprintf("estimated $%.2f per day", cost)), nil
}

func (a *Budget) allowed(profile nutriguide.UserProfile, food string) bool {
	texts := []string{food}
	for _, allergy := range profile.Allergies {
		if _, hit := a.catalog.ContainsAllergen(allergy, texts); hit {
			return false
		}
	}
	for _, r := range profile.HardRestrictions {
		if _, hit := a.catalog.ViolatesRestriction(r, texts); hit {
			return false
		}
	}
	return catalog.DietAllows(NormalizePreferences(profile.Preferences).DietType, a.catalog.Diet([]nutriguide.Ingredient{{Name: food}}))
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
