package agents

import (
	"context"
	"fmt"
	"strings"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
)

type cuisineSwaps struct {
	protein       string
	vegetarian    string
	grain         string
	fat           string
	spices        []string
	cookingMethod string
}

var cuisineAdaptations = map[string]cuisineSwaps{
	"indian":         {protein: "chicken", vegetarian: "paneer", grain: "quinoa", spices: []string{"turmeric", "cumin"}, cookingMethod: "curry"},
	"mediterranean":  {protein: "fish", vegetarian: "chickpeas", grain: "quinoa", fat: "olive oil"},
	"asian":          {protein: "fish", vegetarian: "tofu", spices: []string{"ginger", "garlic"}, cookingMethod: "stir-fry"},
	"mexican":        {protein: "chicken", vegetarian: "black beans", grain: "corn tortilla", spices: []string{"cumin", "chili"}},
	"middle eastern": {protein: "chicken", vegetarian: "chickpeas", grain: "bulgur", fat: "olive oil", spices: []string{"sumac", "za'atar"}},
}

// Cultural suggests ingredient swaps that align the plan with the person's culinary background.
type Cultural struct {
	catalog *catalog.Catalog
}

func NewCultural(c *catalog.Catalog) *Cultural { return &Cultural{catalog: c} }

func (a *Cultural) Spec() Spec {
	return Spec{
		ID:       CulturalID,
		Name:     "Cultural & Lifestyle",
		Tier:     TierEnrichment,
		Required: []string{nutriguide.FieldCulture},
	}
}

func (a *Cultural) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.adapt)
}

func (a *Cultural) adapt(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	prefs := preferencesFor(req, profile)
	cuisines := normalizeList(append(normalizeList(profile.Culture), prefs.Cuisines...))

	var cuisine string
	var swaps cuisineSwaps
	for _, c := range cuisines {
		if s, ok := cuisineAdaptations[c]; ok {
			cuisine, swaps = c, s
			break
		}
	}
	if cuisine == "" {
		return protocol.Skipped(fmt.Sprintf("no adaptations known for %s", strings.Join(cuisines, ", "))), nil
	}

	protein := swaps.protein
	if !catalog.DietAllows(prefs.DietType, catalog.DietPescatarian) {
		protein = swaps.vegetarian
	}

	out := map[string]string{"cuisine": cuisine}
	a.suggest(out, profile, prefs.DietType, "protein_swap", protein)
	a.suggest(out, profile, prefs.DietType, "grain_swap", swaps.grain)
	a.suggest(out, profile, prefs.DietType, "fat_swap", swaps.fat)
	if len(swaps.spices) > 0 {
		out["spice_additions"] = strings.Join(swaps.spices, ", ")
	}
	if swaps.cookingMethod != "" {
		out["cooking_method"] = swaps.cookingMethod
	}

	return contribute(protocol.Fields{nutriguide.FieldCulturalAdaptations: out}, fmt.Sprintf("adapted toward %s cuisine", cuisine)), nil
}

// suggest records a swap unless it breaks the diet or introduces a declared allergen or restricted food.
func (a *Cultural) suggest(out map[string]string, profile nutriguide.UserProfile, diet, key, food string) {
	if food == "" {
		return
	}
	if !catalog.DietAllows(diet, a.catalog.Diet([]nutriguide.Ingredient{{Name: food}})) {
		return
	}
	texts := []string{food}
	for _, allergy := range profile.Allergies {
		if _, hit := a.catalog.ContainsAllergen(allergy, texts); hit {
			return
		}
	}
	for _, r := range profile.HardRestrictions {
		if _, hit := a.catalog.ViolatesRestriction(r, texts); hit {
			return
		}
	}
	out[key] = food
}
