// Package catalog is the food knowledge base shared by the agents: per-100g nutrients, prices,
// carbon tiers, seasonality, recipe templates and allergen/restriction keyword families.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"nutriguide"
	"nutriguide/catalog/storage"
)

// Food tags used by the safety and enrichment agents.
const (
	TagMeat          = "meat"
	TagPork          = "pork"
	TagFish          = "fish"
	TagShellfish     = "shellfish"
	TagDairy         = "dairy"
	TagEgg           = "egg"
	TagGluten        = "gluten"
	TagSoy           = "soy"
	TagPeanut        = "peanut"
	TagNuts          = "nuts"
	TagSesame        = "sesame"
	TagHighPotassium = "high_potassium"
	TagGrapefruit    = "grapefruit"
	TagVitaminK      = "vitamin_k"
	TagTyramine      = "tyramine"
)

// Carbon tiers.
const (
	CarbonHigh   = "high"
	CarbonMedium = "medium"
	CarbonLow    = "low"
)

// Diets from most to least restrictive.
const (
	DietVegan       = "vegan"
	DietVegetarian  = "vegetarian"
	DietPescatarian = "pescatarian"
	DietOmnivore    = "omnivore"
)

var dietRank = map[string]int{DietVegan: 0, DietVegetarian: 1, DietPescatarian: 2, DietOmnivore: 3}

type Food struct {
	Name         string               `json:"name"`
	Aliases      []string             `json:"aliases,omitempty"`
	Per100g      nutriguide.Nutrition `json:"per_100g"`
	PricePer100g float64              `json:"price_per_100g"`
	Carbon       string               `json:"carbon"`
	Season       []int                `json:"season,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
}

func (f Food) HasTag(tag string) bool { return slices.Contains(f.Tags, tag) }

type Recipe struct {
	Name         string                  `json:"name"`
	Slots        []string                `json:"slots"`
	Cuisine      string                  `json:"cuisine"`
	Ingredients  []nutriguide.Ingredient `json:"ingredients"`
	Instructions string                  `json:"instructions"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	foods        []Food
	recipes      []Recipe
	allergens    map[string][]string
	restrictions map[string]restriction
}

type restriction struct {
	Tags     []string `json:"tags,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Document is the JSON shape of a catalog overlay.
type Document struct {
	Foods     []Food              `json:"foods,omitempty"`
	Recipes   []Recipe            `json:"recipes,omitempty"`
	Allergens map[string][]string `json:"allergens,omitempty"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{
		foods:        slices.Clone(defaultFoods),
		recipes:      slices.Clone(defaultRecipes),
		allergens:    make(map[string][]string, len(defaultAllergens)),
		restrictions: defaultRestrictions,
	}
	for k, v := range defaultAllergens {
		c.allergens[k] = slices.Clone(v)
	}
	return c
}

// Decode overlays a JSON document on the built-in catalog. Foods and recipes replace
// built-ins with the same name; new ones are appended.
func Decode(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	c := Default()
	for _, f := range doc.Foods {
		if f.Name == "" {
			return nil, fmt.Errorf("catalog food without a name")
		}
		f.Name = normalize(f.Name)
		if i := slices.IndexFunc(c.foods, func(x Food) bool { return x.Name == f.Name }); i >= 0 {
			c.foods[i] = f
		} else {
			c.foods = append(c.foods, f)
		}
	}
	for _, r := range doc.Recipes {
		if r.Name == "" || len(r.Ingredients) == 0 {
			return nil, fmt.Errorf("catalog recipe %q needs a name and ingredients", r.Name)
		}
		if i := slices.IndexFunc(c.recipes, func(x Recipe) bool { return strings.EqualFold(x.Name, r.Name) }); i >= 0 {
			c.recipes[i] = r
		} else {
			c.recipes = append(c.recipes, r)
		}
	}
	for family, kws := range doc.Allergens {
		c.allergens[normalize(family)] = kws
	}
	return c, nil
}

// Load reads and decodes a catalog overlay from state.
func Load(ctx context.Context, state storage.CatalogState) (*Catalog, error) {
	data, err := state.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return Decode(data)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
}

// Food finds the food for an ingredient name: exact name or alias first, then the longest
// food name contained in the ingredient.
func (c *Catalog) Food(name string) (Food, bool) {
	n := normalize(name)
	for _, f := range c.foods {
		if f.Name == n || slices.Contains(f.Aliases, n) {
			return f, true
		}
	}
	best, bestLen := -1, 0
	for i, f := range c.foods {
		for _, key := range append([]string{f.Name}, f.Aliases...) {
			if len(key) > bestLen && strings.Contains(n, key) {
				best, bestLen = i, len(key)
			}
		}
	}
	if best < 0 {
		return Food{}, false
	}
	return c.foods[best], true
}

// fallbackPer100g is used for ingredients the catalog does not know.
var fallbackPer100g = nutriguide.Nutrition{Calories: 150, ProteinG: 8, CarbsG: 20, FatG: 6, FiberG: 2, SodiumMG: 300, PotassiumMG: 200}

// Nutrients estimates the nutrition of grams of an ingredient.
func (c *Catalog) Nutrients(ingredient string, grams float64) nutriguide.Nutrition {
	per := fallbackPer100g
	if f, ok := c.Food(ingredient); ok {
		per = f.Per100g
	}
	return per.Scale(grams / 100)
}

// Item builds a meal item with portion and nutrition computed from its ingredients.
func (c *Catalog) Item(name, cuisine string, ingredients []nutriguide.Ingredient) nutriguide.MealItem {
	item := nutriguide.MealItem{Name: name, Cuisine: cuisine, Ingredients: slices.Clone(ingredients)}
	for _, in := range item.Ingredients {
		item.PortionG += in.Grams
		item.Nutrition = item.Nutrition.Add(c.Nutrients(in.Name, in.Grams))
	}
	item.PortionG = round1(item.PortionG)
	return item
}

// ScaleTo rescales ingredient grams so the item provides the requested calories.
func (c *Catalog) ScaleTo(item nutriguide.MealItem, calories float64) nutriguide.MealItem {
	if item.Nutrition.Calories <= 0 || calories <= 0 {
		return item
	}
	f := calories / item.Nutrition.Calories
	scaled := make([]nutriguide.Ingredient, len(item.Ingredients))
	for i, in := range item.Ingredients {
		scaled[i] = nutriguide.Ingredient{Name: in.Name, Grams: round1(in.Grams * f)}
	}
	return c.Item(item.Name, item.Cuisine, scaled)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// Recipes returns the recipes usable for a slot in catalog order.
func (c *Catalog) Recipes(slot string) []Recipe {
	var out []Recipe
	for _, r := range c.recipes {
		if slices.Contains(r.Slots, slot) {
			out = append(out, r)
		}
	}
	return out
}

// Recipe looks a recipe up by name, case-insensitively.
func (c *Catalog) Recipe(name string) (Recipe, bool) {
	for _, r := range c.recipes {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Recipe{}, false
}

// Diet returns the least restrictive diet label a recipe satisfies.
func (c *Catalog) Diet(ingredients []nutriguide.Ingredient) string {
	diet := DietVegan
	for _, in := range ingredients {
		f, ok := c.Food(in.Name)
		if !ok {
			continue
		}
		switch {
		case f.HasTag(TagMeat):
			return DietOmnivore
		case f.HasTag(TagFish) || f.HasTag(TagShellfish):
			diet = DietPescatarian
		case (f.HasTag(TagDairy) || f.HasTag(TagEgg)) && diet == DietVegan:
			diet = DietVegetarian
		}
	}
	return diet
}

// DietAllows reports whether a recipe of recipeDiet fits a person following diet.
// Unknown or empty diets allow everything.
func DietAllows(diet, recipeDiet string) bool {
	want, ok := dietRank[normalize(diet)]
	if !ok {
		return true
	}
	return dietRank[recipeDiet] <= want
}

// HasTag reports whether any text resolves to a food carrying tag.
func (c *Catalog) HasTag(texts []string, tag string) (string, bool) {
	for _, t := range texts {
		if f, ok := c.Food(t); ok && f.HasTag(tag) {
			return t, true
		}
	}
	return "", false
}

var allergenAliases = map[string]string{
	"peanuts":   "peanut",
	"tree nuts": "nuts",
	"tree nut":  "nuts",
	"nut":       "nuts",
	"milk":      "dairy",
	"lactose":   "dairy",
	"eggs":      "egg",
	"gluten":    "wheat",
	"soya":      "soy",
}

// AllergenFamily canonicalises an allergy name.
func AllergenFamily(allergy string) string {
	a := normalize(allergy)
	if f, ok := allergenAliases[a]; ok {
		return f
	}
	return a
}

var familyTags = map[string]string{
	"peanut":    TagPeanut,
	"nuts":      TagNuts,
	"dairy":     TagDairy,
	"egg":       TagEgg,
	"shellfish": TagShellfish,
	"fish":      TagFish,
	"wheat":     TagGluten,
	"soy":       TagSoy,
	"sesame":    TagSesame,
}

// ContainsAllergen returns the first text that carries the allergen.
func (c *Catalog) ContainsAllergen(allergy string, texts []string) (string, bool) {
	family := AllergenFamily(allergy)
	if family == "" {
		return "", false
	}
	keywords := c.allergens[family]
	if len(keywords) == 0 {
		keywords = []string{family}
	}
	for _, t := range texts {
		for _, kw := range keywords {
			if strings.Contains(t, kw) {
				return t, true
			}
		}
	}
	if tag, ok := familyTags[family]; ok {
		return c.HasTag(texts, tag)
	}
	return "", false
}

// ViolatesRestriction returns the first text that breaks a hard restriction.
func (c *Catalog) ViolatesRestriction(name string, texts []string) (string, bool) {
	key := normalize(name)
	r, ok := c.restrictions[key]
	if !ok {
		r = restriction{Keywords: []string{key}}
	}
	for _, t := range texts {
		for _, kw := range r.Keywords {
			if strings.Contains(t, kw) {
				return t, true
			}
		}
	}
	for _, tag := range r.Tags {
		if t, ok := c.HasTag(texts, tag); ok {
			return t, true
		}
	}
	return "", false
}

// Price returns the estimated price of grams of an ingredient.
func (c *Catalog) Price(ingredient string, grams float64) float64 {
	per := 0.5
	if f, ok := c.Food(ingredient); ok && f.PricePer100g > 0 {
		per = f.PricePer100g
	}
	return per * grams / 100
}

// Carbon returns the carbon tier of an ingredient; unknown ingredients are medium.
func (c *Catalog) Carbon(ingredient string) string {
	if f, ok := c.Food(ingredient); ok && f.Carbon != "" {
		return f.Carbon
	}
	return CarbonMedium
}

// InSeason reports seasonality for month (1-12). known is false for foods without a season.
func (c *Catalog) InSeason(ingredient string, month int) (inSeason, known bool) {
	f, ok := c.Food(ingredient)
	if !ok || len(f.Season) == 0 {
		return false, false
	}
	return slices.Contains(f.Season, month), true
}
