package catalog

import (
	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"nutriguide"
)

func itemSchema() *jsonschema.Schema {
	minGrams := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":    {Type: "string"},
			"cuisine": {Type: "string"},
			"ingredients": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"name":  {Type: "string"},
						"grams": {Type: "number", Minimum: &minGrams},
					},
					Required: []string{"name", "grams"},
				},
			},
		},
		Required: []string{"name", "ingredients"},
	}
}

// MealProposalSchema is the structured output requested from the reasoning service when
// the goal agent asks for one item per meal slot.
func MealProposalSchema() *jsonschema.Schema {
	slots := make(map[string]*jsonschema.Schema, len(nutriguide.SlotOrder))
	for _, s := range nutriguide.SlotOrder {
		slots[s] = itemSchema()
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"meals": {
				Type:       "object",
				Properties: slots,
			},
		},
		Required: []string{"meals"},
	}
}

// RecipeNotesSchema is the structured output requested by the food-knowledge agent.
func RecipeNotesSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes": {
				Type:        "object",
				Description: "cooking instructions keyed by meal slot",
			},
			"notes": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"recipes"},
	}
}

// MotivationSchema is the structured output requested by the motivation agent.
func MotivationSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"message":   {Type: "string"},
			"education": {Type: "string"},
		},
		Required: []string{"message"},
	}
}
