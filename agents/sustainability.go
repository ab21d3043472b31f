package agents

import (
	"context"
	"fmt"
	"slices"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
)

var carbonScore = map[string]int{
	catalog.CarbonHigh:   -3,
	catalog.CarbonMedium: -1,
	catalog.CarbonLow:    2,
}

// Sustainability scores the plan's carbon footprint and seasonality.
type Sustainability struct {
	catalog *catalog.Catalog
}

func NewSustainability(c *catalog.Catalog) *Sustainability { return &Sustainability{catalog: c} }

func (a *Sustainability) Spec() Spec {
	return Spec{
		ID:   SustainabilityID,
		Name: "Sustainability & Environment",
		Tier: TierEnrichment,
	}
}

func (a *Sustainability) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.score)
}

func (a *Sustainability) score(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	items := req.Draft().Items()
	if len(items) == 0 {
		return protocol.Skipped("no meal items to score"), nil
	}

	month := 0
	if d := req.PlanDate(); !d.IsZero() {
		month = int(d.Month())
	}

	score := 0
	var seen, suggestions []string
	for _, si := range items {
		for _, in := range si.Item.Ingredients {
			if slices.Contains(seen, in.Name) {
				continue
			}
			seen = append(seen, in.Name)

			tier := a.catalog.Carbon(in.Name)
			score += carbonScore[tier]
			if tier == catalog.CarbonHigh {
				suggestions = append(suggestions, fmt.Sprintf("Consider replacing %s with a plant-based alternative", in.Name))
			}
			if month == 0 {
				continue
			}
			if inSeason, known := a.catalog.InSeason(in.Name, month); known && !inSeason {
				suggestions = append(suggestions, fmt.Sprintf("%s is not in season, consider local alternatives", in.Name))
			}
		}
	}

	summary := append([]string{fmt.Sprintf("Sustainability score: %d", score)}, suggestions...)
	return contribute(protocol.Fields{nutriguide.FieldSustainabilitySummary: summary}, fmt.Sprintf("score %d over %d ingredients", score, len(seen))), nil
}
