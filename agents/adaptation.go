package agents

import (
	"context"
	"fmt"
	"slices"

	"nutriguide"
	"nutriguide/protocol"
)

const (
	plateauAdjustmentKcal = -100
	lowRating             = 2
)

// Cuisines introduced in order when a person reports boredom.
var cuisineRotation = []string{"mediterranean", "asian", "indian", "mexican", "middle eastern"}

// Adaptation adjusts the next cycle from progress feedback: plateaus, boredom and low ratings.
type Adaptation struct{}

func NewAdaptation() *Adaptation { return &Adaptation{} }

func (a *Adaptation) Spec() Spec {
	return Spec{
		ID:              AdaptationID,
		Name:            "Adaptation",
		Tier:            TierEnrichment,
		MayPatchProfile: true,
		Required:        []string{nutriguide.FieldFeedback},
	}
}

func (a *Adaptation) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.adapt)
}

func (a *Adaptation) adapt(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	var plateau, bored, unhappy bool
	for _, f := range profile.Feedback {
		plateau = plateau || f.WeightPlateau
		bored = bored || f.Boredom
		unhappy = unhappy || (f.Rating > 0 && f.Rating <= lowRating)
	}

	patch := nutriguide.ProfilePatch{AgentID: AdaptationID}
	var notes []string
	if plateau {
		patch.CalorieAdjustment = plateauAdjustmentKcal
		notes = append(notes, fmt.Sprintf("Weight plateau detected: next plan adjusts calories by %d kcal", plateauAdjustmentKcal))
	}
	if bored {
		known := preferencesFor(req, profile).Cuisines
		i := slices.IndexFunc(cuisineRotation, func(c string) bool { return !slices.Contains(known, c) })
		if i >= 0 {
			patch.AddCuisines = []string{cuisineRotation[i]}
			notes = append(notes, fmt.Sprintf("Meal boredom reported: introducing %s cuisine next cycle", cuisineRotation[i]))
		}
	}
	if unhappy {
		notes = append(notes, "Low rating received: favour simpler dishes with fewer ingredients")
	}
	if len(notes) == 0 {
		return protocol.Skipped("feedback needs no adaptation"), nil
	}

	return contribute(protocol.Fields{
		nutriguide.FieldAdaptationNotes:     notes,
		nutriguide.PatchField(AdaptationID): patch,
	}, fmt.Sprintf("%d adaptations", len(notes))), nil
}
