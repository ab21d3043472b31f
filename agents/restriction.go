package agents

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
)

// interaction is a food tag that interferes with a class of medication.
type interaction struct {
	tag         string
	label       string
	medications []string
}

var foodDrugInteractions = []interaction{
	{tag: catalog.TagGrapefruit, label: "grapefruit", medications: []string{"statin", "atorvastatin", "simvastatin", "blood pressure"}},
	{tag: catalog.TagVitaminK, label: "vitamin K rich foods", medications: []string{"warfarin"}},
	{tag: catalog.TagTyramine, label: "tyramine rich foods", medications: []string{"maoi", "phenelzine", "selegiline"}},
}

// RestrictionSafety vetoes plans that contain declared allergens or break a hard dietary restriction.
type RestrictionSafety struct {
	catalog *catalog.Catalog
}

func NewRestrictionSafety(c *catalog.Catalog) *RestrictionSafety {
	return &RestrictionSafety{catalog: c}
}

func (a *RestrictionSafety) Spec() Spec {
	return Spec{
		ID:       RestrictionSafetyID,
		Name:     "Restriction & Safety",
		Tier:     TierSafety,
		CanVeto:  true,
		Required: []string{nutriguide.FieldAllergies},
	}
}

func (a *RestrictionSafety) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.check)
}

func (a *RestrictionSafety) check(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	notes := a.medicationNotes(profile)

	if req.Phase() != protocol.PhaseGate {
		if len(profile.Allergies) == 0 {
			notes = append(notes, "No allergies declared")
		}
		return safetyOK(RestrictionSafetyID, notes, "profile restrictions recorded"), nil
	}

	plan, ok := req.Candidate()
	if !ok {
		return protocol.Contribution{}, &MissingInputError{AgentID: RestrictionSafetyID, Field: protocol.KeyCandidate}
	}

	for _, slot := range plan.Meals {
		for _, item := range slot.Items {
			texts := item.Text()
			for _, allergy := range profile.Allergies {
				if hit, found := a.catalog.ContainsAllergen(allergy, texts); found {
					return protocol.Veto(fmt.Sprintf("ALLERGY: %s item %q contains %s (%s)", slot.Slot, item.Name, allergy, hit)), nil
				}
			}
			for _, r := range profile.HardRestrictions {
				if hit, found := a.catalog.ViolatesRestriction(r, texts); found {
					return protocol.Veto(fmt.Sprintf("RESTRICTION: %s item %q violates %s (%s)", slot.Slot, item.Name, r, hit)), nil
				}
			}
			for _, in := range profile.Intolerances {
				if hit, found := a.catalog.ContainsAllergen(in, texts); found {
					notes = append(notes, fmt.Sprintf("Intolerance: %s in %s (%s)", in, item.Name, hit))
				}
			}
			notes = append(notes, a.interactionWarnings(profile, item)...)
		}
	}
	return safetyOK(RestrictionSafetyID, dedupe(notes), "no allergens or restricted ingredients in candidate plan"), nil
}

func (a *RestrictionSafety) medicationNotes(profile nutriguide.UserProfile) []string {
	var notes []string
	for _, ix := range foodDrugInteractions {
		if med, ok := takesAny(profile.Medications, ix.medications); ok {
			notes = append(notes, fmt.Sprintf("Limit %s while taking %s", ix.label, med))
		}
	}
	return notes
}

func (a *RestrictionSafety) interactionWarnings(profile nutriguide.UserProfile, item nutriguide.MealItem) []string {
	var out []string
	for _, ix := range foodDrugInteractions {
		med, ok := takesAny(profile.Medications, ix.medications)
		if !ok {
			continue
		}
		if hit, found := a.catalog.HasTag(item.Text(), ix.tag); found {
			out = append(out, fmt.Sprintf("INTERACTION: %s (%s) may interact with %s", item.Name, hit, med))
		}
	}
	return out
}

// takesAny returns the first medication containing one of the keywords.
func takesAny(medications, keywords []string) (string, bool) {
	for _, m := range medications {
		lm := strings.ToLower(m)
		for _, kw := range keywords {
			if strings.Contains(lm, kw) {
				return m, true
			}
		}
	}
	return "", false
}

// safetyOK wraps annotations under the agent's safety field.
func safetyOK(agentID string, notes []string, rationale string) protocol.Contribution {
	return contribute(protocol.Fields{nutriguide.SafetyField(agentID): notes}, rationale)
}

func dedupe(in []string) []string {
	var out []string
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
