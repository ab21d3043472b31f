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

// Condition codes with their accepted aliases.
var (
	conditionCKD          = []string{"ckd", "chronic kidney disease", "renal_impairment"}
	conditionCeliac       = []string{"celiac", "coeliac"}
	conditionDiabetes     = []string{"diabetes", "type_2_diabetes", "type_1_diabetes"}
	conditionHypertension = []string{"hypertension", "high_blood_pressure"}
	conditionED           = []string{"eating_disorder", "anorexia", "bulimia"}
	conditionPregnancy    = []string{"pregnancy", "pregnant"}
)

const (
	diabetesMaxCarbShare  = 0.5
	hypertensionMaxSodium = 1500.0
	bloodSugarHigh        = 125.0
	cholesterolHigh       = 200.0
	vitaminDInsufficient  = 30.0
)

// Medical vetoes goals and plans contraindicated by a declared condition and annotates biomarkers.
type Medical struct {
	catalog *catalog.Catalog
}

func NewMedical(c *catalog.Catalog) *Medical {
	return &Medical{catalog: c}
}

func (a *Medical) Spec() Spec {
	return Spec{
		ID:      MedicalID,
		Name:    "Medical & Biomarker",
		Tier:    TierSafety,
		CanVeto: true,
	}
}

func (a *Medical) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.check)
}

func hasAny(profile nutriguide.UserProfile, codes []string) (string, bool) {
	i := slices.IndexFunc(codes, profile.HasCondition)
	if i < 0 {
		return "", false
	}
	return codes[i], true
}

func (a *Medical) check(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	notes := biomarkerNotes(profile.Biomarkers)

	if req.Phase() != protocol.PhaseGate {
		if profile.Goals.Type == nutriguide.GoalWeightLoss {
			if c, ok := hasAny(profile, conditionED); ok {
				return protocol.Veto(fmt.Sprintf("weight loss goal is contraindicated with %s; refer to a clinician", c)), nil
			}
			if c, ok := hasAny(profile, conditionPregnancy); ok {
				return protocol.Veto(fmt.Sprintf("weight loss goal is contraindicated during %s", c)), nil
			}
		}
		return safetyOK(MedicalID, notes, "no contraindicated goal"), nil
	}

	plan, ok := req.Candidate()
	if !ok {
		return protocol.Contribution{}, &MissingInputError{AgentID: MedicalID, Field: protocol.KeyCandidate}
	}

	for _, slot := range plan.Meals {
		for _, item := range slot.Items {
			if c, ok := hasAny(profile, conditionCKD); ok {
				if hit, found := a.catalog.HasTag(item.Text(), catalog.TagHighPotassium); found {
					return protocol.Veto(fmt.Sprintf("%s item %q is high in potassium (%s), contraindicated with %s", slot.Slot, item.Name, hit, c)), nil
				}
			}
			if c, ok := hasAny(profile, conditionCeliac); ok {
				if hit, found := a.catalog.HasTag(item.Text(), catalog.TagGluten); found {
					return protocol.Veto(fmt.Sprintf("%s item %q contains gluten (%s), contraindicated with %s", slot.Slot, item.Name, hit, c)), nil
				}
			}
		}
	}

	totals := plan.Totals
	if c, ok := hasAny(profile, conditionDiabetes); ok && totals.Calories > 0 {
		if share := totals.CarbsG * 4 / totals.Calories; share > diabetesMaxCarbShare {
			return protocol.Veto(fmt.Sprintf("carbohydrates provide %.0f%% of energy, above %.0f%% for %s", share*100, diabetesMaxCarbShare*100, c)), nil
		}
	}
	if c, ok := hasAny(profile, conditionHypertension); ok && totals.SodiumMG > hypertensionMaxSodium {
		return protocol.Veto(fmt.Sprintf("daily sodium %.0f mg exceeds %.0f mg for %s", totals.SodiumMG, hypertensionMaxSodium, c)), nil
	}

	return safetyOK(MedicalID, notes, "candidate plan fits declared conditions"), nil
}

func biomarkerNotes(b map[string]float64) []string {
	var notes []string
	if v, ok := lookup(b, "blood_sugar"); ok && v > bloodSugarHigh {
		notes = append(notes, fmt.Sprintf("High blood sugar (%.0f): favour low-GI foods and consult a healthcare provider", v))
	}
	if v, ok := lookup(b, "cholesterol"); ok && v > cholesterolHigh {
		notes = append(notes, fmt.Sprintf("High cholesterol (%.0f): increase fiber and reduce saturated fat", v))
	}
	if v, ok := lookup(b, "vitamin_d"); ok && v < vitaminDInsufficient {
		notes = append(notes, fmt.Sprintf("Low vitamin D (%.0f): add fortified foods or consider supplementation", v))
	}
	return notes
}

func lookup(b map[string]float64, name string) (float64, bool) {
	for k, v := range b {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return 0, false
}
