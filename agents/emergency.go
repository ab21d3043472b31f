package agents

import (
	"context"
	"fmt"
	"strings"

	"nutriguide"
	"nutriguide/protocol"
)

// SafetyLimits are the thresholds the emergency-risk agent enforces.
type SafetyLimits struct {
	MaxDeficitFraction float64
	MaxWeeklyLossKG    float64
	FloorFemale        float64
	FloorMale          float64
}

func DefaultSafetyLimits() SafetyLimits {
	return SafetyLimits{
		MaxDeficitFraction: 0.25,
		MaxWeeklyLossKG:    1.0,
		FloorFemale:        1200,
		FloorMale:          1500,
	}
}

func (l SafetyLimits) floor(sex string) float64 {
	if isMale(sex) {
		return l.FloorMale
	}
	return l.FloorFemale
}

const (
	bmiUnderweight      = 18.5
	bmiObese            = 30.0
	observedLossDanger  = 2.0
	observedLossConcern = 1.0
	bloodPressureHigh   = 140.0
	bloodPressureLow    = 90.0
)

var supplementDrugInteractions = []struct {
	drug        string
	supplements []string
}{
	{drug: "warfarin", supplements: []string{"vitamin_k", "vitamin k", "fish_oil", "fish oil", "garlic"}},
	{drug: "statin", supplements: []string{"grapefruit", "red_yeast_rice", "red yeast rice"}},
	{drug: "blood_pressure", supplements: []string{"licorice", "garlic"}},
	{drug: "diabetes", supplements: []string{"chromium", "cinnamon"}},
}

// EmergencyRisk vetoes unsafe energy targets, weight-change rates and supplement-drug combinations.
type EmergencyRisk struct {
	limits SafetyLimits
}

func NewEmergencyRisk(limits SafetyLimits) *EmergencyRisk {
	d := DefaultSafetyLimits()
	if limits.MaxDeficitFraction <= 0 {
		limits.MaxDeficitFraction = d.MaxDeficitFraction
	}
	if limits.MaxWeeklyLossKG <= 0 {
		limits.MaxWeeklyLossKG = d.MaxWeeklyLossKG
	}
	if limits.FloorFemale <= 0 {
		limits.FloorFemale = d.FloorFemale
	}
	if limits.FloorMale <= 0 {
		limits.FloorMale = d.FloorMale
	}
	return &EmergencyRisk{limits: limits}
}

func (a *EmergencyRisk) Spec() Spec {
	return Spec{
		ID:      EmergencyRiskID,
		Name:    "Emergency & Risk",
		Tier:    TierSafety,
		CanVeto: true,
		Required: []string{
			nutriguide.FieldAge,
			nutriguide.FieldSex,
			nutriguide.FieldHeight,
			nutriguide.FieldWeight,
		},
	}
}

func (a *EmergencyRisk) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.check)
}

func (a *EmergencyRisk) check(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	notes := a.riskNotes(profile)
	floor := a.limits.floor(profile.Sex)

	if req.Phase() == protocol.PhaseGate {
		plan, ok := req.Candidate()
		if !ok {
			return protocol.Contribution{}, &MissingInputError{AgentID: EmergencyRiskID, Field: protocol.KeyCandidate}
		}
		if plan.Totals.Calories < floor {
			return protocol.Veto(fmt.Sprintf("planned intake %.0f kcal is below the %.0f kcal floor", plan.Totals.Calories, floor)), nil
		}
		return safetyOK(EmergencyRiskID, notes, "candidate energy within safe limits"), nil
	}

	if reason, unsafe := a.preflight(profile); unsafe {
		return protocol.Veto(reason), nil
	}
	return safetyOK(EmergencyRiskID, notes, "targets within safe limits"), nil
}

// preflight returns the first unsafe condition found in the profile and its derived targets.
func (a *EmergencyRisk) preflight(profile nutriguide.UserProfile) (string, bool) {
	t := ComputeTargets(profile)

	if deficit := t.TDEE - t.Calories; deficit > a.limits.MaxDeficitFraction*t.TDEE {
		return fmt.Sprintf("caloric deficit %.0f kcal exceeds %.0f%% of TDEE %.0f kcal", deficit, a.limits.MaxDeficitFraction*100, t.TDEE), true
	}
	if floor := a.limits.floor(profile.Sex); t.Calories < floor {
		return fmt.Sprintf("calorie target %.0f kcal is below the %.0f kcal floor", t.Calories, floor), true
	}
	if rate := WeeklyLossKG(t.TDEE, t.Calories); rate > a.limits.MaxWeeklyLossKG {
		return fmt.Sprintf("planned loss of %.2f kg/week exceeds %.1f kg/week", rate, a.limits.MaxWeeklyLossKG), true
	}
	if g := profile.Goals; g.TargetWeightKG > 0 && g.TimeframeWeeks > 0 && profile.WeightKG > g.TargetWeightKG {
		if rate := (profile.WeightKG - g.TargetWeightKG) / float64(g.TimeframeWeeks); rate > a.limits.MaxWeeklyLossKG {
			return fmt.Sprintf("goal of %.1f kg in %d weeks requires %.2f kg/week, above %.1f kg/week", profile.WeightKG-g.TargetWeightKG, g.TimeframeWeeks, rate, a.limits.MaxWeeklyLossKG), true
		}
	}
	if bmi := BMI(profile); profile.Goals.Type == nutriguide.GoalWeightLoss && bmi < bmiUnderweight {
		return fmt.Sprintf("weight loss requested at underweight BMI %.1f", bmi), true
	}
	if rate, ok := lookup(profile.Biomarkers, "weight_loss_rate"); ok && rate > observedLossDanger {
		return fmt.Sprintf("DANGEROUS WEIGHT LOSS: observed %.1f kg/week, consult a healthcare provider", rate), true
	}
	if supp, med, ok := supplementInteraction(profile); ok {
		return fmt.Sprintf("SUPPLEMENT-DRUG INTERACTION: %s with %s", supp, med), true
	}
	return "", false
}

func (a *EmergencyRisk) riskNotes(profile nutriguide.UserProfile) []string {
	var notes []string
	if bmi := BMI(profile); bmi > 0 {
		switch {
		case bmi < bmiUnderweight:
			notes = append(notes, fmt.Sprintf("Underweight BMI %.1f: consider increasing caloric intake", bmi))
		case bmi > bmiObese:
			notes = append(notes, fmt.Sprintf("BMI %.1f: consider medical supervision for weight loss", bmi))
		}
	}
	if bp, ok := lookup(profile.Biomarkers, "blood_pressure"); ok {
		switch {
		case bp > bloodPressureHigh:
			notes = append(notes, fmt.Sprintf("High blood pressure (%.0f): monitor closely", bp))
		case bp < bloodPressureLow:
			notes = append(notes, fmt.Sprintf("Low blood pressure (%.0f): consider medical evaluation", bp))
		}
	}
	if rate, ok := lookup(profile.Biomarkers, "weight_loss_rate"); ok && rate > observedLossConcern && rate <= observedLossDanger {
		notes = append(notes, fmt.Sprintf("Rapid weight loss (%.1f kg/week): consider slowing down", rate))
	}
	return notes
}

func supplementInteraction(profile nutriguide.UserProfile) (supplement, medication string, found bool) {
	for _, med := range profile.Medications {
		lm := strings.ToLower(strings.ReplaceAll(med, " ", "_"))
		for _, ix := range supplementDrugInteractions {
			if !strings.Contains(lm, ix.drug) {
				continue
			}
			for _, s := range profile.Supplements {
				ls := strings.ToLower(s)
				for _, kw := range ix.supplements {
					if strings.Contains(ls, kw) {
						return s, med, true
					}
				}
			}
		}
	}
	return "", "", false
}
