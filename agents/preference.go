package agents

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"nutriguide"
	"nutriguide/protocol"
)

// Preference normalises declared food preferences so later tiers compare like with like.
type Preference struct{}

func NewPreference() *Preference { return &Preference{} }

func (a *Preference) Spec() Spec {
	return Spec{
		ID:              PreferenceID,
		Name:            "Preference",
		Tier:            TierProfile,
		MayPatchProfile: true,
		Required:        []string{nutriguide.FieldPreferences},
	}
}

func (a *Preference) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.normalize)
}

func (a *Preference) normalize(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	p := NormalizePreferences(profile.Preferences)

	fields := protocol.Fields{nutriguide.FieldNormalizedPreferences: p}
	if !samePreferences(p, profile.Preferences) {
		fields[nutriguide.PatchField(PreferenceID)] = nutriguide.ProfilePatch{AgentID: PreferenceID, Preferences: &p}
	}
	return contribute(fields, fmt.Sprintf("diet %q, %d cuisines, %d dislikes", p.DietType, len(p.Cuisines), len(p.Disliked))), nil
}

// NormalizePreferences lower-cases, trims and de-duplicates preference lists, keeping first-seen order.
func NormalizePreferences(p nutriguide.Preferences) nutriguide.Preferences {
	return nutriguide.Preferences{
		DietType: normalizeTerm(p.DietType),
		Cuisines: normalizeList(p.Cuisines),
		Disliked: normalizeList(p.Disliked),
	}
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
}

func normalizeList(in []string) []string {
	var out []string
	for _, s := range in {
		n := normalizeTerm(s)
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func samePreferences(a, b nutriguide.Preferences) bool {
	return a.DietType == b.DietType && slices.Equal(a.Cuisines, b.Cuisines) && slices.Equal(a.Disliked, b.Disliked)
}

// preferencesFor returns the normalised preferences from the draft, falling back to the profile.
func preferencesFor(req protocol.Envelope, profile nutriguide.UserProfile) nutriguide.Preferences {
	if p, ok := req.Draft().Preferences(); ok {
		return p
	}
	return NormalizePreferences(profile.Preferences)
}
