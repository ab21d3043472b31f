package agents

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"nutriguide"
	"nutriguide/protocol"
)

// LifestyleSkipsLunch is the lifestyle tag that removes the lunch slot from generated plans.
const LifestyleSkipsLunch = "skips_lunch"

type feedbackPattern struct {
	name      string
	keywords  []string
	threshold int
	insight   string
}

// Patterns are counted over pending feedback and reported once their count exceeds threshold.
var feedbackPatterns = []feedbackPattern{
	{name: "skips_lunch", keywords: []string{"skip lunch", "skipped lunch", "no lunch"}, threshold: 3, insight: "Shift calories to breakfast and dinner"},
	{name: "complains_hunger", keywords: []string{"hungry", "hunger"}, threshold: 2, insight: "Increase protein and fiber content"},
	{name: "bored_with_meals", keywords: []string{"boring", "same"}, threshold: 2, insight: "Introduce more variety and new cuisines"},
	{name: "loves_spicy", keywords: []string{"spicy", "hot"}, threshold: 2, insight: "Favour spiced dishes"},
	{name: "prefers_quick_meals", keywords: []string{"quick", "fast"}, threshold: 2, insight: "Prefer recipes that take under 20 minutes"},
}

// Feedback learns from pending user feedback and stages the resulting profile changes.
type Feedback struct{}

func NewFeedback() *Feedback { return &Feedback{} }

func (a *Feedback) Spec() Spec {
	return Spec{
		ID:              FeedbackID,
		Name:            "Feedback & Learning",
		Tier:            TierProfile,
		MayPatchProfile: true,
		Required:        []string{nutriguide.FieldFeedback},
	}
}

func (a *Feedback) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.learn)
}

// CountPatterns counts keyword patterns across feedback entries. Boredom flags count as a boredom report.
func CountPatterns(entries []nutriguide.Feedback) map[string]int {
	counts := make(map[string]int, len(feedbackPatterns))
	for _, f := range entries {
		text := strings.ToLower(f.Text)
		for _, p := range feedbackPatterns {
			hit := false
			for _, kw := range p.keywords {
				if strings.Contains(text, kw) {
					hit = true
					break
				}
			}
			if p.name == "bored_with_meals" && f.Boredom {
				hit = true
			}
			if hit {
				counts[p.name]++
			}
		}
	}
	return counts
}

func (a *Feedback) learn(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	counts := CountPatterns(profile.Feedback)
	patch := nutriguide.ProfilePatch{AgentID: FeedbackID}

	var insights []string
	for _, p := range feedbackPatterns {
		if counts[p.name] <= p.threshold {
			continue
		}
		insights = append(insights, fmt.Sprintf("%s (%d reports): %s", p.name, counts[p.name], p.insight))
		if p.name == "skips_lunch" && !profile.HasTag(LifestyleSkipsLunch) {
			patch.AddLifestyle = append(patch.AddLifestyle, LifestyleSkipsLunch)
		}
	}

	known := NormalizePreferences(profile.Preferences).Disliked
	for _, f := range profile.Feedback {
		for _, d := range normalizeList(f.Disliked) {
			if !slices.Contains(known, d) && !slices.Contains(patch.AddDisliked, d) {
				patch.AddDisliked = append(patch.AddDisliked, d)
			}
		}
	}
	if len(patch.AddDisliked) > 0 {
		insights = append(insights, "New dislikes: "+strings.Join(patch.AddDisliked, ", "))
	}

	return contribute(protocol.Fields{
		nutriguide.FieldFeedbackInsights:  insights,
		nutriguide.PatchField(FeedbackID): patch,
	}, fmt.Sprintf("learned from %d feedback entries", len(profile.Feedback))), nil
}
