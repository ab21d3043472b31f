package agents

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"

	"nutriguide"
	"nutriguide/catalog"
	"nutriguide/protocol"
	"nutriguide/reasoning"
)

const motivationSystemPrompt = `You are a supportive nutrition coach.
Write one short encouraging message and one practical education tip for the person in the context.`

var motivationTips = []string{
	"Every healthy choice is a step toward your goals!",
	"Your body thanks you for nourishing it well.",
	"Small changes lead to big results over time.",
	"You're building healthy habits that last a lifetime.",
}

var educationTips = map[string]string{
	nutriguide.GoalWeightLoss:  "Protein helps build and repair muscles, and keeps you feeling full longer.",
	nutriguide.GoalMuscleGain:  "Spread protein across meals: 20-40 g per meal supports muscle repair after training.",
	nutriguide.GoalMaintenance: "Fiber supports gut health and helps regulate blood sugar levels.",
}

const defaultEducation = "Every meal is an opportunity to nourish your body with the nutrients it needs."

// Motivation writes a progress-aware message and a goal-specific education tip.
type Motivation struct {
	reasoner reasoning.Reasoner
}

func NewMotivation(r reasoning.Reasoner) *Motivation { return &Motivation{reasoner: r} }

func (a *Motivation) Spec() Spec {
	return Spec{
		ID:            MotivationID,
		Name:          "Motivation & Education",
		Tier:          TierEnrichment,
		UsesReasoning: a.reasoner != nil,
	}
}

func (a *Motivation) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.encourage)
}

type motivationReply struct {
	Message   string `json:"message"`
	Education string `json:"education"`
}

func (a *Motivation) encourage(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	message, education := fallbackMotivation(profile)
	source := "built-in"

	if a.reasoner != nil {
		res, err := a.reasoner.Invoke(ctx, reasoning.Prompt{
			Agent:  MotivationID,
			System: motivationSystemPrompt,
			Input:  "Encourage this person for today's plan.",
			Context: map[string]any{
				"goal":     goalType(profile),
				"progress": message,
			},
			Schema: catalog.MotivationSchema(),
		})
		var reply motivationReply
		switch {
		case err != nil:
			slog.Warn("AGENT: motivation falling back to built-in tips", "agent", MotivationID, "error", err)
		case reasoning.Decode(res, &reply) != nil:
			slog.Warn("AGENT: motivation reply not decodable", "agent", MotivationID)
		default:
			if m := strings.TrimSpace(reply.Message); m != "" {
				message, source = m, "reasoning"
			}
			if e := strings.TrimSpace(reply.Education); e != "" {
				education = e
			}
		}
	}

	return contribute(protocol.Fields{
		nutriguide.FieldMotivation: message,
		nutriguide.FieldEducation:  education,
	}, source+" motivation"), nil
}

// fallbackMotivation picks progress-aware content, choosing tips deterministically from the profile id.
func fallbackMotivation(profile nutriguide.UserProfile) (message, education string) {
	var lost float64
	var streak int
	for _, f := range profile.Feedback {
		lost = max(lost, f.ProgressKG)
		streak = max(streak, f.StreakDays)
	}

	switch {
	case lost > 0:
		message = fmt.Sprintf("Congratulations! You've lost %.1f kg. Your dedication is paying off!", lost)
	case streak > 0:
		message = fmt.Sprintf("Amazing! You've been consistent for %d days. Keep up the great work!", streak)
	default:
		h := fnv.New32a()
		_, _ = h.Write([]byte(profile.ID))
		message = motivationTips[h.Sum32()%uint32(len(motivationTips))]
	}

	education = educationTips[profile.Goals.Type]
	if education == "" {
		education = defaultEducation
	}
	return message, education
}
