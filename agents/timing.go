package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nutriguide"
	"nutriguide/protocol"
)

var (
	restDayTimes = map[string]string{
		nutriguide.SlotBreakfast: "08:00",
		nutriguide.SlotLunch:     "12:30",
		nutriguide.SlotSnack:     "15:30",
		nutriguide.SlotDinner:    "19:00",
	}
	trainingDayTimes = map[string]string{
		nutriguide.SlotBreakfast: "07:00",
		nutriguide.SlotLunch:     "12:30",
		nutriguide.SlotSnack:     "17:00",
		nutriguide.SlotDinner:    "20:00",
	}
)

// Timing schedules meals around rest and training days.
type Timing struct{}

func NewTiming() *Timing { return &Timing{} }

func (a *Timing) Spec() Spec {
	return Spec{
		ID:   TimingID,
		Name: "Meal Timing & Habit",
		Tier: TierEnrichment,
	}
}

func (a *Timing) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return handle(ctx, a.Spec(), req, a.schedule)
}

// IsTrainingDay reports whether date falls on one of the declared training days.
// Days may be given as full or three-letter English names.
func IsTrainingDay(days []string, date time.Time) bool {
	if date.IsZero() {
		return false
	}
	wd := strings.ToLower(date.Weekday().String())
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == wd || (len(d) >= 3 && strings.HasPrefix(wd, d)) {
			return true
		}
	}
	return false
}

func (a *Timing) schedule(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error) {
	var slots []string
	for _, si := range req.Draft().Items() {
		slots = append(slots, si.Slot)
	}
	if len(slots) == 0 {
		slots = PlanSlots(profile)
	}

	date := req.PlanDate()
	training := IsTrainingDay(profile.TrainingDays, date)
	times := restDayTimes
	if training {
		times = trainingDayTimes
	}

	schedule := make(map[string]string, len(slots))
	for _, s := range slots {
		schedule[s] = times[s]
	}

	var notes []string
	if training {
		notes = append(notes,
			"Pre-workout: light carbohydrates 2-3 hours before training",
			"Post-workout: protein and carbohydrates within 30 minutes",
		)
	} else {
		notes = append(notes, "Rest day: eat breakfast within an hour of waking and dinner 2-3 hours before bed")
	}
	if profile.HasTag(LifestyleSkipsLunch) {
		notes = append(notes, "Lunch is skipped; calories are shifted to the remaining meals")
	}

	kind := "rest"
	if training {
		kind = "training"
	}
	return contribute(protocol.Fields{
		nutriguide.FieldMealTiming:  schedule,
		nutriguide.FieldTimingNotes: notes,
	}, fmt.Sprintf("%s day schedule for %s", kind, date.Format(time.DateOnly))), nil
}
