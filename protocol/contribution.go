package protocol

import (
	"maps"
	"slices"

	"nutriguide"
)

type Status string

const (
	StatusOK      Status = "OK"
	StatusVeto    Status = "VETO"
	StatusSkipped Status = "SKIPPED"
	StatusFailed  Status = "FAILED"
)

// Contribution is what an agent returns for a request: proposed plan fields or a verdict.
type Contribution struct {
	AgentID    string  `json:"agent_id"`
	Status     Status  `json:"status"`
	Fields     Fields  `json:"fields,omitempty"`
	Rationale  string  `json:"rationale,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// OK builds a successful contribution.
func OK(fields Fields, rationale string) Contribution {
	return Contribution{Status: StatusOK, Fields: fields, Rationale: rationale, Confidence: 1}
}

// Veto builds a safety veto. Only veto-eligible agents may return it.
func Veto(reason string) Contribution {
	return Contribution{Status: StatusVeto, Rationale: reason, Confidence: 1}
}

// Skipped builds a contribution for an agent that had nothing to do.
func Skipped(reason string) Contribution {
	return Contribution{Status: StatusSkipped, Rationale: reason}
}

// Failed builds a contribution for an agent that could not complete.
func Failed(err error) Contribution {
	return Contribution{Status: StatusFailed, Rationale: err.Error()}
}

func (c Contribution) Clone() Contribution {
	c.Fields = c.Fields.Clone()
	return c
}

// Fields maps plan field names to proposed values.
type Fields map[string]any

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	return slices.Sorted(maps.Keys(f))
}

func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

// Targets returns the targets field if present.
func (f Fields) Targets() (nutriguide.Targets, bool) {
	t, ok := f[nutriguide.FieldTargets].(nutriguide.Targets)
	return t, ok
}

// Item returns the proposed item for a meal slot.
func (f Fields) Item(slot string) (nutriguide.MealItem, bool) {
	it, ok := f[nutriguide.SlotField(slot)].(nutriguide.MealItem)
	if !ok {
		return nutriguide.MealItem{}, false
	}
	it.Ingredients = slices.Clone(it.Ingredients)
	return it, true
}

// Items returns the proposed items keyed by slot, in plan slot order.
func (f Fields) Items() []SlotItem {
	var out []SlotItem
	for _, slot := range nutriguide.SlotOrder {
		if it, ok := f.Item(slot); ok {
			out = append(out, SlotItem{Slot: slot, Item: it})
		}
	}
	return out
}

// Preferences returns the normalised preferences if present.
func (f Fields) Preferences() (nutriguide.Preferences, bool) {
	p, ok := f[nutriguide.FieldNormalizedPreferences].(nutriguide.Preferences)
	return p, ok
}

type SlotItem struct {
	Slot string
	Item nutriguide.MealItem
}

// Payload is the structured key/value body of an envelope.
type Payload map[string]any

func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case nutriguide.UserProfile:
		return tv.Clone()
	case nutriguide.NutritionPlan:
		return tv.Clone()
	case nutriguide.MealItem:
		tv.Ingredients = slices.Clone(tv.Ingredients)
		return tv
	case nutriguide.Preferences:
		tv.Cuisines = slices.Clone(tv.Cuisines)
		tv.Disliked = slices.Clone(tv.Disliked)
		return tv
	case nutriguide.ProfilePatch:
		if tv.Preferences != nil {
			p := cloneValue(*tv.Preferences).(nutriguide.Preferences)
			tv.Preferences = &p
		}
		tv.AddDisliked = slices.Clone(tv.AddDisliked)
		tv.AddCuisines = slices.Clone(tv.AddCuisines)
		tv.AddLifestyle = slices.Clone(tv.AddLifestyle)
		return tv
	case Fields:
		return tv.Clone()
	case Contribution:
		return tv.Clone()
	case []string:
		return slices.Clone(tv)
	case map[string]string:
		return maps.Clone(tv)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, v := range tv {
			out[k] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, v := range tv {
			out[i] = cloneValue(v)
		}
		return out
	default:
		return tv
	}
}
