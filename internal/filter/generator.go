package filter

import (
	"fmt"
	"strings"

	"github.com/seriesdesk/seriesdesk/internal/schema"
)

// Control describes one filter input for a filterable field.
type Control struct {
	FieldID    int64              `json:"fieldId"`
	Label      string             `json:"label"`
	Kind       schema.ControlKind `json:"kind"`
	Operations []schema.Operation `json:"operations"`
	Operation  schema.Operation   `json:"operation"`
	Value      any                `json:"value,omitempty"`
	// Suggest marks free-text controls backed by remote autocomplete.
	Suggest bool `json:"suggest,omitempty"`
	// Min and Max carry the paired bounds while Operation is RANGE.
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// BuildControls produces one filter control per field flagged filterable,
// seeding each from the current working set. Operator sets come from the
// shared type traits table.
func BuildControls(fields []schema.SeriesField, current List) ([]Control, error) {
	controls := make([]Control, 0, len(fields))
	for _, f := range fields {
		if !f.IsFiltered || f.ID == nil {
			continue
		}
		traits, err := schema.TraitsOf(f.DataType)
		if err != nil {
			return nil, err
		}
		if len(traits.Operations) == 0 {
			// picture fields are never filterable controls
			continue
		}
		c := Control{
			FieldID:    *f.ID,
			Label:      f.Name,
			Kind:       traits.Control,
			Operations: traits.Operations,
			Operation:  schema.OpEqual,
			Suggest:    traits.Suggest,
		}
		for _, sf := range current {
			if sf.FieldID != *f.ID {
				continue
			}
			c.Operation = sf.Operation
			if sf.Operation == schema.OpRange {
				c.Min, c.Max = splitRange(sf.Value)
			} else {
				c.Value = sf.Value
			}
		}
		controls = append(controls, c)
	}
	return controls, nil
}

// RangeState holds the paired bounds for one number field while its
// operator is RANGE. Switching the operator away discards the state.
type RangeState struct {
	Min string
	Max string
}

// Filter emits the single RANGE entry once both bounds are set and
// differ. Incomplete or degenerate bounds produce nothing.
func (r RangeState) Filter(fieldID int64) (SearchFilter, bool) {
	if r.Min == "" || r.Max == "" || r.Min == r.Max {
		return SearchFilter{}, false
	}
	return SearchFilter{
		FieldID:   fieldID,
		Value:     fmt.Sprintf("%s,%s", r.Min, r.Max),
		Operation: schema.OpRange,
	}, true
}

// Bar tracks the per-field operator and range state for the filter row.
type Bar struct {
	filters List
	ranges  map[int64]RangeState
}

// NewBar constructs an empty filter bar.
func NewBar() *Bar {
	return &Bar{ranges: make(map[int64]RangeState)}
}

// Filters returns the current working set.
func (b *Bar) Filters() List {
	return b.filters
}

// SetValue records a plain single-value filter for a field.
func (b *Bar) SetValue(fieldID int64, value any, op schema.Operation) {
	delete(b.ranges, fieldID)
	b.filters = b.filters.HandleInput(SearchFilter{FieldID: fieldID, Value: value, Operation: op})
}

// SetBound updates one RANGE bound for a field and re-emits the filter
// entry when both bounds are usable.
func (b *Bar) SetBound(fieldID int64, min, max string) {
	st := RangeState{Min: min, Max: max}
	b.ranges[fieldID] = st
	if f, ok := st.Filter(fieldID); ok {
		b.filters = b.filters.HandleInput(f)
		return
	}
	b.filters = b.filters.Remove(fieldID)
}

// SwitchOperation moves a field to a new operator. Leaving RANGE drops
// the paired-bound state so re-entering starts from empty defaults.
func (b *Bar) SwitchOperation(fieldID int64, op schema.Operation) {
	if op == schema.OpRange {
		b.ranges[fieldID] = RangeState{}
		b.filters = b.filters.Remove(fieldID)
		return
	}
	delete(b.ranges, fieldID)
	b.filters = b.filters.Remove(fieldID)
}

// Range returns the current bound state for a field.
func (b *Bar) Range(fieldID int64) RangeState {
	return b.ranges[fieldID]
}

// Reset clears every filter and bound, used when the selected series
// changes so the follow-up search runs unconditionally empty.
func (b *Bar) Reset() {
	b.filters = b.filters.Clear()
	b.ranges = make(map[int64]RangeState)
}

func splitRange(v any) (string, string) {
	s, ok := v.(string)
	if !ok {
		return "", ""
	}
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
