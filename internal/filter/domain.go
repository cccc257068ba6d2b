// Package filter builds search filter controls from a series schema and
// maintains the working predicate list a search submits.
package filter

import (
	"github.com/seriesdesk/seriesdesk/internal/schema"
)

// SearchFilter is one search predicate over a field. Operation defaults
// to EQUAL when omitted; RANGE encodes both bounds as "min,max".
type SearchFilter struct {
	FieldID   int64            `json:"fieldId"`
	Value     any              `json:"value"`
	Operation schema.Operation `json:"operation,omitempty"`
}

// List is the working filter set, at most one entry per field id.
type List []SearchFilter

// HandleInput upserts a filter by field id: replace when present, append
// when absent, never reordering the untouched entries.
func (l List) HandleInput(f SearchFilter) List {
	if f.Operation == "" {
		f.Operation = schema.OpEqual
	}
	for i := range l {
		if l[i].FieldID == f.FieldID {
			l[i] = f
			return l
		}
	}
	return append(l, f)
}

// Remove drops the filter for a field id, if any.
func (l List) Remove(fieldID int64) List {
	for i := range l {
		if l[i].FieldID == fieldID {
			return append(l[:i], l[i+1:]...)
		}
	}
	return l
}

// Clear resets the working set. The next search decides when to refetch.
func (l List) Clear() List {
	return List{}
}

// FieldIDs lists the fields the current set filters on, in order.
func (l List) FieldIDs() []int64 {
	ids := make([]int64, 0, len(l))
	for _, f := range l {
		ids = append(ids, f.FieldID)
	}
	return ids
}
