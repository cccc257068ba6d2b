package schema

// DiffResult is the create/update/delete triple reconciling an edited
// field list against its last-fetched snapshot. It maps one to one onto
// the series PATCH payload.
type DiffResult struct {
	Create []SeriesField `json:"create"`
	Update []SeriesField `json:"fields"`
	Delete []int64       `json:"delete"`
}

// Diff computes the reconciliation payload between the originally loaded
// field list and the edited one. Fields without an id are new, fields
// with an id are sent as full updates, and original ids missing from the
// edited list are deletions.
func Diff(original, current []SeriesField) DiffResult {
	res := DiffResult{
		Create: []SeriesField{},
		Update: []SeriesField{},
		Delete: []int64{},
	}

	seen := make(map[int64]struct{}, len(current))
	for _, f := range current {
		if f.ID == nil {
			res.Create = append(res.Create, f)
			continue
		}
		seen[*f.ID] = struct{}{}
		res.Update = append(res.Update, f)
	}

	for _, f := range original {
		if f.ID == nil {
			continue
		}
		if _, ok := seen[*f.ID]; !ok {
			res.Delete = append(res.Delete, *f.ID)
		}
	}
	return res
}

// fieldProjection is the slice of field attributes that participate in
// the dirty check. Ordering matters: a reorder that changes the projected
// sequence of fields counts as a modification.
type fieldProjection struct {
	Name         string
	DataType     DataType
	IsFiltered   bool
	IsRequired   bool
	IsErp        bool
	IsLimitField bool
}

func project(fields []SeriesField) []fieldProjection {
	out := make([]fieldProjection, len(fields))
	for i, f := range fields {
		out[i] = fieldProjection{
			Name:         f.Name,
			DataType:     f.DataType,
			IsFiltered:   f.IsFiltered,
			IsRequired:   f.IsRequired,
			IsErp:        f.IsErp,
			IsLimitField: f.IsLimitField,
		}
	}
	return out
}

// HasModify reports whether the edited series differs from the loaded
// snapshot: a renamed series, a changed field count, or any difference in
// the ordered projection of comparable field attributes. Identity of the
// slices never matters, only structure.
func HasModify(originalName, currentName string, original, current []SeriesField) bool {
	if originalName != currentName {
		return true
	}
	if len(original) != len(current) {
		return true
	}
	origProj := project(original)
	curProj := project(current)
	for i := range origProj {
		if origProj[i] != curProj[i] {
			return true
		}
	}
	return false
}

// IsValidPayload reports whether a series edit is well-formed: the series
// name and every field name must be non-empty.
func IsValidPayload(name string, fields []SeriesField) bool {
	if name == "" {
		return false
	}
	for _, f := range fields {
		if f.Name == "" {
			return false
		}
	}
	return true
}

// CanSubmit gates the series save action: the payload must be both
// well-formed and actually modified.
func CanSubmit(originalName, currentName string, original, current []SeriesField) bool {
	return IsValidPayload(currentName, current) &&
		HasModify(originalName, currentName, original, current)
}

// MoveUp swaps the field at index i with its predecessor, exchanging
// their sequence values rather than renumbering the whole list.
func MoveUp(fields []SeriesField, i int) bool {
	if i <= 0 || i >= len(fields) {
		return false
	}
	return swapSequence(fields, i, i-1)
}

// MoveDown swaps the field at index i with its successor.
func MoveDown(fields []SeriesField, i int) bool {
	if i < 0 || i >= len(fields)-1 {
		return false
	}
	return swapSequence(fields, i, i+1)
}

func swapSequence(fields []SeriesField, i, j int) bool {
	fields[i].Sequence, fields[j].Sequence = fields[j].Sequence, fields[i].Sequence
	fields[i], fields[j] = fields[j], fields[i]
	return true
}
