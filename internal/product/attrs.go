package product

import "github.com/seriesdesk/seriesdesk/internal/schema"

// AttributeList is an ordered collection of attributes with at most one
// entry per field id.
type AttributeList []Attribute

// Upsert replaces the entry for fieldID when present and appends it
// otherwise. The order of untouched entries is preserved; an edit never
// reorders the list.
func (l AttributeList) Upsert(fieldID int64, value any) AttributeList {
	for i := range l {
		if l[i].FieldID == fieldID {
			l[i].Value = value
			return l
		}
	}
	return append(l, Attribute{FieldID: fieldID, Value: value})
}

// Value returns the entry for fieldID. A field with no entry is empty.
func (l AttributeList) Value(fieldID int64) (any, bool) {
	for _, a := range l {
		if a.FieldID == fieldID {
			return a.Value, true
		}
	}
	return nil, false
}

// Clone copies the list so an edit overlay never aliases the loaded base.
func (l AttributeList) Clone() AttributeList {
	out := make(AttributeList, len(l))
	copy(out, l)
	return out
}

// Overlay tracks in-progress attribute edits keyed by product id, so
// switching between two products never merges their pending changes.
// Pass it by reference; it is the single source of unsaved edits.
type Overlay struct {
	edits map[int64]AttributeList
}

// NewOverlay constructs an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{edits: make(map[int64]AttributeList)}
}

// Set upserts one edited value for a product.
func (o *Overlay) Set(productID, fieldID int64, value any) {
	o.edits[productID] = o.edits[productID].Upsert(fieldID, value)
}

// Resolve returns the displayed value for a field: the overlay value when
// an edit exists, otherwise the last-loaded base value, otherwise empty.
func (o *Overlay) Resolve(productID, fieldID int64, base AttributeList) any {
	if edits, ok := o.edits[productID]; ok {
		if v, ok := edits.Value(fieldID); ok {
			return v
		}
	}
	if v, ok := base.Value(fieldID); ok {
		return v
	}
	return ""
}

// Edits returns the pending edit list for a product, which may be nil.
func (o *Overlay) Edits(productID int64) AttributeList {
	return o.edits[productID]
}

// Discard drops all pending edits for a product, typically after a
// successful save or an abandoned navigation.
func (o *Overlay) Discard(productID int64) {
	delete(o.edits, productID)
}

// Merged assembles the submit attribute list for a product: the base
// list with overlay values applied, keeping at most one entry per field.
func (o *Overlay) Merged(productID int64, base AttributeList) AttributeList {
	out := base.Clone()
	for _, a := range o.edits[productID] {
		out = out.Upsert(a.FieldID, a.Value)
	}
	return out
}

// MissingRequired lists the required fields whose resolved value is the
// empty string. Booleans and numeric zero are never empty; only the ""
// sentinel blocks submission.
func (o *Overlay) MissingRequired(productID int64, fields []schema.SeriesField, base AttributeList) []int64 {
	var missing []int64
	for _, f := range fields {
		if !f.IsRequired || f.ID == nil {
			continue
		}
		if o.Resolve(productID, *f.ID, base) == "" {
			missing = append(missing, *f.ID)
		}
	}
	return missing
}
