// Package form turns a series schema plus a product's attribute values
// into input control descriptors, and routes edits through type coercion
// into a per-product overlay.
package form

import (
	"errors"
	"time"

	"github.com/seriesdesk/seriesdesk/internal/coerce"
	"github.com/seriesdesk/seriesdesk/internal/product"
	"github.com/seriesdesk/seriesdesk/internal/schema"
)

// Control describes one rendered input.
type Control struct {
	FieldID  int64              `json:"fieldId"`
	Label    string             `json:"label"`
	Kind     schema.ControlKind `json:"kind"`
	Value    any                `json:"value"`
	Step     string             `json:"step,omitempty"`
	Required bool               `json:"required"`
	Invalid  bool               `json:"invalid"`
	// Preview holds the picture source: a server-relative path on load
	// or a base64 data URI for a freshly selected file.
	Preview string `json:"preview,omitempty"`
}

// Render produces one control per schema field for a product, resolving
// values through the overlay. Date controls default to today when empty;
// number controls accept any step. A required field with an empty string
// value is flagged invalid.
func Render(fields []schema.SeriesField, ov *product.Overlay, productID int64, base product.AttributeList, now func() time.Time) ([]Control, error) {
	if now == nil {
		now = time.Now
	}
	controls := make([]Control, 0, len(fields))
	for _, f := range fields {
		traits, err := schema.TraitsOf(f.DataType)
		if err != nil {
			return nil, err
		}
		var fid int64
		if f.ID != nil {
			fid = *f.ID
		}
		value := coerce.ForDisplay(f, ov.Resolve(productID, fid, base))

		c := Control{
			FieldID:  fid,
			Label:    f.Name,
			Kind:     traits.Control,
			Value:    value,
			Required: f.IsRequired,
			Invalid:  f.IsRequired && value == "",
		}
		switch f.DataType {
		case schema.TypeNumber:
			c.Step = "any"
		case schema.TypeDatetime:
			if value == "" {
				c.Value = now().Format("2006-01-02")
			}
		case schema.TypeBoolean:
			if value == "" {
				c.Value = false
			}
		case schema.TypePicture:
			// path on load, data URI after a fresh file pick
			if s, ok := value.(string); ok && s != "" {
				c.Preview = s
			}
		}
		controls = append(controls, c)
	}
	return controls, nil
}

// Editor owns the edit flow for product attribute forms. Every control
// change goes through HandleInputChange, which coerces the raw value by
// the field's data type and upserts it into the product's overlay.
type Editor struct {
	fields  []schema.SeriesField
	overlay *product.Overlay
	// badNumbers tracks field ids whose latest raw input failed numeric
	// parsing; any entry blocks submission.
	badNumbers map[int64]struct{}
}

// NewEditor constructs an Editor over a schema and a shared overlay.
func NewEditor(fields []schema.SeriesField, overlay *product.Overlay) *Editor {
	return &Editor{
		fields:     fields,
		overlay:    overlay,
		badNumbers: make(map[int64]struct{}),
	}
}

// HandleInputChange records one edited value for a product. Unparsable
// numbers are remembered as invalid instead of being stored.
func (e *Editor) HandleInputChange(productID, fieldID int64, raw any) error {
	f, ok := schema.FieldByID(e.fields, fieldID)
	if !ok {
		// no field definition, legacy schemaless path
		e.overlay.Set(productID, fieldID, coerce.GuessSubmit(raw))
		return nil
	}
	value, err := coerce.ForSubmit(f, raw)
	if err != nil {
		var numErr *coerce.NumberError
		if errors.As(err, &numErr) {
			e.badNumbers[fieldID] = struct{}{}
		}
		return err
	}
	delete(e.badNumbers, fieldID)
	e.overlay.Set(productID, fieldID, value)
	return nil
}

// CanSubmit reports whether the product form may be saved: every
// required field resolved non-empty and no pending numeric parse errors.
func (e *Editor) CanSubmit(productID int64, base product.AttributeList) bool {
	if len(e.badNumbers) > 0 {
		return false
	}
	return len(e.overlay.MissingRequired(productID, e.fields, base)) == 0
}

// Payload assembles the submit attribute list, defaulting untouched
// boolean fields to false so every field has exactly one entry.
func (e *Editor) Payload(productID int64, base product.AttributeList) product.AttributeList {
	out := e.overlay.Merged(productID, base)
	for _, f := range e.fields {
		if f.ID == nil {
			continue
		}
		if _, ok := out.Value(*f.ID); ok {
			continue
		}
		if f.DataType == schema.TypeBoolean {
			out = out.Upsert(*f.ID, false)
		}
	}
	return out
}
