package schema

import (
	"errors"
	"time"
)

// DataType enumerates the supported field value types.
type DataType string

const (
	// TypeString is a free-text field.
	TypeString DataType = "string"
	// TypeNumber is a floating point field.
	TypeNumber DataType = "number"
	// TypeDatetime is a calendar date field.
	TypeDatetime DataType = "datetime"
	// TypeBoolean is a true/false field.
	TypeBoolean DataType = "boolean"
	// TypePicture holds an image path or a freshly selected data URI.
	TypePicture DataType = "picture"
)

// ErrUnknownDataType is returned when a field carries a type outside the enumeration.
var ErrUnknownDataType = errors.New("unknown data type")

// ControlKind names the input control rendered for a field.
type ControlKind string

const (
	ControlText   ControlKind = "text"
	ControlNumber ControlKind = "number"
	ControlDate   ControlKind = "date"
	ControlToggle ControlKind = "toggle"
	ControlFile   ControlKind = "file"
)

// Operation is a search filter comparison operator.
type Operation string

const (
	OpEqual   Operation = "EQUAL"
	OpGreater Operation = "GREATER"
	OpLess    Operation = "LESS"
	OpRange   Operation = "RANGE"
)

// Traits describes how one data type behaves across form rendering,
// filter rendering and coercion. All three consumers dispatch through
// the same table so the supported type set cannot drift between them.
type Traits struct {
	Control    ControlKind
	Operations []Operation
	// Suggest marks types whose filter control offers remote autocomplete.
	Suggest bool
}

var typeTraits = map[DataType]Traits{
	TypeString:   {Control: ControlText, Operations: []Operation{OpEqual}, Suggest: true},
	TypeNumber:   {Control: ControlNumber, Operations: []Operation{OpEqual, OpGreater, OpLess, OpRange}},
	TypeDatetime: {Control: ControlDate, Operations: []Operation{OpEqual, OpGreater, OpLess}},
	TypeBoolean:  {Control: ControlToggle, Operations: []Operation{OpEqual}},
	TypePicture:  {Control: ControlFile, Operations: nil},
}

// TraitsOf resolves the behaviour table entry for a data type.
func TraitsOf(dt DataType) (Traits, error) {
	t, ok := typeTraits[dt]
	if !ok {
		return Traits{}, ErrUnknownDataType
	}
	return t, nil
}

// Known reports whether dt is part of the supported enumeration.
func Known(dt DataType) bool {
	_, ok := typeTraits[dt]
	return ok
}

// SeriesField defines one typed attribute within a series schema.
// ID is nil until the backend has assigned one.
type SeriesField struct {
	ID           *int64   `json:"id,omitempty"`
	Name         string   `json:"name"`
	DataType     DataType `json:"dataType"`
	IsFiltered   bool     `json:"isFiltered"`
	IsRequired   bool     `json:"isRequired"`
	IsErp        bool     `json:"isErp"`
	IsLimitField bool     `json:"isLimitField"`
	Sequence     int      `json:"sequence"`
}

// Persisted reports whether the field already exists on the backend.
func (f SeriesField) Persisted() bool {
	return f.ID != nil
}

// Series is a user-defined schema products are instances of.
// Fields is populated only when the detail endpoint was asked for it.
type Series struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Fields    []SeriesField `json:"fields,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	CreatedBy string        `json:"createdBy"`
}

// FieldByID looks a field up by its persisted id.
func FieldByID(fields []SeriesField, id int64) (SeriesField, bool) {
	for _, f := range fields {
		if f.ID != nil && *f.ID == id {
			return f, true
		}
	}
	return SeriesField{}, false
}

// FieldIDs collects the persisted ids of a field list.
func FieldIDs(fields []SeriesField) []int64 {
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		if f.ID != nil {
			ids = append(ids, *f.ID)
		}
	}
	return ids
}
