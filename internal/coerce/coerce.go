// Package coerce converts raw console input into the wire representation
// the catalog API expects, and back, driven by a field's declared data
// type. Raw values always arrive as strings or booleans; the wire side
// carries strings, numbers and booleans.
package coerce

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/seriesdesk/seriesdesk/internal/schema"
)

var (
	numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	displayDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	wireDate       = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
)

// NumberError marks a value that failed numeric parsing. Callers block
// submission on it; the value never silently becomes NaN or zero.
type NumberError struct {
	FieldID int64
	Raw     string
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("field %d: %q is not a number", e.FieldID, e.Raw)
}

// ForSubmit coerces a raw input value into the wire value for its field.
// An empty string for a number field stays empty rather than becoming
// zero; a non-empty value that fails to parse is a NumberError.
func ForSubmit(field schema.SeriesField, raw any) (any, error) {
	switch field.DataType {
	case schema.TypeBoolean:
		return toBool(raw), nil
	case schema.TypeNumber:
		s, ok := raw.(string)
		if !ok {
			return raw, nil
		}
		if s == "" {
			return "", nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		// ParseFloat accepts "NaN" and "Inf"; neither is a storable
		// attribute value and NaN cannot be marshalled to JSON
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			fid := int64(0)
			if field.ID != nil {
				fid = *field.ID
			}
			return nil, &NumberError{FieldID: fid, Raw: s}
		}
		return n, nil
	case schema.TypeDatetime:
		s, ok := raw.(string)
		if !ok {
			return raw, nil
		}
		if displayDate.MatchString(s) {
			return strings.ReplaceAll(s, "-", "/"), nil
		}
		// schema/data mismatch, pass through untouched
		return s, nil
	case schema.TypeString, schema.TypePicture:
		return raw, nil
	default:
		return nil, schema.ErrUnknownDataType
	}
}

// ForDisplay rewrites a wire value for the input control. Dates move from
// YYYY/MM/DD to the picker's YYYY-MM-DD; everything else passes through,
// including dates in formats the schema does not predict.
func ForDisplay(field schema.SeriesField, wire any) any {
	if field.DataType != schema.TypeDatetime {
		return wire
	}
	s, ok := wire.(string)
	if !ok {
		return wire
	}
	if wireDate.MatchString(s) {
		return strings.ReplaceAll(s, "/", "-")
	}
	return s
}

// GuessSubmit is the legacy schemaless fallback used by generic attribute
// lists that carry no field reference. Values that look numeric become
// numbers, values that look like dates normalise to YYYY/MM/DD, anything
// else passes through. When a field definition is available ForSubmit
// takes precedence over this guess.
func GuessSubmit(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	switch {
	case numericPattern.MatchString(s):
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return s
		}
		return n
	case displayDate.MatchString(s):
		return strings.ReplaceAll(s, "-", "/")
	case wireDate.MatchString(s):
		return s
	default:
		return s
	}
}

func toBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
