package coerce

import (
	"errors"
	"testing"

	"github.com/seriesdesk/seriesdesk/internal/schema"
)

func field(dt schema.DataType) schema.SeriesField {
	one := int64(1)
	return schema.SeriesField{ID: &one, Name: "f", DataType: dt}
}

func TestForSubmitBoolean(t *testing.T) {
	f := field(schema.TypeBoolean)
	cases := map[any]bool{
		"true":  true,
		true:    true,
		"false": false,
		"yes":   false,
		"":      false,
	}
	for raw, want := range cases {
		got, err := ForSubmit(f, raw)
		if err != nil {
			t.Fatalf("ForSubmit(%v) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ForSubmit(%v) = %v, want %v", raw, got, want)
		}
	}
}

func TestForSubmitNumber(t *testing.T) {
	f := field(schema.TypeNumber)

	got, err := ForSubmit(f, "3.14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3.14 {
		t.Fatalf("expected 3.14, got %v", got)
	}

	got, err = ForSubmit(f, "-42")
	if err != nil || got != -42.0 {
		t.Fatalf("expected -42, got %v err %v", got, err)
	}

	// empty stays empty, never zero
	got, err = ForSubmit(f, "")
	if err != nil || got != "" {
		t.Fatalf("empty number input must stay empty, got %v err %v", got, err)
	}

	_, err = ForSubmit(f, "not a number")
	var numErr *NumberError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected NumberError, got %v", err)
	}
	if numErr.FieldID != 1 {
		t.Fatalf("expected field id 1 in error, got %d", numErr.FieldID)
	}
}

func TestForSubmitNumberRejectsNonFinite(t *testing.T) {
	f := field(schema.TypeNumber)

	// strconv.ParseFloat accepts these, the attribute store must not
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+Inf", "Infinity"} {
		_, err := ForSubmit(f, raw)
		var numErr *NumberError
		if !errors.As(err, &numErr) {
			t.Fatalf("expected NumberError for %q, got %v", raw, err)
		}
	}
}

func TestForSubmitDatetime(t *testing.T) {
	f := field(schema.TypeDatetime)

	got, _ := ForSubmit(f, "2026-08-31")
	if got != "2026/08/31" {
		t.Fatalf("expected wire date, got %v", got)
	}

	// non-matching values pass through untouched
	got, _ = ForSubmit(f, "31.08.2026")
	if got != "31.08.2026" {
		t.Fatalf("expected pass-through, got %v", got)
	}
}

func TestForDisplayDatetimeRoundTrip(t *testing.T) {
	f := field(schema.TypeDatetime)
	wire := "2025/01/06"

	display := ForDisplay(f, wire)
	if display != "2025-01-06" {
		t.Fatalf("expected display date, got %v", display)
	}
	back, err := ForSubmit(f, display)
	if err != nil {
		t.Fatalf("round trip error: %v", err)
	}
	if back != wire {
		t.Fatalf("toWire(toDisplay(x)) = %v, want %v", back, wire)
	}
}

func TestForSubmitStringAndPicture(t *testing.T) {
	if got, _ := ForSubmit(field(schema.TypeString), "2025-01-06"); got != "2025-01-06" {
		t.Fatalf("string-typed value must never be date-coerced, got %v", got)
	}
	uri := "data:image/png;base64,iVBORw0KGgo="
	if got, _ := ForSubmit(field(schema.TypePicture), uri); got != uri {
		t.Fatalf("picture value must pass through, got %v", got)
	}
}

func TestForSubmitUnknownType(t *testing.T) {
	f := schema.SeriesField{Name: "f", DataType: schema.DataType("blob")}
	if _, err := ForSubmit(f, "x"); !errors.Is(err, schema.ErrUnknownDataType) {
		t.Fatalf("expected ErrUnknownDataType, got %v", err)
	}
}

func TestGuessSubmit(t *testing.T) {
	if got := GuessSubmit("12.5"); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := GuessSubmit("-3"); got != -3.0 {
		t.Fatalf("expected -3, got %v", got)
	}
	if got := GuessSubmit("2024-02-29"); got != "2024/02/29" {
		t.Fatalf("expected normalised date, got %v", got)
	}
	if got := GuessSubmit("2024/02/29"); got != "2024/02/29" {
		t.Fatalf("expected already-wire date unchanged, got %v", got)
	}
	if got := GuessSubmit("plain text"); got != "plain text" {
		t.Fatalf("expected pass-through, got %v", got)
	}
	if got := GuessSubmit(true); got != true {
		t.Fatalf("non-string input must pass through, got %v", got)
	}
}
