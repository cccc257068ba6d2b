package schema

import "testing"

func TestValidateBlocksEmptyNames(t *testing.T) {
	issues := Validate("", []SeriesField{{Name: "", DataType: TypeString}})
	if !Blocked(issues) {
		t.Fatal("empty series and field names must block")
	}
	if len(issues) != 2 {
		t.Fatalf("expected two issues, got %d", len(issues))
	}
}

func TestValidateDuplicateNamesWarnOnly(t *testing.T) {
	issues := Validate("S", []SeriesField{
		{Name: "color", DataType: TypeString},
		{Name: "color", DataType: TypeNumber},
	})
	if Blocked(issues) {
		t.Fatal("duplicate names are allowed and must not block")
	}
	if len(issues) != 1 || issues[0].FieldIndex != 1 {
		t.Fatalf("expected one warning on the second field, got %+v", issues)
	}
}

func TestValidateUnknownType(t *testing.T) {
	issues := Validate("S", []SeriesField{{Name: "x", DataType: DataType("blob")}})
	if !Blocked(issues) {
		t.Fatal("unknown data type must block")
	}
}

func TestTraitsCoverAllTypes(t *testing.T) {
	for _, dt := range []DataType{TypeString, TypeNumber, TypeDatetime, TypeBoolean, TypePicture} {
		if _, err := TraitsOf(dt); err != nil {
			t.Fatalf("missing traits for %s", dt)
		}
	}
	if _, err := TraitsOf(DataType("uuid")); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
