package schema

import "testing"

func id(v int64) *int64 { return &v }

func TestDiffCreateUpdateDelete(t *testing.T) {
	original := []SeriesField{
		{ID: id(1), Name: "A", DataType: TypeString},
		{ID: id(2), Name: "B", DataType: TypeNumber},
	}
	current := []SeriesField{
		{ID: id(1), Name: "A", DataType: TypeString},
		{Name: "C", DataType: TypeBoolean},
	}

	res := Diff(original, current)
	if len(res.Create) != 1 || res.Create[0].Name != "C" {
		t.Fatalf("expected create of C, got %+v", res.Create)
	}
	if len(res.Update) != 1 || *res.Update[0].ID != 1 {
		t.Fatalf("expected update of field 1, got %+v", res.Update)
	}
	if len(res.Delete) != 1 || res.Delete[0] != 2 {
		t.Fatalf("expected delete of field 2, got %+v", res.Delete)
	}
}

func TestDiffEmptyLists(t *testing.T) {
	res := Diff(nil, nil)
	if len(res.Create) != 0 || len(res.Update) != 0 || len(res.Delete) != 0 {
		t.Fatalf("expected empty diff, got %+v", res)
	}
}

func TestHasModifyStructuralCopy(t *testing.T) {
	original := []SeriesField{
		{ID: id(1), Name: "A", DataType: TypeString, IsFiltered: true, Sequence: 1},
		{ID: id(2), Name: "B", DataType: TypeNumber, IsRequired: true, Sequence: 2},
	}
	copied := make([]SeriesField, len(original))
	copy(copied, original)
	// distinct id pointers but equal projected attributes
	copied[0].ID = id(1)
	copied[1].ID = id(2)

	if HasModify("S", "S", original, copied) {
		t.Fatal("deep structural copy must not be dirty")
	}
}

func TestHasModifyDetectsChanges(t *testing.T) {
	original := []SeriesField{{ID: id(1), Name: "A", DataType: TypeString}}

	if !HasModify("S", "T", original, original) {
		t.Fatal("renamed series must be dirty")
	}
	renamedField := []SeriesField{{ID: id(1), Name: "A2", DataType: TypeString}}
	if !HasModify("S", "S", original, renamedField) {
		t.Fatal("renamed field must be dirty")
	}
	added := append([]SeriesField{}, original...)
	added = append(added, SeriesField{Name: "B", DataType: TypeBoolean})
	if !HasModify("S", "S", original, added) {
		t.Fatal("added field must be dirty")
	}
}

func TestHasModifyReorderCounts(t *testing.T) {
	original := []SeriesField{
		{ID: id(1), Name: "A", DataType: TypeString},
		{ID: id(2), Name: "B", DataType: TypeNumber},
	}
	reordered := []SeriesField{original[1], original[0]}
	if !HasModify("S", "S", original, reordered) {
		t.Fatal("reorder changes the projected list and must be dirty")
	}
}

func TestHasModifyIgnoresCosmeticMetadata(t *testing.T) {
	original := []SeriesField{{ID: id(1), Name: "A", DataType: TypeString, Sequence: 1}}
	edited := []SeriesField{{ID: id(7), Name: "A", DataType: TypeString, Sequence: 9}}
	if HasModify("S", "S", original, edited) {
		t.Fatal("id and sequence are not part of the dirty projection")
	}
}

func TestCanSubmitRequiresValidAndDirty(t *testing.T) {
	original := []SeriesField{{ID: id(1), Name: "A", DataType: TypeString}}
	unchanged := []SeriesField{{ID: id(1), Name: "A", DataType: TypeString}}
	if CanSubmit("S", "S", original, unchanged) {
		t.Fatal("clean payload must not be submittable")
	}

	dirtyInvalid := []SeriesField{{ID: id(1), Name: "", DataType: TypeString}}
	if CanSubmit("S", "S", original, dirtyInvalid) {
		t.Fatal("payload with empty field name must not be submittable")
	}

	dirtyValid := []SeriesField{{ID: id(1), Name: "A renamed", DataType: TypeString}}
	if !CanSubmit("S", "S", original, dirtyValid) {
		t.Fatal("valid dirty payload must be submittable")
	}
}

func TestMoveSwapsSequenceWithNeighbour(t *testing.T) {
	fields := []SeriesField{
		{ID: id(1), Name: "A", Sequence: 10},
		{ID: id(2), Name: "B", Sequence: 20},
		{ID: id(3), Name: "C", Sequence: 30},
	}

	if !MoveDown(fields, 0) {
		t.Fatal("MoveDown(0) should succeed")
	}
	if fields[0].Name != "B" || fields[0].Sequence != 10 {
		t.Fatalf("expected B to take sequence 10, got %+v", fields[0])
	}
	if fields[1].Name != "A" || fields[1].Sequence != 20 {
		t.Fatalf("expected A to take sequence 20, got %+v", fields[1])
	}
	// untouched neighbour keeps its sequence
	if fields[2].Sequence != 30 {
		t.Fatalf("expected C untouched, got %+v", fields[2])
	}

	if MoveUp(fields, 0) {
		t.Fatal("MoveUp(0) must be rejected")
	}
	if MoveDown(fields, 2) {
		t.Fatal("MoveDown(last) must be rejected")
	}
}
