package product

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seriesdesk/seriesdesk/internal/schema"
)

func TestUpsertNeverDuplicates(t *testing.T) {
	var list AttributeList
	for _, fid := range []int64{1, 2, 1, 3, 2, 1} {
		list = list.Upsert(fid, fid*10)
	}
	require.Len(t, list, 3)
	seen := map[int64]bool{}
	for _, a := range list {
		require.False(t, seen[a.FieldID], "duplicate fieldId %d", a.FieldID)
		seen[a.FieldID] = true
	}
	// order of first insertion preserved
	require.Equal(t, int64(1), list[0].FieldID)
	require.Equal(t, int64(2), list[1].FieldID)
	require.Equal(t, int64(3), list[2].FieldID)
}

func TestUpsertReplacesValue(t *testing.T) {
	list := AttributeList{{FieldID: 5, Value: "old"}}
	list = list.Upsert(5, "new")
	require.Len(t, list, 1)
	require.Equal(t, "new", list[0].Value)
}

func TestOverlayIsolatesProducts(t *testing.T) {
	o := NewOverlay()
	base := AttributeList{{FieldID: 1, Value: "base"}}

	o.Set(100, 1, "edit for 100")
	require.Equal(t, "edit for 100", o.Resolve(100, 1, base))
	require.Equal(t, "base", o.Resolve(200, 1, base), "edit must not bleed into another product")

	o.Set(200, 1, "edit for 200")
	require.Equal(t, "edit for 100", o.Resolve(100, 1, base))
	require.Equal(t, "edit for 200", o.Resolve(200, 1, base))
}

func TestOverlayResolveFallsBackToEmpty(t *testing.T) {
	o := NewOverlay()
	require.Equal(t, "", o.Resolve(1, 9, nil))
}

func TestOverlayMerged(t *testing.T) {
	o := NewOverlay()
	base := AttributeList{{FieldID: 1, Value: "a"}, {FieldID: 2, Value: "b"}}
	o.Set(7, 2, "edited")
	o.Set(7, 3, "appended")

	merged := o.Merged(7, base)
	require.Equal(t, AttributeList{
		{FieldID: 1, Value: "a"},
		{FieldID: 2, Value: "edited"},
		{FieldID: 3, Value: "appended"},
	}, merged)

	// merging must not mutate the base
	require.Equal(t, "b", base[1].Value)
}

func TestOverlayDiscard(t *testing.T) {
	o := NewOverlay()
	o.Set(7, 1, "x")
	o.Discard(7)
	require.Nil(t, o.Edits(7))
}

func TestMissingRequired(t *testing.T) {
	one, two, three := int64(1), int64(2), int64(3)
	fields := []schema.SeriesField{
		{ID: &one, Name: "name", DataType: schema.TypeString, IsRequired: true},
		{ID: &two, Name: "active", DataType: schema.TypeBoolean, IsRequired: true},
		{ID: &three, Name: "note", DataType: schema.TypeString},
	}
	o := NewOverlay()
	base := AttributeList{{FieldID: 2, Value: false}}

	missing := o.MissingRequired(10, fields, base)
	require.Equal(t, []int64{1}, missing, "false boolean is not empty, absent string is")

	o.Set(10, 1, "filled")
	require.Empty(t, o.MissingRequired(10, fields, base))

	// numeric zero is not empty either
	o.Set(10, 1, 0.0)
	require.Empty(t, o.MissingRequired(10, fields, base))
}
