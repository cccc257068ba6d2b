package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seriesdesk/seriesdesk/internal/schema"
)

func fid(v int64) *int64 { return &v }

func TestBuildControlsOperatorSets(t *testing.T) {
	fields := []schema.SeriesField{
		{ID: fid(1), Name: "name", DataType: schema.TypeString, IsFiltered: true},
		{ID: fid(2), Name: "price", DataType: schema.TypeNumber, IsFiltered: true},
		{ID: fid(3), Name: "released", DataType: schema.TypeDatetime, IsFiltered: true},
		{ID: fid(4), Name: "active", DataType: schema.TypeBoolean, IsFiltered: true},
		{ID: fid(5), Name: "photo", DataType: schema.TypePicture, IsFiltered: true},
		{ID: fid(6), Name: "hidden", DataType: schema.TypeString, IsFiltered: false},
	}

	controls, err := BuildControls(fields, nil)
	require.NoError(t, err)
	// picture has no operators, hidden is not filterable
	require.Len(t, controls, 4)

	require.Equal(t, []schema.Operation{schema.OpEqual}, controls[0].Operations)
	require.True(t, controls[0].Suggest)
	require.Equal(t,
		[]schema.Operation{schema.OpEqual, schema.OpGreater, schema.OpLess, schema.OpRange},
		controls[1].Operations)
	require.Equal(t,
		[]schema.Operation{schema.OpEqual, schema.OpGreater, schema.OpLess},
		controls[2].Operations)
	require.Equal(t, []schema.Operation{schema.OpEqual}, controls[3].Operations)
	require.False(t, controls[3].Suggest)
}

func TestBuildControlsSeedsFromCurrent(t *testing.T) {
	fields := []schema.SeriesField{
		{ID: fid(2), Name: "price", DataType: schema.TypeNumber, IsFiltered: true},
	}
	current := List{{FieldID: 2, Value: "10,20", Operation: schema.OpRange}}

	controls, err := BuildControls(fields, current)
	require.NoError(t, err)
	require.Equal(t, schema.OpRange, controls[0].Operation)
	require.Equal(t, "10", controls[0].Min)
	require.Equal(t, "20", controls[0].Max)
}

func TestListHandleInputUpserts(t *testing.T) {
	var l List
	l = l.HandleInput(SearchFilter{FieldID: 1, Value: "a"})
	l = l.HandleInput(SearchFilter{FieldID: 2, Value: "b"})
	l = l.HandleInput(SearchFilter{FieldID: 1, Value: "c"})

	require.Len(t, l, 2)
	require.Equal(t, "c", l[0].Value)
	require.Equal(t, schema.OpEqual, l[0].Operation, "EQUAL is the default operation")
	require.Equal(t, int64(2), l[1].FieldID)
}

func TestRangeEmitsSingleFilter(t *testing.T) {
	b := NewBar()
	b.SwitchOperation(2, schema.OpRange)

	b.SetBound(2, "10", "")
	require.Empty(t, b.Filters(), "one bound is not enough")

	b.SetBound(2, "10", "10")
	require.Empty(t, b.Filters(), "equal bounds are degenerate")

	b.SetBound(2, "10", "20")
	require.Equal(t, List{{FieldID: 2, Value: "10,20", Operation: schema.OpRange}}, b.Filters())
}

func TestRangeSwitchAwayDiscardsBounds(t *testing.T) {
	b := NewBar()
	b.SwitchOperation(2, schema.OpRange)
	b.SetBound(2, "10", "20")
	require.Len(t, b.Filters(), 1)

	b.SwitchOperation(2, schema.OpEqual)
	require.Empty(t, b.Filters())
	require.Equal(t, RangeState{}, b.Range(2))

	// re-entering RANGE starts from defined defaults, not stale bounds
	b.SwitchOperation(2, schema.OpRange)
	require.Equal(t, RangeState{}, b.Range(2))
	require.Empty(t, b.Filters())
}

func TestBarSetValueReplacesRange(t *testing.T) {
	b := NewBar()
	b.SwitchOperation(2, schema.OpRange)
	b.SetBound(2, "1", "2")
	b.SetValue(2, 5.0, schema.OpGreater)

	require.Equal(t, List{{FieldID: 2, Value: 5.0, Operation: schema.OpGreater}}, b.Filters())
	require.Equal(t, RangeState{}, b.Range(2))
}

func TestBarReset(t *testing.T) {
	b := NewBar()
	b.SetValue(1, "x", schema.OpEqual)
	b.SwitchOperation(2, schema.OpRange)
	b.SetBound(2, "1", "9")

	b.Reset()
	require.Empty(t, b.Filters())
	require.Equal(t, RangeState{}, b.Range(2))
}
