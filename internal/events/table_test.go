package events

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	t.Run("rejects mismatched lengths", func(t *testing.T) {
		_, err := NewTable(
			FloatColumn("a", []float64{1, 2, 3}),
			FloatColumn("b", []float64{1, 2}),
		)
		if err == nil {
			t.Fatal("expected error for mismatched column lengths")
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewTable(
			FloatColumn("a", []float64{1}),
			FloatColumn("a", []float64{2}),
		)
		if err == nil {
			t.Fatal("expected error for duplicate column")
		}
	})

	t.Run("mixed kinds", func(t *testing.T) {
		tbl, err := NewTable(
			IntColumn("event_id", []uint64{1, 2}),
			FloatColumn("energy", []float64{0.5, 1.5}),
			BoolColumn("selected", []bool{true, false}),
		)
		require.NoError(t, err)
		require.Equal(t, 2, tbl.NumRows())
		require.Equal(t, 3, tbl.NumCols())
		require.Equal(t, []string{"event_id", "energy", "selected"}, tbl.Names())
	})
}

func TestKeepMissingColumnIsSchemaError(t *testing.T) {
	tbl, err := NewTable(FloatColumn("a", []float64{1}))
	require.NoError(t, err)

	_, err = tbl.Keep("a", "missing")
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, "missing", schemaErr.Column)
}

func TestFilterTakeSlice(t *testing.T) {
	tbl, err := NewTable(
		FloatColumn("v", []float64{10, 20, 30, 40}),
		IntColumn("id", []uint64{1, 2, 3, 4}),
	)
	require.NoError(t, err)

	filtered := tbl.Filter([]bool{true, false, true, false})
	require.Equal(t, 2, filtered.NumRows())
	vals, err := filtered.Floats("v")
	require.NoError(t, err)
	require.Equal(t, []float64{10, 30}, vals)

	taken := tbl.Take([]int{3, 0})
	vals, err = taken.Floats("v")
	require.NoError(t, err)
	require.Equal(t, []float64{40, 10}, vals)

	sliced := tbl.Slice(1, 3)
	vals, err = sliced.Floats("v")
	require.NoError(t, err)
	require.Equal(t, []float64{20, 30}, vals)
}

func TestRename(t *testing.T) {
	tbl, err := NewTable(
		FloatColumn("old", []float64{1}),
		FloatColumn("other", []float64{2}),
	)
	require.NoError(t, err)

	require.NoError(t, tbl.Rename("old", "new"))
	require.True(t, tbl.Has("new"))
	require.False(t, tbl.Has("old"))

	err = tbl.Rename("new", "other")
	require.Error(t, err, "renaming onto an existing column must fail")

	var schemaErr *SchemaError
	require.True(t, errors.As(tbl.Rename("gone", "x"), &schemaErr))
}

func TestVstack(t *testing.T) {
	header, err := NewTable(
		Column{Name: "energy", Kind: Float, Unit: "TeV", Description: "Reconstructed energy"},
		Column{Name: "id", Kind: Int},
	)
	require.NoError(t, err)

	a, err := NewTable(
		IntColumn("id", []uint64{1, 2}),
		FloatColumn("energy", []float64{0.1, 0.2}),
	)
	require.NoError(t, err)
	b, err := NewTable(
		FloatColumn("energy", []float64{0.3}),
		IntColumn("id", []uint64{3}),
	)
	require.NoError(t, err)

	t.Run("order and metadata come from the header", func(t *testing.T) {
		stacked, err := Vstack(header, a, b)
		require.NoError(t, err)
		require.Equal(t, []string{"energy", "id"}, stacked.Names())
		require.Equal(t, "TeV", stacked.Col("energy").Unit)

		vals, err := stacked.Floats("energy")
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{0.1, 0.2, 0.3}, vals); diff != "" {
			t.Errorf("stacked energies mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, []uint64{1, 2, 3}, stacked.Col("id").Ints)
	})

	t.Run("empty input gives a typed empty table", func(t *testing.T) {
		stacked, err := Vstack(header)
		require.NoError(t, err)
		require.Equal(t, 0, stacked.NumRows())
		require.Equal(t, []string{"energy", "id"}, stacked.Names())
	})

	t.Run("kind mismatch is rejected", func(t *testing.T) {
		bad, err := NewTable(
			FloatColumn("energy", []float64{1}),
			FloatColumn("id", []float64{1}),
		)
		require.NoError(t, err)
		_, err = Vstack(header, bad)
		require.Error(t, err)
	})

	t.Run("column count mismatch is rejected", func(t *testing.T) {
		bad, err := NewTable(FloatColumn("energy", []float64{1}))
		require.NoError(t, err)
		_, err = Vstack(header, bad)
		require.Error(t, err)
	})
}

func TestSetColumnReplaces(t *testing.T) {
	tbl, err := NewTable(FloatColumn("w", []float64{1, 1}))
	require.NoError(t, err)

	require.NoError(t, tbl.SetColumn(FloatColumn("w", []float64{2, 3})))
	vals, err := tbl.Floats("w")
	require.NoError(t, err)
	require.Equal(t, []float64{2, 3}, vals)
	require.Equal(t, 1, tbl.NumCols())

	err = tbl.SetColumn(FloatColumn("short", []float64{1}))
	require.Error(t, err, "length mismatch must be rejected")
}

func TestEmptyReducedTableSchema(t *testing.T) {
	tbl := EmptyReducedTable()
	require.Equal(t, 0, tbl.NumRows())
	require.Equal(t, ReducedColumns, tbl.Names())
	require.Equal(t, Int, tbl.Col("obs_id").Kind)
	require.Equal(t, Int, tbl.Col("event_id").Kind)
	require.Equal(t, "TeV", tbl.Col("true_energy").Unit)
	require.Equal(t, "deg", tbl.Col("theta").Unit)
}
