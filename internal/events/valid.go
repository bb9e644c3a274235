package events

import (
	"math"

	"github.com/mdebony/ctapipe/internal/monitoring"
)

// CheckValidRows returns a mask of rows whose named columns all hold finite
// values. Non-float columns (identifiers, flags) are always valid.
func CheckValidRows(t *Table, columns []string) ([]bool, error) {
	mask := make([]bool, t.NumRows())
	for i := range mask {
		mask[i] = true
	}
	for _, name := range columns {
		c := t.Col(name)
		if c == nil {
			return nil, &SchemaError{Column: name}
		}
		if c.Kind != Float {
			continue
		}
		for i, v := range c.Floats {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				mask[i] = false
			}
		}
	}
	return mask, nil
}

// DropInvalidRows removes rows with non-finite values in the named columns.
// This runs as a second pass over the fully concatenated table, after the
// per-chunk quality selection, so chunk-level diagnostics counts are not
// affected by validity drops. Dropped rows are a recoverable data-quality
// issue: they are logged and counted, never fatal.
func DropInvalidRows(t *Table, columns []string, progress *monitoring.ReduceProgress) (*Table, error) {
	mask, err := CheckValidRows(t, columns)
	if err != nil {
		return nil, err
	}
	dropped := 0
	for _, ok := range mask {
		if !ok {
			dropped++
		}
	}
	if dropped == 0 {
		return t, nil
	}
	monitoring.Logf("dropping %d non-predictable events", dropped)
	if progress != nil {
		progress.AddDroppedInvalid(dropped)
	}
	return t.Filter(mask), nil
}
