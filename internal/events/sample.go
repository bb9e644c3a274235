package events

import (
	"math/rand"
	"sort"

	"github.com/mdebony/ctapipe/internal/monitoring"
)

// Sample draws n distinct rows from t using the caller's seeded generator.
// Drawn indices are sorted before the take so the sampled table preserves
// the global row order of the reduction, which keeps sampling reproducible
// and independent of how the draw is implemented. When t has n rows or
// fewer, the table is returned unchanged with a warning.
func Sample(t *Table, n int, rng *rand.Rand) *Table {
	if n >= t.NumRows() {
		if n > t.NumRows() {
			monitoring.Logf("number of events in table (%d) is less than requested number of events %d", t.NumRows(), n)
		}
		return t
	}
	idx := rng.Perm(t.NumRows())[:n]
	sort.Ints(idx)
	return t.Take(idx)
}
