package events

import (
	"fmt"

	"github.com/mdebony/ctapipe/internal/monitoring"
)

// Reducer streams an event table through normalization, derivation and
// quality selection, one chunk at a time, and concatenates the retained
// rows into a single in-memory reduced table. The result is identical to
// processing the full table at once: criteria are pure row predicates and
// chunk order follows source order, so no step depends on where chunk
// boundaries fall.
//
// Two configurations are used in practice: the response path normalizes and
// derives before projecting to the canonical reduced schema, while the
// training path skips both and projects straight to features plus target.
type Reducer struct {
	// Normalizer renames reconstructor-specific columns. Nil skips
	// normalization (training tables already use final column names).
	Normalizer *Normalizer
	// Derive enables computation of the derived physical columns.
	Derive bool
	// Criteria is the quality selection applied to every chunk.
	Criteria CriteriaSet
	// Columns is the persisted column set of the reduced table. Defaults
	// to ReducedColumns when empty.
	Columns []string
	// Partition names what is being reduced for progress reporting and
	// error messages, e.g. "gammas" or "LST_LST_LSTCam".
	Partition string
}

func (r *Reducer) columns() []string {
	if len(r.Columns) == 0 {
		return ReducedColumns
	}
	return r.Columns
}

// header builds the empty-but-typed table that fixes column order, kinds
// and metadata of the reduced output. Canonical columns take their metadata
// from the reference schema; any other persisted column is a plain float.
func (r *Reducer) header() *Table {
	canonical := EmptyReducedTable()
	cols := make([]Column, 0, len(r.columns()))
	for _, name := range r.columns() {
		if c := canonical.Col(name); c != nil {
			cols = append(cols, c.header())
		} else {
			cols = append(cols, Column{Name: name, Kind: Float})
		}
	}
	header, err := NewTable(cols...)
	if err != nil {
		panic(err) // duplicate persisted columns; programming error
	}
	return header
}

// Reduce consumes every chunk of src in order and returns the reduced
// table. Each chunk is fully processed and released before the next one is
// requested, bounding peak memory to the chunk size plus the retained rows.
// It fails with TooFewEvents when nothing survives the quality criteria.
func (r *Reducer) Reduce(src ChunkSource, chunkSize int) (*Table, *monitoring.ReduceProgress, error) {
	// Unknown criterion columns are a configuration problem; catch them
	// before any chunk is read. Criteria run after derivation, so both
	// canonical and persisted columns are legal references.
	if err := r.Criteria.Validate(r.criteriaSchema()); err != nil {
		return nil, nil, err
	}

	total, err := src.TotalRows()
	if err != nil {
		return nil, nil, fmt.Errorf("reading total row count: %w", err)
	}
	progress := monitoring.NewReduceProgress(r.Partition, total)
	header := r.header()

	var bits []*Table
	it := src.Chunks(chunkSize)
	chunkIndex := 0
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		selected, err := r.reduceChunk(chunk.Events)
		if err != nil {
			return nil, nil, err
		}
		progress.AddChunk(chunk.Events.NumRows(), selected.NumRows())
		monitoring.Debugf("%s: chunk %d rows %d..%d, retained %d",
			r.Partition, chunkIndex, chunk.Start, chunk.Stop, selected.NumRows())
		bits = append(bits, selected)
		chunkIndex++
	}
	if err := it.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading chunks: %w", err)
	}

	// The header goes through the concatenation as well so the output
	// column metadata matches the reference schema no matter which chunk
	// contributed the last rows.
	reduced, err := Vstack(header, bits...)
	if err != nil {
		return nil, nil, err
	}
	progress.Log()

	if reduced.NumRows() == 0 {
		return nil, nil, &TooFewEvents{Partition: r.Partition, Reason: "no events left after quality criteria"}
	}
	return reduced, progress, nil
}

// reduceChunk runs one chunk through normalize, derive, select and project.
func (r *Reducer) reduceChunk(chunk *Table) (*Table, error) {
	t := chunk
	if r.Normalizer != nil {
		normalized, err := r.Normalizer.Apply(t)
		if err != nil {
			return nil, err
		}
		t = normalized
	}
	if r.Derive {
		derived, err := r.Deriver().Apply(t)
		if err != nil {
			return nil, err
		}
		t = derived
	}
	mask, _, err := r.Criteria.Apply(t)
	if err != nil {
		return nil, err
	}
	return t.Filter(mask).Keep(r.columns()...)
}

// Deriver returns the derived-column computer. It is stateless; the method
// exists so call sites read symmetrically with Normalizer.
func (r *Reducer) Deriver() Deriver { return Deriver{} }

// criteriaSchema lists every column name criteria may legally reference.
func (r *Reducer) criteriaSchema() []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(names ...string) {
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	add(ReducedColumns...)
	add(r.columns()...)
	return cols
}
