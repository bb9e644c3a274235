package events

// Chunk is one contiguous slice of an event table, covering source rows
// [Start, Stop).
type Chunk struct {
	Start  int
	Stop   int
	Events *Table
}

// ChunkSource produces a lazy, finite, restartable sequence of chunks
// covering an event table. Implementations must preserve row order across
// chunks and report a stable total row count before iteration begins; the
// count is used for progress reporting only. All blocking I/O of the
// pipeline lives behind this interface.
type ChunkSource interface {
	// TotalRows returns the number of rows the iteration will cover.
	TotalRows() (int, error)
	// Chunks starts a new iteration with the given chunk size.
	Chunks(chunkSize int) ChunkIterator
}

// ChunkIterator walks the chunks of one iteration. After Next returns
// false, Err reports whether iteration stopped because of an error.
type ChunkIterator interface {
	Next() (Chunk, bool)
	Err() error
}

// SliceSource is an in-memory ChunkSource over a single table.
type SliceSource struct {
	Table *Table
}

// TotalRows implements ChunkSource.
func (s *SliceSource) TotalRows() (int, error) { return s.Table.NumRows(), nil }

// Chunks implements ChunkSource.
func (s *SliceSource) Chunks(chunkSize int) ChunkIterator {
	if chunkSize <= 0 {
		chunkSize = s.Table.NumRows()
	}
	return &sliceIterator{table: s.Table, size: chunkSize}
}

type sliceIterator struct {
	table *Table
	size  int
	pos   int
}

func (it *sliceIterator) Next() (Chunk, bool) {
	n := it.table.NumRows()
	if it.pos >= n {
		return Chunk{}, false
	}
	start := it.pos
	stop := start + it.size
	if stop > n {
		stop = n
	}
	it.pos = stop
	return Chunk{Start: start, Stop: stop, Events: it.table.Slice(start, stop)}, true
}

func (it *sliceIterator) Err() error { return nil }
