package monitoring

import "sync"

// ReduceProgress tracks counters for one event-reduction partition. The
// counters are observability signals only; nothing downstream depends on
// them.
type ReduceProgress struct {
	mu sync.Mutex

	// Partition identifies what is being reduced, e.g. a telescope type
	// or a particle population.
	Partition string
	// Total is the row count reported by the source before iteration.
	Total int

	read           int
	retained       int
	droppedInvalid int
}

// NewReduceProgress creates a progress tracker for one partition.
func NewReduceProgress(partition string, total int) *ReduceProgress {
	return &ReduceProgress{Partition: partition, Total: total}
}

// AddChunk records one processed chunk.
func (p *ReduceProgress) AddChunk(read, retained int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.read += read
	p.retained += retained
}

// AddDroppedInvalid records rows dropped by the post-reduction validity
// pass.
func (p *ReduceProgress) AddDroppedInvalid(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.droppedInvalid += n
}

// Counts returns the rows read, retained and dropped as invalid so far.
func (p *ReduceProgress) Counts() (read, retained, droppedInvalid int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.read, p.retained, p.droppedInvalid
}

// Log writes a one-line summary through the package logger.
func (p *ReduceProgress) Log() {
	read, retained, dropped := p.Counts()
	if dropped > 0 {
		Logf("%s: read %d of %d events, retained %d, dropped %d invalid", p.Partition, read, p.Total, retained, dropped)
		return
	}
	Logf("%s: read %d of %d events, retained %d", p.Partition, read, p.Total, retained)
}
