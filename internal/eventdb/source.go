package eventdb

import (
	"database/sql"
	"fmt"

	"github.com/mdebony/ctapipe/internal/events"
)

// Selector optionally restricts an EventSource to rows where one column
// equals a value, e.g. a telescope-type partition of a training table.
type Selector struct {
	Column string
	Value  any
}

// EventSource reads a raw event table back in fixed-size chunks, in stable
// rowid order, implementing events.ChunkSource. Blocking disk reads are
// confined here; the numeric pipeline stages never touch the database.
type EventSource struct {
	db       *DB
	table    string
	selector *Selector
}

// EventSource builds a chunked reader over one raw event table.
func (db *DB) EventSource(table string, selector *Selector) (*EventSource, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	if selector != nil {
		if err := checkIdentifier(selector.Column); err != nil {
			return nil, err
		}
	}
	return &EventSource{db: db, table: table, selector: selector}, nil
}

func (s *EventSource) where() (string, []any) {
	if s.selector == nil {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s = ?", s.selector.Column), []any{s.selector.Value}
}

// TotalRows implements events.ChunkSource.
func (s *EventSource) TotalRows() (int, error) {
	where, args := s.where()
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM "+s.table+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting rows of %s: %w", s.table, err)
	}
	return n, nil
}

// Chunks implements events.ChunkSource.
func (s *EventSource) Chunks(chunkSize int) events.ChunkIterator {
	if chunkSize <= 0 {
		chunkSize = 100000
	}
	return &sqlIterator{source: s, size: chunkSize}
}

type sqlIterator struct {
	source *EventSource
	size   int
	offset int
	done   bool
	err    error
}

func (it *sqlIterator) Next() (events.Chunk, bool) {
	if it.done || it.err != nil {
		return events.Chunk{}, false
	}
	where, args := it.source.where()
	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY rowid LIMIT ? OFFSET ?", it.source.table, where)
	args = append(args, it.size, it.offset)
	rows, err := it.source.db.Query(query, args...)
	if err != nil {
		it.err = err
		return events.Chunk{}, false
	}
	table, n, err := scanTable(rows)
	rows.Close()
	if err != nil {
		it.err = err
		return events.Chunk{}, false
	}
	if n == 0 {
		it.done = true
		return events.Chunk{}, false
	}
	chunk := events.Chunk{Start: it.offset, Stop: it.offset + n, Events: table}
	it.offset += n
	if n < it.size {
		it.done = true
	}
	return chunk, true
}

func (it *sqlIterator) Err() error { return it.err }

// scanTable materializes a result set as an event table. INTEGER columns
// become identifier columns; everything else is read as float.
func scanTable(rows *sql.Rows) (*events.Table, int, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, 0, err
	}
	kinds := make([]events.Kind, len(colTypes))
	cols := make([]events.Column, len(colTypes))
	for i, ct := range colTypes {
		kind := events.Float
		if ct.DatabaseTypeName() == "INTEGER" {
			kind = events.Int
		}
		kinds[i] = kind
		cols[i] = events.Column{Name: ct.Name(), Kind: kind}
	}

	n := 0
	for rows.Next() {
		dest := make([]any, len(cols))
		floatVals := make([]sql.NullFloat64, len(cols))
		intVals := make([]sql.NullInt64, len(cols))
		for i := range cols {
			if kinds[i] == events.Int {
				dest[i] = &intVals[i]
			} else {
				dest[i] = &floatVals[i]
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		for i := range cols {
			if kinds[i] == events.Int {
				cols[i].Ints = append(cols[i].Ints, uint64(intVals[i].Int64))
			} else {
				cols[i].Floats = append(cols[i].Floats, floatVals[i].Float64)
			}
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	table, err := events.NewTable(cols...)
	if err != nil {
		return nil, 0, err
	}
	return table, n, nil
}
