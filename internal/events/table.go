package events

import (
	"fmt"
)

// Kind enumerates the storage type of a table column.
type Kind uint8

const (
	// Float is a float64 column, optionally carrying a physical unit.
	Float Kind = iota
	// Int is a uint64 column, used for identifiers such as obs_id/event_id.
	Int
	// Bool is a boolean column, used for selection flags.
	Bool
)

// Column is one named, typed column of an event table. Unit and Description
// are metadata only; they do not affect numeric behaviour.
type Column struct {
	Name        string
	Unit        string
	Description string
	Kind        Kind

	Floats []float64
	Ints   []uint64
	Bools  []bool
}

// FloatColumn builds a float column without metadata.
func FloatColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Float, Floats: values}
}

// IntColumn builds a uint64 column without metadata.
func IntColumn(name string, values []uint64) Column {
	return Column{Name: name, Kind: Int, Ints: values}
}

// BoolColumn builds a boolean column without metadata.
func BoolColumn(name string, values []bool) Column {
	return Column{Name: name, Kind: Bool, Bools: values}
}

// Len returns the number of rows stored in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case Int:
		return len(c.Ints)
	case Bool:
		return len(c.Bools)
	default:
		return len(c.Floats)
	}
}

// Value returns the row value coerced to float64. Bools map to 0/1.
func (c *Column) Value(row int) float64 {
	switch c.Kind {
	case Int:
		return float64(c.Ints[row])
	case Bool:
		if c.Bools[row] {
			return 1
		}
		return 0
	default:
		return c.Floats[row]
	}
}

// filtered returns a copy of the column keeping only rows where mask is true.
func (c *Column) filtered(mask []bool) Column {
	out := c.header()
	for i, keep := range mask {
		if !keep {
			continue
		}
		out.appendRow(c, i)
	}
	return out
}

// taken returns a copy of the column with rows reordered by idx.
func (c *Column) taken(idx []int) Column {
	out := c.header()
	for _, i := range idx {
		out.appendRow(c, i)
	}
	return out
}

// sliced returns a copy of the column restricted to rows [start, stop).
func (c *Column) sliced(start, stop int) Column {
	out := c.header()
	switch c.Kind {
	case Int:
		out.Ints = append(out.Ints, c.Ints[start:stop]...)
	case Bool:
		out.Bools = append(out.Bools, c.Bools[start:stop]...)
	default:
		out.Floats = append(out.Floats, c.Floats[start:stop]...)
	}
	return out
}

// header returns an empty column with the same metadata.
func (c *Column) header() Column {
	return Column{Name: c.Name, Unit: c.Unit, Description: c.Description, Kind: c.Kind}
}

func (c *Column) appendRow(src *Column, row int) {
	switch c.Kind {
	case Int:
		c.Ints = append(c.Ints, src.Ints[row])
	case Bool:
		c.Bools = append(c.Bools, src.Bools[row])
	default:
		c.Floats = append(c.Floats, src.Floats[row])
	}
}

func (c *Column) appendAll(src *Column) {
	switch c.Kind {
	case Int:
		c.Ints = append(c.Ints, src.Ints...)
	case Bool:
		c.Bools = append(c.Bools, src.Bools...)
	default:
		c.Floats = append(c.Floats, src.Floats...)
	}
}

// Table is an ordered set of equal-length named columns. Rows are identified
// by (obs_id, event_id) in reduced event tables, but the container itself
// makes no assumption about which columns are present.
type Table struct {
	cols  []Column
	index map[string]int
}

// NewTable builds a table from columns. All columns must have the same
// length and unique names.
func NewTable(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	n := -1
	for _, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if n == -1 {
			n = c.Len()
		} else if c.Len() != n {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), n)
		}
		t.index[c.Name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Col returns the named column, or nil if it does not exist.
func (t *Table) Col(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return &t.cols[i]
}

// Floats returns the values of a float column.
func (t *Table) Floats(name string) ([]float64, error) {
	c := t.Col(name)
	if c == nil {
		return nil, &SchemaError{Column: name}
	}
	if c.Kind != Float {
		return nil, fmt.Errorf("column %q is not a float column", name)
	}
	return c.Floats, nil
}

// Bools returns the values of a boolean column.
func (t *Table) Bools(name string) ([]bool, error) {
	c := t.Col(name)
	if c == nil {
		return nil, &SchemaError{Column: name}
	}
	if c.Kind != Bool {
		return nil, fmt.Errorf("column %q is not a boolean column", name)
	}
	return c.Bools, nil
}

// SetColumn adds a column, replacing any existing column of the same name.
// The column length must match the table.
func (t *Table) SetColumn(c Column) error {
	if t.NumCols() > 0 && c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.NumRows())
	}
	if i, ok := t.index[c.Name]; ok {
		t.cols[i] = c
		return nil
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Rename renames a column in place.
func (t *Table) Rename(from, to string) error {
	i, ok := t.index[from]
	if !ok {
		return &SchemaError{Column: from}
	}
	if _, dup := t.index[to]; dup {
		return fmt.Errorf("rename %q: column %q already exists", from, to)
	}
	delete(t.index, from)
	t.cols[i].Name = to
	t.index[to] = i
	return nil
}

// Keep projects the table onto the named columns, in the given order.
// A missing column is a schema error.
func (t *Table) Keep(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c := t.Col(name)
		if c == nil {
			return nil, &SchemaError{Column: name}
		}
		cols = append(cols, *c)
	}
	return NewTable(cols...)
}

// Filter returns a new table keeping only rows where mask is true.
func (t *Table) Filter(mask []bool) *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.filtered(mask))
	}
	return out
}

// Take returns a new table with rows reordered by idx. Indices must be
// valid row positions; they are not required to be sorted.
func (t *Table) Take(idx []int) *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.taken(idx))
	}
	return out
}

// Slice returns a copy of rows [start, stop).
func (t *Table) Slice(start, stop int) *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.sliced(start, stop))
	}
	return out
}

// clone returns a shallow copy of the table: new column headers sharing the
// underlying value slices. Useful when renaming or adding columns without
// mutating the input.
func (t *Table) clone() *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out
}

// Vstack concatenates tables in order. The header table fixes the canonical
// column order, kinds and metadata (units, descriptions) of the result;
// every input table must carry exactly the header's column set. Putting the
// header's metadata last in precedence order is deliberate: the stacked data
// never overrides the reference schema, regardless of which table
// contributed the last rows.
func Vstack(header *Table, tables ...*Table) (*Table, error) {
	out := &Table{index: make(map[string]int, header.NumCols())}
	for _, c := range header.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.header())
	}
	for _, src := range tables {
		if src.NumCols() != header.NumCols() {
			return nil, fmt.Errorf("cannot stack table with %d columns onto schema with %d", src.NumCols(), header.NumCols())
		}
		for i := range out.cols {
			c := src.Col(out.cols[i].Name)
			if c == nil {
				return nil, &SchemaError{Column: out.cols[i].Name}
			}
			if c.Kind != out.cols[i].Kind {
				return nil, fmt.Errorf("column %q kind mismatch", c.Name)
			}
			out.cols[i].appendAll(c)
		}
	}
	return out, nil
}
