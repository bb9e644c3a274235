package events

import (
	"fmt"
	"math"
)

// CompareOp is a comparison operator for a Compare predicate.
type CompareOp uint8

const (
	OpGT CompareOp = iota // >
	OpGE                  // >=
	OpLT                  // <
	OpLE                  // <=
	OpEQ                  // ==
	OpNE                  // !=
)

func (op CompareOp) String() string {
	switch op {
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpEQ:
		return "=="
	default:
		return "!="
	}
}

// Predicate is one quality-criterion body: a pure function of the row's
// column values. Predicates carry no state and do not depend on row order,
// so evaluating them per chunk or on the full table gives identical masks.
type Predicate interface {
	// Columns lists every column the predicate reads.
	Columns() []string
	// Eval evaluates the predicate against one row of t.
	Eval(t *Table, row int) bool
}

// Compare tests one column against a constant.
type Compare struct {
	Column string
	Op     CompareOp
	Value  float64
}

func (p Compare) Columns() []string { return []string{p.Column} }

func (p Compare) Eval(t *Table, row int) bool {
	v := t.Col(p.Column).Value(row)
	switch p.Op {
	case OpGT:
		return v > p.Value
	case OpGE:
		return v >= p.Value
	case OpLT:
		return v < p.Value
	case OpLE:
		return v <= p.Value
	case OpEQ:
		return v == p.Value
	default:
		return v != p.Value
	}
}

// Range tests Low <= column < High.
type Range struct {
	Column    string
	Low, High float64
}

func (p Range) Columns() []string { return []string{p.Column} }

func (p Range) Eval(t *Table, row int) bool {
	v := t.Col(p.Column).Value(row)
	return v >= p.Low && v < p.High
}

// Finite tests that the column value is neither NaN nor infinite.
type Finite struct {
	Column string
}

func (p Finite) Columns() []string { return []string{p.Column} }

func (p Finite) Eval(t *Table, row int) bool {
	v := t.Col(p.Column).Value(row)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllOf passes when every sub-predicate passes.
type AllOf []Predicate

func (p AllOf) Columns() []string {
	var cols []string
	for _, sub := range p {
		cols = append(cols, sub.Columns()...)
	}
	return cols
}

func (p AllOf) Eval(t *Table, row int) bool {
	for _, sub := range p {
		if !sub.Eval(t, row) {
			return false
		}
	}
	return true
}

// AnyOf passes when at least one sub-predicate passes.
type AnyOf []Predicate

func (p AnyOf) Columns() []string {
	var cols []string
	for _, sub := range p {
		cols = append(cols, sub.Columns()...)
	}
	return cols
}

func (p AnyOf) Eval(t *Table, row int) bool {
	for _, sub := range p {
		if sub.Eval(t, row) {
			return true
		}
	}
	return false
}

// Not inverts a predicate.
type Not struct {
	P Predicate
}

func (p Not) Columns() []string       { return p.P.Columns() }
func (p Not) Eval(t *Table, row int) bool { return !p.P.Eval(t, row) }

// Criterion is a named quality predicate.
type Criterion struct {
	Name      string
	Predicate Predicate
}

// CriteriaSet is an ordered, immutable sequence of quality criteria. The
// combined mask is the logical AND of all individual criterion masks.
type CriteriaSet struct {
	criteria []Criterion
}

// NewCriteriaSet builds a criteria set, rejecting unnamed or duplicate
// criteria.
func NewCriteriaSet(criteria ...Criterion) (CriteriaSet, error) {
	seen := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		if c.Name == "" {
			return CriteriaSet{}, Configf("quality criterion without a name")
		}
		if c.Predicate == nil {
			return CriteriaSet{}, Configf("quality criterion %q has no predicate", c.Name)
		}
		if seen[c.Name] {
			return CriteriaSet{}, Configf("duplicate quality criterion %q", c.Name)
		}
		seen[c.Name] = true
	}
	return CriteriaSet{criteria: append([]Criterion(nil), criteria...)}, nil
}

// Len returns the number of criteria in the set.
func (cs CriteriaSet) Len() int { return len(cs.criteria) }

// Validate checks that every column referenced by the criteria exists in
// the given schema. It runs at configuration time, before any data is
// processed.
func (cs CriteriaSet) Validate(columns []string) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, crit := range cs.criteria {
		for _, col := range crit.Predicate.Columns() {
			if !known[col] {
				return Configf("quality criterion %q references unknown column %q", crit.Name, col)
			}
		}
	}
	return nil
}

// CriterionCounts reports per-criterion pass/fail statistics for
// diagnostics.
type CriterionCounts struct {
	Name   string
	Passed int
	Failed int
}

// Apply evaluates the criteria against every row of t and returns the
// combined mask plus per-criterion counts. Column references are validated
// against the table before any row is touched.
func (cs CriteriaSet) Apply(t *Table) ([]bool, []CriterionCounts, error) {
	if err := cs.Validate(t.Names()); err != nil {
		return nil, nil, err
	}
	n := t.NumRows()
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	counts := make([]CriterionCounts, len(cs.criteria))
	for ci, crit := range cs.criteria {
		counts[ci].Name = crit.Name
		for row := 0; row < n; row++ {
			if crit.Predicate.Eval(t, row) {
				counts[ci].Passed++
			} else {
				counts[ci].Failed++
				mask[row] = false
			}
		}
	}
	return mask, counts, nil
}

// String renders the criteria set for log output.
func (cs CriteriaSet) String() string {
	s := ""
	for i, c := range cs.criteria {
		if i > 0 {
			s += ", "
		}
		s += c.Name
	}
	return fmt.Sprintf("[%s]", s)
}
