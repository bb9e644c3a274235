package events

import (
	"encoding/json"
	"fmt"
	"os"
)

// criteriaFile is the on-disk form of a quality-criteria set: named
// comparisons against event columns.
type criteriaFile struct {
	Criteria []struct {
		Name   string  `json:"name"`
		Column string  `json:"column"`
		Op     string  `json:"op"`
		Value  float64 `json:"value"`
	} `json:"criteria"`
}

var fileOps = map[string]CompareOp{
	">": OpGT, ">=": OpGE,
	"<": OpLT, "<=": OpLE,
	"==": OpEQ, "!=": OpNE,
}

// LoadCriteriaFile reads a quality-criteria set from a JSON file. An empty
// path yields an empty set, which passes every event.
func LoadCriteriaFile(path string) (CriteriaSet, error) {
	if path == "" {
		return CriteriaSet{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return CriteriaSet{}, fmt.Errorf("reading criteria file: %w", err)
	}
	var file criteriaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return CriteriaSet{}, fmt.Errorf("parsing criteria file: %w", err)
	}
	criteria := make([]Criterion, 0, len(file.Criteria))
	for _, c := range file.Criteria {
		op, ok := fileOps[c.Op]
		if !ok {
			return CriteriaSet{}, fmt.Errorf("criterion %q: unknown operator %q", c.Name, c.Op)
		}
		criteria = append(criteria, Criterion{
			Name:      c.Name,
			Predicate: Compare{Column: c.Column, Op: op, Value: c.Value},
		})
	}
	return NewCriteriaSet(criteria...)
}
