package events

import "math"

// FrameAltAz is the pointing-frame identifier for fixed alt/az pointing,
// the only frame this pipeline supports.
const FrameAltAz = 0

// Normalizer renames reconstruction-pipeline-specific columns to the
// canonical schema and validates that the input conforms to it. The three
// prefixes identify which reconstruction algorithms produced the energy,
// geometry and classification columns.
type Normalizer struct {
	EnergyReconstructor   string
	GeometryReconstructor string
	GammanessClassifier   string
}

// DefaultNormalizer uses the random-forest energy and classification
// reconstructors and the Hillas geometry reconstructor.
func DefaultNormalizer() Normalizer {
	return Normalizer{
		EnergyReconstructor:   "RandomForestRegressor",
		GeometryReconstructor: "HillasReconstructor",
		GammanessClassifier:   "RandomForestClassifier",
	}
}

// keepColumns are input columns carried over unchanged.
var keepColumns = []string{
	"obs_id",
	"event_id",
	"true_energy",
	"true_az",
	"true_alt",
}

// renames returns the rename mapping in (from, to) pairs.
func (n Normalizer) renames() ([]string, []string) {
	from := []string{
		n.EnergyReconstructor + "_energy",
		n.GeometryReconstructor + "_az",
		n.GeometryReconstructor + "_alt",
		n.GammanessClassifier + "_prediction",
		"subarray_pointing_lat",
		"subarray_pointing_lon",
	}
	to := []string{
		"reco_energy",
		"reco_az",
		"reco_alt",
		"gh_score",
		"pointing_alt",
		"pointing_az",
	}
	return from, to
}

// Apply validates and renames the columns of one chunk. The input table is
// not modified. A missing required column is a SchemaError; pointing that
// is not fixed alt/az is a ConfigurationError, since the whole run assumes
// a single pointing model.
func (n Normalizer) Apply(t *Table) (*Table, error) {
	from, to := n.renames()
	for _, name := range keepColumns {
		if !t.Has(name) {
			return nil, &SchemaError{Column: name}
		}
	}
	for _, name := range from {
		if !t.Has(name) {
			return nil, &SchemaError{Column: name}
		}
	}

	if c := t.Col("subarray_pointing_frame"); c != nil {
		for row := 0; row < c.Len(); row++ {
			if c.Value(row) != FrameAltAz {
				return nil, Configf("only fixed alt/az pointing is supported")
			}
		}
	}
	if lat, err := t.Floats("subarray_pointing_lat"); err == nil && stddev(lat) > 1e-3 {
		return nil, Configf("varying pointings are not supported")
	}

	out := t.clone()
	for i := range from {
		if err := out.Rename(from[i], to[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
