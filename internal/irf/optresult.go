package irf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdebony/ctapipe/internal/cuts"
	"github.com/mdebony/ctapipe/internal/events"
)

// OptimizationResult carries the externally optimized analysis
// configuration: the binned classifier and angular cut tables, the
// field-of-view offset bins and the output energy binning. The cut values
// themselves are optimized elsewhere; this module only consumes them.
type OptimizationResult struct {
	GHCuts            []cuts.Bin `json:"gh_cuts"`
	ThetaCuts         []cuts.Bin `json:"theta_cuts,omitempty"`
	FovOffsetBinsDeg  []float64  `json:"fov_offset_bins_deg"`
	EnergyBinEdgesTeV []float64  `json:"energy_bin_edges_tev"`
}

// LoadOptimizationResult reads and validates an optimization result from a
// JSON file.
func LoadOptimizationResult(path string) (*OptimizationResult, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("cuts file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("reading cuts file: %w", err)
	}
	var res OptimizationResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing cuts file: %w", err)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate checks the configuration is usable. The cut tables are
// validated again on construction; this catches gross problems early with
// file-level context.
func (r *OptimizationResult) Validate() error {
	if len(r.GHCuts) == 0 {
		return events.Configf("cuts file defines no classifier cuts")
	}
	if len(r.FovOffsetBinsDeg) < 2 {
		return events.Configf("cuts file needs at least two fov offset bin edges")
	}
	if len(r.EnergyBinEdgesTeV) < 2 {
		return events.Configf("cuts file needs at least two energy bin edges")
	}
	return nil
}

// Tabulator builds the response tabulator from the optimization result. A
// point-like tabulation requires the optimized angular cut.
func (r *OptimizationResult) Tabulator(fullEnclosure bool) (*ResponseTabulator, error) {
	gh, err := cuts.New(r.GHCuts)
	if err != nil {
		return nil, fmt.Errorf("classifier cuts: %w", err)
	}
	rt := &ResponseTabulator{
		GHCuts:            gh,
		FullEnclosure:     fullEnclosure,
		EnergyBinEdgesTeV: r.EnergyBinEdgesTeV,
	}
	if !fullEnclosure {
		if len(r.ThetaCuts) == 0 {
			return nil, events.Configf("computing a point-like response requires an optimized theta cut")
		}
		rt.ThetaCuts, err = cuts.New(r.ThetaCuts)
		if err != nil {
			return nil, fmt.Errorf("theta cuts: %w", err)
		}
	}
	return rt, nil
}
