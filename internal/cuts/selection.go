package cuts

import "github.com/mdebony/ctapipe/internal/events"

// ApplySelections adds the selection flag columns to a reduced event table:
// selected_gh from the classifier-score cut, selected_theta from the
// angular cut (point-like analysis only), and the combined selected flag.
// The sub-cut masks are computed independently and combined afterwards so
// diagnostics on each remain available; for full-enclosure analysis the
// combined flag is the classifier cut alone.
func ApplySelections(evs *events.Table, ghCuts, thetaCuts *Table, fullEnclosure bool) error {
	recoEnergy, err := evs.Floats("reco_energy")
	if err != nil {
		return err
	}
	ghScore, err := evs.Floats("gh_score")
	if err != nil {
		return err
	}

	selectedGH, err := ghCuts.Evaluate(ghScore, recoEnergy, GreaterEqual)
	if err != nil {
		return err
	}
	if err := evs.SetColumn(events.BoolColumn("selected_gh", selectedGH)); err != nil {
		return err
	}

	if fullEnclosure {
		return evs.SetColumn(events.BoolColumn("selected", append([]bool(nil), selectedGH...)))
	}

	if thetaCuts == nil {
		return events.Configf("a point-like selection requires an angular cut table")
	}
	theta, err := evs.Floats("theta")
	if err != nil {
		return err
	}
	selectedTheta, err := thetaCuts.Evaluate(theta, recoEnergy, LessEqual)
	if err != nil {
		return err
	}
	if err := evs.SetColumn(events.BoolColumn("selected_theta", selectedTheta)); err != nil {
		return err
	}

	selected := make([]bool, len(selectedGH))
	for i := range selected {
		selected[i] = selectedGH[i] && selectedTheta[i]
	}
	return evs.SetColumn(events.BoolColumn("selected", selected))
}
