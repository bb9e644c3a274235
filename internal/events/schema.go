package events

// ReducedColumns is the minimal persisted column set of a reduced event
// table, in canonical order.
var ReducedColumns = []string{
	"obs_id",
	"event_id",
	"true_energy",
	"true_az",
	"true_alt",
	"reco_energy",
	"reco_az",
	"reco_alt",
	"reco_fov_lat",
	"reco_fov_lon",
	"pointing_az",
	"pointing_alt",
	"theta",
	"true_source_fov_offset",
	"reco_source_fov_offset",
	"gh_score",
	"weight",
}

// EmptyReducedTable returns the empty-but-typed reference table that
// defines the columns, units and descriptions downstream consumers expect
// in a reduced event table.
func EmptyReducedTable() *Table {
	t, err := NewTable(
		Column{Name: "obs_id", Kind: Int, Description: "Observation block ID"},
		Column{Name: "event_id", Kind: Int, Description: "Array event ID"},
		Column{Name: "true_energy", Kind: Float, Unit: "TeV", Description: "Simulated energy"},
		Column{Name: "true_az", Kind: Float, Unit: "deg", Description: "Simulated azimuth"},
		Column{Name: "true_alt", Kind: Float, Unit: "deg", Description: "Simulated altitude"},
		Column{Name: "reco_energy", Kind: Float, Unit: "TeV", Description: "Reconstructed energy"},
		Column{Name: "reco_az", Kind: Float, Unit: "deg", Description: "Reconstructed azimuth"},
		Column{Name: "reco_alt", Kind: Float, Unit: "deg", Description: "Reconstructed altitude"},
		Column{Name: "reco_fov_lat", Kind: Float, Unit: "deg", Description: "Reconstructed field of view lat"},
		Column{Name: "reco_fov_lon", Kind: Float, Unit: "deg", Description: "Reconstructed field of view lon"},
		Column{Name: "pointing_az", Kind: Float, Unit: "deg", Description: "Pointing azimuth"},
		Column{Name: "pointing_alt", Kind: Float, Unit: "deg", Description: "Pointing altitude"},
		Column{Name: "theta", Kind: Float, Unit: "deg", Description: "Reconstructed angular offset from source position"},
		Column{Name: "true_source_fov_offset", Kind: Float, Unit: "deg", Description: "Simulated angular offset from pointing direction"},
		Column{Name: "reco_source_fov_offset", Kind: Float, Unit: "deg", Description: "Reconstructed angular offset from pointing direction"},
		Column{Name: "gh_score", Kind: Float, Description: "Classifier prediction in [0,1]; values close to 1 favour the positive (gamma) class"},
		Column{Name: "weight", Kind: Float, Description: "Event weight"},
	)
	if err != nil {
		// The schema above is static; a failure here is a programming error.
		panic(err)
	}
	return t
}
