package events

import "math"

// Deriver computes the physical quantities downstream stages need from the
// canonical reconstruction columns: the angular offset from the assumed
// source position (theta), the true and reconstructed field-of-view
// offsets, the reconstructed direction expressed in the nominal frame
// centred on the pointing direction, and a unit weight placeholder. Proper
// weights are applied later by the reweighting stage.
type Deriver struct{}

// derived columns read by Apply.
var deriveInputs = []string{
	"true_az", "true_alt",
	"reco_az", "reco_alt",
	"pointing_az", "pointing_alt",
}

// Apply adds the derived columns to a copy of t.
func (Deriver) Apply(t *Table) (*Table, error) {
	for _, name := range deriveInputs {
		if !t.Has(name) {
			return nil, &SchemaError{Column: name}
		}
	}
	out := t.clone()
	n := out.NumRows()

	trueAz := out.Col("true_az").Floats
	trueAlt := out.Col("true_alt").Floats
	recoAz := out.Col("reco_az").Floats
	recoAlt := out.Col("reco_alt").Floats
	pointAz := out.Col("pointing_az").Floats
	pointAlt := out.Col("pointing_alt").Floats

	weight := make([]float64, n)
	theta := make([]float64, n)
	trueOffset := make([]float64, n)
	recoOffset := make([]float64, n)
	fovLon := make([]float64, n)
	fovLat := make([]float64, n)

	for i := 0; i < n; i++ {
		weight[i] = 1
		theta[i] = AngularSeparation(recoAlt[i], recoAz[i], trueAlt[i], trueAz[i])
		trueOffset[i] = AngularSeparation(trueAlt[i], trueAz[i], pointAlt[i], pointAz[i])
		recoOffset[i] = AngularSeparation(recoAlt[i], recoAz[i], pointAlt[i], pointAz[i])
		lon, lat := nominalOffsets(pointAlt[i], pointAz[i], recoAlt[i], recoAz[i])
		// Longitude is flipped to match the GADF field-of-view convention.
		fovLon[i] = -lon
		fovLat[i] = lat
	}

	add := []Column{
		{Name: "weight", Kind: Float, Floats: weight, Description: "Event weight"},
		{Name: "theta", Kind: Float, Unit: "deg", Floats: theta, Description: "Reconstructed angular offset from source position"},
		{Name: "true_source_fov_offset", Kind: Float, Unit: "deg", Floats: trueOffset, Description: "Simulated angular offset from pointing direction"},
		{Name: "reco_source_fov_offset", Kind: Float, Unit: "deg", Floats: recoOffset, Description: "Reconstructed angular offset from pointing direction"},
		{Name: "reco_fov_lon", Kind: Float, Unit: "deg", Floats: fovLon, Description: "Reconstructed field of view lon"},
		{Name: "reco_fov_lat", Kind: Float, Unit: "deg", Floats: fovLat, Description: "Reconstructed field of view lat"},
	}
	for _, c := range add {
		if err := out.SetColumn(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

const degToRad = math.Pi / 180

// AngularSeparation returns the great-circle distance in degrees between
// two alt/az directions given in degrees.
func AngularSeparation(alt1, az1, alt2, az2 float64) float64 {
	sinDAlt := math.Sin((alt2 - alt1) / 2 * degToRad)
	sinDAz := math.Sin((az2 - az1) / 2 * degToRad)
	a := sinDAlt*sinDAlt + math.Cos(alt1*degToRad)*math.Cos(alt2*degToRad)*sinDAz*sinDAz
	return 2 * math.Asin(math.Min(1, math.Sqrt(a))) / degToRad
}

// nominalOffsets expresses an alt/az direction in the spherical offset
// frame whose origin is the pointing direction. Both returned angles are in
// degrees and vanish when the direction coincides with the pointing.
func nominalOffsets(pointAlt, pointAz, alt, az float64) (lon, lat float64) {
	dAz := (az - pointAz) * degToRad
	altR := alt * degToRad
	pAltR := pointAlt * degToRad

	// Unit vector of the direction in a frame rotated so the pointing
	// direction lies on the x axis.
	x := math.Cos(pAltR)*math.Cos(altR)*math.Cos(dAz) + math.Sin(pAltR)*math.Sin(altR)
	y := math.Cos(altR) * math.Sin(dAz)
	z := math.Cos(pAltR)*math.Sin(altR) - math.Sin(pAltR)*math.Cos(altR)*math.Cos(dAz)

	lon = math.Atan2(y, x) / degToRad
	lat = math.Asin(math.Max(-1, math.Min(1, z))) / degToRad
	return lon, lat
}
