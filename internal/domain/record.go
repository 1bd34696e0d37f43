package domain

// ObservationMetadata holds the externally supplied astrophysical scalars of
// one observation, keyed by the normalized observation identifier.
type ObservationMetadata struct {
	// GalacticD is the galactic line-of-sight D-factor in keV/cm².
	GalacticD float64

	// ExtragalacticD is the extragalactic line-of-sight D-factor in keV/cm².
	ExtragalacticD float64

	// GalLon and GalLat are the galactic sky coordinates in degrees.
	GalLon float64
	GalLat float64
}

// CalibratedRecord is the calibrated, compact output of one full exposure
// reduction. It is write-once: the store only makes it visible to readers
// after every field has been computed.
type CalibratedRecord struct {
	// ObsID is the canonical 10-digit observation identifier.
	ObsID string

	// Prefix is the detector+exposure prefix (e.g. "mos1S001", "pnS003").
	Prefix string

	Family Family

	// Counts are the raw per-channel counts, unchanged from the spectrum.
	Counts []int64

	// Flux is the calibrated differential flux per channel, cts/s/keV/sr.
	Flux []float64

	// Response is the area-folded, thresholded detector response in cm².
	Response ResponseMatrix

	// Exposure is the exposure time in seconds.
	Exposure float64

	// SolidAngle is the region-of-interest size in steradians.
	SolidAngle float64

	Grid EnergyGrid

	// BackgroundCounts and BackgroundErr are the quiescent background and
	// its uncertainty in effective-counts units for both families.
	BackgroundCounts []float64
	BackgroundErr    []float64

	Metadata ObservationMetadata
}
