package domain

// Family identifies the detector family of an exposure. The two families
// differ both in how the response matrix groups are encoded (see
// [GroupLayout]) and in the unit convention of the stored background.
//
// The family is detected exactly once, when the calibration tables are
// loaded, and threaded explicitly through the decoder and the background
// extractor. No component re-derives it from field shapes.
type Family int

const (
	// FamilyUnknown means the loader has not classified the exposure.
	FamilyUnknown Family = iota

	// FamilyImaging is the full-frame imaging family (MOS cameras).
	// Scalar group layout; background stored directly as counts.
	FamilyImaging

	// FamilySlitless is the slitless-readout family (PN camera).
	// Vector group layout; background stored as a rate in counts/second.
	FamilySlitless
)

// String returns a short lowercase name for logging.
func (f Family) String() string {
	switch f {
	case FamilyImaging:
		return "imaging"
	case FamilySlitless:
		return "slitless"
	default:
		return "unknown"
	}
}

// Layout returns the group-encoding layout used by this family.
func (f Family) Layout() GroupLayout {
	if f == FamilySlitless {
		return LayoutVector
	}
	return LayoutScalar
}

// GroupLayout describes how first-channel offsets and run lengths are stored
// in the response matrix table.
type GroupLayout int

const (
	// LayoutScalar stores one offset/length pair per input bin. It is the
	// degenerate case of exactly one group per bin.
	LayoutScalar GroupLayout = iota

	// LayoutVector stores an offset/length array per input bin.
	LayoutVector
)

// String returns a short lowercase name for logging.
func (l GroupLayout) String() string {
	if l == LayoutVector {
		return "vector"
	}
	return "scalar"
}
