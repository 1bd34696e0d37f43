package domain

// Spectrum holds the raw science spectrum of one exposure.
type Spectrum struct {
	// Counts are the raw X-ray counts per detector channel.
	Counts []int64

	// Exposure is the (non vignetting corrected) exposure time in seconds.
	Exposure float64

	// Backscale is the region-of-interest size in pixel-area units,
	// where one pixel has a side length of 0.05 arcseconds.
	Backscale float64
}

// EnergyGrid holds the input and output energy bin edges of the response
// matrix, in keV. Both sequences of edges are strictly increasing; the input
// and output grids may differ in cardinality (they do for the slitless
// family).
type EnergyGrid struct {
	InputLo  []float64
	InputHi  []float64
	OutputLo []float64
	OutputHi []float64
}

// InputBins returns the number of input energy bins.
func (g EnergyGrid) InputBins() int { return len(g.InputLo) }

// OutputChannels returns the number of output detector channels.
func (g EnergyGrid) OutputChannels() int { return len(g.OutputLo) }

// GroupEncoding is the sparse representation of the response matrix as
// stored on disk: for each input energy bin, a variable number of contiguous
// output-channel runs, with the run values flattened in group order.
//
// The scalar and vector layouts share this one type. For LayoutScalar the
// per-bin offset and length live in FirstScalar/LengthScalar; for
// LayoutVector they live in FirstVector/LengthVector. The layout is fixed
// once per matrix by the loader.
type GroupEncoding struct {
	Layout GroupLayout

	// GroupCount is the number of runs for each input bin.
	GroupCount []int

	// FirstScalar and LengthScalar hold the single offset/length pair per
	// input bin used by LayoutScalar.
	FirstScalar  []int
	LengthScalar []int

	// FirstVector and LengthVector hold the per-group offset/length arrays
	// used by LayoutVector.
	FirstVector  [][]int
	LengthVector [][]int

	// Values holds, per input bin, the flattened probability values of all
	// runs, consumed in group order.
	Values [][]float64
}

// RawBackground holds the quiescent particle background columns as stored on
// disk. For the imaging family Values are counts; for the slitless family
// they are rates in counts/second. StatErr carries the matching statistical
// error in the same unit.
type RawBackground struct {
	Values  []float64
	StatErr []float64
}

// CalibrationSet aggregates everything loaded from the four per-exposure
// calibration tables, before any transformation.
type CalibrationSet struct {
	Family        Family
	Spectrum      Spectrum
	Grid          EnergyGrid
	EffectiveArea []float64
	Encoding      GroupEncoding
	Background    RawBackground
}
