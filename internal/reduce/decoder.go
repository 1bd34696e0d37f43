package reduce

import (
	"fmt"

	"github.com/bft-labs/specred/internal/domain"
)

// NegligibleThreshold is the absolute cutoff below which decoded response
// values are set to exactly zero. The response column is a probability
// density, so entries this small have negligible impact on the calibrated
// result, and zeroing them makes the stored matrix compress well.
//
// Applied before area folding.
const NegligibleThreshold = 1e-5

// DecodeMatrix reconstructs the dense response matrix from its sparse group
// encoding. For every input bin the encoding stores a variable number of
// contiguous output-channel runs; each run's slice of the dense column is
// filled from the flattened value sequence, consumed in group order, and
// every position outside a run stays zero.
//
// The encoding layout (scalar or vector) is fixed once per matrix in
// enc.Layout; the scalar layout is the degenerate case of exactly one group
// per bin. The returned matrix is already thresholded via [Threshold].
func DecodeMatrix(enc domain.GroupEncoding, grid domain.EnergyGrid) (domain.ResponseMatrix, error) {
	bins := grid.InputBins()
	channels := grid.OutputChannels()

	if err := validateEncoding(enc, bins); err != nil {
		return domain.ResponseMatrix{}, err
	}

	m := domain.NewResponseMatrix(channels, bins)
	for i := 0; i < bins; i++ {
		vals := enc.Values[i]
		consumed := 0
		for j := 0; j < enc.GroupCount[i]; j++ {
			first, run := groupAt(enc, i, j)
			if first < 0 || run < 0 || first+run > channels {
				return domain.ResponseMatrix{}, fmt.Errorf(
					"%w: bin %d group %d: run [%d,%d) outside %d output channels",
					domain.ErrShapeMismatch, i, j, first, first+run, channels)
			}
			if consumed+run > len(vals) {
				return domain.ResponseMatrix{}, fmt.Errorf(
					"%w: bin %d group %d: needs %d values, %d available",
					domain.ErrShapeMismatch, i, j, consumed+run, len(vals))
			}
			for k := 0; k < run; k++ {
				m.Set(first+k, i, vals[consumed+k])
			}
			consumed += run
		}
	}

	Threshold(m)
	return m, nil
}

// Threshold zeroes every matrix entry strictly below NegligibleThreshold.
// Idempotent: re-running it on an already-thresholded matrix is a no-op.
func Threshold(m domain.ResponseMatrix) {
	for i, v := range m.Data {
		if v < NegligibleThreshold {
			m.Data[i] = 0
		}
	}
}

// groupAt returns the (first channel, run length) pair of group j in input
// bin i for whichever layout the encoding carries.
func groupAt(enc domain.GroupEncoding, i, j int) (int, int) {
	if enc.Layout == domain.LayoutVector {
		return enc.FirstVector[i][j], enc.LengthVector[i][j]
	}
	return enc.FirstScalar[i], enc.LengthScalar[i]
}

func validateEncoding(enc domain.GroupEncoding, bins int) error {
	if len(enc.GroupCount) != bins || len(enc.Values) != bins {
		return fmt.Errorf("%w: encoding covers %d group counts and %d value rows for %d input bins",
			domain.ErrShapeMismatch, len(enc.GroupCount), len(enc.Values), bins)
	}
	switch enc.Layout {
	case domain.LayoutVector:
		if len(enc.FirstVector) != bins || len(enc.LengthVector) != bins {
			return fmt.Errorf("%w: vector layout with %d offset rows and %d length rows for %d bins",
				domain.ErrShapeMismatch, len(enc.FirstVector), len(enc.LengthVector), bins)
		}
		for i := 0; i < bins; i++ {
			if enc.GroupCount[i] > len(enc.FirstVector[i]) || enc.GroupCount[i] > len(enc.LengthVector[i]) {
				return fmt.Errorf("%w: bin %d declares %d groups, offsets hold %d",
					domain.ErrShapeMismatch, i, enc.GroupCount[i], len(enc.FirstVector[i]))
			}
		}
	default:
		if len(enc.FirstScalar) != bins || len(enc.LengthScalar) != bins {
			return fmt.Errorf("%w: scalar layout with %d offsets and %d lengths for %d bins",
				domain.ErrShapeMismatch, len(enc.FirstScalar), len(enc.LengthScalar), bins)
		}
		for i := 0; i < bins; i++ {
			if enc.GroupCount[i] > 1 {
				return fmt.Errorf("%w: bin %d declares %d groups in scalar layout",
					domain.ErrShapeMismatch, i, enc.GroupCount[i])
			}
		}
	}
	return nil
}
