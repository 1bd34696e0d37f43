package reduce

import (
	"fmt"
	"math"

	"github.com/bft-labs/specred/internal/domain"
)

// PixelSolidAngle is the solid angle in steradians of one detector pixel
// with a side length of 0.05 arcseconds. BACKSCAL stores the ROI size in
// pixel-area units, so multiplying by this constant yields steradians. Fixed
// by the instrument's pixel geometry; must stay bit-for-bit stable.
const PixelSolidAngle = (0.05 / 3600 * math.Pi / 180) * (0.05 / 3600 * math.Pi / 180)

// SolidAngle converts a BACKSCAL value from pixel-area units to steradians.
func SolidAngle(backscale float64) float64 {
	return backscale * PixelSolidAngle
}

// Flux converts raw per-channel counts into calibrated differential flux in
// cts/s/keV/sr:
//
//	flux[c] = counts[c] / (outputHi[c]-outputLo[c]) / exposure / solidAngle
//
// Returns domain.ErrInvalidExposure when exposure or solidAngle is not
// strictly positive, and domain.ErrShapeMismatch when the counts do not
// cover the output grid.
func Flux(counts []int64, grid domain.EnergyGrid, exposure, solidAngle float64) ([]float64, error) {
	if exposure <= 0 {
		return nil, fmt.Errorf("%w: exposure time %v s", domain.ErrInvalidExposure, exposure)
	}
	if solidAngle <= 0 {
		return nil, fmt.Errorf("%w: ROI solid angle %v sr", domain.ErrInvalidExposure, solidAngle)
	}
	if len(counts) != grid.OutputChannels() {
		return nil, fmt.Errorf("%w: %d counts for %d output channels",
			domain.ErrShapeMismatch, len(counts), grid.OutputChannels())
	}

	flux := make([]float64, len(counts))
	for c, n := range counts {
		width := grid.OutputHi[c] - grid.OutputLo[c]
		flux[c] = float64(n) / width / exposure / solidAngle
	}
	return flux, nil
}
