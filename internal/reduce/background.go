package reduce

import (
	"fmt"

	"github.com/bft-labs/specred/internal/domain"
)

// EffectiveCounts harmonizes the quiescent background of both detector
// families into effective-counts units.
//
// The slitless family stores the background as a rate (counts/second) with a
// statistical rate error; both are multiplied by the exposure time. The
// imaging family stores counts with a count error; those pass through
// unchanged. Downstream consumers never see the family difference.
func EffectiveCounts(bkg domain.RawBackground, family domain.Family, exposure float64) (counts, errs []float64, err error) {
	if len(bkg.Values) != len(bkg.StatErr) {
		return nil, nil, fmt.Errorf("%w: %d background values with %d errors",
			domain.ErrShapeMismatch, len(bkg.Values), len(bkg.StatErr))
	}

	scale := 1.0
	if family == domain.FamilySlitless {
		if exposure <= 0 {
			return nil, nil, fmt.Errorf("%w: exposure time %v s for rate background",
				domain.ErrInvalidExposure, exposure)
		}
		scale = exposure
	}

	counts = make([]float64, len(bkg.Values))
	errs = make([]float64, len(bkg.StatErr))
	for i := range bkg.Values {
		counts[i] = bkg.Values[i] * scale
		errs[i] = bkg.StatErr[i] * scale
	}
	return counts, errs, nil
}
