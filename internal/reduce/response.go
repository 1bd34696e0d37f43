package reduce

import (
	"fmt"

	"github.com/bft-labs/specred/internal/domain"
)

// FoldEffectiveArea multiplies every column of the decoded, thresholded
// matrix by the effective area of its input bin, producing the final
// detector response in cm². Pure transformation of the matrix in place.
func FoldEffectiveArea(m domain.ResponseMatrix, effArea []float64) error {
	if len(effArea) != m.InputBins {
		return fmt.Errorf("%w: %d effective-area entries for %d input bins",
			domain.ErrShapeMismatch, len(effArea), m.InputBins)
	}
	for i, a := range effArea {
		m.ScaleColumn(i, a)
	}
	return nil
}
