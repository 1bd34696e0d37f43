package ports

import (
	"context"

	"github.com/bft-labs/specred/internal/domain"
)

// CalibrationSource loads the four per-exposure calibration tables
// (spectrum, effective-area table, response-matrix table, background
// spectrum) for one exposure.
//
// Implementations must release every file handle before returning, on
// success and failure paths alike, and must classify the detector family
// exactly once while loading.
type CalibrationSource interface {
	// Load opens and validates the calibration tables for the exposure
	// identified by (obsID, prefix) under dataRoot.
	//
	// Returns domain.ErrMissingCalibrationFile (wrapped) if any of the four
	// expected files is absent, and domain.ErrShapeMismatch (wrapped) on
	// row-count or field-shape inconsistencies between tables.
	Load(ctx context.Context, dataRoot, obsID, prefix string) (domain.CalibrationSet, error)
}
