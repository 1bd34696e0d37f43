package domain

import "errors"

// Domain errors represent the fatal per-exposure failure modes of the
// reduction pipeline. They are returned (usually wrapped) by the public API
// and can be checked with errors.Is. Every one of them aborts the current
// exposure only; no partial output record is ever left behind.
var (
	// ErrMissingCalibrationFile is returned when any of the four required
	// calibration tables (spectrum, ARF, RMF, background) is absent.
	ErrMissingCalibrationFile = errors.New("specred: missing calibration file")

	// ErrShapeMismatch is returned when row counts or field shapes are
	// inconsistent between tables and break the decoder's assumptions.
	ErrShapeMismatch = errors.New("specred: calibration table shape mismatch")

	// ErrInvalidExposure is returned when the exposure time or the ROI solid
	// angle is not strictly positive, leaving the flux undefined.
	ErrInvalidExposure = errors.New("specred: invalid exposure or ROI")

	// ErrMetadataNotFound is returned when the observation identifier has no
	// row in the external metadata table.
	ErrMetadataNotFound = errors.New("specred: observation metadata not found")
)
