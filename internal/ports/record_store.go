package ports

import (
	"context"

	"github.com/bft-labs/specred/internal/domain"
)

// RecordStore persists calibrated records, one per exposure.
//
// Writes are all-or-nothing: a record must not be observable by readers
// until every field has been written successfully. Implementations should
// write to a temporary location and commit with an atomic rename, so the
// presence of a record is a reliable success signal for aggregators.
type RecordStore interface {
	// Write persists the record, keyed by its ObsID and Prefix.
	Write(ctx context.Context, rec domain.CalibratedRecord) error

	// Read loads the record for (obsID, prefix). Reading back a record
	// written by the same store reproduces counts, flux, and response
	// matrix bit-identically.
	Read(ctx context.Context, obsID, prefix string) (domain.CalibratedRecord, error)

	// Exists reports whether a committed record exists for (obsID, prefix).
	Exists(obsID, prefix string) bool
}
