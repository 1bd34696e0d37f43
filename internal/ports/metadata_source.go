package ports

import "github.com/bft-labs/specred/internal/domain"

// MetadataSource resolves per-observation astrophysical metadata from the
// external, read-only metadata table.
type MetadataSource interface {
	// Lookup returns the metadata row for the given observation identifier.
	// The identifier is normalized to its canonical 10-digit zero-padded
	// form before the lookup, so callers may pass identifiers whose leading
	// zero was truncated upstream.
	//
	// Returns domain.ErrMetadataNotFound (wrapped) if no row exists.
	Lookup(obsID string) (domain.ObservationMetadata, error)
}
