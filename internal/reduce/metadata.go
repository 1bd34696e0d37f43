package reduce

import (
	"fmt"

	"github.com/bft-labs/specred/internal/domain"
)

// obsIDWidth is the canonical width of an observation identifier.
const obsIDWidth = 10

// NormalizeObsID re-derives the canonical fixed-width observation identifier
// from a raw one. Upstream integer-keyed tables truncate leading zeros, so
// "123456789" and "0123456789" both normalize to "0123456789".
func NormalizeObsID(id string) (string, error) {
	if id == "" || len(id) > obsIDWidth {
		return "", fmt.Errorf("%w: invalid observation id %q", domain.ErrMetadataNotFound, id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: invalid observation id %q", domain.ErrMetadataNotFound, id)
		}
	}
	for len(id) < obsIDWidth {
		id = "0" + id
	}
	return id, nil
}
