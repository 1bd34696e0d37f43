package fs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bft-labs/specred/internal/domain"
	"github.com/bft-labs/specred/internal/reduce"
)

// Column names of the external per-observation metadata table.
const (
	colObsID   = "OBSERVATION.OBSERVATION_ID"
	colDfacGal = "Dfac_gal"
	colDfacEG  = "Dfac_eg"
	colGalLon  = "OBSERVATION.LII"
	colGalLat  = "OBSERVATION.BII"
)

// CSVMetadataSource implements ports.MetadataSource over the external
// metadata CSV. The whole table is loaded once; rows are keyed by the
// canonical zero-padded observation identifier, so identifiers whose leading
// zero was stripped by the upstream integer-keyed export still resolve.
type CSVMetadataSource struct {
	rows map[string]domain.ObservationMetadata
}

// NewCSVMetadataSource reads and indexes the metadata table at path.
func NewCSVMetadataSource(path string) (*CSVMetadataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read metadata header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, need := range []string{colObsID, colDfacGal, colDfacEG, colGalLon, colGalLat} {
		if _, ok := idx[need]; !ok {
			return nil, fmt.Errorf("metadata table missing column %q", need)
		}
	}

	rows := make(map[string]domain.ObservationMetadata)
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata row: %w", err)
		}

		id, err := reduce.NormalizeObsID(rec[idx[colObsID]])
		if err != nil {
			return nil, fmt.Errorf("metadata line %d: %w", line, err)
		}
		md := domain.ObservationMetadata{}
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{colDfacGal, &md.GalacticD},
			{colDfacEG, &md.ExtragalacticD},
			{colGalLon, &md.GalLon},
			{colGalLat, &md.GalLat},
		} {
			v, err := strconv.ParseFloat(rec[idx[f.col]], 64)
			if err != nil {
				return nil, fmt.Errorf("metadata line %d, column %s: %w", line, f.col, err)
			}
			*f.dst = v
		}
		rows[id] = md
	}

	return &CSVMetadataSource{rows: rows}, nil
}

// Lookup returns the metadata for the given observation identifier,
// normalizing it to the canonical 10-digit form first.
func (s *CSVMetadataSource) Lookup(obsID string) (domain.ObservationMetadata, error) {
	id, err := reduce.NormalizeObsID(obsID)
	if err != nil {
		return domain.ObservationMetadata{}, err
	}
	md, ok := s.rows[id]
	if !ok {
		return domain.ObservationMetadata{}, fmt.Errorf("%w: observation %s",
			domain.ErrMetadataNotFound, id)
	}
	return md, nil
}
