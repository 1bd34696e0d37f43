// Package fs implements file-system adapters: the atomic calibrated-record
// store and the CSV-backed observation metadata source.
package fs

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bft-labs/specred/internal/domain"
)

const recordSuffix = "_processed.json"

// RecordStore implements ports.RecordStore on the observation directory
// tree: one JSON record per exposure at
// <root>/<obsID>/<prefix>_processed.json.
//
// The response matrix is stored inside the JSON envelope as a
// gzip-compressed little-endian float64 payload; everything else is plain
// JSON. Both encodings round-trip float64 values bit-identically.
type RecordStore struct {
	root string
}

// NewRecordStore creates a record store rooted at the data directory.
func NewRecordStore(root string) *RecordStore {
	return &RecordStore{root: root}
}

// Path returns the record path for (obsID, prefix).
func (s *RecordStore) Path(obsID, prefix string) string {
	return filepath.Join(s.root, obsID, prefix+recordSuffix)
}

// Exists reports whether a committed record exists for (obsID, prefix).
func (s *RecordStore) Exists(obsID, prefix string) bool {
	_, err := os.Stat(s.Path(obsID, prefix))
	return err == nil
}

// recordFile is the on-disk envelope. Field names follow the dataset names
// of the record layout consumed downstream.
type recordFile struct {
	ObsID      string          `json:"obs_id"`
	Prefix     string          `json:"prefix"`
	Family     int             `json:"family"`
	Counts     []int64         `json:"counts"`
	Flux       []float64       `json:"flux"`
	Response   responsePayload `json:"det_res"`
	Exposure   float64         `json:"exp"`
	SolidAngle float64         `json:"roi_size"`
	InputLo    []float64       `json:"cin_min"`
	InputHi    []float64       `json:"cin_max"`
	OutputLo   []float64       `json:"cout_min"`
	OutputHi   []float64       `json:"cout_max"`
	BkgCounts  []float64       `json:"bkg_eff_cts"`
	BkgErr     []float64       `json:"bkg_eff_cts_err"`
	GalacticD  float64         `json:"dfac"`
	ExtragalD  float64         `json:"eg_dfac"`
	GalLon     float64         `json:"gal_l"`
	GalLat     float64         `json:"gal_b"`
}

// responsePayload carries the dense matrix as gzip-compressed little-endian
// float64 data, base64-encoded by the JSON layer. The compression is
// lossless; the zeros introduced by thresholding make it effective.
type responsePayload struct {
	Channels int    `json:"channels"`
	Bins     int    `json:"bins"`
	Data     []byte `json:"data"`
}

// Write persists the record atomically: full marshal to a temp file in the
// observation directory, then rename. A crash mid-write never leaves a
// partial record that an aggregator could mistake for success.
func (s *RecordStore) Write(ctx context.Context, rec domain.CalibratedRecord) error {
	payload, err := encodeMatrix(rec.Response)
	if err != nil {
		return fmt.Errorf("encode response matrix: %w", err)
	}

	rf := recordFile{
		ObsID:      rec.ObsID,
		Prefix:     rec.Prefix,
		Family:     int(rec.Family),
		Counts:     rec.Counts,
		Flux:       rec.Flux,
		Response:   payload,
		Exposure:   rec.Exposure,
		SolidAngle: rec.SolidAngle,
		InputLo:    rec.Grid.InputLo,
		InputHi:    rec.Grid.InputHi,
		OutputLo:   rec.Grid.OutputLo,
		OutputHi:   rec.Grid.OutputHi,
		BkgCounts:  rec.BackgroundCounts,
		BkgErr:     rec.BackgroundErr,
		GalacticD:  rec.Metadata.GalacticD,
		ExtragalD:  rec.Metadata.ExtragalacticD,
		GalLon:     rec.Metadata.GalLon,
		GalLat:     rec.Metadata.GalLat,
	}

	data, err := json.Marshal(rf)
	if err != nil {
		return err
	}

	path := s.Path(rec.ObsID, rec.Prefix)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read loads the record for (obsID, prefix), reversing Write exactly.
func (s *RecordStore) Read(ctx context.Context, obsID, prefix string) (domain.CalibratedRecord, error) {
	data, err := os.ReadFile(s.Path(obsID, prefix))
	if err != nil {
		return domain.CalibratedRecord{}, err
	}

	var rf recordFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return domain.CalibratedRecord{}, err
	}

	matrix, err := decodeMatrix(rf.Response)
	if err != nil {
		return domain.CalibratedRecord{}, fmt.Errorf("decode response matrix: %w", err)
	}

	return domain.CalibratedRecord{
		ObsID:      rf.ObsID,
		Prefix:     rf.Prefix,
		Family:     domain.Family(rf.Family),
		Counts:     rf.Counts,
		Flux:       rf.Flux,
		Response:   matrix,
		Exposure:   rf.Exposure,
		SolidAngle: rf.SolidAngle,
		Grid: domain.EnergyGrid{
			InputLo:  rf.InputLo,
			InputHi:  rf.InputHi,
			OutputLo: rf.OutputLo,
			OutputHi: rf.OutputHi,
		},
		BackgroundCounts: rf.BkgCounts,
		BackgroundErr:    rf.BkgErr,
		Metadata: domain.ObservationMetadata{
			GalacticD:      rf.GalacticD,
			ExtragalacticD: rf.ExtragalD,
			GalLon:         rf.GalLon,
			GalLat:         rf.GalLat,
		},
	}, nil
}

func encodeMatrix(m domain.ResponseMatrix) (responsePayload, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return responsePayload{}, err
	}
	if err := binary.Write(gz, binary.LittleEndian, m.Data); err != nil {
		return responsePayload{}, err
	}
	if err := gz.Close(); err != nil {
		return responsePayload{}, err
	}
	return responsePayload{
		Channels: m.OutputChannels,
		Bins:     m.InputBins,
		Data:     buf.Bytes(),
	}, nil
}

func decodeMatrix(p responsePayload) (domain.ResponseMatrix, error) {
	gz, err := gzip.NewReader(bytes.NewReader(p.Data))
	if err != nil {
		return domain.ResponseMatrix{}, err
	}
	defer gz.Close()

	m := domain.NewResponseMatrix(p.Channels, p.Bins)
	if err := binary.Read(gz, binary.LittleEndian, m.Data); err != nil {
		return domain.ResponseMatrix{}, err
	}
	// Trailing bytes would mean a shape/payload disagreement.
	if n, err := io.Copy(io.Discard, gz); err != nil {
		return domain.ResponseMatrix{}, err
	} else if n != 0 {
		return domain.ResponseMatrix{}, fmt.Errorf("%d trailing bytes after %dx%d matrix",
			n, p.Channels, p.Bins)
	}
	return m, nil
}
