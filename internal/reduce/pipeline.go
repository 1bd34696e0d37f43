package reduce

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bft-labs/specred/internal/domain"
	"github.com/bft-labs/specred/internal/ports"
)

// Pipeline reduces one detector exposure end-to-end: load calibration
// tables, decode and fold the response, calibrate flux and background, join
// metadata, and commit the output record atomically.
//
// Single-threaded, single-pass, no retries. Every failure is fatal for the
// exposure at hand and leaves no partial output behind.
type Pipeline struct {
	calib ports.CalibrationSource
	meta  ports.MetadataSource
	store ports.RecordStore
	log   zerolog.Logger
}

// NewPipeline wires a pipeline from its infrastructure ports.
func NewPipeline(calib ports.CalibrationSource, meta ports.MetadataSource, store ports.RecordStore, log zerolog.Logger) *Pipeline {
	return &Pipeline{calib: calib, meta: meta, store: store, log: log}
}

// Reduce processes the exposure identified by (obsID, prefix) under dataRoot
// and returns the committed record.
func (p *Pipeline) Reduce(ctx context.Context, dataRoot, obsID, prefix string) (domain.CalibratedRecord, error) {
	canonical, err := NormalizeObsID(obsID)
	if err != nil {
		return domain.CalibratedRecord{}, err
	}

	cal, err := p.calib.Load(ctx, dataRoot, canonical, prefix)
	if err != nil {
		return domain.CalibratedRecord{}, fmt.Errorf("load calibration: %w", err)
	}
	p.log.Debug().
		Str("obs_id", canonical).
		Str("prefix", prefix).
		Stringer("family", cal.Family).
		Int("input_bins", cal.Grid.InputBins()).
		Int("output_channels", cal.Grid.OutputChannels()).
		Msg("calibration tables loaded")

	matrix, err := DecodeMatrix(cal.Encoding, cal.Grid)
	if err != nil {
		return domain.CalibratedRecord{}, fmt.Errorf("decode response matrix: %w", err)
	}
	if err := FoldEffectiveArea(matrix, cal.EffectiveArea); err != nil {
		return domain.CalibratedRecord{}, fmt.Errorf("fold effective area: %w", err)
	}

	solidAngle := SolidAngle(cal.Spectrum.Backscale)
	flux, err := Flux(cal.Spectrum.Counts, cal.Grid, cal.Spectrum.Exposure, solidAngle)
	if err != nil {
		return domain.CalibratedRecord{}, err
	}

	bkgCounts, bkgErr, err := EffectiveCounts(cal.Background, cal.Family, cal.Spectrum.Exposure)
	if err != nil {
		return domain.CalibratedRecord{}, fmt.Errorf("extract background: %w", err)
	}

	meta, err := p.meta.Lookup(canonical)
	if err != nil {
		return domain.CalibratedRecord{}, fmt.Errorf("join metadata: %w", err)
	}

	rec := domain.CalibratedRecord{
		ObsID:            canonical,
		Prefix:           prefix,
		Family:           cal.Family,
		Counts:           cal.Spectrum.Counts,
		Flux:             flux,
		Response:         matrix,
		Exposure:         cal.Spectrum.Exposure,
		SolidAngle:       solidAngle,
		Grid:             cal.Grid,
		BackgroundCounts: bkgCounts,
		BackgroundErr:    bkgErr,
		Metadata:         meta,
	}

	if err := p.store.Write(ctx, rec); err != nil {
		return domain.CalibratedRecord{}, fmt.Errorf("write record: %w", err)
	}
	p.log.Info().
		Str("obs_id", canonical).
		Str("prefix", prefix).
		Float64("exposure_s", rec.Exposure).
		Msg("exposure reduced")
	return rec, nil
}
