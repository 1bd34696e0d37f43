// Package fits implements ports.CalibrationSource over the four
// self-describing tabular binary calibration files of one exposure
// (spectrum, ARF, RMF, background spectrum), using astrogo/fitsio.
package fits

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/bft-labs/specred/internal/domain"
)

// File name suffixes of the four per-exposure calibration tables, resolved
// under <root>/<obsID>/odf/<prefix>.
const (
	spectrumSuffix   = "-obj.pi"
	arfSuffix        = ".arf"
	rmfSuffix        = ".rmf"
	backgroundSuffix = "-back.pi"
)

// CalibrationSource loads calibration sets from FITS files on disk.
type CalibrationSource struct{}

// NewCalibrationSource creates a FITS-backed calibration source.
func NewCalibrationSource() *CalibrationSource {
	return &CalibrationSource{}
}

// Load opens and validates the four calibration tables for one exposure.
// The detector family is classified exactly once, from the shape of the
// RMF F_CHAN column, and drives both the group-encoding layout and the
// background column selection.
func (s *CalibrationSource) Load(ctx context.Context, dataRoot, obsID, prefix string) (domain.CalibrationSet, error) {
	base := filepath.Join(dataRoot, obsID, "odf", prefix)

	paths := map[string]string{
		"spectrum":   base + spectrumSuffix,
		"arf":        base + arfSuffix,
		"rmf":        base + rmfSuffix,
		"background": base + backgroundSuffix,
	}
	for _, kind := range []string{"spectrum", "arf", "rmf", "background"} {
		if _, err := os.Stat(paths[kind]); err != nil {
			return domain.CalibrationSet{}, fmt.Errorf("%w: %s table %s",
				domain.ErrMissingCalibrationFile, kind, paths[kind])
		}
	}

	var set domain.CalibrationSet

	if err := withTable(paths["spectrum"], "SPECTRUM", readSpectrum(&set.Spectrum)); err != nil {
		return domain.CalibrationSet{}, fmt.Errorf("spectrum table: %w", err)
	}
	if err := withTable(paths["arf"], "SPECRESP", readEffectiveArea(&set.EffectiveArea)); err != nil {
		return domain.CalibrationSet{}, fmt.Errorf("arf table: %w", err)
	}
	if err := withTable(paths["rmf"], "MATRIX", readMatrix(&set)); err != nil {
		return domain.CalibrationSet{}, fmt.Errorf("rmf matrix table: %w", err)
	}
	if err := withTable(paths["rmf"], "EBOUNDS", readEbounds(&set.Grid)); err != nil {
		return domain.CalibrationSet{}, fmt.Errorf("rmf ebounds table: %w", err)
	}
	if err := withTable(paths["background"], "SPECTRUM", readBackground(&set.Background, set.Family)); err != nil {
		return domain.CalibrationSet{}, fmt.Errorf("background table: %w", err)
	}

	if err := validate(set); err != nil {
		return domain.CalibrationSet{}, err
	}
	return set, nil
}

// withTable opens a FITS file, locates the named binary-table HDU (falling
// back to the first extension), runs fn on it, and closes the file on every
// path.
func withTable(path, name string, fn func(*fitsio.Table) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return fmt.Errorf("open fits: %w", err)
	}
	defer fits.Close()

	tbl, err := findTable(fits, name)
	if err != nil {
		return err
	}
	return fn(tbl)
}

func findTable(f *fitsio.File, name string) (*fitsio.Table, error) {
	var fallback *fitsio.Table
	for _, hdu := range f.HDUs() {
		tbl, ok := hdu.(*fitsio.Table)
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(tbl.Name()), name) {
			return tbl, nil
		}
		if fallback == nil {
			fallback = tbl
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("no binary table HDU named %q", name)
}

func readSpectrum(dst *domain.Spectrum) func(*fitsio.Table) error {
	return func(tbl *fitsio.Table) error {
		var err error
		if dst.Exposure, err = headerFloat(tbl.Header(), "EXPOSURE"); err != nil {
			return err
		}
		if dst.Backscale, err = headerFloat(tbl.Header(), "BACKSCAL"); err != nil {
			return err
		}

		return eachRow(tbl, []string{"COUNTS"}, func(row map[string]interface{}) error {
			n, err := cellInt(row, "COUNTS")
			if err != nil {
				return err
			}
			dst.Counts = append(dst.Counts, n)
			return nil
		})
	}
}

func readEffectiveArea(dst *[]float64) func(*fitsio.Table) error {
	return func(tbl *fitsio.Table) error {
		return eachRow(tbl, []string{"SPECRESP"}, func(row map[string]interface{}) error {
			a, err := cellFloat(row, "SPECRESP")
			if err != nil {
				return err
			}
			*dst = append(*dst, a)
			return nil
		})
	}
}

func readEbounds(grid *domain.EnergyGrid) func(*fitsio.Table) error {
	return func(tbl *fitsio.Table) error {
		return eachRow(tbl, []string{"E_MIN", "E_MAX"}, func(row map[string]interface{}) error {
			lo, err := cellFloat(row, "E_MIN")
			if err != nil {
				return err
			}
			hi, err := cellFloat(row, "E_MAX")
			if err != nil {
				return err
			}
			grid.OutputLo = append(grid.OutputLo, lo)
			grid.OutputHi = append(grid.OutputHi, hi)
			return nil
		})
	}
}

// readMatrix reads the input energy grid and the sparse group-encoding
// fields, classifying the family from the F_CHAN column format first so the
// layout is selected once per matrix rather than per bin.
func readMatrix(set *domain.CalibrationSet) func(*fitsio.Table) error {
	return func(tbl *fitsio.Table) error {
		format, err := columnFormat(tbl, "F_CHAN")
		if err != nil {
			return err
		}
		set.Family = classifyFamily(format)
		set.Encoding.Layout = set.Family.Layout()

		enc := &set.Encoding
		cols := []string{"ENERG_LO", "ENERG_HI", "N_GRP", "F_CHAN", "N_CHAN", "MATRIX"}
		return eachRow(tbl, cols, func(row map[string]interface{}) error {
			lo, err := cellFloat(row, "ENERG_LO")
			if err != nil {
				return err
			}
			hi, err := cellFloat(row, "ENERG_HI")
			if err != nil {
				return err
			}
			ngrp, err := cellInt(row, "N_GRP")
			if err != nil {
				return err
			}
			vals, err := cellFloats(row, "MATRIX")
			if err != nil {
				return err
			}
			set.Grid.InputLo = append(set.Grid.InputLo, lo)
			set.Grid.InputHi = append(set.Grid.InputHi, hi)
			enc.GroupCount = append(enc.GroupCount, int(ngrp))
			enc.Values = append(enc.Values, vals)

			if enc.Layout == domain.LayoutVector {
				first, err := cellInts(row, "F_CHAN")
				if err != nil {
					return err
				}
				length, err := cellInts(row, "N_CHAN")
				if err != nil {
					return err
				}
				enc.FirstVector = append(enc.FirstVector, first)
				enc.LengthVector = append(enc.LengthVector, length)
			} else {
				first, err := cellInt(row, "F_CHAN")
				if err != nil {
					return err
				}
				length, err := cellInt(row, "N_CHAN")
				if err != nil {
					return err
				}
				enc.FirstScalar = append(enc.FirstScalar, int(first))
				enc.LengthScalar = append(enc.LengthScalar, int(length))
			}
			return nil
		})
	}
}

func readBackground(dst *domain.RawBackground, family domain.Family) func(*fitsio.Table) error {
	valueCol := "COUNTS"
	if family == domain.FamilySlitless {
		valueCol = "RATE"
	}
	return func(tbl *fitsio.Table) error {
		return eachRow(tbl, []string{valueCol, "STAT_ERR"}, func(row map[string]interface{}) error {
			v, err := cellFloat(row, valueCol)
			if err != nil {
				return err
			}
			e, err := cellFloat(row, "STAT_ERR")
			if err != nil {
				return err
			}
			dst.Values = append(dst.Values, v)
			dst.StatErr = append(dst.StatErr, e)
			return nil
		})
	}
}

// eachRow scans the named columns of every table row into a map and hands
// each row to fn. Map scanning keeps whatever numeric width the file
// declares for a column; the cell* helpers coerce it.
func eachRow(tbl *fitsio.Table, cols []string, fn func(map[string]interface{}) error) error {
	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		row := make(map[string]interface{}, len(cols))
		for _, c := range cols {
			row[c] = nil
		}
		if err := rows.Scan(&row); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Cell coercion. TFORM widths vary between files (I vs J integers, E vs D
// floats), so the readers accept any numeric width rather than pinning one.

func cellFloat(row map[string]interface{}, name string) (float64, error) {
	switch v := row[name].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: column %s holds %T, want a number",
			domain.ErrShapeMismatch, name, row[name])
	}
}

func cellInt(row map[string]interface{}, name string) (int64, error) {
	switch v := row[name].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: column %s holds %T, want an integer",
			domain.ErrShapeMismatch, name, row[name])
	}
}

func cellFloats(row map[string]interface{}, name string) ([]float64, error) {
	switch v := row[name].(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: column %s holds %T, want a float array",
			domain.ErrShapeMismatch, name, row[name])
	}
}

func cellInts(row map[string]interface{}, name string) ([]int, error) {
	switch v := row[name].(type) {
	case []int64:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case []int32:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case []int16:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: column %s holds %T, want an integer array",
			domain.ErrShapeMismatch, name, row[name])
	}
}

func columnFormat(tbl *fitsio.Table, name string) (string, error) {
	for _, col := range tbl.Cols() {
		if strings.EqualFold(col.Name, name) {
			return col.Format, nil
		}
	}
	return "", fmt.Errorf("%w: rmf table has no %s column", domain.ErrShapeMismatch, name)
}

// validate checks row-count consistency between tables and that the output
// grid has positive channel widths. No transformation happens here.
func validate(set domain.CalibrationSet) error {
	bins := set.Grid.InputBins()
	channels := set.Grid.OutputChannels()

	if len(set.Grid.InputHi) != bins {
		return fmt.Errorf("%w: %d ENERG_LO rows vs %d ENERG_HI rows",
			domain.ErrShapeMismatch, bins, len(set.Grid.InputHi))
	}
	if len(set.EffectiveArea) != bins {
		return fmt.Errorf("%w: %d arf rows vs %d rmf input bins",
			domain.ErrShapeMismatch, len(set.EffectiveArea), bins)
	}
	if len(set.Spectrum.Counts) != channels {
		return fmt.Errorf("%w: %d spectrum channels vs %d ebounds rows",
			domain.ErrShapeMismatch, len(set.Spectrum.Counts), channels)
	}
	if len(set.Background.Values) != channels {
		return fmt.Errorf("%w: %d background channels vs %d ebounds rows",
			domain.ErrShapeMismatch, len(set.Background.Values), channels)
	}
	for c := 0; c < channels; c++ {
		if set.Grid.OutputHi[c] <= set.Grid.OutputLo[c] {
			return fmt.Errorf("%w: output channel %d has non-positive width",
				domain.ErrShapeMismatch, c)
		}
	}
	return nil
}

func headerFloat(hdr *fitsio.Header, key string) (float64, error) {
	card := hdr.Get(key)
	if card == nil {
		return 0, fmt.Errorf("%w: header keyword %s missing", domain.ErrShapeMismatch, key)
	}
	switch v := card.Value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: header keyword %s has type %T", domain.ErrShapeMismatch, key, card.Value)
	}
}

// classifyFamily maps the F_CHAN column format onto a detector family: a
// repeat count above one (or a variable-length descriptor) means the vector
// layout of the slitless family, otherwise the scalar imaging layout.
func classifyFamily(format string) domain.Family {
	f := strings.ToUpper(strings.TrimSpace(format))
	if strings.ContainsAny(f, "PQ") {
		return domain.FamilySlitless
	}
	digits := 0
	for digits < len(f) && f[digits] >= '0' && f[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		// No repeat count means repeat 1.
		return domain.FamilyImaging
	}
	if f[:digits] == "1" {
		return domain.FamilyImaging
	}
	return domain.FamilySlitless
}
