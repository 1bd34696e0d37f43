package fits

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bft-labs/specred/internal/domain"
)

func TestClassifyFamily(t *testing.T) {
	tests := []struct {
		format string
		want   domain.Family
	}{
		{"1I", domain.FamilyImaging},
		{"I", domain.FamilyImaging},
		{"1J", domain.FamilyImaging},
		{"2I", domain.FamilySlitless},
		{"6J", domain.FamilySlitless},
		{"12I", domain.FamilySlitless},
		{"PI(6)", domain.FamilySlitless},
		{"QJ(6)", domain.FamilySlitless},
		{" 1I ", domain.FamilyImaging},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := classifyFamily(tt.format); got != tt.want {
				t.Errorf("classifyFamily(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestCellCoercionAcceptsAnyNumericWidth(t *testing.T) {
	// Files declare varying TFORM widths for the same column; every numeric
	// width must coerce, not just one pinned type per reader.
	floats := []struct {
		name string
		cell interface{}
		want float64
	}{
		{"float64", float64(1.5), 1.5},
		{"float32", float32(2.5), 2.5},
		{"int32", int32(7), 7},
		{"int16", int16(3), 3},
	}
	for _, tt := range floats {
		t.Run("float/"+tt.name, func(t *testing.T) {
			got, err := cellFloat(map[string]interface{}{"X": tt.cell}, "X")
			if err != nil {
				t.Fatalf("cellFloat: %v", err)
			}
			if got != tt.want {
				t.Errorf("cellFloat = %v, want %v", got, tt.want)
			}
		})
	}

	ints := []struct {
		name string
		cell interface{}
		want int64
	}{
		{"int64", int64(9), 9},
		{"int32", int32(9), 9},
		{"int16", int16(9), 9},
		{"uint8", uint8(9), 9},
	}
	for _, tt := range ints {
		t.Run("int/"+tt.name, func(t *testing.T) {
			got, err := cellInt(map[string]interface{}{"X": tt.cell}, "X")
			if err != nil {
				t.Fatalf("cellInt: %v", err)
			}
			if got != tt.want {
				t.Errorf("cellInt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCellCoercionArrays(t *testing.T) {
	for _, cell := range []interface{}{[]float32{1, 2.5}, []float64{1, 2.5}} {
		got, err := cellFloats(map[string]interface{}{"MATRIX": cell}, "MATRIX")
		if err != nil {
			t.Fatalf("cellFloats(%T): %v", cell, err)
		}
		if !reflect.DeepEqual(got, []float64{1, 2.5}) {
			t.Errorf("cellFloats(%T) = %v, want [1 2.5]", cell, got)
		}
	}

	for _, cell := range []interface{}{[]int16{4, 8}, []int32{4, 8}, []int64{4, 8}} {
		got, err := cellInts(map[string]interface{}{"F_CHAN": cell}, "F_CHAN")
		if err != nil {
			t.Fatalf("cellInts(%T): %v", cell, err)
		}
		if !reflect.DeepEqual(got, []int{4, 8}) {
			t.Errorf("cellInts(%T) = %v, want [4 8]", cell, got)
		}
	}
}

func TestCellCoercionRejectsNonNumeric(t *testing.T) {
	row := map[string]interface{}{"X": "not-a-number", "Y": nil}

	if _, err := cellFloat(row, "X"); !errors.Is(err, domain.ErrShapeMismatch) {
		t.Errorf("cellFloat err = %v, want ErrShapeMismatch", err)
	}
	if _, err := cellInt(row, "Y"); !errors.Is(err, domain.ErrShapeMismatch) {
		t.Errorf("cellInt err = %v, want ErrShapeMismatch", err)
	}
	if _, err := cellFloats(row, "X"); !errors.Is(err, domain.ErrShapeMismatch) {
		t.Errorf("cellFloats err = %v, want ErrShapeMismatch", err)
	}
	if _, err := cellInts(row, "X"); !errors.Is(err, domain.ErrShapeMismatch) {
		t.Errorf("cellInts err = %v, want ErrShapeMismatch", err)
	}
}

func TestValidateShapeChecks(t *testing.T) {
	base := domain.CalibrationSet{
		Family: domain.FamilyImaging,
		Spectrum: domain.Spectrum{
			Counts: []int64{1, 2},
		},
		Grid: domain.EnergyGrid{
			InputLo:  []float64{1, 2, 3},
			InputHi:  []float64{2, 3, 4},
			OutputLo: []float64{0.1, 0.2},
			OutputHi: []float64{0.2, 0.3},
		},
		EffectiveArea: []float64{1, 2, 3},
		Background: domain.RawBackground{
			Values:  []float64{0, 0},
			StatErr: []float64{0, 0},
		},
	}
	if err := validate(base); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}

	arfShort := base
	arfShort.EffectiveArea = []float64{1}
	if err := validate(arfShort); err == nil {
		t.Error("short arf accepted")
	}

	countsShort := base
	countsShort.Spectrum.Counts = []int64{1}
	if err := validate(countsShort); err == nil {
		t.Error("spectrum/ebounds mismatch accepted")
	}

	badWidth := base
	badWidth.Grid.OutputHi = []float64{0.1, 0.3}
	if err := validate(badWidth); err == nil {
		t.Error("non-positive channel width accepted")
	}
}
