package reduce

import (
	"errors"
	"math"
	"testing"

	"github.com/bft-labs/specred/internal/domain"
)

func TestSolidAngleConversion(t *testing.T) {
	// The pixel constant is fixed by the 0.05 arcsecond pixel geometry.
	want := 1.296e9 * math.Pow(0.05/3600*math.Pi/180, 2)
	got := SolidAngle(1.296e9)
	if math.Abs(got-want) > want*1e-12 {
		t.Fatalf("SolidAngle(1.296e9) = %v, want %v", got, want)
	}

	// Linear in the BACKSCAL value.
	if got := SolidAngle(2 * 1.296e9); got != 2*SolidAngle(1.296e9) {
		t.Fatalf("SolidAngle not linear: %v vs %v", got, 2*SolidAngle(1.296e9))
	}
}

func TestFluxScalingLaw(t *testing.T) {
	counts := []int64{10, 0, 7, 123}
	grid := domain.EnergyGrid{
		OutputLo: []float64{0.1, 0.3, 0.7, 1.0},
		OutputHi: []float64{0.3, 0.7, 1.0, 2.5},
	}
	roi := SolidAngle(1.296e9)

	f1, err := Flux(counts, grid, 100, roi)
	if err != nil {
		t.Fatalf("Flux: %v", err)
	}
	f2, err := Flux(counts, grid, 200, roi)
	if err != nil {
		t.Fatalf("Flux: %v", err)
	}

	// Doubling the exposure exactly halves the flux in every channel.
	for c := range f1 {
		if f2[c] != f1[c]/2 {
			t.Errorf("channel %d: %v is not half of %v", c, f2[c], f1[c])
		}
	}
}

func TestFluxChannelWidth(t *testing.T) {
	grid := domain.EnergyGrid{
		OutputLo: []float64{1.0, 2.0},
		OutputHi: []float64{1.5, 4.0},
	}

	flux, err := Flux([]int64{5, 5}, grid, 1, 1)
	if err != nil {
		t.Fatalf("Flux: %v", err)
	}
	if flux[0] != 5/0.5 || flux[1] != 5/2.0 {
		t.Fatalf("flux = %v, want [10 2.5]", flux)
	}
}

func TestFluxInvalidInputs(t *testing.T) {
	grid := domain.EnergyGrid{OutputLo: []float64{0}, OutputHi: []float64{1}}

	tests := []struct {
		name     string
		counts   []int64
		exposure float64
		roi      float64
		want     error
	}{
		{"zero exposure", []int64{1}, 0, 1, domain.ErrInvalidExposure},
		{"negative exposure", []int64{1}, -5, 1, domain.ErrInvalidExposure},
		{"zero roi", []int64{1}, 10, 0, domain.ErrInvalidExposure},
		{"counts grid mismatch", []int64{1, 2}, 10, 1, domain.ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flux(tt.counts, grid, tt.exposure, tt.roi)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFoldEffectiveArea(t *testing.T) {
	m := domain.NewResponseMatrix(2, 2)
	copy(m.Data, []float64{1, 2, 3, 4})

	if err := FoldEffectiveArea(m, []float64{10, 100}); err != nil {
		t.Fatalf("FoldEffectiveArea: %v", err)
	}
	want := []float64{10, 200, 30, 400}
	for i, w := range want {
		if m.Data[i] != w {
			t.Errorf("entry %d = %v, want %v", i, m.Data[i], w)
		}
	}

	if err := FoldEffectiveArea(m, []float64{1}); !errors.Is(err, domain.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}
