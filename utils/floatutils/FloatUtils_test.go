package floatutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-3, -2.4, 2.4, -2.4},
		{3, -2.4, 2.4, 2.4},
	}

	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("Clip(%v, %v, %v): want(%v) have(%v)", test.value,
				test.min, test.max, test.want, got)
		}
		interval := r1.Interval{Min: test.min, Max: test.max}
		if got := ClipInterval(test.value, interval); got != test.want {
			t.Errorf("ClipInterval(%v, %v): want(%v) have(%v)", test.value,
				interval, test.want, got)
		}
	}
}

func TestAllFinite(t *testing.T) {
	if !AllFinite([]float64{0, -1, 1e300}) {
		t.Error("finite values reported as non-finite")
	}
	if AllFinite([]float64{0, math.NaN()}) {
		t.Error("NaN reported as finite")
	}
	if AllFinite([]float64{math.Inf(-1)}) {
		t.Error("-Inf reported as finite")
	}
}

func TestEqualWithin(t *testing.T) {
	if !EqualWithin([]float64{1, 2}, []float64{1 + 1e-9, 2}, 1e-6) {
		t.Error("values within tolerance reported unequal")
	}
	if EqualWithin([]float64{1, 2}, []float64{1, 2.1}, 1e-6) {
		t.Error("values outside tolerance reported equal")
	}
	if EqualWithin([]float64{1}, []float64{1, 2}, 1e-6) {
		t.Error("slices of different lengths reported equal")
	}
}
