package floatutils

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	tests := []struct{ value, min, max, want float64 }{
		{0.5, 0.0, 1.0, 0.5},
		{-0.5, 0.0, 1.0, 0.0},
		{1.5, 0.0, 1.0, 1.0},
		{0.0, 0.0, 1.0, 0.0},
	}
	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("Clip(%v, %v, %v) = %v, want %v", test.value, test.min,
				test.max, got, test.want)
		}
	}

	interval := r1.Interval{Min: -1.0, Max: 1.0}
	if got := ClipInterval(3.0, interval); got != 1.0 {
		t.Errorf("ClipInterval(3, [-1, 1]) = %v, want 1", got)
	}
}

func TestSign(t *testing.T) {
	if Sign(2.5) != 1.0 || Sign(-0.1) != -1.0 || Sign(0.0) != 0.0 {
		t.Error("Sign does not map onto {-1, 0, 1}")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ value, min, max, want float64 }{
		{0.5, 0.0, 1.0, 0.5},
		{1.25, 0.0, 1.0, 0.25},
		{-0.25, 0.0, 1.0, 0.75},
		{5.0, -1.0, 1.0, -1.0},
	}
	for _, test := range tests {
		if got := Wrap(test.value, test.min, test.max); got != test.want {
			t.Errorf("Wrap(%v, %v, %v) = %v, want %v", test.value, test.min,
				test.max, got, test.want)
		}
	}
}
