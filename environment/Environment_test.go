package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gocopter/timestep"
)

func TestUniformStarterBounds(t *testing.T) {
	bounds := []r1.Interval{
		{Min: 0.0, Max: 0.001},
		{Min: -1.0, Max: 1.0},
		{Min: 1.0, Max: 1.01},
	}
	starter := NewUniformStarter(bounds, 11)

	starts := starter.Start(128)
	rows, cols := starts.Dims()
	if rows != 128 || cols != len(bounds) {
		t.Fatalf("starts have dims (%v, %v), want (128, %v)", rows, cols,
			len(bounds))
	}

	for i := 0; i < rows; i++ {
		for j, b := range bounds {
			if v := starts.At(i, j); v < b.Min || v >= b.Max {
				t.Errorf("start (%v, %v) = %v outside [%v, %v)", i, j, v,
					b.Min, b.Max)
			}
		}
	}
}

func TestUniformStarterSeeding(t *testing.T) {
	bounds := []r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}}

	a := NewUniformStarter(bounds, 7).Start(16)
	b := NewUniformStarter(bounds, 7).Start(16)
	if !mat.Equal(a, b) {
		t.Error("equally seeded starters drew different starts")
	}

	c := NewUniformStarter(bounds, 8).Start(16)
	if mat.Equal(a, c) {
		t.Error("differently seeded starters drew identical starts")
	}
}

func TestStepLimit(t *testing.T) {
	ender := NewStepLimit(5)

	step := timestep.New(3, 2, 1.0)
	copy(step.Numbers, []int{0, 4, 6})

	if !ender.End(&step) {
		t.Fatal("step limit did not end any instance")
	}
	if step.Last(0) {
		t.Error("instance below the limit was ended")
	}
	for _, i := range []int{1, 2} {
		if !step.Last(i) {
			t.Errorf("instance %v at the limit was not ended", i)
		}
		if step.EndTypes[i] != timestep.Timeout {
			t.Errorf("instance %v ended with %v, want Timeout", i,
				step.EndTypes[i])
		}
	}
}

func TestFunctionEnder(t *testing.T) {
	ender := NewFunctionEnder(func(i int, obs mat.Vector) bool {
		return obs.AtVec(0) > 0.5
	}, timestep.TerminalStateReached)

	step := timestep.New(2, 1, 1.0)
	step.Observations.Set(1, 0, 0.9)

	if !ender.End(&step) {
		t.Fatal("predicate ender did not end any instance")
	}
	if step.Last(0) {
		t.Error("instance failing the predicate was ended")
	}
	if !step.Last(1) || step.EndTypes[1] != timestep.TerminalStateReached {
		t.Error("instance passing the predicate was not ended as terminal")
	}

	step = timestep.New(2, 1, 1.0)
	if ender.End(&step) {
		t.Error("ender reported an ended instance with no predicate hits")
	}
}

func TestNewSpecPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mismatched bound lengths did not panic")
		}
	}()

	NewSpec(mat.NewVecDense(3, nil), Observation, mat.NewVecDense(2, nil),
		mat.NewVecDense(3, nil), Continuous)
}
