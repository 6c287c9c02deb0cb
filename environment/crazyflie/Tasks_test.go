package crazyflie

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gocopter/control"
	"github.com/samuelfneumann/gocopter/physics"
	"github.com/samuelfneumann/gocopter/timestep"
)

const testDt float64 = 1.0 / 60.0

// newTestEnv constructs a Hover Crazyflie environment on the Simple
// engine for testing
func newTestEnv(t *testing.T, numEnvs, cutoff int, thrust float64,
	seed uint64) (*crazyflie, *physics.Simple, timestep.Batch) {
	t.Helper()

	engine, err := physics.NewSimple(numEnvs, BodiesPerEnv, testDt)
	if err != nil {
		t.Fatal(err)
	}

	task := NewHover(NewDefaultTargetStarter(seed), cutoff)
	env, step, err := New(task, engine, control.NewFixed(thrust), numEnvs,
		0.99, 1.0, false)
	if err != nil {
		t.Fatal(err)
	}

	return env.(*crazyflie), engine, step
}

// hoverThrust returns the thrust that exactly cancels gravity for the
// Simple engine's default drone
func hoverThrust() float64 {
	return physics.DefaultMass * -physics.DefaultGravity
}

func zeroActions(numEnvs int) *mat.Dense {
	return mat.NewDense(numEnvs, NumActions, nil)
}

func TestPositionRewardBounds(t *testing.T) {
	prev := math.Inf(1)
	for _, dist := range []float64{0, 0.01, 0.1, 0.5, 1, 3, 10, 100} {
		r := PositionReward(dist)
		if r <= 0 || r > 1 {
			t.Errorf("reward %v for distance %v outside (0, 1]", r, dist)
		}
		if r >= prev {
			t.Errorf("reward %v at distance %v not strictly less than "+
				"reward at smaller distance (%v)", r, dist, prev)
		}
		prev = r
	}

	if r := PositionReward(0); r != 1.0 {
		t.Errorf("reward at the target should be 1.0, got %v", r)
	}
}

func TestUprightReward(t *testing.T) {
	identity := r3.Rotation(quat.Number{Real: 1})
	if r := UprightReward(identity); r != 1.0 {
		t.Errorf("upright drone should give reward 1.0, got %v", r)
	}

	// Flipped 180 degrees about x: up points straight down, tilt = 2
	flipped := r3.NewRotation(math.Pi, r3.Vec{X: 1})
	want := 1.0 / 5.0
	if r := UprightReward(flipped); math.Abs(r-want) > 1e-12 {
		t.Errorf("flipped drone reward: want %v, got %v", want, r)
	}
}

func TestSpinReward(t *testing.T) {
	if r := SpinReward(0); r != 1.0 {
		t.Errorf("zero spin should give reward 1.0, got %v", r)
	}

	want := 1.0 / 5.0
	for _, rate := range []float64{2.0, -2.0} {
		if r := SpinReward(rate); math.Abs(r-want) > 1e-12 {
			t.Errorf("spin reward at rate %v: want %v, got %v", rate,
				want, r)
		}
	}
}

func TestHoverRewardsBatched(t *testing.T) {
	positions := mat.NewDense(3, 3, []float64{
		0, 0, 1,
		0, 0, 1,
		3, 4, 1,
	})
	targets := mat.NewDense(3, 3, []float64{
		0, 0, 1,
		0, 0, 1.5,
		0, 0, 1,
	})

	rewards := mat.NewVecDense(3, nil)
	HoverRewards(positions, targets, rewards)

	wants := []float64{
		PositionReward(0),
		PositionReward(0.5),
		PositionReward(5),
	}
	for i, want := range wants {
		if got := rewards.AtVec(i); math.Abs(got-want) > 1e-12 {
			t.Errorf("instance %v: want reward %v, got %v", i, want, got)
		}
	}
}

// TestHoverAtTarget checks that a drone hovering at its target earns
// a reward of ~1 and does not terminate
func TestHoverAtTarget(t *testing.T) {
	env, _, _ := newTestEnv(t, 4, 500, hoverThrust(), 12)

	step, last, err := env.Step(zeroActions(4))
	if err != nil {
		t.Fatal(err)
	}
	if last {
		t.Fatalf("hovering drones should not terminate on the first step")
	}

	for i := 0; i < 4; i++ {
		if r := step.Rewards.AtVec(i); r < 0.99 {
			t.Errorf("instance %v: drone at its target should earn "+
				"reward near 1, got %v", i, r)
		}
		if step.Last(i) {
			t.Errorf("instance %v terminated while at its target", i)
		}
	}
}

// TestFallTerminates checks that unpowered drones terminate once they
// stray too far below their target
func TestFallTerminates(t *testing.T) {
	env, _, _ := newTestEnv(t, 2, 500, 0.0, 12)

	terminated := false
	for i := 0; i < 40 && !terminated; i++ {
		step, last, err := env.Step(zeroActions(2))
		if err != nil {
			t.Fatal(err)
		}
		if last {
			terminated = true
			for _, idx := range step.LastIndices() {
				if step.EndTypes[idx] != timestep.TerminalStateReached {
					t.Errorf("instance %v: falling drone ended with %v, "+
						"want %v", idx, step.EndTypes[idx],
						timestep.TerminalStateReached)
				}
			}
		}
	}
	if !terminated {
		t.Fatal("unpowered drones never terminated")
	}
}

// TestDistanceTerminates checks that moving the drone farther than the
// termination distance ends the episode regardless of height
func TestDistanceTerminates(t *testing.T) {
	env, engine, _ := newTestEnv(t, 1, 500, hoverThrust(), 12)

	// Displace the drone horizontally, far from the target but at a
	// legal height
	engine.RootState().SetPosition(0, r3.Vec{X: 0.6, Z: 1.0})

	step, last, err := env.Step(zeroActions(1))
	if err != nil {
		t.Fatal(err)
	}
	if !last || !step.Last(0) {
		t.Fatal("drone beyond the termination distance should terminate")
	}
	if step.EndTypes[0] != timestep.TerminalStateReached {
		t.Errorf("want end type %v, got %v", timestep.TerminalStateReached,
			step.EndTypes[0])
	}
}

// TestLowHeightTerminates checks that sinking below the minimum height
// ends the episode even with the target overhead
func TestLowHeightTerminates(t *testing.T) {
	env, engine, _ := newTestEnv(t, 1, 500, hoverThrust(), 12)

	// Step once so the periodic retarget boundary has passed, then
	// place both the drone and its target below the minimum height so
	// only the height check can fire
	if _, _, err := env.Step(zeroActions(1)); err != nil {
		t.Fatal(err)
	}
	engine.RootState().SetPosition(0, r3.Vec{Z: 0.2})
	env.targets.SetRow(0, []float64{0, 0, 0.2})

	step, _, err := env.Step(zeroActions(1))
	if err != nil {
		t.Fatal(err)
	}
	if !step.Last(0) {
		t.Fatal("drone below the minimum height should terminate")
	}
	if step.EndTypes[0] != timestep.TerminalStateReached {
		t.Errorf("want end type %v, got %v", timestep.TerminalStateReached,
			step.EndTypes[0])
	}
}

// TestStepLimitTerminates checks that episodes end with Timeout at the
// step limit
func TestStepLimitTerminates(t *testing.T) {
	cutoff := 3
	env, _, _ := newTestEnv(t, 2, cutoff, hoverThrust(), 12)

	var lastStep timestep.Batch
	for i := 0; i < cutoff-1; i++ {
		var err error
		lastStep, _, err = env.Step(zeroActions(2))
		if err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		if !lastStep.Last(i) {
			t.Errorf("instance %v: episode did not end at the step limit", i)
		}
		if lastStep.EndTypes[i] != timestep.Timeout {
			t.Errorf("instance %v: want end type %v, got %v", i,
				timestep.Timeout, lastStep.EndTypes[i])
		}
	}
}
