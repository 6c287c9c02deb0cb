// Package crazyflie provides a vectorized implementation of the
// Crazyflie quadrotor hover environment. N independent drones are
// simulated in lockstep by a physics engine; each must fly to and
// hold a randomly assigned target position under a low-level
// rate/thrust controller supplied by the caller.
package crazyflie

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/gocopter/control"
	"github.com/samuelfneumann/gocopter/environment"
	"github.com/samuelfneumann/gocopter/physics"
	"github.com/samuelfneumann/gocopter/timestep"
	"github.com/samuelfneumann/gocopter/utils/floatutils"
	"github.com/samuelfneumann/gocopter/utils/matutils"
	"github.com/samuelfneumann/gocopter/utils/tensorutils"
)

const (
	// NumActions is the dimensionality of a policy action: a
	// collective thrust command followed by three body-rate commands
	NumActions int = 4

	// StateObservations is the width of the observation vector. The
	// first 13 features are populated: the vector to the target
	// (scaled by 1/3), the orientation quaternion, the linear
	// velocity (scaled by 1/2), and the angular velocity (scaled by
	// 1/π). The remaining features are zero.
	StateObservations int = 36

	// MaxThrust bounds the collective thrust command
	MaxThrust float64 = 2.0

	// MaxBodyRate bounds each body-rate command
	MaxBodyRate float64 = 4 * math.Pi

	// InitialHeight is the height at which drones and markers are
	// spawned
	InitialHeight float64 = 1.0

	// BodiesPerEnv is the number of actors per environment instance:
	// the drone and its target marker
	BodiesPerEnv int = 2

	// Interval, in episode steps, at which targets are periodically
	// re-randomized
	retargetInterval int = 500

	// Quadratic friction coefficient opposing the drone's linear
	// velocity
	frictionCoeff float64 = 0.02

	droneBody  int = 0
	markerBody int = 1
)

// crazyflie implements the vectorized Crazyflie environment. It owns
// the per-instance state vectors (targets, progress counters, reset
// flags) and delegates physics to an external engine and action
// translation to an external controller. All per-step mutation happens
// in a fixed order: target/reset resolution, controller invocation,
// force application, physics stepping, then observation and reward
// computation.
type crazyflie struct {
	environment.Task

	engine     physics.Engine
	controller control.Controller

	numEnvs    int
	discount   float64
	envSpacing float64
	debugViz   bool

	rootStates        *physics.RootState
	initialRootStates *physics.RootState

	targets    *mat.Dense // one target position per instance
	progress   []int
	resetFlags []bool

	// controller input scratch, one row per instance
	orientations *mat.Dense
	linVels      *mat.Dense
	angVels      *mat.Dense
	positions    *mat.Dense

	forces   *tensor.Dense
	torques  *tensor.Dense
	friction *tensor.Dense

	lastThrusts []float64

	prevStep timestep.Batch
}

// New returns a new vectorized Crazyflie environment of numEnvs
// instances driven by engine and controller, together with the first
// timestep. The engine must simulate numEnvs * BodiesPerEnv actors:
// body 0 of every instance is the drone, body 1 its fixed target
// marker. envSpacing is the distance between adjacent instances used
// by debug visualization; debugViz enables it.
func New(task environment.Task, engine physics.Engine,
	controller control.Controller, numEnvs int, discount,
	envSpacing float64, debugViz bool) (environment.Environment,
	timestep.Batch, error) {
	if numEnvs <= 0 {
		return nil, timestep.Batch{}, fmt.Errorf("new: numEnvs must be "+
			"positive, got %v", numEnvs)
	}
	if engine.RootState().NumActors() != numEnvs*BodiesPerEnv {
		return nil, timestep.Batch{}, fmt.Errorf("new: engine simulates %v "+
			"actors, environment needs %v", engine.RootState().NumActors(),
			numEnvs*BodiesPerEnv)
	}

	c := &crazyflie{
		engine:       engine,
		controller:   controller,
		numEnvs:      numEnvs,
		discount:     discount,
		envSpacing:   envSpacing,
		debugViz:     debugViz,
		rootStates:   engine.RootState(),
		targets:      mat.NewDense(numEnvs, 3, nil),
		progress:     make([]int, numEnvs),
		resetFlags:   make([]bool, numEnvs),
		orientations: mat.NewDense(numEnvs, 4, nil),
		linVels:      mat.NewDense(numEnvs, 3, nil),
		angVels:      mat.NewDense(numEnvs, 3, nil),
		positions:    mat.NewDense(numEnvs, 3, nil),
		forces:       newForceTensor(numEnvs),
		torques:      newForceTensor(numEnvs),
		friction:     newForceTensor(numEnvs),
		lastThrusts:  make([]float64, numEnvs),
	}

	// Spawn pose: drone and marker at the initial height
	for env := 0; env < numEnvs; env++ {
		spawn := r3.Vec{Z: InitialHeight}
		c.rootStates.SetPosition(c.actorIndex(env, droneBody), spawn)
		c.rootStates.SetPosition(c.actorIndex(env, markerBody), spawn)
		c.targets.Set(env, 2, InitialHeight)
	}
	c.initialRootStates = c.rootStates.Clone()

	t, ok := task.(crazyflieTask)
	if !ok {
		return nil, timestep.Batch{}, fmt.Errorf("new: task must be a "+
			"Crazyflie task, got %T", task)
	}
	t.registerEnv(c)
	c.Task = t

	step, err := c.Reset()
	if err != nil {
		return nil, timestep.Batch{}, fmt.Errorf("new: %v", err)
	}
	return c, step, nil
}

// newForceTensor returns a zeroed force tensor of shape
// (envs, BodiesPerEnv, 3)
func newForceTensor(envs int) *tensor.Dense {
	return tensor.New(
		tensor.WithShape(envs, BodiesPerEnv, 3),
		tensor.Of(tensor.Float64),
	)
}

// actorIndex returns the engine actor index of a body within an
// environment instance
func (c *crazyflie) actorIndex(env, body int) int {
	return env*BodiesPerEnv + body
}

// NumInstances returns the number of environment instances simulated
// in lockstep
func (c *crazyflie) NumInstances() int {
	return c.numEnvs
}

// Reset resets every environment instance: root states are restored
// to the stored initial pose, targets are re-drawn, and progress
// counters and reset flags are zeroed. The new state is pushed to the
// engine in one indexed batch write.
func (c *crazyflie) Reset() (timestep.Batch, error) {
	all := make([]int, c.numEnvs)
	for i := range all {
		all[i] = i
	}

	actors := c.resetIdx(all)
	if err := c.engine.SetRootStateIndexed(actors, c.rootStates); err != nil {
		return timestep.Batch{}, fmt.Errorf("reset: %v", err)
	}
	if err := c.engine.Refresh(); err != nil {
		return timestep.Batch{}, fmt.Errorf("reset: %v", err)
	}

	step := timestep.New(c.numEnvs, StateObservations, c.discount)
	c.observe(&step)
	c.prevStep = step
	return step, nil
}

// Step advances every environment instance by one timestep under the
// given batch of actions (one NumActions-row per instance). Instances
// whose previous step ended are reset before the actions apply;
// their forces are zeroed for the step so that a state about to be
// overwritten is never actuated.
func (c *crazyflie) Step(actions *mat.Dense) (timestep.Batch, bool, error) {
	if r, a := actions.Dims(); r != c.numEnvs || a != NumActions {
		return timestep.Batch{}, false, fmt.Errorf("step: actions have "+
			"dims (%v, %v), want (%v, %v)", r, a, c.numEnvs, NumActions)
	}

	// Phase 1: target/reset resolution
	resetIDs, err := c.resolveResets()
	if err != nil {
		return timestep.Batch{}, false, err
	}

	// Phase 2: controller invocation
	matutils.ColClip(actions, 0, 0, MaxThrust)
	for j := 1; j < NumActions; j++ {
		matutils.ColClip(actions, j, -MaxBodyRate, MaxBodyRate)
	}
	c.gatherKinematics()

	torques, thrusts, err := c.controller.Update(actions, c.orientations,
		c.linVels, c.angVels)
	if err != nil {
		return timestep.Batch{}, false, fmt.Errorf("step: controller: %v",
			err)
	}
	if err := checkCommandDims(torques, thrusts, c.numEnvs); err != nil {
		return timestep.Batch{}, false, err
	}

	// Phase 3: force application
	if err := c.assembleForces(torques, thrusts, resetIDs); err != nil {
		return timestep.Batch{}, false, err
	}
	if err := c.engine.ApplyForceTensors(c.forces, c.torques,
		physics.LocalFrame); err != nil {
		return timestep.Batch{}, false, fmt.Errorf("step: %v", err)
	}

	// Phase 4: physics stepping
	if err := c.engine.Step(); err != nil {
		return timestep.Batch{}, false, fmt.Errorf("step: %v", err)
	}
	if err := c.engine.Refresh(); err != nil {
		return timestep.Batch{}, false, fmt.Errorf("step: %v", err)
	}

	// Phase 5: observation and reward computation
	for i := range c.progress {
		c.progress[i]++
	}

	step := timestep.New(c.numEnvs, StateObservations, c.discount)
	for i := range step.StepTypes {
		step.StepTypes[i] = timestep.Mid
	}
	copy(step.Numbers, c.progress)
	c.observe(&step)

	c.GetReward(&c.prevStep, actions, step.Rewards)
	last := c.End(&step)

	for i := 0; i < c.numEnvs; i++ {
		c.resetFlags[i] = step.Last(i)
	}

	c.prevStep = step
	return step, last, nil
}

// resolveResets re-draws targets for instances at a periodic progress
// boundary, fully resets instances whose reset flag is set, and pushes
// all touched actors to the engine in one indexed batch write. It
// returns the instances that were fully reset.
func (c *crazyflie) resolveResets() ([]int, error) {
	var retargetIDs, resetIDs []int
	for i := 0; i < c.numEnvs; i++ {
		if c.resetFlags[i] {
			resetIDs = append(resetIDs, i)
		} else if c.progress[i]%retargetInterval == 0 {
			retargetIDs = append(retargetIDs, i)
		}
	}

	actors := c.setTargets(retargetIDs)
	actors = append(actors, c.resetIdx(resetIDs)...)
	if len(actors) == 0 {
		return resetIDs, nil
	}

	actors = uniqueSorted(actors)
	if err := c.engine.SetRootStateIndexed(actors, c.rootStates); err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}
	return resetIDs, nil
}

// gatherKinematics fills the controller input scratch matrices from
// the drone rows of the engine's root state
func (c *crazyflie) gatherKinematics() {
	for env := 0; env < c.numEnvs; env++ {
		row := c.rootStates.Row(c.actorIndex(env, droneBody))
		copy(c.positions.RawRowView(env), row[0:3])
		copy(c.orientations.RawRowView(env), row[3:7])
		copy(c.linVels.RawRowView(env), row[7:10])
		copy(c.angVels.RawRowView(env), row[10:13])
	}
}

// assembleForces builds the (envs, BodiesPerEnv, 3) force and torque
// tensors for this step: the commanded thrust plus quadratic friction
// on the drone body, zeroed for instances that were reset this step.
// The force and friction tensors must share an identical shape; a
// mismatch is a contract violation and fails fast.
func (c *crazyflie) assembleForces(torques, thrusts *mat.Dense,
	resetIDs []int) error {
	c.forces.Zero()
	c.torques.Zero()

	for env := 0; env < c.numEnvs; env++ {
		// Quadratic friction opposing linear velocity, drone body only
		vel := c.linVels.RawRowView(env)
		for axis := 0; axis < 3; axis++ {
			f := -frictionCoeff * floatutils.Sign(vel[axis]) *
				vel[axis] * vel[axis]
			err := c.friction.SetAt(f, env, droneBody, axis)
			if err != nil {
				return fmt.Errorf("step: %v", err)
			}
		}

		thrust := thrusts.RawRowView(env)
		torque := torques.RawRowView(env)
		for axis := 0; axis < 3; axis++ {
			err := c.forces.SetAt(thrust[axis], env, droneBody, axis)
			if err != nil {
				return fmt.Errorf("step: %v", err)
			}
			err = c.torques.SetAt(torque[axis], env, droneBody, axis)
			if err != nil {
				return fmt.Errorf("step: %v", err)
			}
		}
		c.lastThrusts[env] = floats.Norm(thrust, 2)
	}

	if err := tensorutils.SameShape(c.forces, c.friction); err != nil {
		return fmt.Errorf("step: force/friction %v", err)
	}
	if _, err := c.forces.Add(c.friction, tensor.UseUnsafe()); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	// Clear actions for instances mid-reset
	for _, env := range resetIDs {
		if err := tensorutils.ZeroRow(c.forces, env); err != nil {
			return fmt.Errorf("step: %v", err)
		}
		if err := tensorutils.ZeroRow(c.torques, env); err != nil {
			return fmt.Errorf("step: %v", err)
		}
	}
	return nil
}

// observe fills the observation rows of a Batch from the current
// engine state
func (c *crazyflie) observe(step *timestep.Batch) {
	for env := 0; env < c.numEnvs; env++ {
		row := c.rootStates.Row(c.actorIndex(env, droneBody))
		obs := step.Observations.RawRowView(env)

		for axis := 0; axis < 3; axis++ {
			obs[axis] = (c.targets.At(env, axis) - row[axis]) / 3.0
		}
		copy(obs[3:7], row[3:7])
		for axis := 0; axis < 3; axis++ {
			obs[7+axis] = row[7+axis] / 2.0
			obs[10+axis] = row[10+axis] / math.Pi
		}
	}
}

// DronePosition returns the position of the drone of instance i
func (c *crazyflie) DronePosition(i int) r3.Vec {
	return c.rootStates.Position(c.actorIndex(i, droneBody))
}

// DroneOrientation returns the orientation of the drone of instance i
func (c *crazyflie) DroneOrientation(i int) r3.Rotation {
	return c.rootStates.Orientation(c.actorIndex(i, droneBody))
}

// DroneAngularVelocity returns the angular velocity of the drone of
// instance i
func (c *crazyflie) DroneAngularVelocity(i int) r3.Vec {
	return c.rootStates.AngularVelocity(c.actorIndex(i, droneBody))
}

// TargetPosition returns the current target position of instance i
func (c *crazyflie) TargetPosition(i int) r3.Vec {
	row := c.targets.RawRowView(i)
	return r3.Vec{X: row[0], Y: row[1], Z: row[2]}
}

// DronePositions returns the positions of all drones, one row per
// instance. The returned matrix aliases internal scratch and is only
// valid until the next Step.
func (c *crazyflie) DronePositions() *mat.Dense {
	for env := 0; env < c.numEnvs; env++ {
		row := c.rootStates.Row(c.actorIndex(env, droneBody))
		copy(c.positions.RawRowView(env), row[0:3])
	}
	return c.positions
}

// TargetPositions returns the target positions of all instances, one
// row per instance
func (c *crazyflie) TargetPositions() *mat.Dense {
	return c.targets
}

// Progress returns the episode step count of instance i
func (c *crazyflie) Progress(i int) int {
	return c.progress[i]
}

// DiscountSpec returns the discount specification of the environment
func (c *crazyflie) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{c.discount})

	return environment.NewSpec(shape, environment.Discount, bound, bound,
		environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (c *crazyflie) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(StateObservations, nil)

	lower := make([]float64, StateObservations)
	upper := make([]float64, StateObservations)

	// Scaled vector to target: bounded by the termination distance
	for i := 0; i < 3; i++ {
		lower[i] = -MaxTargetDistance / 3.0
		upper[i] = MaxTargetDistance / 3.0
	}
	// Unit quaternion components
	for i := 3; i < 7; i++ {
		lower[i] = -1.0
		upper[i] = 1.0
	}
	// Scaled velocities: unbounded
	for i := 7; i < 13; i++ {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}

	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(StateObservations, lower),
		mat.NewVecDense(StateObservations, upper), environment.Continuous)
}

// ActionSpec returns the action specification of the environment
func (c *crazyflie) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(NumActions, nil)
	lower := mat.NewVecDense(NumActions, []float64{
		0.0, -MaxBodyRate, -MaxBodyRate, -MaxBodyRate,
	})
	upper := mat.NewVecDense(NumActions, []float64{
		MaxThrust, MaxBodyRate, MaxBodyRate, MaxBodyRate,
	})

	return environment.NewSpec(shape, environment.Action, lower, upper,
		environment.Continuous)
}

// checkCommandDims validates the dimensions of controller output
func checkCommandDims(torques, thrusts *mat.Dense, numEnvs int) error {
	for name, m := range map[string]*mat.Dense{
		"torques": torques,
		"thrusts": thrusts,
	} {
		r, cols := m.Dims()
		if r != numEnvs || cols != 3 {
			return fmt.Errorf("step: controller %v have dims (%v, %v), "+
				"want (%v, 3)", name, r, cols, numEnvs)
		}
	}
	return nil
}

// uniqueSorted sorts indices and removes duplicates in place
func uniqueSorted(indices []int) []int {
	sort.Ints(indices)
	out := indices[:0]
	for i, v := range indices {
		if i == 0 || v != indices[i-1] {
			out = append(out, v)
		}
	}
	return out
}
