package crazyflie

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gocopter/environment"
	"github.com/samuelfneumann/gocopter/timestep"
	"github.com/samuelfneumann/gocopter/utils/matutils"
)

const (
	// MaxTargetDistance is the distance from the target beyond which
	// an episode is terminated
	MaxTargetDistance float64 = 0.5

	// MinHeight is the height below which an episode is terminated
	MinHeight float64 = 0.3

	// GoalRadius is the distance from the target within which the
	// drone is considered to be at the goal
	GoalRadius float64 = 0.05
)

// crazyflieTask is a Task that computes rewards from the full
// kinematic state of a Crazyflie environment rather than from
// observations alone. Such tasks need access to the environment and
// are registered with it on construction.
type crazyflieTask interface {
	environment.Task
	registerEnv(*crazyflie)
}

// Hover implements the task of flying to a target position and holding
// it. Rewards lie in (0, 1], increasing as the drone approaches the
// target and reaching 1 exactly at it. Episodes end when the drone
// strays farther than MaxTargetDistance from the target, sinks below
// MinHeight, or reaches the episode step limit.
//
// The embedded Starter is the target distribution: every target
// assignment draws one row from it.
type Hover struct {
	environment.Starter
	stepLimit environment.Ender
	boundary  environment.Ender

	env *crazyflie
}

// NewHover returns a new Hover task drawing target positions from s
// and cutting episodes off after cutoff steps
func NewHover(s environment.Starter, cutoff int) crazyflieTask {
	stepLimit := environment.NewStepLimit(cutoff)
	return &Hover{Starter: s, stepLimit: stepLimit}
}

func (h *Hover) registerEnv(env *crazyflie) {
	h.env = env
	h.boundary = environment.NewFunctionEnder(
		func(i int, _ mat.Vector) bool {
			pos := env.DronePosition(i)
			dist := r3.Norm(r3.Sub(env.TargetPosition(i), pos))
			return dist > MaxTargetDistance || pos.Z < MinHeight
		},
		timestep.TerminalStateReached,
	)
}

// GetReward fills rewards with one reward per environment instance for
// the transition onto the current state
func (h *Hover) GetReward(_ *timestep.Batch, _ *mat.Dense,
	rewards *mat.VecDense) {
	HoverRewards(h.env.DronePositions(), h.env.TargetPositions(), rewards)
}

// End determines per instance whether the current episode should be
// ended, marking ended instances in t and returning whether any
// instance was ended
func (h *Hover) End(t *timestep.Batch) bool {
	ended := h.boundary.End(t)
	if h.stepLimit.End(t) {
		ended = true
	}
	return ended
}

// AtGoal returns whether instance i is holding position at its target
func (h *Hover) AtGoal(i int) bool {
	dist := r3.Norm(r3.Sub(h.env.TargetPosition(i), h.env.DronePosition(i)))
	return dist <= GoalRadius
}

// Min returns the infimum of rewards obtainable on the task
func (h *Hover) Min() float64 {
	return 0.0
}

// Max returns the maximum possible reward
func (h *Hover) Max() float64 {
	return 1.0
}

// RewardSpec returns the reward specification for the task
func (h *Hover) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{h.Min()})
	upperBound := mat.NewVecDense(1, []float64{h.Max()})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}

// HoverRewards computes the batched Hover reward: one PositionReward
// per row of positions and targets, written into rewards. The
// function is pure; it owns no state and is deterministic in its
// inputs.
func HoverRewards(positions, targets *mat.Dense, rewards *mat.VecDense) {
	matutils.RowNorms(targets, positions, rewards)
	for i := 0; i < rewards.Len(); i++ {
		rewards.SetVec(i, PositionReward(rewards.AtVec(i)))
	}
}

// PositionReward maps a distance to the target onto (0, 1]: 1 at the
// target, falling off as 1/(1 + distance^2)
func PositionReward(distance float64) float64 {
	return 1.0 / (1.0 + distance*distance)
}

// UprightReward maps an orientation onto (0, 1]: 1 when the body up
// axis points straight up, falling off with tilt. It is not part of
// the Hover reward; the combined reward is driven by position alone.
func UprightReward(orientation r3.Rotation) float64 {
	up := orientation.Rotate(r3.Vec{Z: 1})
	tilt := 1.0 - up.Z
	if tilt < 0 {
		tilt = -tilt
	}
	return 1.0 / (1.0 + tilt*tilt)
}

// SpinReward maps a yaw rate onto (0, 1]: 1 at zero spin, falling off
// with the spin magnitude. Like UprightReward, it is not part of the
// Hover reward.
func SpinReward(yawRate float64) float64 {
	if yawRate < 0 {
		yawRate = -yawRate
	}
	return 1.0 / (1.0 + yawRate*yawRate)
}
