// Package environment outlines the interfaces and structs needed to
// implement concrete vectorized environments. A vectorized environment
// simulates N independent environment instances in lockstep: every
// Step consumes one action per instance and produces one reward,
// observation, and episode-termination decision per instance.
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocopter/timestep"
)

// Starter implements a distribution of starting vectors and samples
// batches of them. Start(n) returns an n-row matrix with one sampled
// vector per row.
type Starter interface {
	Start(n int) *mat.Dense
}

// Ender determines whether the episodes of individual environment
// instances in a Batch should end. End marks ended instances as
// timestep.Last together with their timestep.EndType, and returns
// whether any instance was ended.
type Ender interface {
	End(t *timestep.Batch) bool
}

// Task implements the reward scheme for a vectorized environment.
// GetReward fills rewards with one reward per environment instance,
// given the transition from the previous timestep under the given
// batch of actions.
type Task interface {
	Starter
	Ender

	GetReward(prev *timestep.Batch, actions *mat.Dense, rewards *mat.VecDense)
	AtGoal(i int) bool
	Min() float64
	Max() float64
	RewardSpec() Spec
}

// Environment implements a vectorized simulated environment, which
// includes a Task to complete. Step takes one action vector per
// instance (one row per instance) and returns the resulting batched
// timestep together with whether any instance ended its episode.
type Environment interface {
	Task

	Reset() (timestep.Batch, error)
	Step(actions *mat.Dense) (timestep.Batch, bool, error)
	NumInstances() int
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
