// Package timestep implements timesteps of the agent-environment
// interaction for vectorized environments, where N environment
// instances advance in lockstep and every step produces a batch of
// rewards and observations.
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that an environment instance can
// be at: the first step of an episode, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes how an episode ended. An episode may end due to
// reaching a terminal state or due to an episode step limit. Instances
// that are mid-episode have EndType Nil.
type EndType int

const (
	Nil EndType = iota
	TerminalStateReached
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Nil"
	}
}

// Batch packages together a single timestep of N environment instances
// advancing in lockstep. Observations holds one observation vector per
// row. Numbers holds the per-instance episode step count, which is
// reset to 0 whenever that instance begins a new episode.
type Batch struct {
	StepTypes    []StepType
	EndTypes     []EndType
	Rewards      *mat.VecDense
	Discount     float64
	Observations *mat.Dense
	Numbers      []int
}

// New returns a Batch for n environment instances with observation
// vectors of length obsDim. All instances start at the first step of
// their episode.
func New(n, obsDim int, discount float64) Batch {
	return Batch{
		StepTypes:    make([]StepType, n),
		EndTypes:     make([]EndType, n),
		Rewards:      mat.NewVecDense(n, nil),
		Discount:     discount,
		Observations: mat.NewDense(n, obsDim, nil),
		Numbers:      make([]int, n),
	}
}

// N returns the number of environment instances in the batch
func (b *Batch) N() int {
	return len(b.StepTypes)
}

// First returns whether instance i is at the first step of its episode
func (b *Batch) First(i int) bool {
	return b.StepTypes[i] == First
}

// Mid returns whether instance i is at a middle step of its episode
func (b *Batch) Mid(i int) bool {
	return b.StepTypes[i] == Mid
}

// Last returns whether instance i is at the last step of its episode
func (b *Batch) Last(i int) bool {
	return b.StepTypes[i] == Last
}

// SetEnd records how the episode of instance i ended and marks the
// instance as being at the last step of its episode
func (b *Batch) SetEnd(i int, e EndType) {
	b.StepTypes[i] = Last
	b.EndTypes[i] = e
}

// LastIndices returns the indices of all instances whose episode ended
// on this timestep
func (b *Batch) LastIndices() []int {
	var indices []int
	for i := range b.StepTypes {
		if b.StepTypes[i] == Last {
			indices = append(indices, i)
		}
	}
	return indices
}

// AnyLast returns whether any instance ended its episode on this
// timestep
func (b *Batch) AnyLast() bool {
	for i := range b.StepTypes {
		if b.StepTypes[i] == Last {
			return true
		}
	}
	return false
}

func (b Batch) String() string {
	str := "Batch | Instances: %v  |  Ended: %v  |  Mean Reward:  %.2f"

	var total float64
	for i := 0; i < b.Rewards.Len(); i++ {
		total += b.Rewards.AtVec(i)
	}
	mean := total / float64(b.Rewards.Len())

	return fmt.Sprintf(str, b.N(), len(b.LastIndices()), mean)
}
