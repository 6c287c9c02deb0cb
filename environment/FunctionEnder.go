package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocopter/timestep"
)

// FunctionEnder ends the episode of an environment instance whenever a
// predicate of that instance's observation vector returns true.
type FunctionEnder struct {
	end     func(i int, obs mat.Vector) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends the episode
// of instance i with end type endType when f(i, observation) returns
// true
func NewFunctionEnder(f func(i int, obs mat.Vector) bool,
	endType timestep.EndType) Ender {
	return &FunctionEnder{f, endType}
}

// End determines per instance whether the current episode should be
// ended, returning whether any instance was ended. Ended instances
// have their StepType field set to timestep.Last and their EndType set
// to the FunctionEnder's end type.
func (f *FunctionEnder) End(t *timestep.Batch) bool {
	ended := false
	for i := 0; i < t.N(); i++ {
		if f.end(i, t.Observations.RowView(i)) {
			t.SetEnd(i, f.endType)
			ended = true
		}
	}
	return ended
}
