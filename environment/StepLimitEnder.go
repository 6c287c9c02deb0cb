package environment

import "github.com/samuelfneumann/gocopter/timestep"

// StepLimit implements the Ender interface to end episodes at a
// step limit. An instance whose episode step count reaches the last
// step before the limit is marked as ended with timestep.Timeout.
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit ending episodes
// after episodeSteps steps
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End determines per instance whether the current episode should be
// ended, returning whether any instance was ended. Ended instances
// have their StepType field set to timestep.Last and their EndType
// set to timestep.Timeout.
func (s StepLimit) End(t *timestep.Batch) bool {
	ended := false
	for i := range t.Numbers {
		if t.Numbers[i] >= s.episodeSteps-1 {
			t.SetEnd(i, timestep.Timeout)
			ended = true
		}
	}
	return ended
}
