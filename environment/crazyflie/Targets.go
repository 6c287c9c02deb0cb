package crazyflie

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gocopter/environment"
	"github.com/samuelfneumann/gocopter/utils/matutils"
)

// Default target draw bounds. The x and y ranges are near zero and the
// z range sits just above the spawn height, so by default drones only
// need to hold their spawn position. Wider task variants can pass
// their own bounds to NewTargetStarter.
const (
	DefaultTargetXYMin float64 = 0.0
	DefaultTargetXYMax float64 = 0.001
	DefaultTargetZMin  float64 = 1.0
	DefaultTargetZMax  float64 = 1.01
)

// NewTargetStarter returns a Starter drawing target positions
// uniformly within the given per-axis bounds
func NewTargetStarter(x, y, z r1.Interval,
	seed uint64) environment.UniformStarter {
	return environment.NewUniformStarter([]r1.Interval{x, y, z}, seed)
}

// NewDefaultTargetStarter returns a Starter drawing target positions
// from the default bounds
func NewDefaultTargetStarter(seed uint64) environment.UniformStarter {
	return NewTargetStarter(
		r1.Interval{Min: DefaultTargetXYMin, Max: DefaultTargetXYMax},
		r1.Interval{Min: DefaultTargetXYMin, Max: DefaultTargetXYMax},
		r1.Interval{Min: DefaultTargetZMin, Max: DefaultTargetZMax},
		seed,
	)
}

// setTargets draws a new random target for each of the given
// environment instances, mirroring each target into its marker actor's
// state. It returns the marker actor indices touched so the caller can
// push the updated state to the engine in one indexed batch write.
func (c *crazyflie) setTargets(envIDs []int) []int {
	if len(envIDs) == 0 {
		return nil
	}

	draws := c.Start(len(envIDs))
	if _, cols := draws.Dims(); cols != 3 {
		panic(fmt.Sprintf("setTargets: target starter returned %v "+
			"features, want 3", cols))
	}

	actors := make([]int, 0, len(envIDs))
	for k, env := range envIDs {
		draw := draws.RawRowView(k)
		matutils.SetRow(c.targets, env, draw)

		marker := c.actorIndex(env, markerBody)
		c.rootStates.SetPosition(marker, c.TargetPosition(env))
		actors = append(actors, marker)
	}
	return actors
}

// resetIdx restores the stored initial root state of each of the given
// environment instances, re-draws their targets, and zeroes their
// reset flags and progress counters. It returns the union of all
// touched actor indices (drones and markers) for one indexed batch
// write into the engine.
func (c *crazyflie) resetIdx(envIDs []int) []int {
	if len(envIDs) == 0 {
		return nil
	}

	actors := c.setTargets(envIDs)
	for _, env := range envIDs {
		drone := c.actorIndex(env, droneBody)
		c.rootStates.CopyRow(drone, c.initialRootStates, drone)
		c.resetFlags[env] = false
		c.progress[env] = 0
		actors = append(actors, drone)
	}
	return uniqueSorted(actors)
}
