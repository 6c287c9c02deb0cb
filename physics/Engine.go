// Package physics describes the boundary to a physics engine that
// simulates batches of actors. The engine owns actor state between
// steps; callers write state for selected actors in one indexed batch
// write, queue per-body force and torque tensors, and then advance the
// simulation.
package physics

import "gorgonia.org/tensor"

// Frame denotes the reference frame in which forces and torques are
// expressed
type Frame int

const (
	// LocalFrame applies forces and torques in each body's local frame
	LocalFrame Frame = iota

	// WorldFrame applies forces and torques in the world frame
	WorldFrame
)

// Engine is a physics engine simulating a fixed set of actors. An
// engine is used in a fixed per-step cycle: indexed state writes and
// force application first, then Step, then Refresh before reading
// state.
type Engine interface {
	// RootState returns the engine's live root state for all actors.
	// The returned state is refreshed in place by Refresh; callers
	// must not retain copies across steps.
	RootState() *RootState

	// SetRootStateIndexed overwrites the root state of the given
	// actors with the matching rows of src in a single batch write
	SetRootStateIndexed(actors []int, src *RootState) error

	// ApplyForceTensors queues forces and torques, both of shape
	// (envs, bodiesPerEnv, 3), to be applied on the next Step in the
	// given reference frame
	ApplyForceTensors(forces, torques *tensor.Dense, frame Frame) error

	// Step advances the simulation by one timestep, consuming any
	// queued forces and torques
	Step() error

	// Refresh synchronizes RootState with the simulation after
	// stepping
	Refresh() error
}
