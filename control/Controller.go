// Package control describes the boundary to a low-level rate/thrust
// controller. A controller converts one policy action per environment
// instance into a commanded body torque and thrust force for that
// instance. The control law itself is supplied by the caller; this
// package only fixes the call contract.
package control

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Controller converts batched policy actions into batched body torques
// and thrust forces.
type Controller interface {
	// Update computes per-instance commands from per-instance actions
	// and current kinematic state. Arguments hold one row per
	// instance: actions (N x 4), orientations as quaternions in
	// (x, y, z, w) order (N x 4), linear and angular velocities
	// (N x 3). The returned torques and thrusts are N x 3, expressed
	// in each body's local frame.
	Update(actions, orientations, linVels,
		angVels *mat.Dense) (torques, thrusts *mat.Dense, err error)
}

// Fixed is a placeholder Controller commanding a constant local-frame
// thrust along body-up and zero torque, ignoring actions and state.
// It exists to exercise environments in tests and examples when no
// real controller is available.
type Fixed struct {
	thrust float64
}

// NewFixed returns a Fixed controller commanding thrust newtons along
// each body's up axis
func NewFixed(thrust float64) *Fixed {
	return &Fixed{thrust}
}

// Update implements the Controller interface
func (f *Fixed) Update(actions, orientations, linVels,
	angVels *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	n, _ := actions.Dims()
	for _, m := range []*mat.Dense{orientations, linVels, angVels} {
		r, _ := m.Dims()
		if r != n {
			return nil, nil, fmt.Errorf("update: state has %v rows, "+
				"actions have %v", r, n)
		}
	}

	torques := mat.NewDense(n, 3, nil)
	thrusts := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		thrusts.Set(i, 2, f.thrust)
	}
	return torques, thrusts, nil
}
