package physics

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/gocopter/utils/tensorutils"
)

// Default physical constants for the Simple engine
const (
	DefaultGravity float64 = -9.81
	DefaultMass    float64 = 0.027 // kg, Crazyflie 2.0 takeoff weight
	DefaultInertia float64 = 1.4e-5
)

// Simple is a minimal kinematic Engine for driving environments in
// tests and examples. It integrates free bodies with semi-implicit
// Euler under constant gravity and applies queued local-frame forces
// by rotating them through each body's orientation. Fixed-base actors
// (e.g. visualization markers) are never integrated. Simple makes no
// claim of physical fidelity; it exists so that the full
// state-write/force/step/refresh cycle can run without an external
// simulator.
type Simple struct {
	state   *RootState
	dynamic []bool

	envs         int
	bodiesPerEnv int

	dt      float64
	gravity float64
	mass    float64
	inertia float64

	pendingForces  *tensor.Dense
	pendingTorques *tensor.Dense
	pendingFrame   Frame
}

// NewSimple returns a Simple engine simulating envs environment
// instances with bodiesPerEnv bodies each. Only body 0 of each
// instance is dynamic; all other bodies are fixed-base. The engine
// advances dt seconds per Step.
func NewSimple(envs, bodiesPerEnv int, dt float64) (*Simple, error) {
	if envs <= 0 || bodiesPerEnv <= 0 {
		return nil, fmt.Errorf("newSimple: envs and bodiesPerEnv must be "+
			"positive, got (%v, %v)", envs, bodiesPerEnv)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("newSimple: dt must be positive, got %v", dt)
	}

	actors := envs * bodiesPerEnv
	dynamic := make([]bool, actors)
	for env := 0; env < envs; env++ {
		dynamic[env*bodiesPerEnv] = true
	}

	return &Simple{
		state:        NewRootState(actors),
		dynamic:      dynamic,
		envs:         envs,
		bodiesPerEnv: bodiesPerEnv,
		dt:           dt,
		gravity:      DefaultGravity,
		mass:         DefaultMass,
		inertia:      DefaultInertia,
	}, nil
}

// RootState returns the engine's live root state
func (s *Simple) RootState() *RootState {
	return s.state
}

// SetRootStateIndexed overwrites the root state of the given actors
// with the matching rows of src
func (s *Simple) SetRootStateIndexed(actors []int, src *RootState) error {
	if src.NumActors() != s.state.NumActors() {
		return fmt.Errorf("setRootStateIndexed: source has %v actors, "+
			"engine has %v", src.NumActors(), s.state.NumActors())
	}

	for _, actor := range actors {
		if actor < 0 || actor >= s.state.NumActors() {
			return fmt.Errorf("setRootStateIndexed: actor index %v out of "+
				"range [0, %v)", actor, s.state.NumActors())
		}
		s.state.CopyRow(actor, src, actor)
	}
	return nil
}

// ApplyForceTensors queues forces and torques of shape
// (envs, bodiesPerEnv, 3) for the next Step
func (s *Simple) ApplyForceTensors(forces, torques *tensor.Dense,
	frame Frame) error {
	want := tensor.Shape{s.envs, s.bodiesPerEnv, 3}
	if !forces.Shape().Eq(want) {
		return fmt.Errorf("applyForceTensors: force shape \n\twant(%v) "+
			"\n\thave(%v)", want, forces.Shape())
	}
	if err := tensorutils.SameShape(forces, torques); err != nil {
		return fmt.Errorf("applyForceTensors: %v", err)
	}

	s.pendingForces = forces
	s.pendingTorques = torques
	s.pendingFrame = frame
	return nil
}

// Step advances the simulation by one timestep
func (s *Simple) Step() error {
	for env := 0; env < s.envs; env++ {
		for body := 0; body < s.bodiesPerEnv; body++ {
			actor := env*s.bodiesPerEnv + body
			if !s.dynamic[actor] {
				continue
			}
			if err := s.integrate(env, body, actor); err != nil {
				return fmt.Errorf("step: %v", err)
			}
		}
	}

	s.pendingForces = nil
	s.pendingTorques = nil
	return nil
}

// Refresh synchronizes RootState with the simulation. The Simple
// engine integrates RootState in place, so no synchronization is
// needed.
func (s *Simple) Refresh() error {
	return nil
}

// integrate advances a single dynamic body with semi-implicit Euler
func (s *Simple) integrate(env, body, actor int) error {
	force, torque, err := s.pendingFor(env, body)
	if err != nil {
		return err
	}

	orient := s.state.Orientation(actor)
	if s.pendingFrame == LocalFrame {
		force = orient.Rotate(force)
		torque = orient.Rotate(torque)
	}

	accel := r3.Add(
		r3.Scale(1.0/s.mass, force),
		r3.Vec{Z: s.gravity},
	)

	vel := r3.Add(s.state.LinearVelocity(actor), r3.Scale(s.dt, accel))
	s.state.SetLinearVelocity(actor, vel)
	s.state.SetPosition(actor,
		r3.Add(s.state.Position(actor), r3.Scale(s.dt, vel)))

	angVel := r3.Add(s.state.AngularVelocity(actor),
		r3.Scale(s.dt/s.inertia, torque))
	s.state.SetAngularVelocity(actor, angVel)
	s.state.SetOrientation(actor, integrateOrientation(orient, angVel, s.dt))

	return nil
}

// pendingFor returns the queued force and torque for one body, or zero
// vectors if no forces were queued this step
func (s *Simple) pendingFor(env, body int) (r3.Vec, r3.Vec, error) {
	if s.pendingForces == nil {
		return r3.Vec{}, r3.Vec{}, nil
	}

	var force, torque r3.Vec
	read := func(t *tensor.Dense, dst *r3.Vec) error {
		x, err := t.At(env, body, 0)
		if err != nil {
			return err
		}
		y, err := t.At(env, body, 1)
		if err != nil {
			return err
		}
		z, err := t.At(env, body, 2)
		if err != nil {
			return err
		}
		dst.X, dst.Y, dst.Z = x.(float64), y.(float64), z.(float64)
		return nil
	}

	if err := read(s.pendingForces, &force); err != nil {
		return force, torque, err
	}
	if err := read(s.pendingTorques, &torque); err != nil {
		return force, torque, err
	}
	return force, torque, nil
}

// integrateOrientation advances a unit quaternion by a body-frame
// angular velocity over dt, renormalizing to counter drift
func integrateOrientation(r r3.Rotation, w r3.Vec, dt float64) r3.Rotation {
	q := quat.Number(r)
	omega := quat.Number{Imag: w.X, Jmag: w.Y, Kmag: w.Z}

	dq := quat.Scale(0.5*dt, quat.Mul(q, omega))
	q = quat.Add(q, dq)

	norm := quat.Abs(q)
	if norm == 0 {
		return r3.Rotation(quat.Number{Real: 1})
	}
	return r3.Rotation(quat.Scale(1.0/norm, q))
}
