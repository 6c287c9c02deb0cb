package physics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Root state column layout. Each actor's root state is a 13-component
// vector: position, orientation quaternion in (x, y, z, w) order, then
// linear and angular velocity.
const (
	posX = iota
	posY
	posZ
	quatX
	quatY
	quatZ
	quatW
	linVelX
	linVelY
	linVelZ
	angVelX
	angVelY
	angVelZ

	// StateDims is the number of components in an actor root state
	StateDims = 13
)

// RootState holds the batched root states of a fixed set of actors,
// one 13-component row per actor.
type RootState struct {
	data *mat.Dense
}

// NewRootState returns a RootState for actors actors, all at the
// origin with identity orientation and zero velocity
func NewRootState(actors int) *RootState {
	if actors <= 0 {
		panic(fmt.Sprintf("newRootState: actors must be positive, got %v",
			actors))
	}

	s := &RootState{mat.NewDense(actors, StateDims, nil)}
	for i := 0; i < actors; i++ {
		s.data.Set(i, quatW, 1.0)
	}
	return s
}

// NumActors returns the number of actors in the RootState
func (s *RootState) NumActors() int {
	r, _ := s.data.Dims()
	return r
}

// Position returns the position of actor i
func (s *RootState) Position(i int) r3.Vec {
	row := s.data.RawRowView(i)
	return r3.Vec{X: row[posX], Y: row[posY], Z: row[posZ]}
}

// SetPosition sets the position of actor i
func (s *RootState) SetPosition(i int, p r3.Vec) {
	row := s.data.RawRowView(i)
	row[posX], row[posY], row[posZ] = p.X, p.Y, p.Z
}

// Orientation returns the orientation of actor i as a rotation
func (s *RootState) Orientation(i int) r3.Rotation {
	row := s.data.RawRowView(i)
	return r3.Rotation(quat.Number{
		Real: row[quatW],
		Imag: row[quatX],
		Jmag: row[quatY],
		Kmag: row[quatZ],
	})
}

// SetOrientation sets the orientation of actor i
func (s *RootState) SetOrientation(i int, r r3.Rotation) {
	row := s.data.RawRowView(i)
	q := quat.Number(r)
	row[quatX], row[quatY], row[quatZ], row[quatW] = q.Imag, q.Jmag,
		q.Kmag, q.Real
}

// LinearVelocity returns the linear velocity of actor i
func (s *RootState) LinearVelocity(i int) r3.Vec {
	row := s.data.RawRowView(i)
	return r3.Vec{X: row[linVelX], Y: row[linVelY], Z: row[linVelZ]}
}

// SetLinearVelocity sets the linear velocity of actor i
func (s *RootState) SetLinearVelocity(i int, v r3.Vec) {
	row := s.data.RawRowView(i)
	row[linVelX], row[linVelY], row[linVelZ] = v.X, v.Y, v.Z
}

// AngularVelocity returns the angular velocity of actor i
func (s *RootState) AngularVelocity(i int) r3.Vec {
	row := s.data.RawRowView(i)
	return r3.Vec{X: row[angVelX], Y: row[angVelY], Z: row[angVelZ]}
}

// SetAngularVelocity sets the angular velocity of actor i
func (s *RootState) SetAngularVelocity(i int, w r3.Vec) {
	row := s.data.RawRowView(i)
	row[angVelX], row[angVelY], row[angVelZ] = w.X, w.Y, w.Z
}

// Row returns the raw 13-component root state of actor i. The
// returned slice aliases the RootState's backing data.
func (s *RootState) Row(i int) []float64 {
	return s.data.RawRowView(i)
}

// CopyRow overwrites the root state of actor i with the root state of
// actor j from src
func (s *RootState) CopyRow(i int, src *RootState, j int) {
	copy(s.data.RawRowView(i), src.data.RawRowView(j))
}

// Clone returns a deep copy of the RootState
func (s *RootState) Clone() *RootState {
	c := &RootState{mat.NewDense(s.NumActors(), StateDims, nil)}
	c.data.Copy(s.data)
	return c
}

// Matrix returns the backing actors x 13 matrix of the RootState
func (s *RootState) Matrix() *mat.Dense {
	return s.data
}
