package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples batches of starting vectors from a
// multi-dimensional uniform distribution. Feature j of every sampled
// vector is drawn i.i.d. from [bounds[j].Min, bounds[j].Max).
type UniformStarter struct {
	features int
	seed     uint64
	rand     *distmv.Uniform
}

// NewUniformStarter returns a new UniformStarter sampling vectors
// within bounds
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	source := rand.NewSource(seed)
	rand := distmv.NewUniform(bounds, source)

	return UniformStarter{len(bounds), seed, rand}
}

// Start returns n starting vectors, one per row
func (u UniformStarter) Start(n int) *mat.Dense {
	starts := mat.NewDense(n, u.features, nil)
	for i := 0; i < n; i++ {
		u.rand.Rand(starts.RawRowView(i))
	}
	return starts
}
