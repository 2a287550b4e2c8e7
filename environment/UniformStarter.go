package environment

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter draws start states from the box formed by a list of
// per-feature intervals. Every Start call draws a fresh state from the
// same seeded source, so two starters with equal seeds produce equal
// start-state sequences.
type UniformStarter struct {
	bounds []r1.Interval
	dist   *distmv.Uniform
}

// NewUniformStarter returns a UniformStarter whose i-th feature is
// drawn from bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) (*UniformStarter,
	error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("newUniformStarter: no bounds given")
	}
	for i, b := range bounds {
		if b.Min > b.Max {
			return nil, fmt.Errorf("newUniformStarter: feature %d has "+
				"min %v > max %v", i, b.Min, b.Max)
		}
	}

	b := make([]r1.Interval, len(bounds))
	copy(b, bounds)
	return &UniformStarter{
		bounds: b,
		dist:   distmv.NewUniform(b, rand.NewSource(seed)),
	}, nil
}

// Start draws a start state
func (u *UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(len(u.bounds), u.dist.Rand(nil))
}

// Bounds returns the interval each feature is drawn from
func (u *UniformStarter) Bounds() []r1.Interval {
	return u.bounds
}
