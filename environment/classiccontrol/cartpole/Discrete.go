package cartpole

import (
	"fmt"

	env "github.com/algopapi/RL-implementations/environment"
	ts "github.com/algopapi/RL-implementations/timestep"
	"gonum.org/v1/gonum/mat"
)

const (
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 1
)

// cartpole.Discrete implements the classic control environment
// Cartpole with discrete actions. In this environment, a pole is
// attached to a cart, which can move horizontally. Gravity pulls the
// pole downwards so that balancing it in an upright position is very
// difficult.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity.
//
// Actions are discrete, consisting of the direction to apply
// horizontal force to the cart. Legal actions are in {0, 1}:
//
//	Action		Meaning
//	  0			Push cart left
//	  1			Push cart right
//
// Illegal actions result in an *environment.IllegalActionError.
//
// Discrete implements the environment.Environment interface
type Discrete struct {
	*base
}

// NewDiscrete constructs a new Cartpole environment with discrete
// actions
func NewDiscrete(t env.Task, discount float64) (*Discrete, ts.TimeStep,
	error) {
	base, firstStep, err := newBase(t, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newDiscrete: %v", err)
	}

	return &Discrete{base}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Discrete) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MaxDiscreteAction)})

	return env.NewSpec(shape, env.Action, lowerBound,
		upperBound, env.Discrete)
}

// Step takes one environmental step given action a and returns the next
// timestep as a timestep.TimeStep and a bool indicating whether or not
// the episode has ended. Stepping after the episode has ended, without
// first calling Reset, returns environment.ErrNotReset.
func (c *Discrete) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if c.needsReset {
		return ts.TimeStep{}, false, env.ErrNotReset
	}
	if err := env.ValidateAction(c.ActionSpec(), a); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	// Convert action (0, 1) to a direction (-1, 1)
	direction := 2*a.AtVec(0) - 1

	nextState := c.nextState(direction)
	return c.update(a, nextState)
}
