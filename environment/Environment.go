// Package environment outlines the interfaces and sturcts needed to
// implement concrete environments
package environment

import (
	ts "github.com/algopapi/RL-implementations/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when an episode should end
type Ender interface {
	// End returns whether or not the argument TimeStep is the last in
	// an episode. If so, End() modifies the TimeStep so that its
	// StepType is timestep.Last and records the EndType.
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment as well as the episode termination conditions.
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
	AtGoal(state mat.Matrix) bool
	RewardSpec() Spec
}

// Environment implements a simualted environment, which includes a
// Task to complete.
//
// Reset must be called before the first call to Step and after every
// episode ends. Stepping an environment that has not been reset
// returns ErrNotReset, and stepping with an action outside the action
// specification returns an *IllegalActionError.
type Environment interface {
	Task
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
