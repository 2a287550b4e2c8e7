// Package agent defines an agent interface
package agent

import (
	ts "github.com/algopapi/RL-implementations/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a Policy
// which chooses actions in each state. The Policy chooses which actions
// are taken, and the Learner uses these actions to update the Policy.
type Agent interface {
	Learner
	Policy
}

// A Closer is an agent that must be closed after it is done learning
type Closer interface {
	Agent
	Close() error
}

// Learner implements an episodic learning algorithm that defines how
// weights are updated.
type Learner interface {
	// ObserveFirst records the first timestep in an episode
	ObserveFirst(ts.TimeStep) error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs ts.TimeStep) error

	// EndEpisode performs the update for the episode that just ended
	// and discards its experience, returning the losses of the update
	EndEpisode() (Losses, error)

	// Pending returns the number of steps stored and awaiting an update
	Pending() int
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent, the
// Policy and Learner should have pointers to the same weights so that
// any changes the learner makes to the weights are reflected in the
// actions the Policy chooses
type Policy interface {
	SelectAction(t ts.TimeStep) (*mat.VecDense, error)
}

// Losses holds the scalar losses of a single update
type Losses struct {
	Actor  float64
	Critic float64
	Total  float64
}
