// Package envconfig implements functionality for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/algopapi/RL-implementations/environment"
	"github.com/algopapi/RL-implementations/environment/classiccontrol/cartpole"
	ts "github.com/algopapi/RL-implementations/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Cartpole EnvName = "Cartpole"
)

// TaskName stores the tasks that can be configured with this package.
// The tasks that can be used with each environment are as follows:
//
//	Environment			Task
//	Cartpole			Balance
type TaskName string

// Tasks available for configuration
const (
	Balance TaskName = "Balance"
)

// DefaultEpisodeCutoff is the step limit used when a Config does not
// set one
const DefaultEpisodeCutoff uint = 500

// Config implements a specific configuration of a specific environment
// and specific task.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, taskName TaskName, episodeCutoff uint,
	discount float64) Config {
	return Config{
		Environment:   envName,
		Task:          taskName,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}
}

// Default returns the default Cartpole Balance configuration
func Default() Config {
	return NewConfig(Cartpole, Balance, DefaultEpisodeCutoff, 1.0)
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	cutoff := c.EpisodeCutoff
	if cutoff == 0 {
		cutoff = DefaultEpisodeCutoff
	}

	switch c.Environment {
	case Cartpole:
		return CreateCartpole(c.Task, int(cutoff), seed, c.Discount)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateCartpole is a factory for creating the Cartpole environment
// with default physical parameters and default task parameters.
func CreateCartpole(taskName TaskName, cutoff int, seed uint64,
	discount float64) (env.Environment, ts.TimeStep, error) {
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s, err := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createCartpole: %v", err)
	}

	var task env.Task
	switch taskName {
	case Balance:
		task, err = cartpole.NewBalance(s, cutoff, cartpole.FailAngle,
			cartpole.FailPosition)

	default:
		err = fmt.Errorf("Cartpole environment has no task %v", taskName)
	}
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createCartpole: %v", err)
	}

	return cartpole.NewDiscrete(task, discount)
}
