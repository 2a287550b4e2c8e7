// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/algopapi/RL-implementations/experiment/checkpointer"
	"github.com/algopapi/RL-implementations/experiment/tracker"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes until the episode budget is exhausted. The
// RunEpisode() function will run a single episode.
//
// Experiments send each TimeStep to Trackers using the Tracker's
// Track() method. The Tracker then determines which data from the
// TimeStep it caches and saves. New Trackers can be registered with an
// Experiment through the constructor or through an Experiment's
// Register() function.
type Experiment interface {
	Run() error
	RunEpisode() (EpisodeResult, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

const (
	DefaultEpisodes   int     = 3000
	DefaultMaxAverage float64 = 300
	DefaultSaveDir    string  = "Models"
)

// Config represents a configuration of an episodic experiment
type Config struct {
	// Episodes is the episode budget
	Episodes int

	// MaxAverage is the initial checkpoint threshold. A checkpoint is
	// saved each time the running average score strictly exceeds the
	// best average seen so far.
	MaxAverage float64

	// AgentName, EnvName, and LearningRate name the checkpoint file
	AgentName    string
	EnvName      string
	LearningRate float64

	SaveDir string
}

// DefaultConfig returns the default experiment configuration
func DefaultConfig(agentName, envName string, lr float64) Config {
	return Config{
		Episodes:     DefaultEpisodes,
		MaxAverage:   DefaultMaxAverage,
		AgentName:    agentName,
		EnvName:      envName,
		LearningRate: lr,
		SaveDir:      DefaultSaveDir,
	}
}

// Validate returns an error if the configuration is invalid
func (c Config) Validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("validate: episodes must be non-negative")
	}
	if c.AgentName == "" || c.EnvName == "" {
		return fmt.Errorf("validate: agent and environment names must " +
			"be set")
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive")
	}
	return nil
}

// ModelPath returns the path checkpoints are saved to
func (c Config) ModelPath() string {
	return checkpointer.ModelName(c.SaveDir, c.AgentName, c.EnvName,
		c.LearningRate)
}
