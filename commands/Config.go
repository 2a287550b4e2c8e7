package commands

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/algopapi/RL-implementations/agent"
	"github.com/algopapi/RL-implementations/agent/nonlinear/discrete/ppo"
	"github.com/algopapi/RL-implementations/environment/envconfig"
	"github.com/algopapi/RL-implementations/experiment"
	"gopkg.in/yaml.v3"
)

// RunConfig gathers the configuration of a training run: the agent,
// the environment, and the experiment.
type RunConfig struct {
	Agent       agent.TypedConfig
	Environment envconfig.Config
	Experiment  experiment.Config
}

// DefaultRunConfig returns the default run: PPO on Cartpole Balance
func DefaultRunConfig() RunConfig {
	agentConfig := ppo.DefaultConfig()
	return RunConfig{
		Agent:       agent.NewTypedConfig(agentConfig),
		Environment: envconfig.Default(),
		Experiment: experiment.DefaultConfig("PPO",
			string(envconfig.Cartpole),
			agentConfig.Solver.Config.LearningRate()),
	}
}

// FromYaml reads a RunConfig from a YAML file. The file has the
// sections Agent, Environment, and Experiment. Each section is
// converted to JSON and decoded into its typed configuration so that
// solvers and weight initializers are decoded by their type tags.
// Sections missing from the file keep their defaults.
func FromYaml(path string) (RunConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("fromYaml: could not read config: %v",
			err)
	}
	return parseYaml(data)
}

func parseYaml(data []byte) (RunConfig, error) {
	config := DefaultRunConfig()

	var sections map[string]interface{}
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return config, fmt.Errorf("fromYaml: could not parse config: %v",
			err)
	}

	targets := map[string]interface{}{
		"Agent":       &config.Agent,
		"Environment": &config.Environment,
		"Experiment":  &config.Experiment,
	}
	for name, section := range sections {
		target, ok := targets[name]
		if !ok {
			return config, fmt.Errorf("fromYaml: unknown section %q", name)
		}

		spec, err := json.Marshal(section)
		if err != nil {
			return config, fmt.Errorf("fromYaml: section %v: %v", name, err)
		}
		if err := json.Unmarshal(spec, target); err != nil {
			return config, fmt.Errorf("fromYaml: section %v: %v", name, err)
		}
	}

	if err := config.Agent.Validate(); err != nil {
		return config, fmt.Errorf("fromYaml: agent: %v", err)
	}

	// Checkpoints are named by the learning rate the solver uses
	if c, ok := config.Agent.Config.(ppo.Config); ok {
		config.Experiment.LearningRate = c.Solver.Config.LearningRate()
	}
	return config, nil
}

// withLearningRate sets the learning rate of the agent's solver and of
// the checkpoint name
func (r *RunConfig) withLearningRate(lr float64) error {
	c, ok := r.Agent.Config.(ppo.Config)
	if !ok {
		return fmt.Errorf("withLearningRate: cannot set the learning "+
			"rate of agent type %v", r.Agent.Type)
	}

	s, err := c.Solver.WithLearningRate(lr)
	if err != nil {
		return fmt.Errorf("withLearningRate: %v", err)
	}
	c.Solver = s
	r.Agent.Config = c
	r.Experiment.LearningRate = lr
	return nil
}

// withGamma sets the discount factor of the agent's returns
func (r *RunConfig) withGamma(gamma float64) error {
	c, ok := r.Agent.Config.(ppo.Config)
	if !ok {
		return fmt.Errorf("withGamma: cannot set the discount of agent "+
			"type %v", r.Agent.Type)
	}
	c.Gamma = gamma
	r.Agent.Config = c
	return nil
}
