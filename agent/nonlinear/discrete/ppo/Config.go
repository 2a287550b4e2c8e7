package ppo

import (
	"fmt"

	"github.com/algopapi/RL-implementations/agent"
	env "github.com/algopapi/RL-implementations/environment"
	"github.com/algopapi/RL-implementations/initwfn"
	"github.com/algopapi/RL-implementations/network"
	"github.com/algopapi/RL-implementations/solver"
)

func init() {
	// Register the Config type so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.CategoricalPPOMLP, Config{})
}

// Default hyperparameters
const (
	DefaultLearningRate float64 = 2.5e-5
	DefaultGamma        float64 = 0.94
	DefaultActorWeight  float64 = 1.0
	DefaultCriticWeight float64 = 0.5
	DefaultHuberDelta   float64 = 1.0
)

// Config implements a configuration of the PPO agent with a categorical
// policy over discrete actions. The actor and critic share a trunk of
// fully connected layers described by Layers, Biases, and Activations.
type Config struct {
	Layers      []int
	Biases      []bool
	Activations []*network.Activation

	// Weight init function for all layers
	InitWFn *initwfn.InitWFn
	Solver  *solver.Solver

	Gamma        float64 // Discount factor of returns
	ActorWeight  float64 // Coefficient of the actor loss
	CriticWeight float64 // Coefficient of the critic loss
	HuberDelta   float64 // Threshold of the critic's Huber loss

	// Epsilon is added to the standard deviation when normalizing
	// returns. If 0, MachineEpsilon is used.
	Epsilon float64
}

// DefaultConfig returns the default configuration: a 512-256-64 ReLU
// trunk with He uniform initialization trained by RMSProp
func DefaultConfig() Config {
	rmsprop, err := solver.NewDefaultRMSProp(DefaultLearningRate, 1)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: %v", err))
	}

	return Config{
		Layers: []int{512, 256, 64},
		Biases: []bool{true, true, true},
		Activations: []*network.Activation{
			network.ReLU(),
			network.ReLU(),
			network.ReLU(),
		},
		InitWFn:      initwfn.NewHeU(1.0),
		Solver:       rmsprop,
		Gamma:        DefaultGamma,
		ActorWeight:  DefaultActorWeight,
		CriticWeight: DefaultCriticWeight,
		HuberDelta:   DefaultHuberDelta,
	}
}

// Type returns the type of agent the Config creates
func (c Config) Type() agent.Type {
	return agent.CategoricalPPOMLP
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if len(c.Layers) == 0 {
		return fmt.Errorf("validate: need at least one hidden layer")
	}
	if len(c.Layers) != len(c.Biases) {
		return fmt.Errorf("validate: invalid number of biases\n\twant(%v)"+
			"\n\thave(%v)", len(c.Layers), len(c.Biases))
	}
	if len(c.Layers) != len(c.Activations) {
		return fmt.Errorf("validate: invalid number of activations"+
			"\n\twant(%v)\n\thave(%v)", len(c.Layers), len(c.Activations))
	}
	for i, act := range c.Activations {
		if act == nil {
			return fmt.Errorf("validate: activation %v is nil", i)
		}
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initializer")
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: no solver")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: gamma must be in [0, 1], got %v",
			c.Gamma)
	}
	if c.ActorWeight < 0 || c.CriticWeight < 0 {
		return fmt.Errorf("validate: loss weights must be non-negative, "+
			"got actor %v critic %v", c.ActorWeight, c.CriticWeight)
	}
	if c.HuberDelta <= 0 {
		return fmt.Errorf("validate: huber delta must be positive, got %v",
			c.HuberDelta)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("validate: epsilon must be non-negative, got %v",
			c.Epsilon)
	}
	return nil
}

// CreateAgent creates and returns the agent described by the Config
func (c Config) CreateAgent(e env.Environment, seed uint64) (agent.Agent,
	error) {
	return New(e, c, seed)
}

// ValidAgent returns true if the argument agent can be constructed
// from the Config and false otherwise
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*PPO)
	return ok
}

// epsilon returns the constant used to keep return normalization
// finite
func (c Config) epsilon() float64 {
	if c.Epsilon == 0 {
		return MachineEpsilon
	}
	return c.Epsilon
}

func (c Config) lossConfig() lossConfig {
	return lossConfig{
		actorWeight:  c.ActorWeight,
		criticWeight: c.CriticWeight,
		huberDelta:   c.HuberDelta,
	}
}
