// Package ppo implements an episodic, on-policy actor-critic agent with
// a categorical policy over discrete actions. A single network with a
// shared trunk estimates both the policy and the state value.
//
// The agent collects one full episode, then takes a single gradient
// step on the loss
//
//	Σ -log π(A[t]|S[t]) * (Ĝ[t] - v(S[t])) + 0.5 * Σ huber(v(S[t]), Ĝ[t])
//
// where Ĝ are the discounted returns of the episode normalized to zero
// mean and unit standard deviation.
package ppo

import (
	"bytes"
	"encoding/gob"
	"fmt"
	mrand "math/rand"
	"os"

	"github.com/algopapi/RL-implementations/agent"
	"github.com/algopapi/RL-implementations/buffer/trajectory"
	env "github.com/algopapi/RL-implementations/environment"
	"github.com/algopapi/RL-implementations/network"
	ts "github.com/algopapi/RL-implementations/timestep"
	"github.com/algopapi/RL-implementations/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
)

// PPO implements the episodic actor-critic agent
type PPO struct {
	// Behaviour network, run one observation at a time
	net *network.ActorCritic
	vm  G.VM

	solver G.Solver
	source rand.Source

	buffer *trajectory.Buffer
	gamma  float64
	eps    float64
	loss   lossConfig

	prevStep   ts.TimeStep
	started    bool
	acted      bool
	lastAction int
	lastLogP   float64
	lastValue  float64

	episodes int
}

// New creates and returns a new PPO agent acting in environment e
func New(e env.Environment, c agent.Config, seed uint64) (*PPO, error) {
	if !c.ValidAgent(&PPO{}) {
		return nil, fmt.Errorf("new: invalid configuration type: %T", c)
	}

	config, ok := c.(Config)
	if !ok {
		return nil, fmt.Errorf("new: invalid configuration type: %T", c)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	actions, err := env.NumActions(e.ActionSpec())
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	features := e.ObservationSpec().Shape.Len()

	// Gorgonia's weight initializers draw from math/rand
	mrand.Seed(int64(seed))

	net, err := network.NewActorCritic(features, 1, actions, G.NewGraph(),
		config.Layers, config.Biases, config.InitWFn.InitWFn(),
		config.Activations)
	if err != nil {
		return nil, fmt.Errorf("new: could not create network: %v", err)
	}

	return &PPO{
		net:    net,
		vm:     G.NewTapeMachine(net.Graph()),
		solver: config.Solver.Solver,
		source: rand.NewSource(seed),
		buffer: trajectory.New(features),
		gamma:  config.Gamma,
		eps:    config.epsilon(),
		loss:   config.lossConfig(),
	}, nil
}

// ObserveFirst observes and records information about the first
// timestep in an episode.
func (p *PPO) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
			"called on the first timestep (current timestep = %d)\n",
			t.Number)
	}
	if p.buffer.Len() != 0 {
		return fmt.Errorf("observeFirst: %v steps of the previous episode "+
			"were never used in an update", p.buffer.Len())
	}

	p.prevStep = t
	p.started = true
	p.acted = false
	return nil
}

// SelectAction samples an action from the policy in the observation of
// t, which must be the last timestep observed. The log-probability of
// the action and the value of the observation are kept until the
// action's outcome is observed.
func (p *PPO) SelectAction(t ts.TimeStep) (*mat.VecDense, error) {
	if !p.started {
		return nil, fmt.Errorf("selectAction: ObserveFirst must be called " +
			"before selecting actions")
	}
	if t.Observation != p.prevStep.Observation {
		return nil, fmt.Errorf("selectAction: timestep is different from " +
			"that previously recorded")
	}
	if t.Last() {
		return nil, fmt.Errorf("selectAction: cannot act in the last " +
			"timestep of an episode")
	}

	if err := p.net.SetInput(t.Observation.RawVector().Data); err != nil {
		return nil, fmt.Errorf("selectAction: %v", err)
	}
	if err := p.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("selectAction: %v", err)
	}
	probs := p.net.ProbabilitiesVal()
	logProbs := p.net.LogProbabilitiesVal()
	value := p.net.ValueVal()
	p.vm.Reset()

	if len(probs) != p.net.Actions() || len(value) != 1 {
		return nil, fmt.Errorf("selectAction: network predicted %v "+
			"probabilities and %v values", len(probs), len(value))
	}
	if !floatutils.AllFinite(probs) || !floatutils.AllFinite(value) {
		return nil, fmt.Errorf("selectAction: network outputs are not "+
			"finite: probabilities %v value %v", probs, value)
	}

	dist := distuv.NewCategorical(probs, p.source)
	action := int(dist.Rand())

	p.acted = true
	p.lastAction = action
	p.lastLogP = logProbs[action]
	p.lastValue = value[0]

	return mat.NewVecDense(1, []float64{float64(action)}), nil
}

// Observe records the outcome of the last selected action
func (p *PPO) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	if !p.acted {
		return fmt.Errorf("observe: no action was selected since the last " +
			"observation")
	}
	if action.Len() != 1 || int(action.AtVec(0)) != p.lastAction {
		return fmt.Errorf("observe: action %v was not the selected "+
			"action %v", mat.Formatted(action.T()), p.lastAction)
	}

	obs := p.prevStep.Observation.RawVector().Data
	err := p.buffer.Store(obs, p.lastAction, p.lastLogP, p.lastValue,
		nextStep.Reward, nextStep.Last())
	if err != nil {
		return fmt.Errorf("observe: %v", err)
	}

	p.prevStep = nextStep
	p.acted = false
	return nil
}

// EndEpisode performs the update for the episode that just ended:
// returns are computed and normalized, the loss over the whole episode
// is differentiated once, the solver takes a single step, and the
// episode's experience is discarded.
func (p *PPO) EndEpisode() (agent.Losses, error) {
	defer func() {
		p.started = false
		p.acted = false
	}()

	if p.buffer.Len() == 0 {
		return agent.Losses{}, fmt.Errorf("endEpisode: no steps recorded")
	}
	if err := p.buffer.Validate(); err != nil {
		p.buffer.Clear()
		return agent.Losses{}, fmt.Errorf("endEpisode: %v", err)
	}

	losses, err := p.update()
	p.buffer.Clear()
	if err != nil {
		return agent.Losses{}, fmt.Errorf("endEpisode: %v", err)
	}

	p.episodes++
	return losses, nil
}

// update takes one gradient step using the stored episode
func (p *PPO) update() (agent.Losses, error) {
	returns := DiscountedReturns(p.buffer.Rewards(), p.gamma)
	returns = NormalizeReturns(returns, p.eps)

	t, err := newTape(p.net, p.buffer.Len(), p.loss)
	if err != nil {
		return agent.Losses{}, fmt.Errorf("update: %v", err)
	}
	defer t.close()

	err = t.record(p.buffer.Observations(), p.buffer.Actions(), returns)
	if err != nil {
		return agent.Losses{}, fmt.Errorf("update: %v", err)
	}
	if err := t.run(); err != nil {
		return agent.Losses{}, fmt.Errorf("update: %v", err)
	}
	if err := t.check(p.buffer.LogProbs(), p.buffer.Values()); err != nil {
		return agent.Losses{}, fmt.Errorf("update: %v", err)
	}

	actor, critic, total, err := t.loss.values()
	if err != nil {
		return agent.Losses{}, fmt.Errorf("update: %v", err)
	}

	if err := p.solver.Step(t.model()); err != nil {
		return agent.Losses{}, fmt.Errorf("update: could not step "+
			"solver: %v", err)
	}
	if err := network.Set(p.net, t.net); err != nil {
		return agent.Losses{}, fmt.Errorf("update: %v", err)
	}

	return agent.Losses{Actor: actor, Critic: critic, Total: total}, nil
}

// Pending returns the number of steps stored and awaiting an update
func (p *PPO) Pending() int {
	return p.buffer.Len()
}

// Episodes returns the number of completed updates
func (p *PPO) Episodes() int {
	return p.episodes
}

// Network returns the behaviour network of the agent
func (p *PPO) Network() *network.ActorCritic {
	return p.net
}

// Close releases the resources of the agent
func (p *PPO) Close() error {
	return p.vm.Close()
}

// GobEncode implements the gob.GobEncoder interface. Only the network
// parameters are encoded.
func (p *PPO) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p.net); err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The agent must
// have been created with New, and the decoded parameters must describe
// a network of the same architecture.
func (p *PPO) GobDecode(in []byte) error {
	if p.net == nil {
		return fmt.Errorf("gobDecode: agent must be created with New " +
			"before decoding")
	}

	var decoded network.ActorCritic
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&decoded); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	if err := network.Set(p.net, &decoded); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	return nil
}
