package ppo

import (
	"fmt"

	"github.com/algopapi/RL-implementations/network"
	"github.com/algopapi/RL-implementations/utils/floatutils"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// integrityTolerance is the largest difference allowed between the
// log-probabilities and values recorded while acting and those
// recomputed for the update
const integrityTolerance = 1e-6

// tape records the computations of a whole episode so that they can be
// differentiated once, when the episode ends.
//
// The behaviour network runs one observation at a time in its own
// graph. At the end of an episode, the tape clones the behaviour
// network into a fresh graph with one row per step, rebuilds the
// chosen-action log-probabilities and values for every step, attaches
// the loss, and binds gradients. A tape is used for a single update
// and must be closed afterwards.
type tape struct {
	net     *network.ActorCritic
	vm      G.VM
	steps   int
	actions int

	actionMask *G.Node // steps x actions one-hot encoding of actions
	returns    *G.Node
	logProbs   *G.Node // chosen-action log-probabilities
	loss       *loss

	logProbsVal G.Value
	valuesVal   G.Value
}

// newTape returns a new tape for an episode of length steps, with
// parameters copied from behaviour
func newTape(behaviour *network.ActorCritic, steps int,
	c lossConfig) (*tape, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("newTape: episode must have at least one "+
			"step, got %v", steps)
	}

	net, err := behaviour.ActorCriticWithBatch(steps)
	if err != nil {
		return nil, fmt.Errorf("newTape: could not clone network: %v", err)
	}
	g := net.Graph()

	actionMask := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(steps, net.Actions()),
		G.WithName("ActionMask"),
		G.WithInit(G.Zeroes()),
	)
	returns := G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(steps),
		G.WithName("Returns"),
		G.WithInit(G.Zeroes()),
	)

	// Select the log-probability of the chosen action in each row
	logProbs, err := G.HadamardProd(net.LogProbabilities(), actionMask)
	if err != nil {
		return nil, fmt.Errorf("newTape: %v", err)
	}
	if logProbs, err = G.Sum(logProbs, 1); err != nil {
		return nil, fmt.Errorf("newTape: %v", err)
	}

	l, err := newLoss(logProbs, net.Value(), returns, c)
	if err != nil {
		return nil, fmt.Errorf("newTape: %v", err)
	}

	if _, err := G.Grad(l.total, net.Learnables()...); err != nil {
		return nil, fmt.Errorf("newTape: could not compute gradient: %v",
			err)
	}

	t := &tape{
		net:        net,
		steps:      steps,
		actions:    net.Actions(),
		actionMask: actionMask,
		returns:    returns,
		logProbs:   logProbs,
		loss:       l,
	}
	G.Read(t.logProbs, &t.logProbsVal)
	G.Read(net.Value(), &t.valuesVal)

	t.vm = G.NewTapeMachine(g, G.BindDualValues(net.Learnables()...))
	return t, nil
}

// record sets the observations, actions, and normalized returns of the
// episode as inputs to the tape
func (t *tape) record(obs []float64, actions []int,
	returns []float64) error {
	if len(actions) != t.steps || len(returns) != t.steps {
		return fmt.Errorf("record: want %v actions and returns, got %v "+
			"and %v", t.steps, len(actions), len(returns))
	}

	if err := t.net.SetInput(obs); err != nil {
		return fmt.Errorf("record: %v", err)
	}

	mask := make([]float64, t.steps*t.actions)
	for i, a := range actions {
		if a < 0 || a >= t.actions {
			return fmt.Errorf("record: action %v at step %v not in [0, %v)",
				a, i, t.actions)
		}
		mask[i*t.actions+a] = 1.0
	}
	maskTensor := tensor.NewDense(
		tensor.Float64,
		t.actionMask.Shape(),
		tensor.WithBacking(mask),
	)
	if err := G.Let(t.actionMask, maskTensor); err != nil {
		return fmt.Errorf("record: %v", err)
	}

	returnsTensor := tensor.NewDense(
		tensor.Float64,
		t.returns.Shape(),
		tensor.WithBacking(append([]float64(nil), returns...)),
	)
	if err := G.Let(t.returns, returnsTensor); err != nil {
		return fmt.Errorf("record: %v", err)
	}
	return nil
}

// run computes the losses and their gradients with respect to the
// tape's network parameters
func (t *tape) run() error {
	if err := t.vm.RunAll(); err != nil {
		return fmt.Errorf("run: %v", err)
	}
	return nil
}

// check ensures that the log-probabilities and values recomputed by the
// tape match those recorded while acting. A mismatch means the episode
// was not recorded with the current parameters.
func (t *tape) check(logProbs, values []float64) error {
	recomputed, ok := valueData(t.logProbsVal)
	if !ok || !floatutils.EqualWithin(recomputed, logProbs,
		integrityTolerance) {
		return fmt.Errorf("check: recorded log-probabilities do not match "+
			"recomputed log-probabilities\n\trecorded(%v)\n\trecomputed(%v)",
			logProbs, t.logProbsVal)
	}

	recomputed, ok = valueData(t.valuesVal)
	if !ok || !floatutils.EqualWithin(recomputed, values,
		integrityTolerance) {
		return fmt.Errorf("check: recorded values do not match recomputed "+
			"values\n\trecorded(%v)\n\trecomputed(%v)", values, t.valuesVal)
	}
	return nil
}

// model returns the tape's network parameters along with the gradients
// computed by the last run
func (t *tape) model() []G.ValueGrad {
	return t.net.Model()
}

// close releases the resources of the tape
func (t *tape) close() error {
	return t.vm.Close()
}

// valueData returns the backing data of a Gorgonia Value holding a
// vector or scalar
func valueData(v G.Value) ([]float64, bool) {
	if v == nil {
		return nil, false
	}
	switch data := v.Data().(type) {
	case []float64:
		return data, true
	case float64:
		return []float64{data}, true
	}
	return nil, false
}
