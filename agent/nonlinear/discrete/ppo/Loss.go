package ppo

import (
	"fmt"

	"github.com/algopapi/RL-implementations/utils/op"
	G "gorgonia.org/gorgonia"
)

// lossConfig holds the coefficients of the actor-critic loss
type lossConfig struct {
	actorWeight  float64
	criticWeight float64
	huberDelta   float64
}

// loss holds the loss nodes of an episode's update
type loss struct {
	actor  *G.Node
	critic *G.Node
	total  *G.Node

	actorVal  G.Value
	criticVal G.Value
	totalVal  G.Value
}

// newLoss adds the actor-critic loss over an episode to the graph of
// its arguments. For each step t, with chosen-action log-probability
// logProbs[t], critic estimate values[t] and normalized return
// returns[t]:
//
//	diff   = returns - values
//	actor  = Σ -logProbs * diff
//	critic = Σ huber(values, returns)
//	total  = actorWeight * actor + criticWeight * critic
//
// The critic estimate is not held constant in diff, so the actor loss
// also sends gradient into the critic head.
func newLoss(logProbs, values, returns *G.Node, c lossConfig) (*loss, error) {
	if !logProbs.Shape().Eq(values.Shape()) ||
		!values.Shape().Eq(returns.Shape()) {
		return nil, fmt.Errorf("newLoss: shape mismatch: log-probabilities "+
			"%v, values %v, returns %v", logProbs.Shape(), values.Shape(),
			returns.Shape())
	}

	diff, err := G.Sub(returns, values)
	if err != nil {
		return nil, fmt.Errorf("newLoss: advantage: %v", err)
	}

	actor, err := G.HadamardProd(logProbs, diff)
	if err != nil {
		return nil, fmt.Errorf("newLoss: actor: %v", err)
	}
	if actor, err = G.Sum(actor); err != nil {
		return nil, fmt.Errorf("newLoss: actor: %v", err)
	}
	if actor, err = G.Neg(actor); err != nil {
		return nil, fmt.Errorf("newLoss: actor: %v", err)
	}

	critic, err := op.Huber(values, returns, c.huberDelta)
	if err != nil {
		return nil, fmt.Errorf("newLoss: critic: %v", err)
	}
	if critic, err = G.Sum(critic); err != nil {
		return nil, fmt.Errorf("newLoss: critic: %v", err)
	}

	weightedActor, err := G.Mul(G.NewConstant(c.actorWeight), actor)
	if err != nil {
		return nil, fmt.Errorf("newLoss: total: %v", err)
	}
	weightedCritic, err := G.Mul(G.NewConstant(c.criticWeight), critic)
	if err != nil {
		return nil, fmt.Errorf("newLoss: total: %v", err)
	}
	total, err := G.Add(weightedActor, weightedCritic)
	if err != nil {
		return nil, fmt.Errorf("newLoss: total: %v", err)
	}

	l := &loss{actor: actor, critic: critic, total: total}
	G.Read(l.actor, &l.actorVal)
	G.Read(l.critic, &l.criticVal)
	G.Read(l.total, &l.totalVal)

	return l, nil
}

// values returns the losses computed by the last run of the graph
func (l *loss) values() (actor, critic, total float64, err error) {
	if l.actorVal == nil || l.criticVal == nil || l.totalVal == nil {
		return 0, 0, 0, fmt.Errorf("values: loss graph has not been run")
	}

	scalars := make([]float64, 3)
	for i, v := range []G.Value{l.actorVal, l.criticVal, l.totalVal} {
		f, ok := v.Data().(float64)
		if !ok {
			return 0, 0, 0, fmt.Errorf("values: expected scalar loss, "+
				"got %T", v.Data())
		}
		scalars[i] = f
	}
	return scalars[0], scalars[1], scalars[2], nil
}
