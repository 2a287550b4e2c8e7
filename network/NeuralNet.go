// Package network implements neural networks built on Gorgonia
// computational graphs
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NeuralNet is a neural network whose forward pass lives in a single
// computational graph. The graph is run by a VM owned by the caller.
type NeuralNet interface {
	Graph() *G.ExprGraph
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	SetInput([]float64) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
}

// Set sets the weights of dest to be equal to the weights of source.
// Both networks must have the same architecture, but may differ in
// batch size.
func Set(dest, source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: cannot set %v learnables from %v learnables",
			len(nodes), len(sourceNodes))
	}

	for i, destLearnable := range nodes {
		if !destLearnable.Shape().Eq(sourceNodes[i].Shape()) {
			return fmt.Errorf("set: learnable %v shape mismatch %v and %v",
				i, destLearnable.Shape(), sourceNodes[i].Shape())
		}

		sourceWeights, ok := sourceNodes[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("set: learnable %v of source has no value", i)
		}

		if err := G.Let(destLearnable, sourceWeights.Clone().(*tensor.Dense)); err != nil {
			return fmt.Errorf("set: %v", err)
		}
	}
	return nil
}
