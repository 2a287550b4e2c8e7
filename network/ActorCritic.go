package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/algopapi/RL-implementations/utils/op"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ActorCritic is a policy-value network: a shared trunk of fully
// connected layers feeding two heads. The actor head outputs a
// categorical distribution over actions and the critic head outputs a
// single state value estimate.
//
// Given a batch of n observations, Probabilities() and
// LogProbabilities() are n x actions matrices and Value() is a vector
// of length n.
type ActorCritic struct {
	g         *G.ExprGraph
	input     *G.Node
	trunk     []*fcLayer
	actor     *fcLayer
	critic    *fcLayer
	numInputs int
	actions   int
	batchSize int

	// Data needed for gobbing
	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	logProbs    *G.Node
	probs       *G.Node
	value       *G.Node
	logProbsVal G.Value
	probsVal    G.Value
	valueVal    G.Value
}

// NewActorCritic creates and returns a new ActorCritic network in the
// graph g.
//
// The trunk has len(hiddenSizes) layers. For index i, hiddenSizes[i]
// is the number of nodes in hidden layer i; biases[i] is true if the
// hidden layer has a bias unit; and activations[i] is the activation
// function of hidden layer i. Both heads are linear layers with bias
// units. The parameter init determines the weight initialization
// scheme of all weights. Biases are initialized to 0.
func NewActorCritic(features, batch, actions int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (*ActorCritic, error) {
	net := &ActorCritic{}
	err := net.build(features, batch, actions, g, hiddenSizes, biases, init,
		activations)
	if err != nil {
		return nil, fmt.Errorf("newActorCritic: %v", err)
	}
	return net, nil
}

// build constructs the network in place so that the values read from
// the graph are stored in a's fields
func (a *ActorCritic) build(features, batch, actions int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) error {
	if features <= 0 || batch <= 0 {
		return fmt.Errorf("build: features and batch must be positive, "+
			"got features=%v batch=%v", features, batch)
	}
	if actions < 1 {
		return fmt.Errorf("build: need at least one action, got %v",
			actions)
	}
	if len(hiddenSizes) == 0 {
		return fmt.Errorf("build: need at least one hidden layer")
	}

	// Ensure we have one activation per layer
	if len(hiddenSizes) != len(activations) {
		msg := "build: invalid number of activations\n\twant(%d)" +
			"\n\thave(%d)"
		return fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}

	// Ensure one bias bool per layer
	if len(hiddenSizes) != len(biases) {
		msg := "build: invalid number of biases\n\twant(%d)" +
			"\n\thave(%d)"
		return fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	trunk := make([]*fcLayer, len(hiddenSizes))
	in := features
	for i, out := range hiddenSizes {
		if out <= 0 {
			return fmt.Errorf("build: hidden layer %v has non-positive "+
				"size %v", i, out)
		}
		trunk[i] = newFCLayer(g, in, out, biases[i], activations[i], init,
			fmt.Sprintf("L%d", i))
		in = out
	}

	*a = ActorCritic{
		g:           g,
		input:       input,
		trunk:       trunk,
		actor:       newFCLayer(g, in, actions, true, Identity(), init, "Actor"),
		critic:      newFCLayer(g, in, 1, true, Identity(), init, "Critic"),
		numInputs:   features,
		actions:     actions,
		batchSize:   batch,
		hiddenSizes: hiddenSizes,
		biases:      biases,
		activations: activations,
	}

	if err := a.fwd(); err != nil {
		return fmt.Errorf("build: could not compute forward pass: %v", err)
	}
	return nil
}

// fwd adds the forward pass of both heads to the graph
func (a *ActorCritic) fwd() error {
	hidden := a.input
	var err error
	for i, l := range a.trunk {
		if hidden, err = l.fwd(hidden); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}

	logits, err := a.actor.fwd(hidden)
	if err != nil {
		return fmt.Errorf("fwd: actor head: %v", err)
	}
	if a.logProbs, err = op.LogSoftmax(logits); err != nil {
		return fmt.Errorf("fwd: actor head: %v", err)
	}
	if a.probs, err = G.Exp(a.logProbs); err != nil {
		return fmt.Errorf("fwd: actor head: %v", err)
	}

	value, err := a.critic.fwd(hidden)
	if err != nil {
		return fmt.Errorf("fwd: critic head: %v", err)
	}
	if a.value, err = G.Reshape(value, tensor.Shape{a.batchSize}); err != nil {
		return fmt.Errorf("fwd: critic head: %v", err)
	}

	G.Read(a.logProbs, &a.logProbsVal)
	G.Read(a.probs, &a.probsVal)
	G.Read(a.value, &a.valueVal)

	return nil
}

// Graph returns the computational graph of the network
func (a *ActorCritic) Graph() *G.ExprGraph {
	return a.g
}

// CloneWithBatch returns a copy of the network with a new input batch
// size in a new computational graph
func (a *ActorCritic) CloneWithBatch(batchSize int) (NeuralNet, error) {
	return a.cloneWithBatch(batchSize)
}

func (a *ActorCritic) cloneWithBatch(batchSize int) (*ActorCritic, error) {
	clone, err := NewActorCritic(a.numInputs, batchSize, a.actions,
		G.NewGraph(), a.hiddenSizes, a.biases, G.Zeroes(), a.activations)
	if err != nil {
		return nil, fmt.Errorf("cloneWithBatch: %v", err)
	}

	if err := Set(clone, a); err != nil {
		return nil, fmt.Errorf("cloneWithBatch: %v", err)
	}
	return clone, nil
}

// ActorCriticWithBatch clones the network with a new batch size,
// keeping the concrete type
func (a *ActorCritic) ActorCriticWithBatch(batchSize int) (*ActorCritic,
	error) {
	return a.cloneWithBatch(batchSize)
}

// BatchSize returns the batch size of inputs to the network
func (a *ActorCritic) BatchSize() int {
	return a.batchSize
}

// Features returns the number of features in a single observation
func (a *ActorCritic) Features() int {
	return a.numInputs
}

// Actions returns the number of actions the actor head chooses between
func (a *ActorCritic) Actions() int {
	return a.actions
}

// SetInput sets the value of the input node before running the forward
// pass. The input should hold BatchSize() observations back to back.
func (a *ActorCritic) SetInput(input []float64) error {
	if len(input) != a.numInputs*a.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", a.numInputs*a.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(a.input.Shape()...),
	)
	return G.Let(a.input, inputTensor)
}

// Learnables returns the learnable nodes of the network: the trunk
// layers in order followed by the actor and critic heads
func (a *ActorCritic) Learnables() G.Nodes {
	// Lazy instantiation
	if a.learnables == nil {
		learnables := make(G.Nodes, 0, 2*(len(a.trunk)+2))
		for _, l := range a.trunk {
			learnables = append(learnables, l.learnables()...)
		}
		learnables = append(learnables, a.actor.learnables()...)
		learnables = append(learnables, a.critic.learnables()...)
		a.learnables = learnables
	}
	return a.learnables
}

// Model returns the learnables nodes with their gradients.
func (a *ActorCritic) Model() []G.ValueGrad {
	// Lazy instantiation
	if a.model == nil {
		learnables := a.Learnables()
		a.model = make([]G.ValueGrad, len(learnables))
		for i, node := range learnables {
			a.model[i] = node
		}
	}
	return a.model
}

// Probabilities returns the node holding action probabilities
func (a *ActorCritic) Probabilities() *G.Node {
	return a.probs
}

// LogProbabilities returns the node holding action log-probabilities
func (a *ActorCritic) LogProbabilities() *G.Node {
	return a.logProbs
}

// Value returns the node holding state value estimates
func (a *ActorCritic) Value() *G.Node {
	return a.value
}

// ProbabilitiesVal returns the action probabilities computed by the
// last run of the graph, row-major, or nil if the graph has not been
// run
func (a *ActorCritic) ProbabilitiesVal() []float64 {
	return valueData(a.probsVal)
}

// LogProbabilitiesVal returns the action log-probabilities computed by
// the last run of the graph, row-major, or nil if the graph has not
// been run
func (a *ActorCritic) LogProbabilitiesVal() []float64 {
	return valueData(a.logProbsVal)
}

// ValueVal returns the state values computed by the last run of the
// graph, or nil if the graph has not been run
func (a *ActorCritic) ValueVal() []float64 {
	return valueData(a.valueVal)
}

// valueData copies the backing data of a Gorgonia Value
func valueData(v G.Value) []float64 {
	if v == nil {
		return nil
	}
	switch data := v.Data().(type) {
	case []float64:
		return append([]float64(nil), data...)
	case float64:
		return []float64{data}
	}
	return nil
}

// GobEncode implements the gob.GobEncoder interface
func (a *ActorCritic) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(a.numInputs); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode features: %v",
			err)
	}
	if err := enc.Encode(a.actions); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode actions: %v",
			err)
	}
	if err := enc.Encode(a.hiddenSizes); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode hidden "+
			"sizes: %v", err)
	}
	if err := enc.Encode(a.biases); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode biases: %v", err)
	}
	if err := enc.Encode(a.activations); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode "+
			"activations: %v", err)
	}

	for i, node := range a.Learnables() {
		weights := valueData(node.Value())
		if weights == nil {
			return nil, fmt.Errorf("gobEncode: learnable %v has no value", i)
		}
		if err := enc.Encode(weights); err != nil {
			return nil, fmt.Errorf("gobEncode: could not encode "+
				"learnable %v: %v", i, err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// network has batch size 1 and lives in a new computational graph.
func (a *ActorCritic) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var features, actions int
	if err := dec.Decode(&features); err != nil {
		return fmt.Errorf("gobDecode: could not decode features: %v", err)
	}
	if err := dec.Decode(&actions); err != nil {
		return fmt.Errorf("gobDecode: could not decode actions: %v", err)
	}

	var hiddenSizes []int
	if err := dec.Decode(&hiddenSizes); err != nil {
		return fmt.Errorf("gobDecode: could not decode hidden sizes: %v",
			err)
	}

	var biases []bool
	if err := dec.Decode(&biases); err != nil {
		return fmt.Errorf("gobDecode: could not decode biases: %v", err)
	}

	var activations []*Activation
	if err := dec.Decode(&activations); err != nil {
		return fmt.Errorf("gobDecode: could not decode activations: %v",
			err)
	}

	err := a.build(features, 1, actions, G.NewGraph(), hiddenSizes, biases,
		G.Zeroes(), activations)
	if err != nil {
		return fmt.Errorf("gobDecode: could not construct network: %v", err)
	}

	for i, node := range a.Learnables() {
		var weights []float64
		if err := dec.Decode(&weights); err != nil {
			return fmt.Errorf("gobDecode: could not decode learnable %v: %v",
				i, err)
		}
		if len(weights) != node.Shape().TotalSize() {
			return fmt.Errorf("gobDecode: learnable %v has %v weights, "+
				"want %v", i, len(weights), node.Shape().TotalSize())
		}

		t := tensor.New(
			tensor.WithShape(node.Shape()...),
			tensor.WithBacking(weights),
		)
		if err := G.Let(node, t); err != nil {
			return fmt.Errorf("gobDecode: could not set learnable %v: %v",
				i, err)
		}
	}
	return nil
}
