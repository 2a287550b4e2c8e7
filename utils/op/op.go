// Package op provides extended Gorgonia graph operations.
package op

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Min returns the element-wise minimum of a and b. If values are equal
// the value of a is returned. Both nodes must have the same shape,
// or b may be a scalar.
func Min(a *G.Node, b *G.Node) (retVal *G.Node, err error) {
	aMask, err := G.Lte(a, b, true)
	if err != nil {
		return nil, err
	}
	aVal, err := G.HadamardProd(a, aMask)
	if err != nil {
		return nil, err
	}

	bMask, err := G.Lt(b, a, true)
	if err != nil {
		return nil, err
	}
	bVal, err := G.HadamardProd(b, bMask)
	if err != nil {
		return nil, err
	}
	return G.Add(aVal, bVal)
}

// LogSumExp calculates the log of the summation of exponentials of
// all logits along the given axis of a matrix. The maximum logit is
// subtracted before exponentiating so that large logits do not
// overflow.
//
// The returned node has one fewer dimension than logits.
func LogSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{byte(along)}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}

// LogSoftmax returns the log of the softmax of a matrix of logits,
// computed row-wise
func LogSoftmax(logits *G.Node) (*G.Node, error) {
	if logits.Dims() != 2 {
		return nil, fmt.Errorf("logSoftmax: logits must be a matrix, got "+
			"%v dimensions", logits.Dims())
	}

	lse := LogSumExp(logits, 1)
	return G.BroadcastSub(logits, lse, nil, []byte{1})
}

// Huber computes the element-wise Huber loss between pred and target:
//
//	0.5 * x²					if |x| <= delta
//	delta * (|x| - 0.5 * delta)	otherwise
//
// where x = pred - target. The gradient flows into both pred and
// target.
func Huber(pred, target *G.Node, delta float64) (*G.Node, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("huber: delta must be positive, got %v",
			delta)
	}
	if !pred.Shape().Eq(target.Shape()) {
		return nil, fmt.Errorf("huber: shape mismatch %v and %v",
			pred.Shape(), target.Shape())
	}

	diff, err := G.Sub(pred, target)
	if err != nil {
		return nil, fmt.Errorf("huber: %v", err)
	}
	absDiff, err := G.Abs(diff)
	if err != nil {
		return nil, fmt.Errorf("huber: %v", err)
	}

	// Split |x| into its quadratic part, at most delta, and the linear
	// remainder
	deltaNode := G.NewConstant(delta)
	quadratic, err := Min(absDiff, deltaNode)
	if err != nil {
		return nil, fmt.Errorf("huber: %v", err)
	}
	linear, err := G.Sub(absDiff, quadratic)
	if err != nil {
		return nil, fmt.Errorf("huber: %v", err)
	}

	sq, err := G.Square(quadratic)
	if err != nil {
		return nil, fmt.Errorf("huber: %v", err)
	}
	sq, err = G.HadamardProd(sq, G.NewConstant(0.5))
	if err != nil {
		return nil, fmt.Errorf("huber: %v", err)
	}
	lin, err := G.HadamardProd(linear, deltaNode)
	if err != nil {
		return nil, fmt.Errorf("huber: %v", err)
	}

	return G.Add(sq, lin)
}
