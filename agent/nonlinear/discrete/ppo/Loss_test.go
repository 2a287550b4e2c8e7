package ppo

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func vectorNode(g *G.ExprGraph, name string, values []float64) *G.Node {
	return G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(len(values)),
		G.WithName(name),
		G.WithValue(tensor.New(
			tensor.WithShape(len(values)),
			tensor.WithBacking(append([]float64(nil), values...)),
		)),
	)
}

func TestLoss(t *testing.T) {
	g := G.NewGraph()
	logProbs := vectorNode(g, "logProbs", []float64{-0.5, -1.0, -2.0})
	values := vectorNode(g, "values", []float64{0.2, -0.3, 3.0})
	returns := vectorNode(g, "returns", []float64{1.0, -1.0, 0.5})

	c := lossConfig{actorWeight: 1.0, criticWeight: 0.5, huberDelta: 1.0}
	l, err := newLoss(logProbs, values, returns, c)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := G.Grad(l.total, logProbs, values); err != nil {
		t.Fatal(err)
	}
	vm := G.NewTapeMachine(g, G.BindDualValues(logProbs, values))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}

	actor, critic, total, err := l.values()
	if err != nil {
		t.Fatal(err)
	}

	// diff = [0.8, -0.7, -2.5]
	// actor = -(-0.4 + 0.7 + 5.0)
	// critic = 0.5*0.64 + 0.5*0.49 + (2.5 - 0.5)
	const tol = 1e-12
	if math.Abs(actor-(-5.3)) > tol {
		t.Errorf("actor loss: want(-5.3) have(%v)", actor)
	}
	if math.Abs(critic-2.565) > tol {
		t.Errorf("critic loss: want(2.565) have(%v)", critic)
	}
	if math.Abs(total-(-4.0175)) > tol {
		t.Errorf("total loss: want(-4.0175) have(%v)", total)
	}

	// The critic estimate receives gradient from both losses
	wantGrads := map[*G.Node][]float64{
		logProbs: {-0.8, 0.7, 2.5},
		values:   {-0.9, -0.65, -1.5},
	}
	for node, want := range wantGrads {
		grad, err := node.Grad()
		if err != nil {
			t.Fatalf("%v: %v", node.Name(), err)
		}
		have := grad.Data().([]float64)
		for i := range want {
			if math.Abs(have[i]-want[i]) > tol {
				t.Errorf("gradient of %v[%v]: want(%v) have(%v)",
					node.Name(), i, want[i], have[i])
			}
		}
	}
}

func TestLossShapeMismatch(t *testing.T) {
	g := G.NewGraph()
	logProbs := vectorNode(g, "logProbs", []float64{-0.5, -1.0})
	values := vectorNode(g, "values", []float64{0.2})
	returns := vectorNode(g, "returns", []float64{1.0, -1.0})

	c := lossConfig{actorWeight: 1.0, criticWeight: 0.5, huberDelta: 1.0}
	if _, err := newLoss(logProbs, values, returns, c); err == nil {
		t.Error("expected error for mismatched shapes")
	}
}
