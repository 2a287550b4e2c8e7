package op

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestHuber(t *testing.T) {
	g := G.NewGraph()
	pred := G.NewVector(g, tensor.Float64, G.WithShape(4), G.WithName("pred"),
		G.WithValue(tensor.New(tensor.WithBacking([]float64{0, 0.5, 3, -2}))))
	target := G.NewVector(g, tensor.Float64, G.WithShape(4),
		G.WithName("target"),
		G.WithValue(tensor.New(tensor.WithBacking([]float64{0, 0, 0, 0}))))

	loss, err := Huber(pred, target, 1.0)
	if err != nil {
		t.Fatalf("huber: %v", err)
	}
	var lossVal G.Value
	G.Read(loss, &lossVal)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []float64{0, 0.125, 2.5, 1.5}
	got := lossVal.Data().([]float64)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("huber %d: want(%v) have(%v)", i, want[i], got[i])
		}
	}

	if _, err := Huber(pred, target, 0); err == nil {
		t.Error("expected error for non-positive delta")
	}
}

func TestLogSoftmax(t *testing.T) {
	g := G.NewGraph()
	logits := G.NewMatrix(g, tensor.Float64, G.WithShape(2, 3),
		G.WithName("logits"),
		G.WithValue(tensor.New(tensor.WithShape(2, 3),
			tensor.WithBacking([]float64{1, 2, 3, 1000, 1000, 1000}))))

	logProbs, err := LogSoftmax(logits)
	if err != nil {
		t.Fatalf("logSoftmax: %v", err)
	}
	var logProbsVal G.Value
	G.Read(logProbs, &logProbsVal)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := logProbsVal.Data().([]float64)
	for row := 0; row < 2; row++ {
		sum := 0.0
		for col := 0; col < 3; col++ {
			p := math.Exp(got[row*3+col])
			if math.IsNaN(p) {
				t.Fatalf("row %d: probability is NaN", row)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d: probabilities sum to %v", row, sum)
		}
	}
	if math.Abs(got[3]-math.Log(1.0/3)) > 1e-9 {
		t.Errorf("equal logits: want(%v) have(%v)", math.Log(1.0/3), got[3])
	}
}
