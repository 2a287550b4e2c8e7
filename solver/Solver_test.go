package solver

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalSolvers(t *testing.T) {
	tests := []struct {
		data string
		want Type
		lr   float64
	}{
		{`{"Type": "RMSProp", "Config": {"StepSize": 2.5e-5, "Epsilon": 1e-7, "Rho": 0.9, "Batch": 1}}`,
			RMSProp, 2.5e-5},
		{`{"Type": "Adam", "Config": {"StepSize": 0.001, "Epsilon": 1e-8, "Beta1": 0.9, "Beta2": 0.999, "Batch": 1}}`,
			Adam, 0.001},
		{`{"Type": "Vanilla", "Config": {"StepSize": 0.01, "Batch": 1}}`,
			Vanilla, 0.01},
	}

	for _, test := range tests {
		var s Solver
		if err := json.Unmarshal([]byte(test.data), &s); err != nil {
			t.Fatalf("unmarshal %v: %v", test.data, err)
		}
		if s.Type != test.want {
			t.Errorf("type: want(%v) have(%v)", test.want, s.Type)
		}
		if s.LearningRate() != test.lr {
			t.Errorf("learning rate: want(%v) have(%v)", test.lr,
				s.LearningRate())
		}
		if s.Solver == nil {
			t.Errorf("%v: Gorgonia solver not created", s.Type)
		}
	}
}

func TestUnmarshalUnknownSolver(t *testing.T) {
	var s Solver
	if err := json.Unmarshal([]byte(`{"Type": "Adagrad"}`), &s); err == nil {
		t.Error("expected error for unregistered solver type")
	}
}

func TestWithLearningRate(t *testing.T) {
	s, err := NewDefaultRMSProp(2.5e-5, 1)
	if err != nil {
		t.Fatal(err)
	}

	faster, err := s.WithLearningRate(1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if faster.LearningRate() != 1e-3 {
		t.Errorf("learning rate: want(1e-3) have(%v)", faster.LearningRate())
	}
	if s.LearningRate() != 2.5e-5 {
		t.Errorf("original solver was modified: %v", s.LearningRate())
	}

	if _, err := s.WithLearningRate(0); err == nil {
		t.Error("expected error for non-positive learning rate")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	s, err := NewRMSProp(2.5e-5, 1e-7, 0.9, 1, 5.0)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Solver
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if decoded.Config != s.Config {
		t.Errorf("config: want(%+v) have(%+v)", s.Config, decoded.Config)
	}
}
