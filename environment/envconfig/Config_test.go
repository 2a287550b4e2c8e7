package envconfig

import (
	"encoding/json"
	"testing"
)

func TestCreate(t *testing.T) {
	var c Config
	data := []byte(`{"Environment": "Cartpole", "Task": "Balance", ` +
		`"EpisodeCutoff": 200, "Discount": 0.99}`)
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatal(err)
	}

	e, step, err := c.Create(3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !step.First() {
		t.Errorf("first timestep should be of type First, got %v",
			step.StepType)
	}
	if e.ObservationSpec().Shape.Len() != 4 {
		t.Errorf("observation features: want(4) have(%v)",
			e.ObservationSpec().Shape.Len())
	}
}

func TestCreateUnknown(t *testing.T) {
	tests := []Config{
		NewConfig("Acrobot", Balance, 10, 1.0),
		NewConfig(Cartpole, "SwingUp", 10, 1.0),
	}

	for _, c := range tests {
		if _, _, err := c.Create(0); err == nil {
			t.Errorf("config %v: expected error", c)
		}
	}
}
