package initwfn

import (
	"encoding/json"
	"testing"
)

func TestMarshalRoundTrip(t *testing.T) {
	inits := []*InitWFn{
		NewHeU(1.0),
		NewHeN(2.0),
		NewGlorotU(1.0),
		NewGlorotN(0.5),
		NewZeroes(),
	}

	for _, init := range inits {
		data, err := json.Marshal(init)
		if err != nil {
			t.Fatalf("marshal %v: %v", init, err)
		}

		var decoded InitWFn
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if decoded.Type != init.Type {
			t.Errorf("type: want(%v) have(%v)", init.Type, decoded.Type)
		}
		if decoded.Config != init.Config {
			t.Errorf("config: want(%v) have(%v)", init.Config, decoded.Config)
		}
		if decoded.InitWFn() == nil {
			t.Errorf("%v: decoded InitWFn was not created", init.Type)
		}
	}
}

func TestUnmarshalUnknownType(t *testing.T) {
	var i InitWFn
	err := json.Unmarshal([]byte(`{"Type": "Orthogonal", "Config": {}}`), &i)
	if err == nil {
		t.Error("expected error for unregistered type")
	}
}
