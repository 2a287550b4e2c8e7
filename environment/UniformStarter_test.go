package environment

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: -0.05, Max: 0.05}, {Min: 1, Max: 2}}

	a, err := NewUniformStarter(bounds, 7)
	if err != nil {
		t.Fatalf("newUniformStarter: %v", err)
	}
	b, err := NewUniformStarter(bounds, 7)
	if err != nil {
		t.Fatalf("newUniformStarter: %v", err)
	}

	for i := 0; i < 100; i++ {
		sa, sb := a.Start(), b.Start()
		for j, bound := range bounds {
			if v := sa.AtVec(j); v < bound.Min || v > bound.Max {
				t.Fatalf("feature %d: %v outside %v", j, v, bound)
			}
			if sa.AtVec(j) != sb.AtVec(j) {
				t.Fatalf("equal seeds drew different start states")
			}
		}
	}

	if _, err := NewUniformStarter(nil, 1); err == nil {
		t.Error("expected error for empty bounds")
	}
	if _, err := NewUniformStarter([]r1.Interval{{Min: 1, Max: 0}}, 1); err == nil {
		t.Error("expected error for inverted bounds")
	}
}
