package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match uuper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NumActions returns the number of discrete actions described by a
// one-dimensional discrete action Spec. Actions are the integers in
// [LowerBound, UpperBound].
func NumActions(s Spec) (int, error) {
	if s.Type != Action {
		return 0, fmt.Errorf("numActions: spec does not describe actions")
	}
	if s.Cardinality != Discrete {
		return 0, fmt.Errorf("numActions: actions must be discrete, "+
			"got %v", s.Cardinality)
	}
	if s.Shape.Len() != 1 {
		return 0, fmt.Errorf("numActions: actions must be 1-dimensional, "+
			"got %v dimensions", s.Shape.Len())
	}

	lower := int(s.LowerBound.AtVec(0))
	upper := int(s.UpperBound.AtVec(0))
	if lower != 0 {
		return 0, fmt.Errorf("numActions: discrete actions must start at "+
			"0, got %v", lower)
	}
	return upper - lower + 1, nil
}

// ValidateAction returns an *IllegalActionError if the action is not a
// legal action for the discrete action Spec s
func ValidateAction(s Spec, action mat.Vector) error {
	if action == nil || action.Len() != s.Shape.Len() {
		var data []float64
		if action != nil {
			data = mat.Col(nil, 0, action)
		}
		return &IllegalActionError{
			Action:     data,
			LowerBound: s.LowerBound.AtVec(0),
			UpperBound: s.UpperBound.AtVec(0),
		}
	}

	for i := 0; i < action.Len(); i++ {
		a := action.AtVec(i)
		outOfBounds := a < s.LowerBound.AtVec(i) || a > s.UpperBound.AtVec(i)
		fractional := s.Cardinality == Discrete && a != float64(int(a))
		if outOfBounds || fractional {
			return &IllegalActionError{
				Action:     mat.Col(nil, 0, action),
				LowerBound: s.LowerBound.AtVec(i),
				UpperBound: s.UpperBound.AtVec(i),
			}
		}
	}
	return nil
}
