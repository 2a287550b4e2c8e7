package environment

import (
	"errors"
	"fmt"
)

// ErrNotReset is returned when an environment is stepped before it has
// been reset, or after its current episode has already ended.
var ErrNotReset = errors.New("environment must be reset before stepping")

// IllegalActionError is returned when an environment is stepped with an
// action that lies outside its action specification.
type IllegalActionError struct {
	Action     []float64
	LowerBound float64
	UpperBound float64
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %v ∉ [%v, %v]", e.Action,
		e.LowerBound, e.UpperBound)
}

// IsIllegalAction returns whether err is, or wraps, an
// *IllegalActionError
func IsIllegalAction(err error) bool {
	var target *IllegalActionError
	return errors.As(err, &target)
}
