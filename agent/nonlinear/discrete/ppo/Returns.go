package ppo

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MachineEpsilon is the difference between 1 and the next larger
// float64. It keeps return normalization finite when all returns of an
// episode are equal.
var MachineEpsilon = math.Nextafter(1.0, 2.0) - 1.0

// DiscountedReturns computes the discounted return of each step of an
// episode by accumulating rewards backwards in time:
//
//	G[t] = r[t] + gamma * G[t+1],	G[T] = 0
//
// The episode is assumed to end after the last reward, so nothing is
// bootstrapped. The returned slice has the same length as rewards and
// is nil if rewards is empty.
func DiscountedReturns(rewards []float64, gamma float64) []float64 {
	if len(rewards) == 0 {
		return nil
	}

	returns := make([]float64, len(rewards))
	acc := 0.0
	for t := len(rewards) - 1; t >= 0; t-- {
		acc = rewards[t] + gamma*acc
		returns[t] = acc
	}
	return returns
}

// NormalizeReturns returns a copy of returns with the population mean
// subtracted, divided by the population standard deviation plus eps.
// A single return, or returns which are all equal, normalize to 0.
func NormalizeReturns(returns []float64, eps float64) []float64 {
	if len(returns) == 0 {
		return nil
	}

	mean := stat.Mean(returns, nil)
	std := math.Sqrt(stat.Moment(2, returns, nil))

	normalized := make([]float64, len(returns))
	copy(normalized, returns)
	floats.AddConst(-mean, normalized)
	floats.Scale(1/(std+eps), normalized)

	return normalized
}
