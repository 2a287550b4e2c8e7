// Package trajectory implements a buffer which stores a single episode
// of on-policy experience
package trajectory

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the parallel sequences stored in a
// Buffer do not describe the same number of steps
var ErrLengthMismatch = errors.New("trajectory sequences differ in length")

// Buffer stores the experience of the current episode as parallel
// sequences: one entry per step in each of observations, actions,
// action log-probabilities, state values, rewards, and done flags.
// Entries at index i all describe step i of the episode.
//
// A Buffer grows without bound and should be cleared after each
// episode's update.
type Buffer struct {
	features int

	obsBuffer     []float64
	actBuffer     []int
	logProbBuffer []float64
	valBuffer     []float64
	rewBuffer     []float64
	doneBuffer    []bool
}

// New creates and returns a new Buffer for observations with the
// given number of features
func New(features int) *Buffer {
	return &Buffer{features: features}
}

// Features returns the number of features of a stored observation
func (b *Buffer) Features() int {
	return b.features
}

// Store appends a single step to the Buffer. The observation obs is the
// one the action was selected in; logProb and value are the network's
// outputs for that observation; reward and done describe the resulting
// transition.
func (b *Buffer) Store(obs []float64, action int, logProb, value,
	reward float64, done bool) error {
	if len(obs) != b.features {
		return fmt.Errorf("store: illegal obs length \n\twant(%v)\n\thave(%v)",
			b.features, len(obs))
	}
	if action < 0 {
		return fmt.Errorf("store: illegal action %v", action)
	}
	if b.Len() > 0 && b.doneBuffer[b.Len()-1] {
		return fmt.Errorf("store: cannot store a step after the terminal " +
			"step of an episode")
	}

	b.obsBuffer = append(b.obsBuffer, obs...)
	b.actBuffer = append(b.actBuffer, action)
	b.logProbBuffer = append(b.logProbBuffer, logProb)
	b.valBuffer = append(b.valBuffer, value)
	b.rewBuffer = append(b.rewBuffer, reward)
	b.doneBuffer = append(b.doneBuffer, done)

	return nil
}

// Len returns the number of steps stored
func (b *Buffer) Len() int {
	return len(b.rewBuffer)
}

// Validate returns ErrLengthMismatch if any of the parallel sequences
// differ in length, and an error if any step other than the last is
// flagged as done.
func (b *Buffer) Validate() error {
	n := b.Len()
	lengths := []int{
		len(b.actBuffer),
		len(b.logProbBuffer),
		len(b.valBuffer),
		len(b.doneBuffer),
		len(b.obsBuffer) / b.features,
	}
	for _, l := range lengths {
		if l != n {
			return fmt.Errorf("validate: %w: have %v rewards but a sequence "+
				"of %v", ErrLengthMismatch, n, l)
		}
	}
	if len(b.obsBuffer) != n*b.features {
		return fmt.Errorf("validate: %w: %v observation values for %v "+
			"steps of %v features", ErrLengthMismatch, len(b.obsBuffer), n,
			b.features)
	}

	for i := 0; i < n-1; i++ {
		if b.doneBuffer[i] {
			return fmt.Errorf("validate: step %v of %v is terminal", i, n)
		}
	}
	return nil
}

// Observations returns the stored observations back to back. The
// returned slice must not be modified.
func (b *Buffer) Observations() []float64 {
	return b.obsBuffer
}

// Actions returns the stored actions
func (b *Buffer) Actions() []int {
	return b.actBuffer
}

// LogProbs returns the stored log-probabilities of the selected actions
func (b *Buffer) LogProbs() []float64 {
	return b.logProbBuffer
}

// Values returns the stored state value estimates
func (b *Buffer) Values() []float64 {
	return b.valBuffer
}

// Rewards returns the stored rewards
func (b *Buffer) Rewards() []float64 {
	return b.rewBuffer
}

// Dones returns the stored done flags
func (b *Buffer) Dones() []bool {
	return b.doneBuffer
}

// Clear removes all steps from the Buffer, keeping allocated storage
func (b *Buffer) Clear() {
	b.obsBuffer = b.obsBuffer[:0]
	b.actBuffer = b.actBuffer[:0]
	b.logProbBuffer = b.logProbBuffer[:0]
	b.valBuffer = b.valBuffer[:0]
	b.rewBuffer = b.rewBuffer[:0]
	b.doneBuffer = b.doneBuffer[:0]
}
