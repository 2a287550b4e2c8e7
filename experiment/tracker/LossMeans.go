package tracker

import (
	"fmt"
	"path/filepath"
)

// LossMeans records the actor and critic losses of each update and
// keeps a separate running mean for each. Every recorded pair is kept
// so that it can be dumped to disk.
type LossMeans struct {
	actor  mean
	critic mean

	actorLosses  []float64
	criticLosses []float64

	dir string
}

// mean is an incremental mean accumulator
type mean struct {
	n     int
	value float64
}

func (m *mean) add(x float64) {
	m.n++
	m.value += (x - m.value) / float64(m.n)
}

// NewLossMeans returns a new LossMeans which saves its data to dir
func NewLossMeans(dir string) *LossMeans {
	return &LossMeans{dir: dir}
}

// RecordLoss records the actor and critic losses of a single update
func (l *LossMeans) RecordLoss(actor, critic float64) error {
	l.actor.add(actor)
	l.critic.add(critic)
	l.actorLosses = append(l.actorLosses, actor)
	l.criticLosses = append(l.criticLosses, critic)
	return nil
}

// Means returns the running means of the actor and critic losses since
// the last Reset
func (l *LossMeans) Means() (actor, critic float64) {
	return l.actor.value, l.critic.value
}

// Count returns the number of updates recorded since the last Reset
func (l *LossMeans) Count() int {
	return l.actor.n
}

// Reset resets the running means. Recorded losses are kept.
func (l *LossMeans) Reset() {
	l.actor = mean{}
	l.critic = mean{}
}

// Save saves all recorded losses to disk
func (l *LossMeans) Save() error {
	if err := saveData(filepath.Join(l.dir, "actor_loss.bin"),
		l.actorLosses); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	if err := saveData(filepath.Join(l.dir, "critic_loss.bin"),
		l.criticLosses); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}
