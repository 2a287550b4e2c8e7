package experiment

import "github.com/algopapi/RL-implementations/agent"

// Session holds the mutable state of a training run. It is owned by
// the Episodic experiment and passed to each stage of an episode.
type Session struct {
	// Episode is the index of the next episode to run
	Episode int

	// BestAverage is the checkpoint threshold, the best running
	// average seen so far or the configured initial value
	BestAverage float64

	// Saves counts the checkpoints written
	Saves int

	// Steps counts the environment steps taken over all episodes
	Steps int

	// Losses are the losses of the last update
	Losses agent.Losses
}

func newSession(maxAverage float64) *Session {
	return &Session{BestAverage: maxAverage}
}

// improved reports whether average beats the checkpoint threshold,
// raising the threshold if it does
func (s *Session) improved(average float64) bool {
	if average > s.BestAverage {
		s.BestAverage = average
		return true
	}
	return false
}

// EpisodeResult summarises a single episode
type EpisodeResult struct {
	Episode int
	Score   float64
	Average float64
	Steps   int
	Saved   bool
	Losses  agent.Losses
}
