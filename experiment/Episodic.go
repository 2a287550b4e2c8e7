package experiment

import (
	"fmt"
	"log"
	"os"

	"github.com/algopapi/RL-implementations/agent"
	env "github.com/algopapi/RL-implementations/environment"
	"github.com/algopapi/RL-implementations/experiment/checkpointer"
	"github.com/algopapi/RL-implementations/experiment/tracker"
	ts "github.com/algopapi/RL-implementations/timestep"
	"github.com/algopapi/RL-implementations/utils/progressbar"
)

var _ Experiment = &Episodic{}

// Episodic is an Experiment that runs an agent online for a fixed
// number of episodes, updating the agent once at the end of each
// episode. Each episode moves through the stages
//
//	reset -> acting -> terminal -> updating
//
// At the terminal stage the episode's score is handed to a
// ScoreRecorder, and the agent is checkpointed whenever the running
// average returned strictly exceeds the best average seen so far.
type Episodic struct {
	env.Environment
	agent.Agent
	config Config

	session *Session

	scores       tracker.ScoreRecorder
	losses       tracker.LossRecorder
	checkpointer checkpointer.Checkpointer
	trackers     []tracker.Tracker

	logger   *log.Logger
	progress *progressbar.ManualProgressBar
}

// NewEpisodic creates and returns a new episodic experiment. The agent
// must be gob encodable so that it can be checkpointed. The losses
// recorder may be nil.
func NewEpisodic(e env.Environment, a agent.Agent, c Config,
	scores tracker.ScoreRecorder, losses tracker.LossRecorder,
	check checkpointer.Checkpointer, t ...tracker.Tracker) (*Episodic, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newEpisodic: invalid config: %v", err)
	}
	if _, ok := a.(checkpointer.Serializable); !ok {
		return nil, fmt.Errorf("newEpisodic: agent %T cannot be "+
			"checkpointed", a)
	}
	if scores == nil {
		return nil, fmt.Errorf("newEpisodic: a score recorder is required")
	}
	if check == nil {
		return nil, fmt.Errorf("newEpisodic: a checkpointer is required")
	}

	return &Episodic{
		Environment:  e,
		Agent:        a,
		config:       c,
		session:      newSession(c.MaxAverage),
		scores:       scores,
		losses:       losses,
		checkpointer: check,
		trackers:     t,
		logger:       log.New(os.Stderr, "", log.LstdFlags),
	}, nil
}

// WithLogger sets the logger episode summaries are written to
func (e *Episodic) WithLogger(l *log.Logger) *Episodic {
	e.logger = l
	return e
}

// WithProgress displays the progress of the experiment on bar
func (e *Episodic) WithProgress(bar *progressbar.ManualProgressBar) *Episodic {
	e.progress = bar
	return e
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (e *Episodic) Register(t tracker.Tracker) {
	e.trackers = append(e.trackers, t)
}

// Session returns the state of the training run
func (e *Episodic) Session() Session {
	return *e.session
}

// Done returns whether the episode budget has been exhausted
func (e *Episodic) Done() bool {
	return e.session.Episode >= e.config.Episodes
}

// Run runs episodes until the episode budget is exhausted
func (e *Episodic) Run() error {
	for !e.Done() {
		if _, err := e.RunEpisode(); err != nil {
			return fmt.Errorf("run: episode %d: %v", e.session.Episode, err)
		}
	}
	if e.progress != nil {
		e.progress.Close()
	}
	return nil
}

// RunEpisode runs a single episode of the experiment and updates the
// agent from it
func (e *Episodic) RunEpisode() (EpisodeResult, error) {
	if e.Done() {
		return EpisodeResult{}, fmt.Errorf("runEpisode: episode budget "+
			"of %d exhausted", e.config.Episodes)
	}

	score, steps, err := e.act(e.session)
	if err != nil {
		return EpisodeResult{}, fmt.Errorf("runEpisode: %v", err)
	}

	result, err := e.terminal(e.session, score)
	if err != nil {
		return result, fmt.Errorf("runEpisode: %v", err)
	}
	result.Steps = steps

	result.Losses, err = e.update(e.session)
	if err != nil {
		return result, fmt.Errorf("runEpisode: %v", err)
	}

	e.session.Episode++
	if e.progress != nil {
		e.progress.Increment()
		e.progress.SetStatus(fmt.Sprintf("average: %.2f", result.Average))
		e.progress.Display()
	}
	return result, nil
}

// act resets the environment and runs the agent until the episode
// ends, returning the score and length of the episode
func (e *Episodic) act(s *Session) (float64, int, error) {
	step, err := e.Environment.Reset()
	if err != nil {
		return 0, 0, fmt.Errorf("act: could not reset environment: %v", err)
	}
	if err := e.Agent.ObserveFirst(step); err != nil {
		return 0, 0, fmt.Errorf("act: %v", err)
	}
	if err := e.track(step); err != nil {
		return 0, 0, fmt.Errorf("act: %v", err)
	}

	var score float64
	var steps int
	for !step.Last() {
		action, err := e.Agent.SelectAction(step)
		if err != nil {
			return score, steps, fmt.Errorf("act: %v", err)
		}

		step, _, err = e.Environment.Step(action)
		if err != nil {
			return score, steps, fmt.Errorf("act: could not step "+
				"environment: %v", err)
		}
		steps++
		s.Steps++
		score += step.Reward

		if err := e.track(step); err != nil {
			return score, steps, fmt.Errorf("act: %v", err)
		}
		if err := e.Agent.Observe(action, step); err != nil {
			return score, steps, fmt.Errorf("act: %v", err)
		}
	}
	return score, steps, nil
}

// terminal records the score of the finished episode and checkpoints
// the agent if the running average beats the best average so far
func (e *Episodic) terminal(s *Session, score float64) (EpisodeResult, error) {
	result := EpisodeResult{Episode: s.Episode, Score: score}

	average, err := e.scores.Record(score, s.Episode)
	if err != nil {
		return result, fmt.Errorf("terminal: could not record score: %v",
			err)
	}
	result.Average = average

	saving := ""
	if s.improved(average) {
		err := e.checkpointer.Save(e.Agent.(checkpointer.Serializable),
			e.config.ModelPath())
		if err != nil {
			return result, fmt.Errorf("terminal: could not save "+
				"checkpoint: %v", err)
		}
		s.Saves++
		result.Saved = true
		saving = " SAVING"
	}

	e.logger.Printf("episode: %d/%d, score: %v, average: %.2f%s",
		s.Episode, e.config.Episodes, score, average, saving)
	return result, nil
}

// update performs the agent's end of episode update
func (e *Episodic) update(s *Session) (agent.Losses, error) {
	losses, err := e.Agent.EndEpisode()
	if err != nil {
		return losses, fmt.Errorf("update: %v", err)
	}
	if pending := e.Agent.Pending(); pending != 0 {
		return losses, fmt.Errorf("update: agent holds %d steps after "+
			"updating", pending)
	}
	s.Losses = losses

	if e.losses != nil {
		if err := e.losses.RecordLoss(losses.Actor, losses.Critic); err != nil {
			return losses, fmt.Errorf("update: could not record "+
				"losses: %v", err)
		}
	}
	return losses, nil
}

// Save saves all the data cached by the Trackers and recorders to disk
func (e *Episodic) Save() error {
	for _, t := range e.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	if saver, ok := e.scores.(saver); ok {
		if err := saver.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	if saver, ok := e.losses.(saver); ok {
		if err := saver.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

type saver interface {
	Save() error
}

// track tracks the current timestep by caching its data in each
// Tracker
func (e *Episodic) track(t ts.TimeStep) error {
	for _, tr := range e.trackers {
		if err := tr.Track(t); err != nil {
			return fmt.Errorf("track: %v", err)
		}
	}
	return nil
}
