package experiment

import (
	"bytes"
	"errors"
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/algopapi/RL-implementations/agent"
	"github.com/algopapi/RL-implementations/agent/nonlinear/discrete/ppo"
	env "github.com/algopapi/RL-implementations/environment"
	"github.com/algopapi/RL-implementations/environment/envconfig"
	"github.com/algopapi/RL-implementations/experiment/checkpointer"
	"github.com/algopapi/RL-implementations/experiment/tracker"
	"github.com/algopapi/RL-implementations/network"
	ts "github.com/algopapi/RL-implementations/timestep"
	"gonum.org/v1/gonum/mat"
)

// lineEnv is an environment whose episodes have scripted lengths and
// a reward of 1 per step
type lineEnv struct {
	env.Environment
	lengths []int
	episode int
	current ts.TimeStep
	resets  int
}

func (l *lineEnv) Reset() (ts.TimeStep, error) {
	l.resets++
	l.current = ts.New(ts.First, 0, 1, mat.NewVecDense(1, []float64{0}), 0)
	return l.current, nil
}

func (l *lineEnv) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	n := l.current.Number + 1
	stepType := ts.Mid
	length := l.lengths[l.episode%len(l.lengths)]
	if n >= length {
		stepType = ts.Last
		l.episode++
	}
	l.current = ts.New(stepType, 1, 1, mat.NewVecDense(1, []float64{float64(n)}), n)
	return l.current, stepType == ts.Last, nil
}

// countingAgent records the protocol calls made by an experiment
type countingAgent struct {
	pending int
	updates int
	leak    bool
	failEnd error
}

func (c *countingAgent) ObserveFirst(t ts.TimeStep) error {
	if c.pending != 0 {
		return errors.New("observeFirst: buffer not empty")
	}
	return nil
}

func (c *countingAgent) SelectAction(t ts.TimeStep) (*mat.VecDense, error) {
	return mat.NewVecDense(1, []float64{0}), nil
}

func (c *countingAgent) Observe(a mat.Vector, next ts.TimeStep) error {
	c.pending++
	return nil
}

func (c *countingAgent) EndEpisode() (agent.Losses, error) {
	if c.failEnd != nil {
		return agent.Losses{}, c.failEnd
	}
	c.updates++
	if !c.leak {
		c.pending = 0
	}
	n := float64(c.updates)
	return agent.Losses{Actor: n, Critic: 2 * n, Total: 2 * n}, nil
}

func (c *countingAgent) Pending() int { return c.pending }

func (c *countingAgent) GobEncode() ([]byte, error) { return []byte("agent"), nil }

// scriptedScores returns scripted running averages
type scriptedScores struct {
	averages []float64
	scores   []float64
	episodes []int
}

func (s *scriptedScores) Record(score float64, episode int) (float64, error) {
	s.scores = append(s.scores, score)
	s.episodes = append(s.episodes, episode)
	return s.averages[len(s.scores)-1], nil
}

type recordingCheckpointer struct {
	paths []string
	err   error
}

func (r *recordingCheckpointer) Save(o checkpointer.Serializable, path string) error {
	if r.err != nil {
		return r.err
	}
	r.paths = append(r.paths, path)
	return nil
}

type recordingLosses struct {
	actor, critic []float64
}

func (r *recordingLosses) RecordLoss(actor, critic float64) error {
	r.actor = append(r.actor, actor)
	r.critic = append(r.critic, critic)
	return nil
}

func testConfig(episodes int) Config {
	c := DefaultConfig("PPO", "Cartpole", 2.5e-5)
	c.Episodes = episodes
	c.MaxAverage = 10
	return c
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(buf, "", 0)
}

func TestSaveOnlyWhenAverageExceedsThreshold(t *testing.T) {
	e := &lineEnv{lengths: []int{3}}
	a := &countingAgent{}
	scores := &scriptedScores{averages: []float64{5, 10, 12, 11, 12, 13}}
	check := &recordingCheckpointer{}
	losses := &recordingLosses{}

	var logs bytes.Buffer
	exp, err := NewEpisodic(e, a, testConfig(6), scores, losses, check)
	if err != nil {
		t.Fatalf("newEpisodic: %v", err)
	}
	exp.WithLogger(quietLogger(&logs))

	wantSaved := []bool{false, false, true, false, false, true}
	for i, want := range wantSaved {
		result, err := exp.RunEpisode()
		if err != nil {
			t.Fatalf("episode %d: %v", i, err)
		}
		if result.Saved != want {
			t.Errorf("episode %d saved: want(%v) have(%v)", i, want,
				result.Saved)
		}
		if result.Score != 3 || result.Steps != 3 {
			t.Errorf("episode %d: want score 3 over 3 steps, have %v over %v",
				i, result.Score, result.Steps)
		}
		if a.Pending() != 0 {
			t.Errorf("episode %d: agent buffer not cleared", i)
		}
	}

	session := exp.Session()
	if session.Saves != 2 || len(check.paths) != 2 {
		t.Errorf("saves: want(2) have(%v, %v)", session.Saves,
			len(check.paths))
	}
	if session.BestAverage != 13 {
		t.Errorf("best average: want(13) have(%v)", session.BestAverage)
	}
	if session.Episode != 6 || session.Steps != 18 {
		t.Errorf("session: want 6 episodes and 18 steps, have %v and %v",
			session.Episode, session.Steps)
	}

	wantPath := filepath.Join("Models", "PPO_Cartpole_LR_2.5e-05")
	for _, path := range check.paths {
		if path != wantPath {
			t.Errorf("checkpoint path: want(%v) have(%v)", wantPath, path)
		}
	}

	if len(losses.actor) != 6 || losses.actor[5] != 6 || losses.critic[5] != 12 {
		t.Errorf("losses not forwarded: %v %v", losses.actor, losses.critic)
	}
	if session.Losses.Actor != 6 {
		t.Errorf("session losses: want(6) have(%v)", session.Losses.Actor)
	}

	for i, episode := range scores.episodes {
		if episode != i {
			t.Errorf("recorded episode index: want(%v) have(%v)", i, episode)
		}
	}

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("log lines: want(6) have(%v)", len(lines))
	}
	if lines[2] != "episode: 2/6, score: 3, average: 12.00 SAVING" {
		t.Errorf("log line: have %q", lines[2])
	}
	if lines[3] != "episode: 3/6, score: 3, average: 11.00" {
		t.Errorf("log line: have %q", lines[3])
	}

	if _, err := exp.RunEpisode(); err == nil {
		t.Error("expected error running past the episode budget")
	}
}

func TestSaveNotCalledBelowThreshold(t *testing.T) {
	check := &recordingCheckpointer{}
	exp, err := NewEpisodic(&lineEnv{lengths: []int{1}}, &countingAgent{},
		testConfig(1), &scriptedScores{averages: []float64{9}}, nil, check)
	if err != nil {
		t.Fatalf("newEpisodic: %v", err)
	}
	exp.WithLogger(log.New(ioutil.Discard, "", 0))

	result, err := exp.RunEpisode()
	if err != nil {
		t.Fatalf("runEpisode: %v", err)
	}
	if result.Saved || len(check.paths) != 0 {
		t.Error("checkpoint saved below threshold")
	}
}

func TestRunErrors(t *testing.T) {
	discard := log.New(ioutil.Discard, "", 0)

	t.Run("UpdateFails", func(t *testing.T) {
		a := &countingAgent{failEnd: errors.New("update failed")}
		exp, err := NewEpisodic(&lineEnv{lengths: []int{2}}, a,
			testConfig(3), &scriptedScores{averages: []float64{0, 0, 0}},
			nil, &recordingCheckpointer{})
		if err != nil {
			t.Fatalf("newEpisodic: %v", err)
		}
		exp.WithLogger(discard)

		if err := exp.Run(); err == nil {
			t.Error("expected update error to stop the run")
		}
		if exp.Session().Episode != 0 {
			t.Errorf("episode should not advance after a failed update")
		}
	})

	t.Run("BufferNotCleared", func(t *testing.T) {
		exp, err := NewEpisodic(&lineEnv{lengths: []int{2}},
			&countingAgent{leak: true}, testConfig(3),
			&scriptedScores{averages: []float64{0, 0, 0}}, nil,
			&recordingCheckpointer{})
		if err != nil {
			t.Fatalf("newEpisodic: %v", err)
		}
		exp.WithLogger(discard)

		if _, err := exp.RunEpisode(); err == nil {
			t.Error("expected error when the agent keeps its buffer")
		}
	})

	t.Run("CheckpointFails", func(t *testing.T) {
		exp, err := NewEpisodic(&lineEnv{lengths: []int{2}},
			&countingAgent{}, testConfig(3),
			&scriptedScores{averages: []float64{100}}, nil,
			&recordingCheckpointer{err: errors.New("disk full")})
		if err != nil {
			t.Fatalf("newEpisodic: %v", err)
		}
		exp.WithLogger(discard)

		if _, err := exp.RunEpisode(); err == nil {
			t.Error("expected checkpoint error")
		}
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		c := testConfig(3)
		c.LearningRate = 0
		_, err := NewEpisodic(&lineEnv{lengths: []int{2}}, &countingAgent{},
			c, &scriptedScores{}, nil, &recordingCheckpointer{})
		if err == nil {
			t.Error("expected invalid config error")
		}
	})
}

func TestTrackersAndSave(t *testing.T) {
	dir := t.TempDir()
	returns := tracker.NewReturn(filepath.Join(dir, "return.bin"))
	lengths := tracker.NewEpisodeLength(filepath.Join(dir, "length.bin"))
	losses := tracker.NewLossMeans(dir)
	scores, err := tracker.NewScorePlot(dir, "scores", tracker.DefaultWindow, 0)
	if err != nil {
		t.Fatalf("newScorePlot: %v", err)
	}

	exp, err := NewEpisodic(&lineEnv{lengths: []int{4, 2}}, &countingAgent{},
		testConfig(4), scores, losses, &recordingCheckpointer{}, returns)
	if err != nil {
		t.Fatalf("newEpisodic: %v", err)
	}
	exp.Register(lengths)
	exp.WithLogger(log.New(ioutil.Discard, "", 0))

	if err := exp.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := exp.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := tracker.LoadData(filepath.Join(dir, "return.bin"))
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	want := []float64{4, 2, 4, 2}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("return %d: want(%v) have(%v)", i, want[i], data[i])
		}
	}
	if got := lengths.Lengths(); len(got) != 4 || got[0] != 4 {
		t.Errorf("episode lengths: have %v", got)
	}
	if losses.Count() != 4 {
		t.Errorf("losses recorded: want(4) have(%v)", losses.Count())
	}
	if avg := scores.Averages()[3]; avg != 3 {
		t.Errorf("running average: want(3) have(%v)", avg)
	}
}

func TestCartpolePPO(t *testing.T) {
	environment, _, err := envconfig.Default().Create(1)
	if err != nil {
		t.Fatalf("create environment: %v", err)
	}

	c := ppo.DefaultConfig()
	c.Layers = []int{16, 8}
	c.Biases = []bool{true, true}
	c.Activations = []*network.Activation{network.ReLU(), network.ReLU()}
	learner, err := ppo.New(environment, c, 1)
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	defer learner.Close()

	dir := t.TempDir()
	scores, err := tracker.NewScorePlot(dir, "scores", tracker.DefaultWindow, 0)
	if err != nil {
		t.Fatalf("newScorePlot: %v", err)
	}
	config := testConfig(3)
	config.MaxAverage = 0
	config.SaveDir = dir

	exp, err := NewEpisodic(environment, learner, config, scores,
		tracker.NewLossMeans(dir), checkpointer.NewGobFile())
	if err != nil {
		t.Fatalf("newEpisodic: %v", err)
	}
	exp.WithLogger(log.New(ioutil.Discard, "", 0))

	if err := exp.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if learner.Episodes() != 3 || learner.Pending() != 0 {
		t.Errorf("agent: want 3 updates and an empty buffer, have %v and %v",
			learner.Episodes(), learner.Pending())
	}

	// Cartpole scores are at least 1, so the first episode beats a
	// threshold of 0 and a checkpoint must exist
	if exp.Session().Saves < 1 {
		t.Fatal("expected at least one checkpoint")
	}
	restored, err := ppo.New(environment, c, 2)
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	defer restored.Close()
	if err := checkpointer.Load(config.ModelPath(), restored); err != nil {
		t.Errorf("load checkpoint: %v", err)
	}
}
