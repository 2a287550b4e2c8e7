package commands

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/algopapi/RL-implementations/agent/nonlinear/discrete/ppo"
	"github.com/algopapi/RL-implementations/initwfn"
	"github.com/algopapi/RL-implementations/solver"
	. "github.com/smartystreets/goconvey/convey"
)

const smallConfig = `
Agent:
  Type: CategoricalPPO-MLP
  Config:
    Layers: [16, 8]
    Biases: [true, true]
    Activations: [relu, relu]
    InitWFn:
      Type: HeU
      Config:
        Gain: 1.0
    Solver:
      Type: RMSProp
      Config:
        StepSize: 1e-3
        Epsilon: 1e-7
        Rho: 0.9
        Batch: 1
        Clip: -1
    Gamma: 0.94
    ActorWeight: 1.0
    CriticWeight: 0.5
    HuberDelta: 1.0
Environment:
  Environment: Cartpole
  Task: Balance
  EpisodeCutoff: 50
  Discount: 1.0
Experiment:
  Episodes: 2
  MaxAverage: 0
`

func TestParseYaml(t *testing.T) {
	Convey("Given a YAML run configuration", t, func() {
		Convey("When every section is set", func() {
			config, err := parseYaml([]byte(smallConfig))
			So(err, ShouldBeNil)

			c, ok := config.Agent.Config.(ppo.Config)
			So(ok, ShouldBeTrue)
			So(c.Layers, ShouldResemble, []int{16, 8})
			So(c.InitWFn.Type, ShouldEqual, initwfn.HeU)
			So(c.Solver.Type, ShouldEqual, solver.RMSProp)

			So(config.Environment.EpisodeCutoff, ShouldEqual, 50)
			So(config.Experiment.Episodes, ShouldEqual, 2)

			// Unset experiment fields keep their defaults
			So(config.Experiment.AgentName, ShouldEqual, "PPO")
			So(config.Experiment.LearningRate, ShouldEqual, 1e-3)
		})

		Convey("When only the experiment is set", func() {
			config, err := parseYaml([]byte("Experiment:\n  Episodes: 7\n"))
			So(err, ShouldBeNil)
			So(config.Experiment.Episodes, ShouldEqual, 7)
			So(config.Experiment.LearningRate, ShouldEqual,
				ppo.DefaultLearningRate)
			So(config.Environment.EpisodeCutoff, ShouldEqual, 500)
		})

		Convey("When a section is unknown", func() {
			_, err := parseYaml([]byte("Agents:\n  Type: x\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("When the agent type is not registered", func() {
			_, err := parseYaml([]byte("Agent:\n  Type: DQN\n"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestOverrides(t *testing.T) {
	Convey("Given the default run configuration", t, func() {
		config := DefaultRunConfig()

		Convey("Setting the learning rate updates the solver and checkpoint name", func() {
			So(config.withLearningRate(1e-4), ShouldBeNil)
			c := config.Agent.Config.(ppo.Config)
			So(c.Solver.Config.LearningRate(), ShouldEqual, 1e-4)
			So(config.Experiment.LearningRate, ShouldEqual, 1e-4)
			So(filepath.Base(config.Experiment.ModelPath()), ShouldEqual,
				"PPO_Cartpole_LR_0.0001")

			// The default configuration is not shared
			d := DefaultRunConfig().Agent.Config.(ppo.Config)
			So(d.Solver.Config.LearningRate(), ShouldEqual,
				ppo.DefaultLearningRate)
		})

		Convey("A non-positive learning rate is rejected", func() {
			So(config.withLearningRate(0), ShouldNotBeNil)
		})

		Convey("Setting gamma updates the agent", func() {
			So(config.withGamma(0.5), ShouldBeNil)
			So(config.Agent.Config.(ppo.Config).Gamma, ShouldEqual, 0.5)
		})
	})
}

func TestTrain(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := ioutil.WriteFile(configPath, []byte(smallConfig), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	cmd := GetRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"--config", configPath,
		"--save-dir", filepath.Join(dir, "Models"),
		"--plot-dir", filepath.Join(dir, "Plots"),
		"--log-dir", filepath.Join(dir, "logs"),
		"--render-dir", filepath.Join(dir, "Frames"),
		"--render-every", "1",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "episode: 0/2") {
		t.Errorf("episode lines: have %q", out.String())
	}

	model := filepath.Join(dir, "Models", "PPO_Cartpole_LR_0.001")
	if _, err := os.Stat(model); err != nil {
		t.Errorf("checkpoint: %v", err)
	}
	for _, file := range []string{
		filepath.Join(dir, "Plots", "PPO_Cartpole_LR_0.001.png"),
		filepath.Join(dir, "Frames", "episode_1.png"),
		filepath.Join(dir, "Frames", "episode_2.png"),
	} {
		if _, err := os.Stat(file); err != nil {
			t.Errorf("output: %v", err)
		}
	}

	logs, err := filepath.Glob(filepath.Join(dir, "logs", "*", "train.log"))
	if err != nil || len(logs) != 1 {
		t.Errorf("log directory: have %v (%v)", logs, err)
	}
}
