// Package commands implements the command line interface used to train
// agents
package commands

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/algopapi/RL-implementations/agent"
	"github.com/algopapi/RL-implementations/experiment"
	"github.com/algopapi/RL-implementations/experiment/checkpointer"
	"github.com/algopapi/RL-implementations/experiment/tracker"
	"github.com/algopapi/RL-implementations/utils/progressbar"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	episodes    int
	lr          float64
	gamma       float64
	seed        uint64
	saveDir     string
	plotDir     string
	logDir      string
	maxAverage  float64
	plotEvery   int
	progress    bool
	renderDir   string
	renderEvery int
)

// GetRootCommand returns the command which trains an agent
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "train",
		Short: "Train an actor-critic agent on a control task",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return Train(config, cmd.OutOrStderr())
		},
		SilenceUsage: true,
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML file configuring the agent, environment, and experiment")
	flags.IntVarP(&episodes, "episodes", "e", experiment.DefaultEpisodes, "Number of episodes to train for")
	flags.Float64Var(&lr, "lr", 0, "Learning rate of the solver, overrides the config")
	flags.Float64Var(&gamma, "gamma", 0, "Discount factor of returns, overrides the config")
	flags.Uint64Var(&seed, "seed", 1, "Seed of the environment and agent")
	flags.StringVarP(&saveDir, "save-dir", "s", experiment.DefaultSaveDir, "Directory checkpoints are saved to")
	flags.StringVar(&plotDir, "plot-dir", "Plots", "Directory score plots are saved to")
	flags.StringVar(&logDir, "log-dir", "logs", "Directory a timestamped log directory is created in")
	flags.Float64Var(&maxAverage, "max-average", experiment.DefaultMaxAverage, "Running average a checkpoint must beat")
	flags.IntVar(&plotEvery, "plot-every", 50, "Episodes between plot updates")
	flags.BoolVar(&progress, "progress", false, "Display a progress bar instead of per-episode lines")
	flags.StringVar(&renderDir, "render-dir", "", "Directory rendered frames are saved to, no frames if empty")
	flags.IntVar(&renderEvery, "render-every", 100, "Episodes between rendered frames")
	return rootCommand
}

// loadConfig builds the RunConfig from the config file and the flags
// set on the command line
func loadConfig(cmd *cobra.Command) (RunConfig, error) {
	config := DefaultRunConfig()
	if configFile != "" {
		var err error
		if config, err = FromYaml(configFile); err != nil {
			return config, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("lr") {
		if err := config.withLearningRate(lr); err != nil {
			return config, err
		}
	}
	if flags.Changed("gamma") {
		if err := config.withGamma(gamma); err != nil {
			return config, err
		}
	}
	if flags.Changed("episodes") || configFile == "" {
		config.Experiment.Episodes = episodes
	}
	if flags.Changed("max-average") || configFile == "" {
		config.Experiment.MaxAverage = maxAverage
	}
	if flags.Changed("save-dir") || configFile == "" {
		config.Experiment.SaveDir = saveDir
	}
	return config, nil
}

// Train trains the agent described by config and saves its data.
// Episode summaries are written to out and to a log file in a
// timestamped log directory.
func Train(config RunConfig, out io.Writer) error {
	runLogDir := filepath.Join(logDir, time.Now().Format("20060102-150405"))
	for _, dir := range []string{config.Experiment.SaveDir, plotDir, runLogDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("train: could not create directory: %v", err)
		}
	}

	logFile, err := os.Create(filepath.Join(runLogDir, "train.log"))
	if err != nil {
		return fmt.Errorf("train: could not create log file: %v", err)
	}
	defer logFile.Close()

	env, _, err := config.Environment.Create(seed)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	a, err := config.Agent.CreateAgent(env, seed)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	if closer, ok := a.(agent.Closer); ok {
		defer closer.Close()
	}

	c := config.Experiment
	name := filepath.Base(c.ModelPath())
	scores, err := tracker.NewScorePlot(plotDir, name, tracker.DefaultWindow,
		plotEvery)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	losses := tracker.NewLossMeans(runLogDir)
	returns := tracker.NewReturn(filepath.Join(runLogDir, "return.bin"))
	lengths := tracker.NewEpisodeLength(filepath.Join(runLogDir,
		"episode_length.bin"))

	e, err := experiment.NewEpisodic(env, a, c, scores, losses,
		checkpointer.NewGobFile(), returns, lengths)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	if renderDir != "" {
		r, ok := env.(tracker.Renderer)
		if !ok {
			return fmt.Errorf("train: environment %T cannot be rendered", env)
		}
		frames, err := tracker.NewFrame(r, renderEvery, renderDir)
		if err != nil {
			return fmt.Errorf("train: %v", err)
		}
		e.Register(frames)
	}

	if progress {
		e.WithLogger(log.New(logFile, "", log.LstdFlags))
		e.WithProgress(progressbar.NewManualProgressBarTo(out, 50,
			c.Episodes))
	} else {
		e.WithLogger(log.New(io.MultiWriter(out, logFile), "", log.LstdFlags))
	}

	runErr := e.Run()
	if err := e.Save(); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	if runErr != nil {
		return fmt.Errorf("train: %v", runErr)
	}
	return nil
}
