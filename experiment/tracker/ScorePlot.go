package tracker

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// DefaultWindow is the number of most recent scores averaged by a
// ScorePlot
const DefaultWindow int = 50

// ScorePlot records the score of each episode, computes the moving
// average of the most recent scores, and periodically plots both
// series to a PNG file. The raw scores are saved as a gob log.
type ScorePlot struct {
	window    int
	plotEvery int

	scores   []float64
	averages []float64
	episodes []int

	title    string
	plotFile string
	dataFile string
}

// NewScorePlot returns a new ScorePlot. The plot is written to
// <dir>/<name>.png every plotEvery episodes and on Save, the scores
// to <dir>/<name>.bin. If plotEvery < 1, the plot is only written on
// Save.
func NewScorePlot(dir, name string, window, plotEvery int) (*ScorePlot, error) {
	if window < 1 {
		return nil, fmt.Errorf("newScorePlot: window must be positive")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("newScorePlot: could not create plot "+
			"directory: %v", err)
	}

	return &ScorePlot{
		window:    window,
		plotEvery: plotEvery,
		title:     name,
		plotFile:  filepath.Join(dir, name+".png"),
		dataFile:  filepath.Join(dir, name+".bin"),
	}, nil
}

// Record records the score of an episode and returns the moving
// average over the most recent scores
func (s *ScorePlot) Record(score float64, episode int) (float64, error) {
	s.scores = append(s.scores, score)
	s.episodes = append(s.episodes, episode)

	start := len(s.scores) - s.window
	if start < 0 {
		start = 0
	}
	average := stat.Mean(s.scores[start:], nil)
	s.averages = append(s.averages, average)

	if s.plotEvery > 0 && len(s.scores)%s.plotEvery == 0 {
		if err := s.Plot(); err != nil {
			return average, fmt.Errorf("record: %v", err)
		}
	}
	return average, nil
}

// Scores returns all recorded scores
func (s *ScorePlot) Scores() []float64 {
	return s.scores
}

// Averages returns the moving average computed at each recorded score
func (s *ScorePlot) Averages() []float64 {
	return s.averages
}

// PlotFile returns the path the plot is written to
func (s *ScorePlot) PlotFile() string {
	return s.plotFile
}

// Plot writes the scores and their moving average to the plot file
func (s *ScorePlot) Plot() error {
	p := plot.New()
	p.Title.Text = s.title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Score"

	series := []struct {
		name string
		data []float64
	}{
		{"score", s.scores},
		{"average", s.averages},
	}
	for i, ser := range series {
		points := make(plotter.XYs, len(ser.data))
		for j, v := range ser.data {
			points[j] = plotter.XY{X: float64(s.episodes[j]), Y: v}
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("plot: could not create %v line: %v",
				ser.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(ser.name, line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, s.plotFile); err != nil {
		return fmt.Errorf("plot: could not save plot: %v", err)
	}
	return nil
}

// Save writes the plot and the gob score log to disk
func (s *ScorePlot) Save() error {
	if len(s.scores) > 0 {
		if err := s.Plot(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	if err := saveData(s.dataFile, s.scores); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}
