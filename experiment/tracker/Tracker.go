// Package tracker implements Trackers, which track and save data in an
// experiment, as well as the score and loss recorders used by the
// episodic training loop
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	ts "github.com/algopapi/RL-implementations/timestep"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	Track(t ts.TimeStep) error
	Save() error
}

// ScoreRecorder records the score of each episode and returns the
// running average score used to decide when to checkpoint
type ScoreRecorder interface {
	Record(score float64, episode int) (float64, error)
}

// LossRecorder records the losses of each update
type LossRecorder interface {
	RecordLoss(actor, critic float64) error
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %v", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %v", err)
	}
	return data, nil
}

// saveData gob encodes data to filename, creating parent directories
// as needed
func saveData(filename string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filename), os.ModePerm); err != nil {
		return fmt.Errorf("could not create save directory: %v", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("could not encode data: %v", err)
	}
	return nil
}
