// Package checkpointer implements saving and loading of serializable
// objects, such as the networks of agents, during an experiment
package checkpointer

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
}

// Checkpointer saves serializable objects to some path
type Checkpointer interface {
	Save(object Serializable, path string) error
}

// GobFile is a Checkpointer which gob encodes objects into files,
// replacing any file already at the path
type GobFile struct{}

// NewGobFile returns a new GobFile Checkpointer
func NewGobFile() GobFile {
	return GobFile{}
}

// Save gob encodes object into the file at path, creating parent
// directories as needed. The file is written to a temporary location
// first so that an interrupted save never truncates a previous
// checkpoint.
func (GobFile) Save(object Serializable, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("save: could not create directory: %v", err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("save: could not create file: %v", err)
	}

	if err := gob.NewEncoder(file).Encode(object); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("save: could not encode object: %v", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save: %v", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}

// Load decodes the gob encoded file at path into object
func Load(path string, object gob.GobDecoder) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load: could not open checkpoint: %v", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(object); err != nil {
		return fmt.Errorf("load: could not decode checkpoint: %v", err)
	}
	return nil
}

// ModelName returns the path of the checkpoint of an agent trained on
// an environment with a learning rate:
//
//	<dir>/<agent>_<env>_LR_<lr>
func ModelName(dir, agent, env string, lr float64) string {
	name := fmt.Sprintf("%v_%v_LR_%v", agent, env,
		strconv.FormatFloat(lr, 'g', -1, 64))
	return filepath.Join(dir, name)
}
