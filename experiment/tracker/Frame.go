package tracker

import (
	"fmt"
	"os"
	"path/filepath"

	ts "github.com/algopapi/RL-implementations/timestep"
)

// Renderer draws the current state of an environment to an image file
type Renderer interface {
	Render(filename string) error
}

// Frame renders the final state of every n-th episode to a PNG file
// in a directory
type Frame struct {
	renderer Renderer
	every    int
	dir      string
	episode  int
	frames   []string
}

// NewFrame returns a new Frame Tracker which renders the last step of
// every n-th episode
func NewFrame(r Renderer, every int, dir string) (*Frame, error) {
	if every < 1 {
		return nil, fmt.Errorf("newFrame: every must be positive")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("newFrame: could not create frame "+
			"directory: %v", err)
	}
	return &Frame{renderer: r, every: every, dir: dir}, nil
}

// Track renders the environment if t ends an episode selected for
// rendering
func (f *Frame) Track(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	f.episode++
	if f.episode%f.every != 0 {
		return nil
	}

	filename := filepath.Join(f.dir, fmt.Sprintf("episode_%d.png", f.episode))
	if err := f.renderer.Render(filename); err != nil {
		return fmt.Errorf("track: %v", err)
	}
	f.frames = append(f.frames, filename)
	return nil
}

// Frames returns the files rendered so far
func (f *Frame) Frames() []string {
	return f.frames
}

// Save is a no-op, frames are written as they are tracked
func (f *Frame) Save() error {
	return nil
}
