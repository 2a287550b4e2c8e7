package checkpointer

import (
	"errors"
	"path/filepath"
	"testing"
)

type blob struct {
	data []byte
}

func (b *blob) GobEncode() ([]byte, error) {
	if b.data == nil {
		return nil, errors.New("empty blob")
	}
	return b.data, nil
}

func (b *blob) GobDecode(in []byte) error {
	b.data = append([]byte(nil), in...)
	return nil
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Models", "PPO_Cartpole_LR_2.5e-05")

	saved := &blob{data: []byte("weights")}
	if err := NewGobFile().Save(saved, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Saving again replaces the checkpoint
	saved.data = []byte("better weights")
	if err := NewGobFile().Save(saved, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	var loaded blob
	if err := Load(path, &loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(loaded.data) != "better weights" {
		t.Errorf("loaded: want(%q) have(%q)", "better weights", loaded.data)
	}
}

func TestSaveError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	if err := NewGobFile().Save(&blob{}, path); err == nil {
		t.Error("expected error encoding an empty blob")
	}
	if err := Load(path, &blob{}); err == nil {
		t.Error("failed save should not leave a checkpoint")
	}
}

func TestModelName(t *testing.T) {
	got := ModelName("Models", "PPO", "Cartpole", 2.5e-5)
	want := filepath.Join("Models", "PPO_Cartpole_LR_2.5e-05")
	if got != want {
		t.Errorf("model name: want(%v) have(%v)", want, got)
	}
}
