// Package persist serializes a trained encoder/predictor pair. A save
// produces two human-readable JSON artifacts, one per component, plus one
// combined gob snapshot that Load restores. Paths come from an explicit
// Config; there is no process-wide default state, and a failed save never
// touches the in-memory model.
package persist

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davbzh/lstm-wikipedia/learning"
	"github.com/davbzh/lstm-wikipedia/lstm"
	"github.com/davbzh/lstm-wikipedia/nnet"
)

func init() {
	gob.Register(&lstm.Network{})
	gob.Register(&nnet.Network{})
}

// Config names the artifacts of one save.
type Config struct {
	// Dir is the directory the artifacts are written to. If empty,
	// "results" under the working directory.
	Dir string
	// Base is the artifact base name. If empty, "temp_model".
	Base string
}

// DefaultBase builds the conventional base name for a trained pair from its
// run parameters.
func DefaultBase(k, iterations int, weighted bool) string {
	w := "unweighted"
	if weighted {
		w = "weighted"
	}
	return fmt.Sprintf("trained_lstm_%d_nn_%d_%s", k, iterations, w)
}

func (c Config) norm() Config {
	if c.Dir == "" {
		c.Dir = "results"
	}
	if c.Base == "" {
		c.Base = "temp_model"
	}
	return c
}

// EncoderPath returns the path of the encoder JSON artifact.
func (c Config) EncoderPath() string {
	c = c.norm()
	return filepath.Join(c.Dir, c.Base+"_lstm.json")
}

// PredictorPath returns the path of the predictor JSON artifact.
func (c Config) PredictorPath() string {
	c = c.norm()
	return filepath.Join(c.Dir, c.Base+"_nn.json")
}

// SnapshotPath returns the path of the combined binary snapshot.
func (c Config) SnapshotPath() string {
	c = c.norm()
	return filepath.Join(c.Dir, c.Base+".gob")
}

// Save writes the three artifacts for the model.
func Save(c Config, m *learning.Model) error {
	c = c.norm()
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	if err := writeJSON(c.EncoderPath(), m.Encoder); err != nil {
		return err
	}
	if err := writeJSON(c.PredictorPath(), m.Predictor); err != nil {
		return err
	}

	f, err := os.Create(c.SnapshotPath())
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load restores a trained pair from a combined snapshot written by Save.
func Load(path string) (*learning.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	var m learning.Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
