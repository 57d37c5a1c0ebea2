package sweep

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"CommonsSim/internal/model"
)

// LoadState reads the sweep state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.SweepState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.SweepState{}, nil
		}
		return nil, err
	}
	var state model.SweepState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the sweep state to a JSON file, creating its directory.
func SaveState(filePath string, state *model.SweepState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
