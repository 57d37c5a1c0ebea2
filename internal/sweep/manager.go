// Package sweep hands out the seeds of scheduled sweeps and remembers where
// the last sweep stopped.
package sweep

import (
	"log/slog"
	"sync"
	"time"

	"CommonsSim/internal/model"
)

// Manager reserves sweep seeds with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.SweepState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
// A fresh state starts at startSeed.
func NewManager(filePath string, startSeed uint64) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}

	if state.Sweeps == 0 && state.NextSeed == 0 {
		state.NextSeed = startSeed
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetState returns a copy of the current sweep state.
func (m *Manager) GetState() model.SweepState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// NextSeeds reserves n consecutive seeds for one sweep.
func (m *Manager) NextSeeds(n int) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n < 0 {
		n = 0
	}
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = m.state.NextSeed + uint64(i)
	}
	m.state.NextSeed += uint64(n)
	m.state.Sweeps++
	m.state.LastSweep = time.Now()

	if err := m.save(); err != nil {
		slog.Error("failed to save sweep state", "path", m.filePath, "err", err)
	}
	return seeds
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
