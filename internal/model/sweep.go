package model

import "time"

// SweepState is the persisted cursor of the scheduled parameter sweeps.
type SweepState struct {
	NextSeed  uint64    `json:"next_seed"`
	Sweeps    int       `json:"sweeps"`
	LastSweep time.Time `json:"last_sweep"`
	UpdatedAt time.Time `json:"updated_at"`
}
