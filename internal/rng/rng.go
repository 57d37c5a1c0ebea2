// Package rng supplies the random draws used by the simulation. Every run
// owns its own Source so independent runs never share generator state.
package rng

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrIllegalProbability is returned for rates above 1 or NaN.
var ErrIllegalProbability = errors.New("illegal probability")

// Random is the set of draws the simulation consumes.
type Random interface {
	// Probability returns true with the given rate.
	Probability(rate float64) (bool, error)
	// Uniform draws from [0, 1).
	Uniform() float64
	// Exponential draws loc + Exp(scale).
	Exponential(loc, scale float64) float64
	// Gamma draws loc + scale*Gamma(shape, 1).
	Gamma(shape, loc, scale float64) float64
	// Choice picks an index in [0, n).
	Choice(n int) int
}

// Source is a seeded PCG stream shared by all distributions.
type Source struct {
	seed uint64
	r    *rand.Rand
}

// New returns a Source seeded deterministically from seed.
func New(seed uint64) *Source {
	return &Source{
		seed: seed,
		r:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the Source was created with.
func (s *Source) Seed() uint64 { return s.seed }

func (s *Source) Probability(rate float64) (bool, error) {
	return bernoulli(rate, s.r.Float64())
}

func (s *Source) Uniform() float64 { return s.r.Float64() }

func (s *Source) Exponential(loc, scale float64) float64 {
	if scale == 0 {
		return loc
	}
	return loc + distuv.Exponential{Rate: 1 / scale, Src: s.r}.Rand()
}

func (s *Source) Gamma(shape, loc, scale float64) float64 {
	return loc + scale*distuv.Gamma{Alpha: shape, Beta: 1, Src: s.r}.Rand()
}

func (s *Source) Choice(n int) int {
	if n <= 0 {
		return -1
	}
	return s.r.IntN(n)
}

func bernoulli(rate, draw float64) (bool, error) {
	if rate > 1.0 || math.IsNaN(rate) {
		return false, fmt.Errorf("rate %v: %w", rate, ErrIllegalProbability)
	}
	return draw < rate, nil
}

// MockSource returns controllable fixed draws for development and testing.
// Each slice is consumed in order and wraps around; an empty slice yields
// the zero draw for that distribution.
type MockSource struct {
	Uniforms     []float64
	Exponentials []float64
	Gammas       []float64
	Choices      []int

	ui, ei, gi, ci int
}

func (m *MockSource) Probability(rate float64) (bool, error) {
	return bernoulli(rate, m.Uniform())
}

func (m *MockSource) Uniform() float64 {
	if len(m.Uniforms) == 0 {
		return 0
	}
	v := m.Uniforms[m.ui%len(m.Uniforms)]
	m.ui++
	return v
}

// Exponential returns the scripted value as is, ignoring loc and scale.
func (m *MockSource) Exponential(_, _ float64) float64 {
	if len(m.Exponentials) == 0 {
		return 0
	}
	v := m.Exponentials[m.ei%len(m.Exponentials)]
	m.ei++
	return v
}

// Gamma returns the scripted value as is, ignoring its parameters.
func (m *MockSource) Gamma(_, _, _ float64) float64 {
	if len(m.Gammas) == 0 {
		return 0
	}
	v := m.Gammas[m.gi%len(m.Gammas)]
	m.gi++
	return v
}

func (m *MockSource) Choice(n int) int {
	if n <= 0 {
		return -1
	}
	if len(m.Choices) == 0 {
		return 0
	}
	v := m.Choices[m.ci%len(m.Choices)]
	m.ci++
	return v % n
}
