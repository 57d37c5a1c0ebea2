package entities

import (
	"fmt"

	"CommonsSim/internal/conviction"
)

// Status is a proposal's lifecycle state.
type Status string

const (
	StatusCandidate Status = "CANDIDATE"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var transitions = map[Status][]Status{
	StatusCandidate: {StatusActive, StatusFailed},
	StatusActive:    {StatusCompleted, StatusFailed},
}

// Proposal is a request for money from the funding pool.
type Proposal struct {
	FundsRequested float64 `yaml:"funds_requested" json:"funds_requested"`
	Conviction     float64 `yaml:"conviction" json:"conviction"`
	Trigger        float64 `yaml:"trigger" json:"trigger"`
	Age            int     `yaml:"age" json:"age"`
	Status         Status  `yaml:"status" json:"status"`
}

// NewProposal creates a candidate of age zero.
func NewProposal(fundsRequested, trigger float64) *Proposal {
	return &Proposal{
		FundsRequested: fundsRequested,
		Trigger:        trigger,
		Status:         StatusCandidate,
	}
}

// UpdateAge increments the age and returns it.
func (p *Proposal) UpdateAge() int {
	p.Age++
	return p.Age
}

// UpdateThreshold recomputes the trigger of a candidate. Other proposals keep
// the trigger they had when they left candidacy.
func (p *Proposal) UpdateThreshold(fundingPool, tokenSupply, maxProposalRequest float64) float64 {
	if p.Status == StatusCandidate {
		p.Trigger = conviction.TriggerThreshold(p.FundsRequested, fundingPool, tokenSupply, maxProposalRequest)
	}
	return p.Trigger
}

// HasEnoughConviction recomputes the threshold so callers need not run
// UpdateThreshold first.
func (p *Proposal) HasEnoughConviction(fundingPool, tokenSupply, maxProposalRequest float64) (bool, error) {
	if p.Status != StatusCandidate {
		return false, fmt.Errorf("proposal is %s, only candidates can pass", p.Status)
	}
	threshold := conviction.TriggerThreshold(p.FundsRequested, fundingPool, tokenSupply, maxProposalRequest)
	return conviction.Passes(p.Conviction, threshold), nil
}

// SetStatus moves the proposal along its state machine.
func (p *Proposal) SetStatus(to Status) error {
	for _, s := range transitions[p.Status] {
		if s == to {
			p.Status = to
			return nil
		}
	}
	return fmt.Errorf("illegal proposal transition %s -> %s", p.Status, to)
}

// Clone returns an independent copy.
func (p *Proposal) Clone() *Proposal {
	c := *p
	return &c
}
