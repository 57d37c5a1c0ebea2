// Package entities holds the simulated agents: participants and the
// proposals they fund. Decision methods never mutate the receiver; they only
// report what the agent wants to do.
package entities

import (
	"fmt"
	"sort"

	"CommonsSim/internal/model"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/vesting"
)

// Participant is one member of the commons.
type Participant struct {
	Sentiment float64             `yaml:"sentiment" json:"sentiment"`
	Holdings  *vesting.TokenBatch `yaml:"holdings" json:"holdings"`
}

// NewParticipant creates a participant with the given holdings and sentiment.
func NewParticipant(holdings *vesting.TokenBatch, sentiment float64) *Participant {
	return &Participant{Sentiment: sentiment, Holdings: holdings}
}

// Clone returns a deep copy.
func (p *Participant) Clone() *Participant {
	return &Participant{Sentiment: p.Sentiment, Holdings: p.Holdings.Clone()}
}

// Buy returns the DAI the participant wants to invest, or 0.
func (p *Participant) Buy(r rng.Random, params *model.Params) (float64, error) {
	engagementRate := 0.3 * p.Sentiment
	force := p.Sentiment - params.SentimentSensitivity
	engaged, err := r.Probability(engagementRate)
	if err != nil {
		return 0, fmt.Errorf("buy: %w", err)
	}
	if engaged && force > 0 {
		return r.Uniform() * force * params.DeltaHoldingsScale, nil
	}
	return 0, nil
}

// Sell returns the tokens the participant wants to sell, or 0.
func (p *Participant) Sell(r rng.Random, params *model.Params) (float64, error) {
	engagementRate := 0.3 * p.Sentiment
	force := p.Sentiment - params.SentimentSensitivity
	engaged, err := r.Probability(engagementRate)
	if err != nil {
		return 0, fmt.Errorf("sell: %w", err)
	}
	if engaged && force < 0 {
		return r.Uniform() * -force * p.Holdings.Spendable(), nil
	}
	return 0, nil
}

// IncreaseHoldings adds nonvesting tokens.
func (p *Participant) IncreaseHoldings(x float64) {
	p.Holdings.IncreaseHoldings(x)
}

// Spend forwards to the token batch.
func (p *Participant) Spend(x float64) error {
	return p.Holdings.Spend(x)
}

// UpdateTokenBatchAge ages the holdings by days.
func (p *Participant) UpdateTokenBatchAge(days int) int {
	return p.Holdings.UpdateAge(days)
}

// CreateProposal decides whether to create a new proposal. A high median
// affinity raises the rate; a crowded funding pool lowers it.
func (p *Participant) CreateProposal(r rng.Random, totalFundsRequested, medianAffinity, fundingPool float64) (bool, error) {
	requested := totalFundsRequested / fundingPool
	rate := medianAffinity / (1 + requested)
	ok, err := r.Probability(rate)
	if err != nil {
		return false, fmt.Errorf("create proposal: %w", err)
	}
	return ok, nil
}

// VoteOnCandidateProposals picks the candidates whose affinity is strictly
// above max(0.75 * highest affinity, 0.5). Keys are proposal node IDs.
func (p *Participant) VoteOnCandidateProposals(r rng.Random, candidates map[int64]float64) (map[int64]float64, error) {
	voted := map[int64]float64{}
	engaged, err := r.Probability(1.0)
	if err != nil {
		return nil, fmt.Errorf("vote: %w", err)
	}
	if !engaged || len(candidates) == 0 {
		return voted, nil
	}

	highest := 0.0
	first := true
	for _, a := range candidates {
		if first || a > highest {
			highest = a
			first = false
		}
	}
	cutoff := 0.75 * highest
	if cutoff < 0.5 {
		cutoff = 0.5
	}
	for id, a := range candidates {
		if a > cutoff {
			voted[id] = a
		}
	}
	return voted, nil
}

// Support is one proposal a participant backs, with its affinity.
type Support struct {
	Affinity   float64
	ProposalID int64
}

// StakeAcrossAllSupportedProposals splits the participant's whole holdings
// over the supported proposals in proportion to affinity.
func (p *Participant) StakeAcrossAllSupportedProposals(supported []Support) map[int64]float64 {
	sorted := make([]Support, len(supported))
	copy(sorted, supported)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Affinity < sorted[j].Affinity })

	affinityTotal := 0.0
	for _, s := range sorted {
		affinityTotal += s.Affinity
	}
	total := p.Holdings.Total()
	stakes := make(map[int64]float64, len(sorted))
	for _, s := range sorted {
		stakes[s.ProposalID] = total * (s.Affinity / affinityTotal)
	}
	return stakes
}

// WantsToExit decides whether the participant leaves the commons. Only
// participants that pass the exit gate may leave; the rate grows as
// sentiment drops below the sensitivity.
func (p *Participant) WantsToExit(r rng.Random, params *model.Params) (bool, error) {
	switch params.ExitGate {
	case model.ExitGateTotalZero:
		if p.Holdings.Total() != 0 {
			return false, nil
		}
	default:
		if p.Holdings.VestingRemaining() != 0 {
			return false, nil
		}
	}
	rate := params.SentimentSensitivity - p.Sentiment
	if rate <= 0 {
		return false, nil
	}
	ok, err := r.Probability(rate)
	if err != nil {
		return false, fmt.Errorf("exit: %w", err)
	}
	return ok, nil
}

// AdjustSentiment adds delta and clamps the result to [0, 1].
func (p *Participant) AdjustSentiment(delta float64) float64 {
	s := p.Sentiment + delta
	switch {
	case s > 1:
		s = 1
	case s < 0:
		s = 0
	}
	p.Sentiment = s
	return s
}
