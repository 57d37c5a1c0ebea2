// Package simulation runs the commons economy one day at a time. A timestep
// is a fixed pipeline of stages; each stage first decides what happens from
// the state as it stands, then applies its updates.
package simulation

import (
	"errors"
	"fmt"

	"CommonsSim/internal/commons"
	"CommonsSim/internal/entities"
	"CommonsSim/internal/model"
	"CommonsSim/internal/network"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/vesting"
)

// ErrEmptyHatch is returned when the hatch raises nothing.
var ErrEmptyHatch = errors.New("hatch raised no funds")

// State is everything a timestep reads and writes. The scalar fields mirror
// the Commons and Network as of the last sync.
type State struct {
	Timestep       int
	Network        *network.Network
	Commons        *commons.Commons
	FundingPool    float64
	CollateralPool float64
	TokenSupply    float64
	TokenPrice     float64
	Sentiment      float64

	// LastDecision is the decision of the most recent stage that made one.
	LastDecision any
}

// Sync copies the Commons balances and the average participant sentiment
// into the scalar fields. With no participants left sentiment is 0.
func (s *State) Sync() error {
	pools := s.Commons.Pools()
	s.FundingPool = pools.FundingPool
	s.CollateralPool = pools.CollateralPool
	s.TokenSupply = pools.TokenSupply
	s.TokenPrice = pools.TokenPrice

	sentiment, err := s.Network.AvgSentiment()
	switch {
	case errors.Is(err, network.ErrNoParticipants):
		s.Sentiment = 0
	case err != nil:
		return fmt.Errorf("sync sentiment: %w", err)
	default:
		s.Sentiment = sentiment
	}
	return nil
}

// Record snapshots the scalars and node counts.
func (s *State) Record() model.TimestepRecord {
	counts := s.Network.StatusCounts()
	return model.TimestepRecord{
		Timestep:       s.Timestep,
		FundingPool:    s.FundingPool,
		CollateralPool: s.CollateralPool,
		TokenSupply:    s.TokenSupply,
		TokenPrice:     s.TokenPrice,
		Sentiment:      s.Sentiment,
		Participants:   len(s.Network.Participants()),
		Candidates:     counts[entities.StatusCandidate],
		Actives:        counts[entities.StatusActive],
		Completed:      counts[entities.StatusCompleted],
		Failed:         counts[entities.StatusFailed],
	}
}

// Clone deep-copies the network and the Commons.
func (s *State) Clone() *State {
	c := *s
	c.Network = s.Network.Clone()
	c.Commons = s.Commons.Clone()
	return &c
}

// Metrics counts proposals and participants and sums requested funds per
// proposal status.
func Metrics(n *network.Network) model.Metrics {
	m := model.Metrics{Participants: len(n.Participants())}
	for _, node := range n.Proposals() {
		p := node.Proposal
		switch p.Status {
		case entities.StatusCandidate:
			m.Candidates++
			m.CandidateFunds += p.FundsRequested
		case entities.StatusActive:
			m.Actives++
			m.ActiveFunds += p.FundsRequested
		case entities.StatusCompleted:
			m.Completed++
			m.CompletedFunds += p.FundsRequested
		case entities.StatusFailed:
			m.Failed++
			m.FailedFunds += p.FundsRequested
		}
	}
	return m
}

// Bootstrap hatches the commons from explicit hatcher contributions.
// Hatchers receive vesting tokens priced at DesiredTokenPrice; the raise is
// split between the funding and collateral pools by HatchTribute.
func Bootstrap(contributions []float64, params *model.Params, r rng.Random) (*State, error) {
	raise := 0.0
	for _, c := range contributions {
		if c < 0 {
			return nil, fmt.Errorf("negative hatcher contribution %v", c)
		}
		raise += c
	}
	if raise <= 0 {
		return nil, ErrEmptyHatch
	}

	cliff, halflife := vesting.Convert80p(params.Vesting80pUnlocked, params.VestingRatio)
	batches, supply := vesting.CreateTokenBatches(contributions, params.DesiredTokenPrice,
		vesting.Options{CliffDays: cliff, HalflifeDays: halflife})

	c := commons.New(raise, supply, params.HatchTribute, params.ExitTribute, params.Kappa)
	n := network.Bootstrap(batches, network.BootstrapConfig{
		Proposals:           params.Proposals,
		FundingPool:         c.FundingPool(),
		TokenSupply:         c.TokenSupply(),
		MaxProposalRequest:  params.MaxProposalRequest,
		FundsRequestedAlpha: params.FundsRequestedAlpha,
		FundsRequestedMin:   params.FundsRequestedMin,
		FundsRequestedScale: params.BootstrapFundsRequestedScale,
		Edges:               edgeParams(params),
	}, r)

	s := &State{Network: n, Commons: c}
	if err := s.Sync(); err != nil {
		return nil, err
	}
	return s, nil
}

// BootstrapRandom draws one contribution per hatcher, uniform up to
// HatcherContributionScale, and hatches from them.
func BootstrapRandom(params *model.Params, r rng.Random) (*State, error) {
	contributions := make([]float64, params.Hatchers)
	for i := range contributions {
		contributions[i] = r.Uniform() * params.HatcherContributionScale
	}
	return Bootstrap(contributions, params, r)
}

func edgeParams(p *model.Params) network.EdgeParams {
	return network.EdgeParams{
		ConflictRate:    p.ConflictRate,
		InfluenceScale:  p.InfluenceScale,
		InfluenceSigmas: p.InfluenceSigmas,
	}
}
