package simulation

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"CommonsSim/internal/conviction"
	"CommonsSim/internal/entities"
	"CommonsSim/internal/logging"
	"CommonsSim/internal/model"
	"CommonsSim/internal/network"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/vesting"
)

// Env is what stages need besides the state.
type Env struct {
	Params *model.Params
	Rand   rng.Random
	Log    *slog.Logger
	Trace  *logging.DecisionLogger
}

// Stage is one step of the timestep pipeline.
type Stage interface {
	Name() string
	Apply(env *Env, s *State) error
}

// stage decides once from the unmodified state, then runs its updates in
// order with that decision.
type stage[D any] struct {
	name    string
	decide  func(*Env, *State) (D, error)
	updates []func(*Env, *State, D) error
}

func (st *stage[D]) Name() string { return st.name }

func (st *stage[D]) Apply(env *Env, s *State) error {
	var d D
	if st.decide != nil {
		var err error
		if d, err = st.decide(env, s); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	for _, update := range st.updates {
		if err := update(env, s, d); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	if st.decide != nil {
		s.LastDecision = d
		env.Trace.Stage(s.Timestep, st.name, d)
	}
	return nil
}

// Pipeline returns the stages of one timestep in execution order.
func Pipeline() []Stage {
	return []Stage{
		&stage[NewParticipantDecision]{
			name:    "new_participant",
			decide:  decideNewParticipant,
			updates: []func(*Env, *State, NewParticipantDecision) error{addNewParticipant},
		},
		syncStage(),
		&stage[NewProposalDecision]{
			name:    "new_proposal",
			decide:  decideNewProposal,
			updates: []func(*Env, *State, NewProposalDecision) error{addNewProposal},
		},
		&stage[NewFundingDecision]{
			name:    "new_funding",
			decide:  decideNewFunding,
			updates: []func(*Env, *State, NewFundingDecision) error{addNewFunding},
		},
		syncStage(),
		&stage[GrantOutcomeDecision]{
			name:    "active_proposals",
			decide:  decideGrantOutcomes,
			updates: []func(*Env, *State, GrantOutcomeDecision) error{resolveGrants},
		},
		&stage[struct{}]{
			name:    "age_candidates",
			updates: []func(*Env, *State, struct{}) error{ageCandidates},
		},
		&stage[FundingDecision]{
			name:   "proposal_funding",
			decide: decideFunding,
			updates: []func(*Env, *State, FundingDecision) error{
				fundProposals,
				expireProposals,
				releaseStakes,
			},
		},
		syncStage(),
		&stage[VotingDecision]{
			name:    "participant_voting",
			decide:  decideVotes,
			updates: []func(*Env, *State, VotingDecision) error{applyVotes},
		},
		&stage[struct{}]{
			name:    "conviction",
			updates: []func(*Env, *State, struct{}) error{accrueConviction},
		},
		&stage[TradeDecision]{
			name:    "participant_buys",
			decide:  decideBuys,
			updates: []func(*Env, *State, TradeDecision) error{applyBuys},
		},
		&stage[TradeDecision]{
			name:    "participant_sells",
			decide:  decideSells,
			updates: []func(*Env, *State, TradeDecision) error{applySells},
		},
		&stage[ExitDecision]{
			name:    "participant_exits",
			decide:  decideExits,
			updates: []func(*Env, *State, ExitDecision) error{applyExits},
		},
		syncStage(),
		&stage[struct{}]{
			name:    "housekeeping",
			updates: []func(*Env, *State, struct{}) error{housekeeping},
		},
	}
}

func syncStage() Stage {
	return &stage[struct{}]{
		name: "sync",
		updates: []func(*Env, *State, struct{}) error{
			func(_ *Env, s *State, _ struct{}) error { return s.Sync() },
		},
	}
}

// NewParticipantDecision says whether someone joins and with what.
type NewParticipantDecision struct {
	Arrived    bool    `json:"arrived"`
	Investment float64 `json:"investment,omitempty"`
	Sentiment  float64 `json:"sentiment,omitempty"`
}

func decideNewParticipant(env *Env, s *State) (NewParticipantDecision, error) {
	arrived, err := env.Rand.Probability((1 + s.Sentiment) / 10)
	if err != nil || !arrived {
		return NewParticipantDecision{}, err
	}
	p := env.Params
	return NewParticipantDecision{
		Arrived:    true,
		Investment: env.Rand.Exponential(p.InvestmentNewParticipantMin, p.InvestmentNewParticipantStdev),
		Sentiment:  env.Rand.Uniform(),
	}, nil
}

// addNewParticipant buys in through the curve and hands the newcomer the
// minted tokens, unvested.
func addNewParticipant(env *Env, s *State, d NewParticipantDecision) error {
	if !d.Arrived {
		return nil
	}
	tokens, price := s.Commons.Deposit(d.Investment)
	holdings := vesting.NewTokenBatch(0, tokens, vesting.Options{})
	id := s.Network.AddParticipant(entities.NewParticipant(holdings, d.Sentiment), env.Rand, edgeParams(env.Params))
	env.Log.Debug("participant joined", "id", id, "investment", d.Investment, "tokens", tokens, "price", price)
	return nil
}

// NewProposalDecision says whether a participant submits a proposal.
type NewProposalDecision struct {
	Created        bool    `json:"created"`
	Author         int64   `json:"author"`
	FundsRequested float64 `json:"funds_requested,omitempty"`
}

func decideNewProposal(env *Env, s *State) (NewProposalDecision, error) {
	participants := s.Network.Participants()
	if len(participants) == 0 || s.FundingPool <= 0 {
		return NewProposalDecision{}, nil
	}
	author := participants[env.Rand.Choice(len(participants))]

	median, err := s.Network.MedianAffinity()
	if errors.Is(err, network.ErrNoSupportEdges) {
		return NewProposalDecision{}, nil
	}
	if err != nil {
		return NewProposalDecision{}, err
	}
	ok, err := author.Participant.CreateProposal(env.Rand, s.Network.TotalFundsRequested(), median, s.FundingPool)
	if err != nil || !ok {
		return NewProposalDecision{}, err
	}

	p := env.Params
	return NewProposalDecision{
		Created:        true,
		Author:         author.ID(),
		FundsRequested: env.Rand.Gamma(p.FundsRequestedAlpha, p.FundsRequestedMin, s.FundingPool*p.ScaleFactor),
	}, nil
}

func addNewProposal(env *Env, s *State, d NewProposalDecision) error {
	if !d.Created {
		return nil
	}
	trigger := conviction.TriggerThreshold(d.FundsRequested, s.FundingPool, s.TokenSupply, env.Params.MaxProposalRequest)
	id, err := s.Network.AddProposal(entities.NewProposal(d.FundsRequested, trigger), d.Author, env.Rand, edgeParams(env.Params))
	if err != nil {
		return err
	}
	env.Log.Debug("proposal created", "id", id, "author", d.Author, "funds_requested", d.FundsRequested, "trigger", trigger)
	return nil
}

// NewFundingDecision is the exit tribute paid by speculators this step.
type NewFundingDecision struct {
	Funding float64 `json:"funding"`
}

func decideNewFunding(env *Env, s *State) (NewFundingDecision, error) {
	p := env.Params
	positions := 0.0
	for i := 0; i < p.Speculators; i++ {
		positions += env.Rand.Exponential(p.SpeculatorPositionSizeMin, p.SpeculatorPositionSizeStdev)
	}
	return NewFundingDecision{Funding: positions * s.Commons.ExitTribute()}, nil
}

func addNewFunding(_ *Env, s *State, d NewFundingDecision) error {
	if d.Funding == 0 {
		return nil
	}
	return s.Commons.AddFunding(d.Funding)
}

// GrantOutcomeDecision lists the active proposals that finish this step.
type GrantOutcomeDecision struct {
	Failed    []int64 `json:"failed,omitempty"`
	Completed []int64 `json:"completed,omitempty"`
}

// grantRate is 1/(base + ln(funds)) clamped to [0, 1]. Larger grants
// resolve more slowly; grants below e^-base get rate 0 and never resolve.
func grantRate(base, funds float64) float64 {
	rate := 1 / (base + math.Log(funds))
	switch {
	case math.IsNaN(rate) || rate < 0:
		return 0
	case rate > 1:
		return 1
	}
	return rate
}

func decideGrantOutcomes(env *Env, s *State) (GrantOutcomeDecision, error) {
	var d GrantOutcomeDecision
	for _, node := range s.Network.Proposals(entities.StatusActive) {
		funds := node.Proposal.FundsRequested
		failed, err := env.Rand.Probability(grantRate(env.Params.BaseFailureRate, funds))
		if err != nil {
			return GrantOutcomeDecision{}, err
		}
		if failed {
			d.Failed = append(d.Failed, node.ID())
			continue
		}
		completed, err := env.Rand.Probability(grantRate(env.Params.BaseSuccessRate, funds))
		if err != nil {
			return GrantOutcomeDecision{}, err
		}
		if completed {
			d.Completed = append(d.Completed, node.ID())
		}
	}
	return d, nil
}

func resolveGrants(env *Env, s *State, d GrantOutcomeDecision) error {
	for _, id := range d.Failed {
		if err := s.Network.Proposal(id).SetStatus(entities.StatusFailed); err != nil {
			return fmt.Errorf("proposal %d: %w", id, err)
		}
		rewardAuthors(s.Network, id, env.Params.SentimentBonusProposalFailed)
		env.Log.Debug("grant failed", "proposal", id)
	}
	for _, id := range d.Completed {
		if err := s.Network.Proposal(id).SetStatus(entities.StatusCompleted); err != nil {
			return fmt.Errorf("proposal %d: %w", id, err)
		}
		rewardAuthors(s.Network, id, env.Params.SentimentBonusProposalComplete)
		env.Log.Debug("grant completed", "proposal", id)
	}
	return nil
}

// rewardAuthors moves the sentiment of every participant with affinity 1 to
// the proposal. Only authors are given that affinity.
func rewardAuthors(n *network.Network, proposal int64, bonus float64) {
	for _, e := range n.SupportEdgesTo(proposal) {
		if e.Affinity == 1 {
			e.F.Participant.AdjustSentiment(bonus)
		}
	}
}

func ageCandidates(env *Env, s *State, _ struct{}) error {
	for _, node := range s.Network.Proposals(entities.StatusCandidate) {
		node.Proposal.UpdateAge()
		node.Proposal.UpdateThreshold(s.FundingPool, s.TokenSupply, env.Params.MaxProposalRequest)
	}
	return nil
}

// FundingDecision lists the candidates that pass and the ones that expire.
type FundingDecision struct {
	Funded  []int64 `json:"funded,omitempty"`
	Expired []int64 `json:"expired,omitempty"`
}

// decideFunding passes every candidate whose conviction reached its trigger.
// Candidates that outlived MinAgeDays without MinSupp staked tokens expire.
func decideFunding(env *Env, s *State) (FundingDecision, error) {
	var d FundingDecision
	for _, node := range s.Network.Proposals(entities.StatusCandidate) {
		p := node.Proposal
		total, err := s.Network.TotalConviction(node.ID())
		if err != nil {
			return FundingDecision{}, err
		}
		if conviction.Passes(total, p.Trigger) {
			d.Funded = append(d.Funded, node.ID())
			continue
		}
		if p.Age >= env.Params.MinAgeDays && s.Network.TotalStaked(node.ID()) < env.Params.MinSupp {
			d.Expired = append(d.Expired, node.ID())
		}
	}
	return d, nil
}

// fundProposals spends each passed request from the funding pool. A pool
// that cannot cover a request aborts the step with ErrInsufficientFundingPool.
func fundProposals(env *Env, s *State, d FundingDecision) error {
	for _, id := range d.Funded {
		p := s.Network.Proposal(id)
		if err := s.Commons.Spend(p.FundsRequested); err != nil {
			return fmt.Errorf("fund proposal %d: %w", id, err)
		}
		if err := p.SetStatus(entities.StatusActive); err != nil {
			return fmt.Errorf("proposal %d: %w", id, err)
		}
		rewardAuthors(s.Network, id, env.Params.SentimentBonusProposalActive)
		env.Log.Info("proposal funded", "timestep", s.Timestep, "proposal", id,
			"funds", p.FundsRequested, "conviction", p.Conviction, "trigger", p.Trigger)
	}
	return nil
}

func expireProposals(env *Env, s *State, d FundingDecision) error {
	for _, id := range d.Expired {
		if err := s.Network.Proposal(id).SetStatus(entities.StatusFailed); err != nil {
			return fmt.Errorf("proposal %d: %w", id, err)
		}
		env.Log.Debug("proposal expired", "timestep", s.Timestep, "proposal", id)
	}
	return nil
}

// releaseStakes clears the tokens and conviction on every support edge of
// a proposal that left candidacy.
func releaseStakes(_ *Env, s *State, d FundingDecision) error {
	for _, ids := range [][]int64{d.Funded, d.Expired} {
		for _, id := range ids {
			for _, e := range s.Network.SupportEdgesTo(id) {
				e.Tokens = 0
				e.Conviction = 0
			}
		}
	}
	return nil
}

// VotingDecision maps each participant to its stake per candidate. A
// participant with an empty map withdraws every stake.
type VotingDecision struct {
	Stakes map[int64]map[int64]float64 `json:"stakes"`
}

func decideVotes(env *Env, s *State) (VotingDecision, error) {
	d := VotingDecision{Stakes: map[int64]map[int64]float64{}}
	for _, node := range s.Network.Participants() {
		candidates := map[int64]float64{}
		for _, e := range s.Network.SupportEdgesOf(node.ID()) {
			if e.T.Proposal.Status == entities.StatusCandidate {
				candidates[e.T.ID()] = e.Affinity
			}
		}
		voted, err := node.Participant.VoteOnCandidateProposals(env.Rand, candidates)
		if err != nil {
			return VotingDecision{}, err
		}

		supports := make([]entities.Support, 0, len(voted))
		for id, affinity := range voted {
			supports = append(supports, entities.Support{Affinity: affinity, ProposalID: id})
		}
		sort.Slice(supports, func(i, j int) bool { return supports[i].ProposalID < supports[j].ProposalID })
		d.Stakes[node.ID()] = node.Participant.StakeAcrossAllSupportedProposals(supports)
	}
	return d, nil
}

func applyVotes(_ *Env, s *State, d VotingDecision) error {
	for participant, stakes := range d.Stakes {
		for _, e := range s.Network.SupportEdgesOf(participant) {
			if e.T.Proposal.Status == entities.StatusCandidate {
				e.Tokens = stakes[e.T.ID()]
			}
		}
	}
	return nil
}

// accrueConviction must run exactly once per timestep.
func accrueConviction(env *Env, s *State, _ struct{}) error {
	alpha := conviction.Alpha(env.Params.DaysTo80pOfMaxVotingWeight)
	for _, node := range s.Network.Proposals(entities.StatusCandidate) {
		total := 0.0
		for _, e := range s.Network.SupportEdgesTo(node.ID()) {
			e.Conviction = conviction.Next(e.Tokens, alpha, e.Conviction)
			total += e.Conviction
		}
		node.Proposal.Conviction = total
	}
	return nil
}

// Order is one participant's side of a bulk trade: DAI for buys, tokens for
// sells.
type Order struct {
	Participant int64   `json:"participant"`
	Amount      float64 `json:"amount"`
}

// TradeDecision is a bulk buy or sell.
type TradeDecision struct {
	Orders []Order `json:"orders,omitempty"`
	Total  float64 `json:"total"`
}

func decideBuys(env *Env, s *State) (TradeDecision, error) {
	return decideTrades(s, func(p *entities.Participant) (float64, error) {
		return p.Buy(env.Rand, env.Params)
	})
}

func decideSells(env *Env, s *State) (TradeDecision, error) {
	return decideTrades(s, func(p *entities.Participant) (float64, error) {
		return p.Sell(env.Rand, env.Params)
	})
}

func decideTrades(s *State, want func(*entities.Participant) (float64, error)) (TradeDecision, error) {
	var d TradeDecision
	for _, node := range s.Network.Participants() {
		x, err := want(node.Participant)
		if err != nil {
			return TradeDecision{}, fmt.Errorf("participant %d: %w", node.ID(), err)
		}
		if x > 0 {
			d.Orders = append(d.Orders, Order{Participant: node.ID(), Amount: x})
			d.Total += x
		}
	}
	return d, nil
}

// applyBuys deposits all orders at once and splits the minted tokens pro
// rata to the DAI each buyer put in.
func applyBuys(env *Env, s *State, d TradeDecision) error {
	if len(d.Orders) == 0 {
		return nil
	}
	tokens, price := s.Commons.Deposit(d.Total)
	for _, o := range d.Orders {
		s.Network.Participant(o.Participant).IncreaseHoldings((o.Amount / d.Total) * tokens)
	}
	env.Log.Debug("bulk buy", "timestep", s.Timestep, "buyers", len(d.Orders), "dai", d.Total, "tokens", tokens, "price", price)
	return nil
}

// applySells takes the tokens from each seller and burns what was actually
// taken in one go. A seller that cannot cover its order is skipped.
func applySells(env *Env, s *State, d TradeDecision) error {
	burned := 0.0
	for _, o := range d.Orders {
		if err := s.Network.Participant(o.Participant).Spend(o.Amount); err != nil {
			if errors.Is(err, vesting.ErrInsufficientBalance) {
				env.Log.Warn("sell skipped", "participant", o.Participant, "tokens", o.Amount, "err", err)
				continue
			}
			return fmt.Errorf("participant %d: %w", o.Participant, err)
		}
		burned += o.Amount
	}
	if burned == 0 {
		return nil
	}
	dai, price := s.Commons.Burn(burned)
	env.Log.Debug("bulk sell", "timestep", s.Timestep, "tokens", burned, "dai", dai, "price", price)
	return nil
}

// Exit is a participant leaving with its remaining holdings.
type Exit struct {
	Participant int64   `json:"participant"`
	Sentiment   float64 `json:"sentiment"`
	Holdings    float64 `json:"holdings"`
}

// ExitDecision lists the participants leaving this step.
type ExitDecision struct {
	Exits []Exit `json:"exits,omitempty"`
}

func decideExits(env *Env, s *State) (ExitDecision, error) {
	var d ExitDecision
	for _, node := range s.Network.Participants() {
		p := node.Participant
		leaving, err := p.WantsToExit(env.Rand, env.Params)
		if err != nil {
			return ExitDecision{}, fmt.Errorf("participant %d: %w", node.ID(), err)
		}
		if leaving {
			d.Exits = append(d.Exits, Exit{Participant: node.ID(), Sentiment: p.Sentiment, Holdings: p.Holdings.Total()})
		}
	}
	return d, nil
}

func applyExits(env *Env, s *State, d ExitDecision) error {
	for _, ex := range d.Exits {
		if ex.Holdings > 0 {
			s.Commons.Burn(ex.Holdings)
		}
		if err := s.Network.RemoveParticipant(ex.Participant); err != nil {
			return err
		}
		env.Log.Debug("participant exited", "timestep", s.Timestep, "id", ex.Participant,
			"sentiment", ex.Sentiment, "holdings", ex.Holdings)
	}
	return nil
}

func housekeeping(env *Env, s *State, _ struct{}) error {
	for _, node := range s.Network.Participants() {
		node.Participant.UpdateTokenBatchAge(1)
		node.Participant.AdjustSentiment(-env.Params.SentimentDecay)
	}
	return nil
}
