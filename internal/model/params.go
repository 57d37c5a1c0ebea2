package model

// Exit gates accepted by Params.ExitGate.
const (
	ExitGateVestingZero = "vesting_zero"
	ExitGateTotalZero   = "total_zero"
)

// Params is the full parameter set of one simulation run.
type Params struct {
	Hatchers                   int     `yaml:"hatchers" json:"hatchers"`
	Proposals                  int     `yaml:"proposals" json:"proposals"`
	HatchTribute               float64 `yaml:"hatch_tribute" json:"hatch_tribute"`
	Vesting80pUnlocked         float64 `yaml:"vesting_80p_unlocked" json:"vesting_80p_unlocked"`
	ExitTribute                float64 `yaml:"exit_tribute" json:"exit_tribute"`
	Kappa                      float64 `yaml:"kappa" json:"kappa"`
	DaysTo80pOfMaxVotingWeight float64 `yaml:"days_to_80p_of_max_voting_weight" json:"days_to_80p_of_max_voting_weight"`
	MaxProposalRequest         float64 `yaml:"max_proposal_request" json:"max_proposal_request"`
	Timesteps                  int     `yaml:"timesteps" json:"timesteps"`
	RandomSeed                 uint64  `yaml:"random_seed" json:"random_seed"`
	DesiredTokenPrice          float64 `yaml:"desired_token_price" json:"desired_token_price"`
	HatcherContributionScale   float64 `yaml:"hatcher_contribution_scale" json:"hatcher_contribution_scale"`
	VestingRatio               float64 `yaml:"vesting_ratio" json:"vesting_ratio"`

	SentimentDecay                 float64 `yaml:"sentiment_decay" json:"sentiment_decay"`
	SentimentSensitivity           float64 `yaml:"sentiment_sensitivity" json:"sentiment_sensitivity"`
	DeltaHoldingsScale             float64 `yaml:"delta_holdings_scale" json:"delta_holdings_scale"`
	SentimentBonusProposalActive   float64 `yaml:"sentiment_bonus_proposal_becomes_active" json:"sentiment_bonus_proposal_becomes_active"`
	SentimentBonusProposalComplete float64 `yaml:"sentiment_bonus_proposal_becomes_completed" json:"sentiment_bonus_proposal_becomes_completed"`
	SentimentBonusProposalFailed   float64 `yaml:"sentiment_bonus_proposal_becomes_failed" json:"sentiment_bonus_proposal_becomes_failed"`

	InvestmentNewParticipantMin   float64 `yaml:"investment_new_participant_min" json:"investment_new_participant_min"`
	InvestmentNewParticipantStdev float64 `yaml:"investment_new_participant_stdev" json:"investment_new_participant_stdev"`

	SpeculatorPositionSizeMin   float64 `yaml:"speculator_position_size_min" json:"speculator_position_size_min"`
	SpeculatorPositionSizeStdev float64 `yaml:"speculator_position_size_stdev" json:"speculator_position_size_stdev"`
	Speculators                 int     `yaml:"speculators" json:"speculators"`

	MinAgeDays                   int     `yaml:"min_age_days" json:"min_age_days"`
	MinSupp                      float64 `yaml:"min_supp" json:"min_supp"`
	ScaleFactor                  float64 `yaml:"scale_factor" json:"scale_factor"`
	BaseFailureRate              float64 `yaml:"base_failure_rate" json:"base_failure_rate"`
	BaseSuccessRate              float64 `yaml:"base_success_rate" json:"base_success_rate"`
	FundsRequestedAlpha          float64 `yaml:"funds_requested_alpha" json:"funds_requested_alpha"`
	FundsRequestedMin            float64 `yaml:"funds_requested_min" json:"funds_requested_min"`
	BootstrapFundsRequestedScale float64 `yaml:"bootstrap_funds_requested_scale" json:"bootstrap_funds_requested_scale"`
	ConflictRate                 float64 `yaml:"conflict_rate" json:"conflict_rate"`

	InfluenceScale  float64 `yaml:"influence_scale" json:"influence_scale"`
	InfluenceSigmas float64 `yaml:"influence_sigmas" json:"influence_sigmas"`

	ExitGate           string `yaml:"exit_gate" json:"exit_gate"`
	KeepNetworkHistory bool   `yaml:"keep_network_history" json:"keep_network_history"`
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		Hatchers:                   6,
		Proposals:                  2,
		HatchTribute:               0.2,
		Vesting80pUnlocked:         60,
		ExitTribute:                0.35,
		Kappa:                      2,
		DaysTo80pOfMaxVotingWeight: 10,
		MaxProposalRequest:         0.2,
		Timesteps:                  100,
		RandomSeed:                 1,
		DesiredTokenPrice:          0.1,
		HatcherContributionScale:   1e6,
		VestingRatio:               2,

		SentimentDecay:                 0.01,
		SentimentSensitivity:           0.75,
		DeltaHoldingsScale:             10000,
		SentimentBonusProposalActive:   0.5,
		SentimentBonusProposalComplete: 0.25,
		SentimentBonusProposalFailed:   -0.25,

		InvestmentNewParticipantMin:   0,
		InvestmentNewParticipantStdev: 100,

		SpeculatorPositionSizeMin:   200,
		SpeculatorPositionSizeStdev: 200,
		Speculators:                 5,

		MinAgeDays:                   2,
		MinSupp:                      50,
		ScaleFactor:                  0.01,
		BaseFailureRate:              0.15,
		BaseSuccessRate:              0.30,
		FundsRequestedAlpha:          3,
		FundsRequestedMin:            0.001,
		BootstrapFundsRequestedScale: 10000,
		ConflictRate:                 0.25,

		InfluenceScale:  1,
		InfluenceSigmas: 3,

		ExitGate: ExitGateVestingZero,
	}
}
