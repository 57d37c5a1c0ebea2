package model

// TimestepRecord is the scalar state after one timestep.
type TimestepRecord struct {
	Timestep       int     `json:"timestep" yaml:"timestep"`
	FundingPool    float64 `json:"funding_pool" yaml:"funding_pool"`
	CollateralPool float64 `json:"collateral_pool" yaml:"collateral_pool"`
	TokenSupply    float64 `json:"token_supply" yaml:"token_supply"`
	TokenPrice     float64 `json:"token_price" yaml:"token_price"`
	Sentiment      float64 `json:"sentiment" yaml:"sentiment"`
	Participants   int     `json:"participants" yaml:"participants"`
	Candidates     int     `json:"candidates" yaml:"candidates"`
	Actives        int     `json:"actives" yaml:"actives"`
	Completed      int     `json:"completed" yaml:"completed"`
	Failed         int     `json:"failed" yaml:"failed"`
}

// Metrics counts proposals by status and sums the funds they requested.
type Metrics struct {
	Participants   int     `json:"participants" yaml:"participants"`
	Candidates     int     `json:"candidates" yaml:"candidates"`
	Actives        int     `json:"actives" yaml:"actives"`
	Completed      int     `json:"completed" yaml:"completed"`
	Failed         int     `json:"failed" yaml:"failed"`
	CandidateFunds float64 `json:"candidate_funds" yaml:"candidate_funds"`
	ActiveFunds    float64 `json:"active_funds" yaml:"active_funds"`
	CompletedFunds float64 `json:"completed_funds" yaml:"completed_funds"`
	FailedFunds    float64 `json:"failed_funds" yaml:"failed_funds"`
}
