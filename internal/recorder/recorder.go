package recorder

import (
	"math"

	"CommonsSim/internal/entities"
	"CommonsSim/internal/model"
	"CommonsSim/internal/network"
	"CommonsSim/internal/simulation"
)

// RunRecord is the summary row of one simulation run.
type RunRecord struct {
	RunID            string
	Seed             uint64
	Timesteps        int
	Params           model.Params
	Metrics          model.Metrics
	FinalPrice       float64
	FinalFundingPool float64
	FinalSentiment   float64
	ScoreTotal       float64
	Grade            string
}

// ProposalRecord is a proposal as it stood at the end of a run. Trigger is
// +Inf for proposals that could never pass.
type ProposalRecord struct {
	ProposalID     int64
	Status         entities.Status
	FundsRequested float64
	Conviction     float64
	Trigger        float64
	Age            int
}

// Recorder persists finished runs for later analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordTimesteps(runID string, records []model.TimestepRecord) error
	RecordProposals(runID string, proposals []ProposalRecord) error
	Close() error
}

// NewRunRecord summarises res and its score.
func NewRunRecord(res *simulation.RunResult, sc model.RunScore) *RunRecord {
	rec := &RunRecord{
		RunID:      res.RunID,
		Seed:       res.Params.RandomSeed,
		Timesteps:  res.Params.Timesteps,
		Params:     res.Params,
		Metrics:    res.Metrics,
		ScoreTotal: sc.Total,
		Grade:      sc.Grade,
	}
	if n := len(res.Records); n > 0 {
		last := res.Records[n-1]
		rec.FinalPrice = last.TokenPrice
		rec.FinalFundingPool = last.FundingPool
		rec.FinalSentiment = last.Sentiment
	}
	return rec
}

// ProposalRecords lists every proposal in n in ID order.
func ProposalRecords(n *network.Network) []ProposalRecord {
	nodes := n.Proposals()
	out := make([]ProposalRecord, len(nodes))
	for i, node := range nodes {
		p := node.Proposal
		out[i] = ProposalRecord{
			ProposalID:     node.ID(),
			Status:         p.Status,
			FundsRequested: p.FundsRequested,
			Conviction:     p.Conviction,
			Trigger:        p.Trigger,
			Age:            p.Age,
		}
	}
	return out
}

// Save writes the run summary, its timesteps and its final proposals.
func Save(r Recorder, res *simulation.RunResult, sc model.RunScore) error {
	if err := r.RecordRun(NewRunRecord(res, sc)); err != nil {
		return err
	}
	if err := r.RecordTimesteps(res.RunID, res.Records); err != nil {
		return err
	}
	if res.Final == nil {
		return nil
	}
	return r.RecordProposals(res.RunID, ProposalRecords(res.Final.Network))
}

// finite maps NaN and infinities to nil so they are stored as NULL.
func finite(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
