// Package score grades a finished run from its timestep records and final
// proposal metrics.
package score

import (
	"math"

	"CommonsSim/internal/model"
	"CommonsSim/internal/simulation"
)

// DefaultSigma scales the factor sum into the reported total.
const DefaultSigma = 100

// Grades maps a total score to a label, best first.
var Grades = []struct {
	MinTotal float64
	Label    string
}{
	{1000, "thriving"},
	{500, "healthy"},
	{0, "struggling"},
}

// DefaultGrade is the label for totals below every threshold.
const DefaultGrade = "failing"

func grade(total float64) string {
	for _, g := range Grades {
		if total >= g.MinTotal {
			return g.Label
		}
	}
	return DefaultGrade
}

// Input is what a run contributes to its score.
type Input struct {
	Records          []model.TimestepRecord
	Metrics          model.Metrics
	Hatchers         int
	InitialProposals int
}

// FromRun collects the scoring input of a finished run.
func FromRun(res *simulation.RunResult) Input {
	return Input{
		Records:          res.Records,
		Metrics:          res.Metrics,
		Hatchers:         res.Hatchers,
		InitialProposals: res.Params.Proposals,
	}
}

// Evaluate computes every factor, sums the finite ones and scales the sum
// by sigma, rounding half to even.
func Evaluate(in Input, sigma float64) model.RunScore {
	s := series(in.Records)
	factors := []model.FactorScore{
		scoreAvgFundsToInitial(s),
		scoreAvgPriceToInitial(s),
		scoreAvgSentiment(s),
		scoreFinalSentiment(s),
		scoreFundedProposals(in.Metrics, in.InitialProposals),
		scoreFundsSpent(in.Metrics, s),
		scoreParticipantsToHatchers(in.Metrics, in.Hatchers),
		scorePriceRatio(s),
		scoreSuccessToFailed(in.Metrics),
	}

	sum := 0.0
	for i := range factors {
		f := &factors[i]
		f.Counted = !math.IsNaN(f.Value) && !math.IsInf(f.Value, 0)
		if f.Counted {
			sum += f.Value
		}
	}
	total := math.RoundToEven(sum * sigma)
	return model.RunScore{
		Factors: factors,
		Sum:     sum,
		Total:   total,
		Grade:   grade(total),
	}
}
