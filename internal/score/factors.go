package score

import (
	"fmt"
	"math"

	"CommonsSim/internal/calculator"
	"CommonsSim/internal/model"
)

type runSeries struct {
	prices      []float64
	fundingPool []float64
	sentiment   []float64
}

func series(records []model.TimestepRecord) runSeries {
	s := runSeries{
		prices:      make([]float64, len(records)),
		fundingPool: make([]float64, len(records)),
		sentiment:   make([]float64, len(records)),
	}
	for i, r := range records {
		s.prices[i] = r.TokenPrice
		s.fundingPool[i] = r.FundingPool
		s.sentiment[i] = r.Sentiment
	}
	return s
}

func first(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[0]
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

func mean(values []float64) float64 {
	m, err := calculator.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return m
}

// scorePriceRatio compares the final token price with the hatch price.
func scorePriceRatio(s runSeries) model.FactorScore {
	hatch, final := first(s.prices), last(s.prices)
	return model.FactorScore{
		Name:       "price_ratio",
		Value:      final / hatch,
		Commentary: fmt.Sprintf("%.4f -> %.4f", hatch, final),
	}
}

// scoreAvgPriceToInitial is how many standard deviations the average price
// sits above the hatch price.
func scoreAvgPriceToInitial(s runSeries) model.FactorScore {
	hatch := first(s.prices)
	avg := mean(s.prices)
	std, err := calculator.StdDev(s.prices)
	if err != nil {
		std = math.NaN()
	}
	return model.FactorScore{
		Name:       "avg_price_to_initial",
		Value:      (avg - hatch) / std,
		Commentary: fmt.Sprintf("avg %.4f, std %.4f", avg, std),
	}
}

// scoreFundedProposals compares the proposals that ever got funded with
// the ones present at the hatch.
func scoreFundedProposals(m model.Metrics, initial int) model.FactorScore {
	funded := float64(m.Actives + m.Completed + m.Failed)
	return model.FactorScore{
		Name:       "funded_proposals_ratio",
		Value:      (funded - float64(initial)) / funded,
		Commentary: fmt.Sprintf("%.0f funded, %d at hatch", funded, initial),
	}
}

// scoreFundsSpent compares what left the funding pool with what the hatch
// put in.
func scoreFundsSpent(m model.Metrics, s runSeries) model.FactorScore {
	hatch := first(s.fundingPool)
	spent := m.ActiveFunds + m.CompletedFunds + m.FailedFunds
	return model.FactorScore{
		Name:       "funds_spent_ratio",
		Value:      (spent - hatch) / spent,
		Commentary: fmt.Sprintf("%.0f spent, %.0f at hatch", spent, hatch),
	}
}

func scoreAvgFundsToInitial(s runSeries) model.FactorScore {
	hatch := first(s.fundingPool)
	avg := mean(s.fundingPool)
	return model.FactorScore{
		Name:       "avg_funds_to_initial",
		Value:      avg / hatch,
		Commentary: fmt.Sprintf("avg %.0f", avg),
	}
}

func scoreFinalSentiment(s runSeries) model.FactorScore {
	v := last(s.sentiment)
	return model.FactorScore{Name: "final_sentiment", Value: v, Commentary: fmt.Sprintf("%.3f", v)}
}

func scoreAvgSentiment(s runSeries) model.FactorScore {
	v := mean(s.sentiment)
	return model.FactorScore{Name: "avg_sentiment", Value: v, Commentary: fmt.Sprintf("%.3f", v)}
}

func scoreSuccessToFailed(m model.Metrics) model.FactorScore {
	return model.FactorScore{
		Name:       "success_to_failed",
		Value:      float64(m.Completed) / float64(m.Failed),
		Commentary: fmt.Sprintf("%d completed, %d failed", m.Completed, m.Failed),
	}
}

func scoreParticipantsToHatchers(m model.Metrics, hatchers int) model.FactorScore {
	return model.FactorScore{
		Name:       "participants_to_hatchers",
		Value:      float64(m.Participants) / float64(hatchers),
		Commentary: fmt.Sprintf("%d participants, %d hatchers", m.Participants, hatchers),
	}
}
