package score

import (
	"math"
	"testing"

	"CommonsSim/internal/model"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/simulation"
)

func sampleInput() Input {
	prices := []float64{1, 2, 3}
	funds := []float64{100, 50, 150}
	sentiment := []float64{0.5, 0.5, 0.8}
	records := make([]model.TimestepRecord, len(prices))
	for i := range records {
		records[i] = model.TimestepRecord{
			Timestep:    i,
			TokenPrice:  prices[i],
			FundingPool: funds[i],
			Sentiment:   sentiment[i],
		}
	}
	return Input{
		Records: records,
		Metrics: model.Metrics{
			Participants:   9,
			Actives:        1,
			Completed:      2,
			Failed:         1,
			ActiveFunds:    50,
			CompletedFunds: 100,
			FailedFunds:    50,
		},
		Hatchers:         6,
		InitialProposals: 2,
	}
}

func factor(t *testing.T, s model.RunScore, name string) model.FactorScore {
	t.Helper()
	for _, f := range s.Factors {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no factor %q", name)
	return model.FactorScore{}
}

func TestEvaluate(t *testing.T) {
	s := Evaluate(sampleInput(), DefaultSigma)
	if len(s.Factors) != 9 {
		t.Fatalf("expected 9 factors, got %d", len(s.Factors))
	}
	want := map[string]float64{
		"price_ratio":              3,
		"avg_price_to_initial":     1,
		"funded_proposals_ratio":   0.5,
		"funds_spent_ratio":        0.5,
		"avg_funds_to_initial":     1,
		"final_sentiment":          0.8,
		"avg_sentiment":            0.6,
		"success_to_failed":        2,
		"participants_to_hatchers": 1.5,
	}
	for name, w := range want {
		f := factor(t, s, name)
		if math.Abs(f.Value-w) > 1e-12 {
			t.Errorf("%s = %v, want %v", name, f.Value, w)
		}
		if !f.Counted {
			t.Errorf("%s should be counted", name)
		}
	}
	if s.Total != 1090 {
		t.Errorf("total = %v, want 1090", s.Total)
	}
	if s.Grade != "thriving" {
		t.Errorf("grade = %q, want thriving", s.Grade)
	}
}

func TestEvaluate_SkipsNonFiniteFactors(t *testing.T) {
	in := sampleInput()
	in.Metrics.Failed = 0
	in.Metrics.FailedFunds = 0
	s := Evaluate(in, DefaultSigma)

	f := factor(t, s, "success_to_failed")
	if f.Counted || !math.IsInf(f.Value, 1) {
		t.Errorf("success_to_failed = %+v, want uncounted +Inf", f)
	}
	if math.IsNaN(s.Total) || math.IsInf(s.Total, 0) {
		t.Fatalf("total = %v", s.Total)
	}
	for _, f := range s.Factors {
		if f.Counted && (math.IsNaN(f.Value) || math.IsInf(f.Value, 0)) {
			t.Errorf("%s counted with value %v", f.Name, f.Value)
		}
	}
}

func TestEvaluate_SingleRecord(t *testing.T) {
	in := sampleInput()
	in.Records = in.Records[:1]
	s := Evaluate(in, DefaultSigma)
	if f := factor(t, s, "avg_price_to_initial"); f.Counted {
		t.Errorf("stddev of one price should not count: %+v", f)
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{1500, "thriving"},
		{1000, "thriving"},
		{999, "healthy"},
		{0, "struggling"},
		{-1, "failing"},
	}
	for _, tt := range tests {
		if got := grade(tt.total); got != tt.want {
			t.Errorf("grade(%v) = %q, want %q", tt.total, got, tt.want)
		}
	}
}

func TestFromRun(t *testing.T) {
	params := model.DefaultParams()
	params.Timesteps = 5
	res, err := simulation.Run(params, rng.New(11), simulation.Options{})
	if err != nil {
		t.Fatal(err)
	}
	in := FromRun(res)
	if len(in.Records) != 6 || in.Hatchers != params.Hatchers || in.InitialProposals != params.Proposals {
		t.Errorf("input = %+v", in)
	}
	s := Evaluate(in, DefaultSigma)
	if math.IsNaN(s.Total) {
		t.Error("total is NaN")
	}
}
