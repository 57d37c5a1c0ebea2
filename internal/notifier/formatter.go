package notifier

import (
	"fmt"
	"strings"
	"time"

	"CommonsSim/internal/calculator"
	"CommonsSim/internal/model"
	"CommonsSim/internal/simulation"
)

// RunSummary pairs a finished run with its score.
type RunSummary struct {
	Seed   uint64
	Result *simulation.RunResult
	Score  model.RunScore
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func prices(res *simulation.RunResult) []float64 {
	out := make([]float64, len(res.Records))
	for i, r := range res.Records {
		out[i] = r.TokenPrice
	}
	return out
}

// FormatRunReport formats one run and its score into a Telegram message.
func FormatRunReport(res *simulation.RunResult, sc model.RunScore) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🌱 <b>CommonsSim run</b> %s | %s\n", shortID(res.RunID), time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("seed %d, %d timesteps, %d hatchers\n\n", res.Params.RandomSeed, res.Params.Timesteps, res.Hatchers))

	// Token price
	ps := prices(res)
	final := res.Final
	b.WriteString(fmt.Sprintf("Token price: %.4f → %.4f\n", res.HatchPrice(), final.TokenPrice))
	if high, low, err := calculator.Range(ps); err == nil {
		pos, _ := calculator.Position(final.TokenPrice, high, low)
		b.WriteString(fmt.Sprintf("Range: %.4f ~ %.4f (at %.0f%%)\n", low, high, pos*100))
	}
	period := min(10, len(ps))
	if sma, err := calculator.SMA(ps, period); err == nil {
		b.WriteString(fmt.Sprintf("SMA%d: %.4f\n", period, sma))
	}

	// Commons
	b.WriteString(fmt.Sprintf("\nFunding pool: %.0f\n", final.FundingPool))
	b.WriteString(fmt.Sprintf("Collateral pool: %.0f\n", final.CollateralPool))
	b.WriteString(fmt.Sprintf("Sentiment: %.3f\n", final.Sentiment))

	m := res.Metrics
	b.WriteString(fmt.Sprintf("Participants: %d\n", m.Participants))
	b.WriteString(fmt.Sprintf("Proposals: %d candidate, %d active, %d completed, %d failed\n",
		m.Candidates, m.Actives, m.Completed, m.Failed))

	// Score
	b.WriteString("\n📈 <b>Score factors:</b>\n")
	for _, f := range sc.Factors {
		mark := ""
		if !f.Counted {
			mark = " (skipped)"
		}
		b.WriteString(fmt.Sprintf("  %s(%s): %+.3f%s\n", f.Name, f.Commentary, f.Value, mark))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Total: %.0f | <b>%s</b>\n", sc.Total, sc.Grade))

	return b.String()
}

// FormatSweepReport summarizes every run of one sweep.
func FormatSweepReport(sweep int, runs []RunSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧪 <b>Sweep #%d</b> | %s\n\n", sweep, time.Now().Format("2006-01-02 15:04")))
	if len(runs) == 0 {
		b.WriteString("No runs completed.\n")
		return b.String()
	}

	totals := make([]float64, 0, len(runs))
	best := runs[0]
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("seed %d: price %.4f, pool %.0f, score %.0f (%s)\n",
			r.Seed, r.Result.Final.TokenPrice, r.Result.Final.FundingPool, r.Score.Total, r.Score.Grade))
		totals = append(totals, r.Score.Total)
		if r.Score.Total > best.Score.Total {
			best = r
		}
	}

	b.WriteString("  ─────────────────\n")
	if avg, err := calculator.Mean(totals); err == nil {
		b.WriteString(fmt.Sprintf("Mean score: %.0f\n", avg))
	}
	if med, err := calculator.Median(totals); err == nil {
		b.WriteString(fmt.Sprintf("Median score: %.0f\n", med))
	}
	b.WriteString(fmt.Sprintf("Best: seed %d (%.0f, %s)\n", best.Seed, best.Score.Total, best.Score.Grade))
	return b.String()
}
