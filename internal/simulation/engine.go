package simulation

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"CommonsSim/internal/logging"
	"CommonsSim/internal/model"
	"CommonsSim/internal/network"
	"CommonsSim/internal/rng"
)

// Engine advances a State through the timestep pipeline.
type Engine struct {
	env    *Env
	stages []Stage
}

// NewEngine builds an engine over the standard pipeline. A nil logger
// discards; a nil trace records nothing.
func NewEngine(params *model.Params, r rng.Random, logger *slog.Logger, trace *logging.DecisionLogger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		env:    &Env{Params: params, Rand: r, Log: logger, Trace: trace},
		stages: Pipeline(),
	}
}

// Step runs one timestep. On error the state is left part way through the
// failing stage.
func (e *Engine) Step(s *State) error {
	s.Timestep++
	for _, st := range e.stages {
		if err := st.Apply(e.env, s); err != nil {
			return fmt.Errorf("timestep %d: %w", s.Timestep, err)
		}
	}
	return nil
}

// Options tune a Run beyond its parameters.
type Options struct {
	// Contributions hatches from fixed amounts instead of random ones.
	Contributions []float64
	Logger        *slog.Logger
	Trace         *logging.DecisionLogger
}

// RunResult is the outcome of one run. Records[0] is the state right after
// the hatch.
type RunResult struct {
	RunID    string
	Params   model.Params
	Hatchers int
	Records  []model.TimestepRecord
	History  []*network.Network
	Final    *State
	Metrics  model.Metrics
}

// HatchPrice is the token price right after the hatch.
func (r *RunResult) HatchPrice() float64 {
	if len(r.Records) == 0 {
		return 0
	}
	return r.Records[0].TokenPrice
}

// Run hatches a commons and steps it params.Timesteps times.
func Run(params model.Params, r rng.Random, opts Options) (*RunResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	res := &RunResult{RunID: uuid.NewString(), Params: params}
	logger = logger.With("run", res.RunID)
	opts.Trace.WithRun(res.RunID)

	var (
		s   *State
		err error
	)
	if opts.Contributions != nil {
		s, err = Bootstrap(opts.Contributions, &params, r)
	} else {
		s, err = BootstrapRandom(&params, r)
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	res.Hatchers = len(s.Network.Participants())
	logger.Info("commons hatched",
		"hatchers", res.Hatchers,
		"funding_pool", s.FundingPool,
		"collateral_pool", s.CollateralPool,
		"token_price", s.TokenPrice)

	res.Records = append(res.Records, s.Record())
	if params.KeepNetworkHistory {
		res.History = append(res.History, s.Network.Clone())
	}

	engine := NewEngine(&params, r, logger, opts.Trace)
	for i := 0; i < params.Timesteps; i++ {
		if err := engine.Step(s); err != nil {
			return nil, err
		}
		res.Records = append(res.Records, s.Record())
		if params.KeepNetworkHistory {
			res.History = append(res.History, s.Network.Clone())
		}
	}

	res.Final = s
	res.Metrics = Metrics(s.Network)
	logger.Info("run finished",
		"timesteps", s.Timestep,
		"participants", res.Metrics.Participants,
		"actives", res.Metrics.Actives,
		"completed", res.Metrics.Completed,
		"failed", res.Metrics.Failed,
		"token_price", s.TokenPrice)
	return res, nil
}
