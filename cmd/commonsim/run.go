package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"CommonsSim/internal/logging"
	"CommonsSim/internal/model"
	"CommonsSim/internal/notifier"
	"CommonsSim/internal/recorder"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/score"
	"CommonsSim/internal/simulation"
)

func newRunCmd() *cobra.Command {
	var (
		seed      uint64
		timesteps int
		asJSON    bool
		snapshot  string
		record    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.RandomSeed = seed
			}
			if cmd.Flags().Changed("timesteps") {
				cfg.Simulation.Timesteps = timesteps
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			trace, err := logging.NewDecisionLogger(cfg.Logging.DecisionDir, cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer trace.Close()

			params := cfg.Simulation
			res, err := simulation.Run(params, rng.New(params.RandomSeed), simulation.Options{
				Logger: slog.Default(),
				Trace:  trace,
			})
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			sc := score.Evaluate(score.FromRun(res), score.DefaultSigma)

			if snapshot != "" {
				if err := writeSnapshot(snapshot, res); err != nil {
					return err
				}
				slog.Info("snapshot written", "path", snapshot)
			}
			if record {
				if err := recordRun(cfg.Database.SQLitePath, res, sc); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(jsonReport{
					RunID:   res.RunID,
					Seed:    params.RandomSeed,
					Records: res.Records,
					Metrics: res.Metrics,
					Total:   sc.Total,
					Grade:   sc.Grade,
				})
			}
			fmt.Fprint(out, stripTags.Replace(notifier.FormatRunReport(res, sc)))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (overrides simulation.random_seed)")
	cmd.Flags().IntVar(&timesteps, "timesteps", 0, "number of timesteps (overrides simulation.timesteps)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print timestep records as JSON")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "write the final network snapshot to this YAML file")
	cmd.Flags().BoolVar(&record, "record", false, "save the run to the SQLite database")
	return cmd
}

type jsonReport struct {
	RunID   string                 `json:"run_id"`
	Seed    uint64                 `json:"seed"`
	Records []model.TimestepRecord `json:"records"`
	Metrics model.Metrics          `json:"metrics"`
	Total   float64                `json:"score_total"`
	Grade   string                 `json:"grade"`
}

var stripTags = strings.NewReplacer("<b>", "", "</b>", "")

func writeSnapshot(path string, res *simulation.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()
	return res.Final.Network.Snapshot().WriteYAML(f)
}

func recordRun(dbPath string, res *simulation.RunResult, sc model.RunScore) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	rec, err := recorder.NewSQLiteRecorder(dbPath)
	if err != nil {
		return err
	}
	defer rec.Close()
	if err := recorder.Save(rec, res, sc); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	slog.Info("run recorded", "run_id", res.RunID, "path", dbPath)
	return nil
}
