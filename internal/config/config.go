package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"CommonsSim/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Simulation model.Params `yaml:"simulation"`
	Telegram   struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		SweepCron string `yaml:"sweep_cron"`
		SweepRuns int    `yaml:"sweep_runs"`
		StateFile string `yaml:"state_file"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level       string `yaml:"level"`
		DecisionDir string `yaml:"decision_dir"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Simulation parameters missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Simulation: model.DefaultParams()}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("COMMONSIM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("COMMONSIM_SEED: %w", err)
		}
		cfg.Simulation.RandomSeed = seed
	}
	if v := os.Getenv("COMMONSIM_TIMESTEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("COMMONSIM_TIMESTEPS: %w", err)
		}
		cfg.Simulation.Timesteps = n
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SWEEP"); v != "" {
		cfg.Schedule.SweepCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Defaults
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "0 0 6 * * *"
	}
	if cfg.Schedule.SweepRuns == 0 {
		cfg.Schedule.SweepRuns = 5
	}
	if cfg.Schedule.StateFile == "" {
		cfg.Schedule.StateFile = "data/sweep_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/commonsim.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.DecisionDir == "" {
		cfg.Logging.DecisionDir = "data/decisions"
	}

	return cfg, nil
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the simulation parameters are usable.
func (c *Config) Validate() error {
	p := c.Simulation
	if p.Hatchers < 1 {
		return fmt.Errorf("simulation.hatchers must be at least 1")
	}
	if p.Proposals < 1 {
		return fmt.Errorf("simulation.proposals must be at least 1")
	}
	if p.HatchTribute < 0 || p.HatchTribute >= 1 {
		return fmt.Errorf("simulation.hatch_tribute must be in [0, 1)")
	}
	if p.ExitTribute < 0 || p.ExitTribute >= 1 {
		return fmt.Errorf("simulation.exit_tribute must be in [0, 1)")
	}
	if p.Kappa <= 0 {
		return fmt.Errorf("simulation.kappa must be positive")
	}
	if p.MaxProposalRequest <= 0 || p.MaxProposalRequest >= 1 {
		return fmt.Errorf("simulation.max_proposal_request must be in (0, 1)")
	}
	if p.DaysTo80pOfMaxVotingWeight < 1 {
		return fmt.Errorf("simulation.days_to_80p_of_max_voting_weight must be at least 1")
	}
	if p.Timesteps < 1 {
		return fmt.Errorf("simulation.timesteps must be at least 1")
	}
	if p.DesiredTokenPrice <= 0 {
		return fmt.Errorf("simulation.desired_token_price must be positive")
	}
	if p.ExitGate != model.ExitGateVestingZero && p.ExitGate != model.ExitGateTotalZero {
		return fmt.Errorf("simulation.exit_gate must be %q or %q", model.ExitGateVestingZero, model.ExitGateTotalZero)
	}
	if c.Schedule.SweepRuns < 1 {
		return fmt.Errorf("schedule.sweep_runs must be at least 1")
	}
	return nil
}
