package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"CommonsSim/internal/notifier"
	"CommonsSim/internal/recorder"
	"CommonsSim/internal/scheduler"
	"CommonsSim/internal/sweep"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run cron-driven simulation sweeps until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			slog.Info("CommonsSim scheduler starting", "version", version)

			sm, err := sweep.NewManager(cfg.Schedule.StateFile, cfg.Simulation.RandomSeed)
			if err != nil {
				return fmt.Errorf("init sweep state: %w", err)
			}

			var n notifier.Notifier = notifier.NoopNotifier{}
			if cfg.TelegramEnabled() {
				n = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			} else {
				slog.Warn("telegram not configured, reports will be dropped")
			}

			var rec recorder.Recorder = recorder.NewNoopRecorder()
			if cfg.Database.SQLitePath != "" {
				if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
					slog.Warn("create database dir failed", "err", err)
				}
				sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
				if err != nil {
					slog.Warn("init sqlite recorder failed, using noop", "err", err)
				} else {
					rec = sr
					defer sr.Close()
				}
			}

			// Context for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, cfg.Simulation, cfg.Schedule.SweepRuns, sm, n, rec, slog.Default())
			if err := sched.Register(cfg.Schedule.SweepCron); err != nil {
				return err
			}
			if os.Getenv("RUN_ON_START") == "true" {
				slog.Info("RUN_ON_START enabled, executing sweep now")
				sched.RunNow()
			}
			sched.Start()

			slog.Info("CommonsSim is running. Press Ctrl+C to stop.", "cron", cfg.Schedule.SweepCron)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			slog.Info("shutdown signal received, stopping...")
			cancel()
			sched.Stop()
			slog.Info("CommonsSim stopped")
			return nil
		},
	}
}
