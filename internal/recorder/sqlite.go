package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CommonsSim/internal/model"
)

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so notebooks can read while a sweep writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id             TEXT PRIMARY KEY,
			timestamp          INTEGER NOT NULL,
			seed               INTEGER,
			timesteps          INTEGER,
			params             TEXT,
			participants       INTEGER,
			candidates         INTEGER,
			actives            INTEGER,
			completed          INTEGER,
			failed             INTEGER,
			candidate_funds    REAL,
			active_funds       REAL,
			completed_funds    REAL,
			failed_funds       REAL,
			final_price        REAL,
			final_funding_pool REAL,
			final_sentiment    REAL,
			score_total        REAL,
			grade              TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS timesteps (
			run_id          TEXT NOT NULL,
			timestep        INTEGER NOT NULL,
			funding_pool    REAL,
			collateral_pool REAL,
			token_supply    REAL,
			token_price     REAL,
			sentiment       REAL,
			participants    INTEGER,
			candidates      INTEGER,
			actives         INTEGER,
			completed       INTEGER,
			failed          INTEGER,
			PRIMARY KEY (run_id, timestep)
		)`,

		`CREATE TABLE IF NOT EXISTS proposals (
			run_id            TEXT NOT NULL,
			proposal_id       INTEGER NOT NULL,
			status            TEXT,
			funds_requested   REAL,
			conviction        REAL,
			trigger_threshold REAL,
			age               INTEGER,
			PRIMARY KEY (run_id, proposal_id)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	m := run.Metrics
	_, err = r.db.Exec(`INSERT INTO runs
		(run_id, timestamp, seed, timesteps, params,
		 participants, candidates, actives, completed, failed,
		 candidate_funds, active_funds, completed_funds, failed_funds,
		 final_price, final_funding_pool, final_sentiment, score_total, grade)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, time.Now().Unix(), int64(run.Seed), run.Timesteps, string(params),
		m.Participants, m.Candidates, m.Actives, m.Completed, m.Failed,
		m.CandidateFunds, m.ActiveFunds, m.CompletedFunds, m.FailedFunds,
		finite(run.FinalPrice), finite(run.FinalFundingPool), finite(run.FinalSentiment),
		finite(run.ScoreTotal), run.Grade,
	)
	return err
}

// RecordTimesteps writes all records of a run in one transaction.
func (r *SQLiteRecorder) RecordTimesteps(runID string, records []model.TimestepRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO timesteps
		(run_id, timestep, funding_pool, collateral_pool, token_supply, token_price, sentiment,
		 participants, candidates, actives, completed, failed)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(runID, rec.Timestep,
			finite(rec.FundingPool), finite(rec.CollateralPool), finite(rec.TokenSupply),
			finite(rec.TokenPrice), finite(rec.Sentiment),
			rec.Participants, rec.Candidates, rec.Actives, rec.Completed, rec.Failed,
		); err != nil {
			return fmt.Errorf("timestep %d: %w", rec.Timestep, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordProposals(runID string, proposals []ProposalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO proposals
		(run_id, proposal_id, status, funds_requested, conviction, trigger_threshold, age)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range proposals {
		if _, err := stmt.Exec(runID, p.ProposalID, string(p.Status),
			finite(p.FundsRequested), finite(p.Conviction), finite(p.Trigger), p.Age,
		); err != nil {
			return fmt.Errorf("proposal %d: %w", p.ProposalID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	slog.Info("closing sqlite recorder")
	return r.db.Close()
}
