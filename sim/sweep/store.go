package sweep

import (
	"database/sql"
	"fmt"
	"time"

	// Registers the pure-Go "sqlite" database/sql driver.
	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Store persists sweep tables to a SQLite database.
// Each RecordSweep call gets its own run ID; results of all runs share one table.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the SQLite database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening result store %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sweeps (
			run_id       TEXT PRIMARY KEY,
			created_at   TEXT NOT NULL,
			service_rate REAL NOT NULL,
			horizon      REAL NOT NULL,
			warmup       REAL NOT NULL,
			seed         INTEGER NOT NULL,
			replications INTEGER NOT NULL,
			policy       TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id             TEXT NOT NULL REFERENCES sweeps(run_id),
			arrival_rate       REAL NOT NULL,
			fraction           REAL NOT NULL,
			priority_avg       REAL,
			priority_halfwidth REAL,
			priority_completed INTEGER NOT NULL,
			priority_arrived   INTEGER NOT NULL,
			regular_avg        REAL,
			regular_halfwidth  REAL,
			regular_completed  INTEGER NOT NULL,
			regular_arrived    INTEGER NOT NULL,
			PRIMARY KEY (run_id, arrival_rate, fraction)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating result tables: %w", err)
		}
	}
	return nil
}

func nullable(v float64, ok bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: ok}
}

// RecordSweep writes the table in one transaction and returns the new run ID.
func (s *Store) RecordSweep(table *Table) (runID string, err error) {
	runID = xid.New().String()
	spec := table.Spec

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logrus.Warnf("rollback of sweep %s failed: %v", runID, rbErr)
			}
		}
	}()

	policy := spec.Policy
	if policy == "" {
		policy = "priority"
	}
	if _, err = tx.Exec(
		`INSERT INTO sweeps (run_id, created_at, service_rate, horizon, warmup, seed, replications, policy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), spec.ServiceRate, spec.Horizon, spec.Warmup,
		spec.Seed, spec.Replications, policy,
	); err != nil {
		return "", fmt.Errorf("inserting sweep %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO results (run_id, arrival_rate, fraction,
			priority_avg, priority_halfwidth, priority_completed, priority_arrived,
			regular_avg, regular_halfwidth, regular_completed, regular_arrived)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range table.Rows {
		if _, err = stmt.Exec(runID, r.ArrivalRate, r.Fraction,
			nullable(r.Priority.Mean, r.Priority.Defined),
			nullable(r.Priority.HalfWidth, r.Priority.N > 1),
			r.Priority.Completed, r.Priority.Arrived,
			nullable(r.Regular.Mean, r.Regular.Defined),
			nullable(r.Regular.HalfWidth, r.Regular.N > 1),
			r.Regular.Completed, r.Regular.Arrived,
		); err != nil {
			return "", fmt.Errorf("inserting result (λ=%g, f=%g): %w", r.ArrivalRate, r.Fraction, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("committing sweep %s: %w", runID, err)
	}
	logrus.Debugf("Recorded sweep %s with %d rows", runID, len(table.Rows))
	return runID, nil
}

// StoredResult is one persisted row. Averages are nil when undefined.
type StoredResult struct {
	ArrivalRate float64
	Fraction    float64
	PriorityAvg *float64
	RegularAvg  *float64

	PriorityCompleted, PriorityArrived int64
	RegularCompleted, RegularArrived   int64
}

// Results returns the rows recorded under runID, ordered by arrival rate and fraction.
func (s *Store) Results(runID string) ([]StoredResult, error) {
	rows, err := s.db.Query(
		`SELECT arrival_rate, fraction, priority_avg, regular_avg,
			priority_completed, priority_arrived, regular_completed, regular_arrived
		 FROM results WHERE run_id = ? ORDER BY arrival_rate, fraction`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying sweep %s: %w", runID, err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		var pAvg, rAvg sql.NullFloat64
		if err := rows.Scan(&r.ArrivalRate, &r.Fraction, &pAvg, &rAvg,
			&r.PriorityCompleted, &r.PriorityArrived, &r.RegularCompleted, &r.RegularArrived); err != nil {
			return nil, fmt.Errorf("scanning sweep %s: %w", runID, err)
		}
		if pAvg.Valid {
			r.PriorityAvg = &pAvg.Float64
		}
		if rAvg.Valid {
			r.RegularAvg = &rAvg.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
