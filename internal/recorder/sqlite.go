package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"StockTrend/internal/collector"
	"StockTrend/internal/model"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder appends cycle history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			fetched   INTEGER,
			inserted  INTEGER,
			skipped   INTEGER,
			rejected  INTEGER,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_runs_ts ON fetch_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			points      INTEGER,
			last_date   TEXT,
			close       REAL,
			sma         REAL,
			ema         REAL,
			rolling_std REAL,
			upper_band  REAL,
			lower_band  REAL,
			skip_reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_runs_ts ON analysis_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordFetch stores one row per symbol of a fetch cycle.
func (r *SQLiteRecorder) RecordFetch(results []collector.FetchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().Unix()
	return r.inTx(func(tx *sql.Tx) error {
		for _, res := range results {
			var inserted, skipped, rejected int
			if res.Report != nil {
				inserted, skipped, rejected = res.Report.Inserted, res.Report.SkippedDuplicate, res.Report.Rejected
			}
			if _, err := tx.Exec(`INSERT INTO fetch_runs
				(timestamp, symbol, fetched, inserted, skipped, rejected, error)
				VALUES (?,?,?,?,?,?,?)`,
				now, res.Symbol, res.Fetched, inserted, skipped, rejected, errText(res.Err),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordAnalysis stores the latest point, or the skip reason, of every symbol.
func (r *SQLiteRecorder) RecordAnalysis(results []model.SymbolResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().Unix()
	return r.inTx(func(tx *sql.Tx) error {
		for _, res := range results {
			var last model.IndicatorPoint
			if n := len(res.Points); n > 0 {
				last = res.Points[n-1]
			}
			if _, err := tx.Exec(`INSERT INTO analysis_runs
				(timestamp, symbol, points, last_date, close, sma, ema, rolling_std, upper_band, lower_band, skip_reason)
				VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
				now, res.Symbol, len(res.Points), last.Date.String(),
				last.Close, last.SMA, last.EMA, last.RollingStd, last.UpperBand, last.LowerBand,
				errText(res.Err),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRecorder) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

func errText(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
