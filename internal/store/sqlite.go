package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"StockTrend/internal/model"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteBackend persists records in a single SQLite file.
type SQLiteBackend struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) the database at dbPath and runs migrations.
func OpenSQLite(dbPath string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(dbPath); !strings.HasPrefix(dbPath, ":memory:") && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: writes are serialized and ":memory:" databases stay a single database.
	db.SetMaxOpenConns(1)

	// WAL lets readers (exporters, ad-hoc sqlite3 shells) run while the fetcher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite store opened: %s", dbPath)
	return b, nil
}

func (b *SQLiteBackend) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_data (
			symbol TEXT    NOT NULL,
			date   TEXT    NOT NULL,
			open   REAL    NOT NULL,
			high   REAL    NOT NULL,
			low    REAL    NOT NULL,
			close  REAL    NOT NULL,
			volume INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_data_date ON stock_data(date)`,
	}

	for _, s := range stmts {
		if _, err := b.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (b *SQLiteBackend) InsertIfAbsent(ctx context.Context, r model.PriceRecord) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.db.ExecContext(ctx, `INSERT INTO stock_data
		(symbol, date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO NOTHING`,
		r.Symbol, r.Date.String(), r.Open, r.High, r.Low, r.Close, r.Volume,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (b *SQLiteBackend) Records(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT symbol, date, open, high, low, close, volume
		FROM stock_data WHERE symbol = ? ORDER BY date ASC`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PriceRecord
	for rows.Next() {
		var (
			r    model.PriceRecord
			date string
		)
		if err := rows.Scan(&r.Symbol, &date, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, err
		}
		if r.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("row %s: %w", symbol, err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (b *SQLiteBackend) Symbols(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM stock_data ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var syms []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		syms = append(syms, s)
	}
	return syms, rows.Err()
}

func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *SQLiteBackend) Close() error {
	log.Info("closing sqlite store")
	return b.db.Close()
}

var _ Backend = (*SQLiteBackend)(nil)
