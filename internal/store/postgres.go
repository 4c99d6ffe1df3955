package store

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"StockTrend/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PostgresBackend persists records in PostgreSQL.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, verifies the connection and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	b := &PostgresBackend{pool: pool}
	if err := b.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("postgres store opened: %s@%s", config.ConnConfig.Database, config.ConnConfig.Host)
	return b, nil
}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	files, err := migrationFiles(postgresMigrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("read embedded postgres migrations: %w", err)
	}
	for _, file := range files {
		data, err := fs.ReadFile(postgresMigrations, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if _, err := b.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func (b *PostgresBackend) InsertIfAbsent(ctx context.Context, r model.PriceRecord) (bool, error) {
	tag, err := b.pool.Exec(ctx, `
		INSERT INTO stock_data (symbol, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, date) DO NOTHING
	`, r.Symbol, r.Date.Time(), r.Open, r.High, r.Low, r.Close, r.Volume)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (b *PostgresBackend) Records(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT symbol, date, open, high, low, close, volume
		FROM stock_data
		WHERE symbol = $1
		ORDER BY date ASC
	`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PriceRecord
	for rows.Next() {
		var (
			r model.PriceRecord
			d time.Time
		)
		if err := rows.Scan(&r.Symbol, &d, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, fmt.Errorf("scan stock_data: %w", err)
		}
		r.Date = model.DateOf(d)
		result = append(result, r)
	}
	return result, rows.Err()
}

func (b *PostgresBackend) Symbols(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT DISTINCT symbol FROM stock_data ORDER BY symbol`)
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

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

var _ Backend = (*PostgresBackend)(nil)
