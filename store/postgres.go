package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/log"

	_ "github.com/lib/pq"
)

// PostgresBackend persists cache values in a single keyed table:
// portfolio_cache(owner, key, value, updated_at).
type PostgresBackend struct {
	DB         *sql.DB
	sqlBuilder sq.StatementBuilderType
}

// NewPostgresBackend opens the connection and waits for the database to
// come up before returning.
func NewPostgresBackend(user, password, host, port, dbname string) (*PostgresBackend, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("db open connection error: %w", err)
	}

	for i := 0; i < 5; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		log.Warn("Database not ready yet, retrying in 2s...")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database after retries: %w", err)
	}

	log.Info("store: connected to database")

	b := &PostgresBackend{
		DB:         db,
		sqlBuilder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := b.migrate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) migrate() error {
	_, err := b.DB.Exec(`
		CREATE TABLE IF NOT EXISTS portfolio_cache (
			owner      TEXT        NOT NULL,
			key        TEXT        NOT NULL,
			value      JSONB       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (owner, key)
		)`)
	if err != nil {
		return fmt.Errorf("create portfolio_cache table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	query, args, err := b.sqlBuilder.
		Select("value").
		From("portfolio_cache").
		Where(sq.Eq{
			"owner": owner,
			"key":   key,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build cache select: %w", err)
	}

	var value []byte
	err = b.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("exec cache select: %w", err)
	}
	return value, true, nil
}

func (b *PostgresBackend) Put(ctx context.Context, owner, key string, value []byte) error {
	query, args, err := b.sqlBuilder.
		Insert("portfolio_cache").
		Columns("owner", "key", "value", "updated_at").
		Values(owner, key, value, time.Now()).
		Suffix("ON CONFLICT (owner, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build cache upsert: %w", err)
	}

	_, err = b.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec cache upsert: %w", err)
	}
	return nil
}
