package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Querier is the subset of pgx used to read payloads, satisfied by *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads attraction documents stored one per row in a jsonb column.
type Postgres struct {
	db    Querier
	table string
	log   zerolog.Logger
}

// NewPostgres connects a pool to dsn.
func NewPostgres(ctx context.Context, dsn, table string, log zerolog.Logger) (*Postgres, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return NewPostgresWithQuerier(pool, table, log), pool, nil
}

// NewPostgresWithQuerier wraps an existing connection or pool.
func NewPostgresWithQuerier(db Querier, table string, log zerolog.Logger) *Postgres {
	return &Postgres{db: db, table: table, log: log}
}

// Payloads returns the stored documents, ordered by position, as a single
// JSON array.
func (p *Postgres) Payloads(ctx context.Context) ([]byte, error) {
	query := fmt.Sprintf("SELECT payload::text FROM %s ORDER BY position", pgx.Identifier{p.table}.Sanitize())

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", p.table, err)
	}
	payloads, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", p.table, err)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, payload := range payloads {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(payload)
	}
	buf.WriteByte(']')

	p.log.Debug().Str("table", p.table).Int("rows", len(payloads)).Msg("Read attraction payloads")
	return buf.Bytes(), nil
}
