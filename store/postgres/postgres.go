package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/VTGare/Agenda/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

const callTimeout = 1 * time.Minute

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Querier is the subset of pgxpool.Pool the stores use. pgxmock satisfies it
// in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Postgres struct {
	guildStore
	topicStore

	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (store.Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create a connection pool: %w", err)
	}

	return &Postgres{
		guildStore: guildStore{db: pool},
		topicStore: topicStore{db: pool},
		pool:       pool,
	}, nil
}

// Init pings the database and applies the schema. The schema only contains
// IF NOT EXISTS statements, so Init is safe to run on every startup.
func (p *Postgres) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply the schema: %w", err)
	}

	return nil
}

func (p *Postgres) Close(_ context.Context) error {
	p.pool.Close()
	return nil
}
