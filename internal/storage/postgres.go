package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Paintersrp/an-presets/internal/constants"
)

// Querier is the subset of pgxpool.Pool used by PostgresGateway.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	createTableSQL = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	workspace  text PRIMARY KEY,
	body       jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`, constants.PGTable)

	selectDocumentSQL = fmt.Sprintf(`SELECT body FROM %s WHERE workspace = $1`, constants.PGTable)

	upsertDocumentSQL = fmt.Sprintf(`INSERT INTO %s (workspace, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (workspace) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`, constants.PGTable)
)

// PostgresGateway keeps one document row per workspace.
type PostgresGateway struct {
	db        Querier
	pool      *pgxpool.Pool
	workspace string
}

func NewPostgresGateway(db Querier, workspace string) *PostgresGateway {
	return &PostgresGateway{db: db, workspace: workspace}
}

// NewPostgresGatewayFromDSN connects a pool and creates the table if needed.
func NewPostgresGatewayFromDSN(ctx context.Context, dsn, workspace string) (*PostgresGateway, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	g := NewPostgresGateway(pool, workspace)
	g.pool = pool
	if err := g.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return g, nil
}

func (g *PostgresGateway) EnsureSchema(ctx context.Context) error {
	if _, err := g.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create %s: %w", constants.PGTable, err)
	}
	return nil
}

func (g *PostgresGateway) String() string {
	return "postgres:" + constants.PGTable + "/" + g.workspace
}

func (g *PostgresGateway) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := g.db.QueryRow(ctx, selectDocumentSQL, g.workspace).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (g *PostgresGateway) Save(ctx context.Context, data []byte) error {
	_, err := g.db.Exec(ctx, upsertDocumentSQL, g.workspace, data)
	return err
}

func (g *PostgresGateway) Close() error {
	if g.pool != nil {
		g.pool.Close()
	}
	return nil
}
