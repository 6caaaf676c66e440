package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"log/slog"

	"github.com/rajnish-49/collab-whiteboard/internal/app"
)

type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to postgres and returns a pool wrapper
func NewPostgres(ctx context.Context, cfg app.Config, log *slog.Logger) (*Postgres, error) {
	pc, err := pgxpool.ParseConfig(cfg.PGURL)
	if err != nil {
		return nil, err
	}
	pc.MaxConns = int32(cfg.PGMaxConn)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// Ping checks DB reachability; used by the readiness endpoint.
func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }
