// Package ledger is an optional server-side audit log of block/manifest
// PUT and GET events, backed by Postgres via pgx. It is an injectable
// collaborator rather than package-level globals, and is a genuine no-op
// when no DSN is configured. The wire protocol requires no audit trail, so
// a ledger failure must never affect a request's outcome.
package ledger

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is one observed remote-protocol action.
type Event struct {
	Kind     string // "block" or "manifest"
	Method   string // GET or PUT
	Identity string
	At       time.Time
}

// Ledger records Events. Record never returns an error to its caller: a
// broken audit sink must not fail the request it is observing.
type Ledger interface {
	Record(ctx context.Context, ev Event)
	Close()
}

// noop is used when no DSN is configured.
type noop struct{}

func (noop) Record(context.Context, Event) {}
func (noop) Close()                        {}

// NoOp returns a Ledger that discards every event.
func NoOp() Ledger { return noop{} }

// pgLedger persists events to a Postgres table via a pgx connection pool.
type pgLedger struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against dsn and ensures the audit table exists. If
// dsn is empty, Connect returns a NoOp ledger instead of an error, since
// the audit trail is an optional operational add-on.
func Connect(ctx context.Context, dsn string) (Ledger, error) {
	if dsn == "" {
		return NoOp(), nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	const ddl = `CREATE TABLE IF NOT EXISTS shard_audit_events (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		method TEXT NOT NULL,
		identity TEXT NOT NULL,
		at TIMESTAMPTZ NOT NULL
	)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, err
	}
	return &pgLedger{pool: pool}, nil
}

func (l *pgLedger) Record(ctx context.Context, ev Event) {
	const sql = `INSERT INTO shard_audit_events (kind, method, identity, at) VALUES ($1, $2, $3, $4)`
	if _, err := l.pool.Exec(ctx, sql, ev.Kind, ev.Method, ev.Identity, ev.At); err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("ledger: failed to record event: %v", err)
		}
	}
}

func (l *pgLedger) Close() { l.pool.Close() }
