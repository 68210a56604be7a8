package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/errs"
)

// Staging reads previously landed extraction snapshots from a PostgreSQL
// staging schema, so transform and validate phases can be re-run without
// touching the source ERP. The profile's base_url is the postgres:// DSN;
// the Client field optionally names the schema (default "staging").
type Staging struct {
	profile   config.Profile
	telemetry *telemetryRecorder

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewStaging creates an unconnected staging adapter.
func NewStaging(profile config.Profile) (Connection, error) {
	return &Staging{profile: profile, telemetry: &telemetryRecorder{}}, nil
}

func (a *Staging) ProfileName() string { return a.profile.Name }

func (a *Staging) schema() string {
	if a.profile.Client != "" {
		return a.profile.Client
	}
	return "staging"
}

func (a *Staging) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		return nil
	}

	cfg, err := pgxpool.ParseConfig(a.profile.BaseURL)
	if err != nil {
		return errs.Connection(a.profile.Name, fmt.Errorf("parsing connection string: %w", err))
	}
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return errs.Connection(a.profile.Name, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return errs.Connection(a.profile.Name, err)
	}
	a.pool = pool
	return nil
}

func (a *Staging) Disconnect(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return nil
}

func (a *Staging) ReadTable(ctx context.Context, name string, opts ReadOptions) ([]Row, error) {
	cols := "*"
	if len(opts.Fields) > 0 {
		quoted := make([]string, len(opts.Fields))
		for i, f := range opts.Fields {
			quoted[i] = quoteIdent(f)
		}
		cols = strings.Join(quoted, ", ")
	}
	sqlText := fmt.Sprintf("SELECT %s FROM %s.%s", cols, quoteIdent(a.schema()), quoteIdent(name))
	if opts.Filter != "" {
		sqlText += " WHERE " + opts.Filter
	}
	if opts.MaxRows > 0 {
		sqlText += fmt.Sprintf(" LIMIT %d", opts.MaxRows)
	}
	return a.query(ctx, sqlText)
}

func (a *Staging) QueryEntities(ctx context.Context, set, query string) ([]Row, error) {
	sqlText := fmt.Sprintf("SELECT * FROM %s.%s", quoteIdent(a.schema()), quoteIdent(set))
	if query != "" {
		sqlText += " WHERE " + query
	}
	return a.query(ctx, sqlText)
}

func (a *Staging) query(ctx context.Context, sqlText string) ([]Row, error) {
	a.mu.Lock()
	pool := a.pool
	a.mu.Unlock()
	if pool == nil {
		return nil, errs.Connection(a.profile.Name, fmt.Errorf("not connected; call Connect first"))
	}

	timeout := time.Duration(a.profile.TimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rows, err := pool.Query(ctx, sqlText)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			a.telemetry.record(start, false, string(errs.KindTimeout))
			return nil, errs.Timeout("query", timeout)
		}
		a.telemetry.record(start, false, string(errs.KindRemoteProtocol))
		return nil, errs.RemoteProtocol(0, err.Error())
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			a.telemetry.record(start, false, "error")
			return nil, errs.RemoteProtocol(0, err.Error())
		}
		row := make(Row, len(descs))
		for i, d := range descs {
			row[d.Name] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		a.telemetry.record(start, false, "error")
		return nil, errs.RemoteProtocol(0, err.Error())
	}
	a.telemetry.record(start, true, "ok")
	return out, nil
}

func (a *Staging) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	rows, err := a.query(ctx, "SELECT version() AS version")
	if err != nil {
		return nil, err
	}
	info := &SystemInfo{Description: "extraction staging database"}
	if len(rows) > 0 {
		info.Release, _ = rows[0]["version"].(string)
	}
	return info, nil
}

func (a *Staging) HealthCheck(ctx context.Context) (*Health, error) {
	start := time.Now()
	_, err := a.query(ctx, "SELECT 1")
	h := &Health{LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		h.Details = err.Error()
		return h, nil
	}
	h.Healthy = true
	return h, nil
}

func (a *Staging) Telemetry() Telemetry { return a.telemetry.snapshot() }

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
