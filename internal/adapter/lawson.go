package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/sijms/go-ora/v2"

	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/errs"
)

// Lawson reads application tables from a Lawson S3 Oracle read replica
// using go-ora (pure Go, no Instant Client). The profile's base_url holds
// the full oracle:// DSN; otherwise the DSN is composed from host, port
// and username.
type Lawson struct {
	profile   config.Profile
	telemetry *telemetryRecorder

	mu sync.Mutex
	db *sql.DB
}

// NewLawson creates an unconnected Lawson adapter.
func NewLawson(profile config.Profile) (Connection, error) {
	return &Lawson{profile: profile, telemetry: &telemetryRecorder{}}, nil
}

func (a *Lawson) ProfileName() string { return a.profile.Name }

func (a *Lawson) connString() string {
	if a.profile.BaseURL != "" {
		return a.profile.BaseURL
	}
	return fmt.Sprintf("oracle://%s:%s@%s:%d/LAWSON",
		a.profile.Username, a.profile.Password, a.profile.Host, a.profile.Port)
}

func (a *Lawson) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		return nil
	}

	db, err := sql.Open("oracle", a.connString())
	if err != nil {
		return errs.Connection(a.profile.Name, err)
	}
	db.SetMaxOpenConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errs.Connection(a.profile.Name, err)
	}
	a.db = db
	return nil
}

func (a *Lawson) Disconnect(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *Lawson) ReadTable(ctx context.Context, name string, opts ReadOptions) ([]Row, error) {
	cols := "*"
	if len(opts.Fields) > 0 {
		cols = strings.Join(opts.Fields, ", ")
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, name)
	if opts.Filter != "" {
		query += " WHERE " + opts.Filter
	}
	if opts.MaxRows > 0 {
		query += fmt.Sprintf(" FETCH FIRST %d ROWS ONLY", opts.MaxRows)
	}
	return a.query(ctx, query)
}

// QueryEntities treats set as a table or view name and query as a WHERE
// clause, matching the adapter contract's entity-set semantics for
// database-backed sources.
func (a *Lawson) QueryEntities(ctx context.Context, set, query string) ([]Row, error) {
	sqlText := "SELECT * FROM " + set
	if query != "" {
		sqlText += " WHERE " + query
	}
	return a.query(ctx, sqlText)
}

func (a *Lawson) query(ctx context.Context, sqlText string) ([]Row, error) {
	a.mu.Lock()
	db := a.db
	a.mu.Unlock()
	if db == nil {
		return nil, errs.Connection(a.profile.Name, fmt.Errorf("not connected; call Connect first"))
	}

	timeout := time.Duration(a.profile.TimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			a.telemetry.record(start, false, string(errs.KindTimeout))
			return nil, errs.Timeout("query", timeout)
		}
		a.telemetry.record(start, false, string(errs.KindRemoteProtocol))
		return nil, errs.RemoteProtocol(0, err.Error())
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		a.telemetry.record(start, false, "error")
		return nil, errs.RemoteProtocol(0, err.Error())
	}
	a.telemetry.record(start, true, "ok")
	return out, nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

func (a *Lawson) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	rows, err := a.query(ctx, "SELECT instance_name, version, host_name FROM v$instance")
	if err != nil {
		return nil, err
	}
	info := &SystemInfo{Description: "Lawson S3 on Oracle"}
	if len(rows) > 0 {
		info.SID, _ = rows[0]["INSTANCE_NAME"].(string)
		info.Release, _ = rows[0]["VERSION"].(string)
		info.Host, _ = rows[0]["HOST_NAME"].(string)
	}
	return info, nil
}

func (a *Lawson) HealthCheck(ctx context.Context) (*Health, error) {
	start := time.Now()
	_, err := a.query(ctx, "SELECT 1 FROM DUAL")
	h := &Health{LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		h.Details = err.Error()
		return h, nil
	}
	h.Healthy = true
	return h, nil
}

func (a *Lawson) Telemetry() Telemetry { return a.telemetry.snapshot() }
