package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/s4bridge/s4bridge/internal/config"
)

// InforLN reads from an Infor LN system through its OData V4 endpoint.
type InforLN struct {
	rc *restClient

	mu        sync.Mutex
	connected bool
}

// NewInforLN creates an unconnected Infor LN adapter.
func NewInforLN(profile config.Profile) (Connection, error) {
	return &InforLN{rc: newRESTClient(profile)}, nil
}

func (a *InforLN) ProfileName() string { return a.rc.profile.Name }

func (a *InforLN) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.connected {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	if _, err := a.SystemInfo(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
	return nil
}

func (a *InforLN) Disconnect(context.Context) error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	return nil
}

func (a *InforLN) ReadTable(ctx context.Context, name string, opts ReadOptions) ([]Row, error) {
	query := url.Values{}
	if opts.MaxRows > 0 {
		query.Set("$top", strconv.Itoa(opts.MaxRows))
	}
	if len(opts.Fields) > 0 {
		query.Set("$select", strings.Join(opts.Fields, ","))
	}
	if opts.Filter != "" {
		query.Set("$filter", opts.Filter)
	}

	var payload struct {
		Value []Row `json:"value"`
	}
	if err := a.rc.getJSON(ctx, "odata/"+name, query, &payload); err != nil {
		return nil, err
	}
	return payload.Value, nil
}

func (a *InforLN) QueryEntities(ctx context.Context, set, rawQuery string) ([]Row, error) {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing entity query: %w", err)
	}
	var payload struct {
		Value []Row `json:"value"`
	}
	if err := a.rc.getJSON(ctx, "odata/"+set, query, &payload); err != nil {
		return nil, err
	}
	return payload.Value, nil
}

func (a *InforLN) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	info := &SystemInfo{}
	if err := a.rc.getJSON(ctx, "api/system/info", nil, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (a *InforLN) HealthCheck(ctx context.Context) (*Health, error) {
	return a.rc.probe(ctx, "api/system/info"), nil
}

func (a *InforLN) Telemetry() Telemetry { return a.rc.telemetry.snapshot() }
