package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/s4bridge/s4bridge/internal/config"
)

// InforM3 reads from an Infor M3 system through the M3 MI REST API.
// Table reads go through the EXPORTMI program; entity queries execute an
// arbitrary MI transaction.
type InforM3 struct {
	rc *restClient

	mu        sync.Mutex
	connected bool
}

// NewInforM3 creates an unconnected Infor M3 adapter.
func NewInforM3(profile config.Profile) (Connection, error) {
	return &InforM3{rc: newRESTClient(profile)}, nil
}

func (a *InforM3) ProfileName() string { return a.rc.profile.Name }

func (a *InforM3) Connect(ctx context.Context) error {
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

func (a *InforM3) Disconnect(context.Context) error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	return nil
}

// miResponse is the envelope the MI REST API wraps every result in.
type miResponse struct {
	Results []struct {
		Records []Row `json:"records"`
	} `json:"results"`
}

func (a *InforM3) ReadTable(ctx context.Context, name string, opts ReadOptions) ([]Row, error) {
	query := url.Values{}
	query.Set("FILE", name)
	if opts.MaxRows > 0 {
		query.Set("maxrecs", strconv.Itoa(opts.MaxRows))
	}
	if opts.Filter != "" {
		query.Set("QERY", opts.Filter)
	}

	var payload miResponse
	if err := a.rc.getJSON(ctx, "m3api-rest/v2/execute/EXPORTMI/Select", query, &payload); err != nil {
		return nil, err
	}
	return flattenMI(payload), nil
}

func (a *InforM3) QueryEntities(ctx context.Context, set, rawQuery string) ([]Row, error) {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing MI query: %w", err)
	}
	var payload miResponse
	if err := a.rc.getJSON(ctx, "m3api-rest/v2/execute/"+set, query, &payload); err != nil {
		return nil, err
	}
	return flattenMI(payload), nil
}

func flattenMI(payload miResponse) []Row {
	var rows []Row
	for _, res := range payload.Results {
		rows = append(rows, res.Records...)
	}
	return rows
}

func (a *InforM3) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	info := &SystemInfo{}
	if err := a.rc.getJSON(ctx, "m3api-rest/v2/systeminfo", nil, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (a *InforM3) HealthCheck(ctx context.Context) (*Health, error) {
	return a.rc.probe(ctx, "m3api-rest/v2/systeminfo"), nil
}

func (a *InforM3) Telemetry() Telemetry { return a.rc.telemetry.snapshot() }
