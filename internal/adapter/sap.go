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

// sapService is the gateway service every SAP profile is expected to
// expose for table extraction.
const sapService = "sap/opu/odata/sap/Z_S4BRIDGE_SRV"

// SAP reads from an SAP ECC system through an OData V2 gateway service.
type SAP struct {
	rc *restClient

	mu        sync.Mutex
	connected bool
}

// NewSAP creates an unconnected SAP adapter.
func NewSAP(profile config.Profile) (Connection, error) {
	return &SAP{rc: newRESTClient(profile)}, nil
}

func (a *SAP) ProfileName() string { return a.rc.profile.Name }

func (a *SAP) Connect(ctx context.Context) error {
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

func (a *SAP) Disconnect(context.Context) error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	return nil
}

func (a *SAP) ReadTable(ctx context.Context, name string, opts ReadOptions) ([]Row, error) {
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
		D struct {
			Results []Row `json:"results"`
		} `json:"d"`
	}
	path := fmt.Sprintf("%s/TableSet('%s')/Rows", sapService, name)
	if err := a.rc.getJSON(ctx, path, query, &payload); err != nil {
		return nil, err
	}
	return payload.D.Results, nil
}

func (a *SAP) QueryEntities(ctx context.Context, set, rawQuery string) ([]Row, error) {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing entity query: %w", err)
	}
	var payload struct {
		D struct {
			Results []Row `json:"results"`
		} `json:"d"`
	}
	if err := a.rc.getJSON(ctx, sapService+"/"+set, query, &payload); err != nil {
		return nil, err
	}
	return payload.D.Results, nil
}

func (a *SAP) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	var payload struct {
		D SystemInfo `json:"d"`
	}
	if err := a.rc.getJSON(ctx, sapService+"/SystemInfo", nil, &payload); err != nil {
		return nil, err
	}
	return &payload.D, nil
}

func (a *SAP) HealthCheck(ctx context.Context) (*Health, error) {
	return a.rc.probe(ctx, sapService+"/SystemInfo"), nil
}

func (a *SAP) Telemetry() Telemetry { return a.rc.telemetry.snapshot() }
