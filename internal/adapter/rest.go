package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/errs"
)

// restClient is the shared HTTP plumbing for the OData/REST adapters. It
// applies the profile's auth and timeout, records telemetry per request,
// and maps transport failures onto the error taxonomy.
type restClient struct {
	profile   config.Profile
	http      *http.Client
	telemetry *telemetryRecorder

	mu          sync.Mutex
	bearerToken string
	tokenExpiry time.Time
}

func newRESTClient(profile config.Profile) *restClient {
	return &restClient{
		profile:   profile,
		http:      &http.Client{},
		telemetry: &telemetryRecorder{},
	}
}

func (c *restClient) timeout() time.Duration {
	return time.Duration(c.profile.TimeoutMs) * time.Millisecond
}

// getJSON performs a GET against base+path with the given query and
// decodes the JSON body into out.
func (c *restClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	start := time.Now()
	err := c.doGetJSON(ctx, path, query, out)
	if err != nil {
		status := "error"
		if k, ok := errs.KindOf(err); ok {
			status = string(k)
		}
		c.telemetry.record(start, false, status)
		return err
	}
	c.telemetry.record(start, true, "ok")
	return nil
}

func (c *restClient) doGetJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	u := strings.TrimRight(c.profile.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errs.Connection(c.profile.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	if err := c.applyAuth(ctx, req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errs.Timeout("GET "+path, c.timeout())
		}
		return errs.Connection(c.profile.Name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return errs.Authentication(c.profile.Name)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errs.RemoteProtocol(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.RemoteProtocol(resp.StatusCode, fmt.Sprintf("undecodable body: %v", err))
	}
	return nil
}

func (c *restClient) applyAuth(ctx context.Context, req *http.Request) error {
	switch c.profile.Auth {
	case config.AuthBasic:
		req.SetBasicAuth(c.profile.Username, c.profile.Password)
	case config.AuthOAuth2:
		token, err := c.fetchToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.profile.Client != "" {
		req.Header.Set("sap-client", c.profile.Client)
	}
	return nil
}

// fetchToken obtains a client-credentials token, caching it until shortly
// before expiry.
func (c *restClient) fetchToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.bearerToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.bearerToken
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.profile.ClientID)
	form.Set("client_secret", c.profile.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.profile.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.Connection(c.profile.Name, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errs.Connection(c.profile.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", errs.Authentication(c.profile.Name)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errs.RemoteProtocol(resp.StatusCode, "undecodable token response")
	}
	if payload.AccessToken == "" {
		return "", errs.Authentication(c.profile.Name)
	}

	c.mu.Lock()
	c.bearerToken = payload.AccessToken
	expires := payload.ExpiresIn
	if expires <= 0 {
		expires = 300
	}
	c.tokenExpiry = time.Now().Add(time.Duration(expires-30) * time.Second)
	c.mu.Unlock()

	return payload.AccessToken, nil
}

// probe measures a lightweight GET for health checks.
func (c *restClient) probe(ctx context.Context, path string) *Health {
	start := time.Now()
	var ignored json.RawMessage
	err := c.getJSON(ctx, path, nil, &ignored)
	h := &Health{LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		h.Details = err.Error()
		return h
	}
	h.Healthy = true
	return h
}
