package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	dErrors "examreg/pkg/domain-errors"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPTransport sends a batch as {"updates":[...]} to one admin endpoint.
type HTTPTransport struct {
	client   *http.Client
	method   string
	endpoint string
	token    string
}

type HTTPOption func(*HTTPTransport)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = c }
}

// WithAdminToken sets the X-Admin-Token header.
func WithAdminToken(token string) HTTPOption {
	return func(t *HTTPTransport) { t.token = token }
}

func NewHTTPTransport(method, endpoint string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		client:   &http.Client{Timeout: defaultHTTPTimeout},
		method:   method,
		endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type wireUpdate struct {
	ApplicationID string            `json:"applicationId,omitempty"`
	RecordID      string            `json:"recordId,omitempty"`
	AccountID     string            `json:"accountId,omitempty"`
	Fields        map[string]string `json:"fields"`
}

type wireResponse struct {
	Results []Result `json:"results"`
	Error   string   `json:"error"`
	Detail  string   `json:"error_description"`
}

func toWire(u Update) wireUpdate {
	w := wireUpdate{Fields: u.Fields}
	if !u.Key.ApplicationID.IsNil() {
		w.ApplicationID = u.Key.ApplicationID.String()
	}
	if !u.Key.RecordID.IsNil() {
		w.RecordID = u.Key.RecordID.String()
	}
	if !u.Key.AccountID.IsNil() {
		w.AccountID = u.Key.AccountID.String()
	}
	return w
}

// Send posts the batch. A non-2xx answer becomes a domain error carrying the
// server's code; a rejected batch comes back as *RejectedError with the
// server's per-row results.
func (t *HTTPTransport) Send(ctx context.Context, updates []Update) error {
	body := struct {
		Updates []wireUpdate `json:"updates"`
	}{Updates: make([]wireUpdate, len(updates))}
	for i, u := range updates {
		body.Updates[i] = toWire(u)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, t.method, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("X-Admin-Token", t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var out wireResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	code := dErrors.Code(out.Error)
	if code == "" {
		code = dErrors.CodeUnavailable
	}
	cause := dErrors.New(code, fmt.Sprintf("server answered %d: %s", resp.StatusCode, out.Detail))
	for i, r := range out.Results {
		if r.Status == StatusRejected {
			return &RejectedError{Index: i, ID: r.ID, Err: cause, Results: out.Results}
		}
	}
	return cause
}
