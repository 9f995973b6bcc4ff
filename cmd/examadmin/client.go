package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"examreg/internal/examinee/models"
	"examreg/internal/reconcile"
	dErrors "examreg/pkg/domain-errors"
	adminmw "examreg/pkg/platform/middleware/admin"
)

// adminClient calls the portal's admin surface.
type adminClient struct {
	base   string
	token  string
	client *http.Client
}

func newAdminClient(base, token string) *adminClient {
	return &adminClient{
		base:   strings.TrimRight(base, "/"),
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type errorEnvelope struct {
	Error  string `json:"error"`
	Detail string `json:"error_description"`
}

func (c *adminClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminmw.HeaderAdminToken, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "portal unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		code := dErrors.Code(env.Error)
		if code == "" {
			code = dErrors.CodeUnavailable
		}
		return dErrors.New(code, fmt.Sprintf("%s %s answered %d: %s", method, path, resp.StatusCode, env.Detail))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *adminClient) Summary(ctx context.Context) (models.Summary, error) {
	var s models.Summary
	err := c.do(ctx, http.MethodGet, "/admin/summary", nil, &s)
	return s, err
}

func (c *adminClient) ListRecords(ctx context.Context, query url.Values) ([]models.AdminRow, error) {
	var out struct {
		Records []models.AdminRow `json:"records"`
	}
	path := "/admin/records"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Records, err
}

func (c *adminClient) ApplyExamNumbers(ctx context.Context, rows []models.ExamNumber) (models.ExamNumberResult, error) {
	type wireRow struct {
		RegistrationNo int    `json:"registrationNo"`
		ExamNumber     string `json:"examNumber"`
	}
	body := struct {
		Rows []wireRow `json:"rows"`
	}{Rows: make([]wireRow, len(rows))}
	for i, r := range rows {
		body.Rows[i] = wireRow{RegistrationNo: r.RegistrationNo, ExamNumber: r.ExamNumber}
	}
	var result models.ExamNumberResult
	err := c.do(ctx, http.MethodPost, "/admin/records/exam-numbers", body, &result)
	return result, err
}

// RecordsTransport sends grid edits to PATCH /admin/records.
func (c *adminClient) RecordsTransport() reconcile.Transport {
	return reconcile.NewHTTPTransport(http.MethodPatch, c.base+"/admin/records",
		reconcile.WithHTTPClient(c.client),
		reconcile.WithAdminToken(c.token),
	)
}
