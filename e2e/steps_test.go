package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	accountservice "examreg/internal/account/service"
	accountstore "examreg/internal/account/store"
	examineehandler "examreg/internal/examinee/handler"
	"examreg/internal/examinee/models"
	examineeservice "examreg/internal/examinee/service"
	examineestore "examreg/internal/examinee/store"
	jwttoken "examreg/internal/jwt_token"
	lookupservice "examreg/internal/lookup/service"
	lookupstore "examreg/internal/lookup/store"
	"examreg/internal/reconcile"
	httptransport "examreg/internal/transport/http"
	id "examreg/pkg/domain"
	adminmw "examreg/pkg/platform/middleware/admin"
	authmw "examreg/pkg/platform/middleware/auth"
)

const (
	adminToken = "e2e-admin-token"
	signingKey = "e2e-signing-key"
	issuer     = "examreg-e2e"
	audience   = "examreg"
)

// world is the state of one scenario.
type world struct {
	server *httptest.Server
	jwt    *jwttoken.JWTService

	tokens map[string]string

	status int
	body   []byte
}

func newWorld() *world {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	lookups := lookupstore.NewInMemory()
	if err := lookupstore.SeedDefaults(ctx, lookups); err != nil {
		panic(err)
	}
	catalog := lookupservice.New(lookups, lookupservice.WithLogger(logger))

	examinees := examineestore.NewInMemory()
	examSvc := examineeservice.New(examinees, examinees, catalog, examineeservice.WithLogger(logger))
	accounts := accountstore.NewInMemory()
	acctSvc := accountservice.New(accounts, accounts, catalog, accountservice.WithLogger(logger))

	jwt := jwttoken.NewJWTService(signingKey, issuer, audience)
	handler := examineehandler.New(examSvc, logger)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:     logger,
		AdminToken: adminToken,
		Bearer:     authmw.RequireBearer(jwttoken.NewAdapter(jwt), acctSvc, nil, logger),
		Applicant:  []httptransport.Registrar{handler.RegisterApplicant},
		Admin:      []httptransport.Registrar{handler.RegisterAdmin},
	})

	return &world{
		server: httptest.NewServer(router),
		jwt:    jwt,
		tokens: map[string]string{},
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	var w *world
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		w = newWorld()
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		w.server.Close()
		return ctx, nil
	})

	sc.Step(`^applicant "([^"]*)" is signed in$`, func(name string) error { return w.signIn(name) })
	sc.Step(`^"([^"]*)" submits examinees:$`, func(name string, tbl *godog.Table) error { return w.submitTable(name, tbl) })
	sc.Step(`^"([^"]*)" resubmits without "([^"]*)" and adds "([^"]*)"$`, func(name, drop, add string) error { return w.resubmitSwap(name, drop, add) })
	sc.Step(`^"([^"]*)" requests a refund for "([^"]*)"$`, func(name, examinee string) error { return w.requestRefund(name, examinee) })
	sc.Step(`^the response status should be (\d+)$`, func(code int) error { return w.expectStatus(code) })
	sc.Step(`^the error description should be "([^"]*)"$`, func(want string) error { return w.expectErrorDescription(want) })
	sc.Step(`^"([^"]*)" should see registration numbers "([^"]*)"$`, func(name, want string) error { return w.expectRegistrationNumbers(name, want) })
	sc.Step(`^examinee "([^"]*)" of "([^"]*)" should show "([^"]*)" as "([^"]*)"$`, func(examinee, name, field, label string) error {
		return w.expectLabel(examinee, name, field, label)
	})
	sc.Step(`^examinee "([^"]*)" of "([^"]*)" should have no refund request$`, func(examinee, name string) error {
		return w.expectRecord(examinee, name, func(r models.RecordView) error {
			if r.RefundRequest != "" {
				return fmt.Errorf("refund request is %q, want none", r.RefundRequest)
			}
			return nil
		})
	})
	sc.Step(`^examinee "([^"]*)" of "([^"]*)" should have deposit note "([^"]*)"$`, func(examinee, name, want string) error {
		return w.expectRecord(examinee, name, func(r models.RecordView) error {
			if r.DepositNote != want {
				return fmt.Errorf("deposit note is %q, want %q", r.DepositNote, want)
			}
			return nil
		})
	})
	sc.Step(`^the administrator sets "([^"]*)" to "([^"]*)" for "([^"]*)"$`, func(field, value, examinee string) error {
		if err := w.saveBatch([][3]string{{examinee, field, value}}); err != nil {
			return err
		}
		return w.expectStatus(http.StatusOK)
	})
	sc.Step(`^the administrator saves the batch:$`, func(tbl *godog.Table) error {
		var rows [][3]string
		for _, row := range tbl.Rows[1:] {
			rows = append(rows, [3]string{row.Cells[0].Value, row.Cells[1].Value, row.Cells[2].Value})
		}
		return w.saveBatch(rows)
	})
	sc.Step(`^the batch results should be "([^"]*)"$`, func(want string) error { return w.expectBatchResults(want) })
	sc.Step(`^the administrator opens the summary$`, func() error {
		return w.do(http.MethodGet, "/admin/summary", nil, map[string]string{adminmw.HeaderAdminToken: adminToken})
	})
	sc.Step(`^the summary should report (\d+) examinees with (\d+) fee confirmed$`, func(total, fee int) error { return w.expectSummary(total, fee) })
	sc.Step(`^an anonymous client loads "([^"]*)"$`, func(path string) error { return w.do(http.MethodGet, path, nil, nil) })
	sc.Step(`^a client with admin token "([^"]*)" loads "([^"]*)"$`, func(token, path string) error {
		return w.do(http.MethodGet, path, nil, map[string]string{adminmw.HeaderAdminToken: token})
	})
}

func (w *world) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, w.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := w.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	w.status = resp.StatusCode
	w.body, err = io.ReadAll(resp.Body)
	return err
}

func (w *world) asApplicant(name string) (map[string]string, error) {
	token, ok := w.tokens[name]
	if !ok {
		return nil, fmt.Errorf("applicant %q is not signed in", name)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func (w *world) signIn(name string) error {
	token, err := w.jwt.GenerateAccessToken(id.NewAccountID(), name+"@example.com", name, time.Hour)
	if err != nil {
		return err
	}
	w.tokens[name] = token
	return nil
}

func header(name string) models.ApplicationHeader {
	return models.ApplicationHeader{
		ChurchName:   name + " Church",
		Denomination: "Presbyterian",
		ContactName:  name,
		ContactPhone: "01099998888",
	}
}

func newSubmission(name, examineeType, mobile string) models.Submission {
	return models.Submission{
		ExamineeType:        examineeType,
		Name:                name,
		Mobile:              mobile,
		DepositNote:         "paid",
		ParticipationStatus: models.ParticipationAttending,
	}
}

// submit replaces the applicant's application with rows.
func (w *world) submit(name string, rows []models.Submission) error {
	headers, err := w.asApplicant(name)
	if err != nil {
		return err
	}
	body := map[string]any{"header": header(name), "records": rows}
	return w.do(http.MethodPut, "/me/application", body, headers)
}

func (w *world) submitTable(name string, tbl *godog.Table) error {
	var rows []models.Submission
	for _, row := range tbl.Rows[1:] {
		rows = append(rows, newSubmission(row.Cells[0].Value, row.Cells[1].Value, row.Cells[2].Value))
	}
	return w.submit(name, rows)
}

func (w *world) load(name string) (*models.ApplicationView, error) {
	headers, err := w.asApplicant(name)
	if err != nil {
		return nil, err
	}
	if err := w.do(http.MethodGet, "/me/application", nil, headers); err != nil {
		return nil, err
	}
	if w.status != http.StatusOK {
		return nil, fmt.Errorf("loading application answered %d: %s", w.status, w.body)
	}
	var view models.ApplicationView
	if err := json.Unmarshal(w.body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// current rebuilds the applicant's submission from the stored application.
func (w *world) current(name string) ([]models.Submission, error) {
	view, err := w.load(name)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Submission, len(view.Records))
	for i, r := range view.Records {
		rows[i] = models.Submission{
			RegistrationNo:      strconv.Itoa(r.RegistrationNo),
			ExamineeType:        r.ExamineeType,
			Name:                r.Name,
			Mobile:              r.Mobile,
			DepositNote:         r.DepositNote,
			ParticipationStatus: r.ParticipationStatus,
			RefundRequest:       r.RefundRequest,
			CreatedYmd:          r.CreatedYmd,
		}
	}
	return rows, nil
}

func (w *world) resubmitSwap(name, drop, add string) error {
	rows, err := w.current(name)
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, r := range rows {
		if r.Name != drop {
			kept = append(kept, r)
		}
	}
	kept = append(kept, newSubmission(add, "100", "01055556666"))
	return w.submit(name, kept)
}

func (w *world) requestRefund(name, examinee string) error {
	rows, err := w.current(name)
	if err != nil {
		return err
	}
	found := false
	for i := range rows {
		if rows[i].Name == examinee {
			rows[i].RefundRequest = models.RefundRequested
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%q has no examinee %q", name, examinee)
	}
	return w.submit(name, rows)
}

func (w *world) expectStatus(code int) error {
	if w.status != code {
		return fmt.Errorf("status %d, want %d: %s", w.status, code, w.body)
	}
	return nil
}

func (w *world) expectErrorDescription(want string) error {
	var envelope struct {
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(w.body, &envelope); err != nil {
		return err
	}
	if envelope.Description != want {
		return fmt.Errorf("error_description %q, want %q", envelope.Description, want)
	}
	return nil
}

func (w *world) expectRegistrationNumbers(name, want string) error {
	view, err := w.load(name)
	if err != nil {
		return err
	}
	got := make([]string, len(view.Records))
	for i, r := range view.Records {
		got[i] = strconv.Itoa(r.RegistrationNo)
	}
	if strings.Join(got, ",") != want {
		return fmt.Errorf("registration numbers %s, want %s", strings.Join(got, ","), want)
	}
	return nil
}

func (w *world) expectRecord(examinee, name string, check func(models.RecordView) error) error {
	view, err := w.load(name)
	if err != nil {
		return err
	}
	for _, r := range view.Records {
		if r.Name == examinee {
			return check(r)
		}
	}
	return fmt.Errorf("%q has no examinee %q", name, examinee)
}

func (w *world) expectLabel(examinee, name, field, want string) error {
	return w.expectRecord(examinee, name, func(r models.RecordView) error {
		if got := r.Labels[field]; got != want {
			return fmt.Errorf("%s shows %q, want %q", field, got, want)
		}
		return nil
	})
}

func (w *world) findAdminRow(examinee string) (*models.AdminRow, error) {
	path := "/admin/records?" + url.Values{models.FieldName: {examinee}}.Encode()
	if err := w.do(http.MethodGet, path, nil, map[string]string{adminmw.HeaderAdminToken: adminToken}); err != nil {
		return nil, err
	}
	if w.status != http.StatusOK {
		return nil, fmt.Errorf("listing records answered %d: %s", w.status, w.body)
	}
	var resp struct {
		Records []models.AdminRow `json:"records"`
	}
	if err := json.Unmarshal(w.body, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Records {
		if resp.Records[i].Name == examinee {
			return &resp.Records[i], nil
		}
	}
	return nil, fmt.Errorf("no record named %q", examinee)
}

// saveBatch sends one PATCH holding a row per (examinee, field, value).
func (w *world) saveBatch(rows [][3]string) error {
	updates := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record, err := w.findAdminRow(row[0])
		if err != nil {
			return err
		}
		updates = append(updates, map[string]any{
			"applicationId": record.ApplicationID.String(),
			"recordId":      record.ID.String(),
			"fields":        map[string]string{row[1]: row[2]},
		})
	}
	return w.do(http.MethodPatch, "/admin/records", map[string]any{"updates": updates},
		map[string]string{adminmw.HeaderAdminToken: adminToken})
}

func (w *world) expectBatchResults(want string) error {
	var resp struct {
		Results []reconcile.Result `json:"results"`
	}
	if err := json.Unmarshal(w.body, &resp); err != nil {
		return err
	}
	got := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		got[i] = r.Status
	}
	if strings.Join(got, ",") != want {
		return fmt.Errorf("batch results %s, want %s", strings.Join(got, ","), want)
	}
	return nil
}

func (w *world) expectSummary(total, fee int) error {
	var summary models.Summary
	if err := json.Unmarshal(w.body, &summary); err != nil {
		return err
	}
	if summary.Total != total || summary.FeeConfirmed != fee {
		return fmt.Errorf("summary reports %d examinees with %d fee confirmed, want %d and %d",
			summary.Total, summary.FeeConfirmed, total, fee)
	}
	return nil
}
