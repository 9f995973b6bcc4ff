// Package handler exposes the examinee workflows over HTTP: the applicant's
// own application and the administrator grids.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"examreg/internal/examinee/models"
	"examreg/internal/examinee/service"
	"examreg/internal/reconcile"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
	"examreg/pkg/platform/httputil"
	"examreg/pkg/requestcontext"
)

// Service is the examinee service surface used by the handlers.
type Service interface {
	Submit(ctx context.Context, owner id.AccountID, req service.SubmitRequest) (*models.ApplicationView, error)
	GetMine(ctx context.Context, owner id.AccountID) (*models.ApplicationView, error)
	ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.AdminRow, error)
	PatchRecords(ctx context.Context, patches []service.RecordPatch) ([]reconcile.Result, error)
	PatchApplications(ctx context.Context, patches []service.ApplicationPatch) ([]reconcile.Result, error)
	ApplyExamNumbers(ctx context.Context, rows []models.ExamNumber) (models.ExamNumberResult, error)
	Summary(ctx context.Context) (models.Summary, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterApplicant mounts the routes behind bearer authentication.
func (h *Handler) RegisterApplicant(r chi.Router) {
	r.Get("/me/application", h.HandleGetMine)
	r.Put("/me/application", h.HandleSubmit)
}

// RegisterAdmin mounts the routes behind the admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/records", h.HandleListRecords)
	r.Patch("/admin/records", h.HandlePatchRecords)
	r.Post("/admin/records/exam-numbers", h.HandleExamNumbers)
	r.Patch("/admin/applications", h.HandlePatchApplications)
	r.Get("/admin/summary", h.HandleSummary)
}

func (h *Handler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.GetMine(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		h.writeError(ctx, w, "get application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

type submitRequest struct {
	Header  models.ApplicationHeader `json:"header"`
	Records []models.Submission      `json:"records" validate:"required,min=1"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req submitRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Submit(ctx, requestcontext.AccountID(ctx), service.SubmitRequest{
		Header:  req.Header,
		Records: req.Records,
	})
	if err != nil {
		h.writeError(ctx, w, "submit application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleListRecords filters the admin grid. Query parameters carry the field
// names used in patches.
func (h *Handler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := models.RecordFilter{
		ChurchName:          q.Get(models.FieldChurchName),
		Denomination:        q.Get(models.FieldDenomination),
		Name:                q.Get(models.FieldName),
		Mobile:              q.Get(models.FieldMobile),
		DepositNote:         q.Get(models.FieldDepositNote),
		ExamineeType:        q.Get(models.FieldExamineeType),
		ParticipationStatus: q.Get(models.FieldParticipationStatus),
		FeeConfirmed:        q.Get(models.FieldFeeConfirmed),
		ContactConfirmed:    q.Get(models.FieldContactConfirmed),
		RefundRequest:       q.Get(models.FieldRefundRequest),
		RefundConfirmed:     q.Get(models.FieldRefundConfirmed),
	}
	if raw := q.Get(models.FieldRegistrationNo); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "registration_no must be a positive number"))
			return
		}
		filter.RegistrationNo = n
	}

	rows, err := h.service.ListRecords(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, "list records failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listRecordsResponse{Records: rows, Count: len(rows)})
}

type listRecordsResponse struct {
	Records []models.AdminRow `json:"records"`
	Count   int               `json:"count"`
}

type recordUpdate struct {
	ApplicationID string            `json:"applicationId" validate:"required,uuid"`
	RecordID      string            `json:"recordId" validate:"required,uuid"`
	Fields        map[string]string `json:"fields" validate:"required,min=1"`
}

type patchRecordsRequest struct {
	Updates []recordUpdate `json:"updates" validate:"required,min=1,dive"`
}

type patchResponse struct {
	Results []reconcile.Result `json:"results"`
	Error   string             `json:"error,omitempty"`
	Detail  string             `json:"error_description,omitempty"`
}

// HandlePatchRecords applies a reconcile batch. A rejected batch answers with
// the rejecting status and every row's outcome.
func (h *Handler) HandlePatchRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req patchRecordsRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	patches := make([]service.RecordPatch, len(req.Updates))
	for i, u := range req.Updates {
		appID, err := id.ParseApplicationID(u.ApplicationID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid applicationId"))
			return
		}
		recID, err := id.ParseRecordID(u.RecordID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid recordId"))
			return
		}
		patches[i] = service.RecordPatch{ApplicationID: appID, RecordID: recID, Fields: u.Fields}
	}

	results, err := h.service.PatchRecords(ctx, patches)
	h.writePatchResults(ctx, w, results, err)
}

type applicationUpdate struct {
	ApplicationID string            `json:"applicationId" validate:"required,uuid"`
	Fields        map[string]string `json:"fields" validate:"required,min=1"`
}

type patchApplicationsRequest struct {
	Updates []applicationUpdate `json:"updates" validate:"required,min=1,dive"`
}

func (h *Handler) HandlePatchApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req patchApplicationsRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	patches := make([]service.ApplicationPatch, len(req.Updates))
	for i, u := range req.Updates {
		appID, err := id.ParseApplicationID(u.ApplicationID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid applicationId"))
			return
		}
		patches[i] = service.ApplicationPatch{ApplicationID: appID, Fields: u.Fields}
	}

	results, err := h.service.PatchApplications(ctx, patches)
	h.writePatchResults(ctx, w, results, err)
}

func (h *Handler) writePatchResults(ctx context.Context, w http.ResponseWriter, results []reconcile.Result, err error) {
	var rejected *reconcile.RejectedError
	switch {
	case errors.As(err, &rejected):
		code := dErrors.CodeOf(err)
		httputil.WriteJSON(w, httputil.StatusFor(code), patchResponse{
			Results: results,
			Error:   string(code),
			Detail:  dErrors.Message(err),
		})
	case err != nil:
		h.writeError(ctx, w, "patch failed", err)
	default:
		httputil.WriteJSON(w, http.StatusOK, patchResponse{Results: results})
	}
}

type examNumberRow struct {
	RegistrationNo int    `json:"registrationNo" validate:"required,gt=0"`
	ExamNumber     string `json:"examNumber"`
}

type examNumbersRequest struct {
	Rows []examNumberRow `json:"rows" validate:"required,min=1,dive"`
}

func (h *Handler) HandleExamNumbers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req examNumbersRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	rows := make([]models.ExamNumber, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = models.ExamNumber{RegistrationNo: row.RegistrationNo, ExamNumber: row.ExamNumber}
	}
	result, err := h.service.ApplyExamNumbers(ctx, rows)
	if err != nil {
		h.writeError(ctx, w, "apply exam numbers failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.writeError(ctx, w, "summary failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
