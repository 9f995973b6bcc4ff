package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"examreg/internal/account/service"
	"examreg/internal/reconcile"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
	"examreg/pkg/platform/httputil"
	"examreg/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context) ([]service.View, error)
	Update(ctx context.Context, patches []service.Patch) ([]reconcile.Result, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/users", h.HandleList)
	r.Put("/admin/users", h.HandleUpdate)
}

type listResponse struct {
	Users []service.View `json:"users"`
	Count int            `json:"count"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Users: users, Count: len(users)})
}

type userUpdate struct {
	AccountID string            `json:"accountId" validate:"required,uuid"`
	Fields    map[string]string `json:"fields" validate:"required,min=1"`
}

type updateRequest struct {
	Updates []userUpdate `json:"updates" validate:"required,min=1,dive"`
}

type updateResponse struct {
	Results []reconcile.Result `json:"results"`
	Error   string             `json:"error,omitempty"`
	Detail  string             `json:"error_description,omitempty"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	patches := make([]service.Patch, len(req.Updates))
	for i, u := range req.Updates {
		accountID, err := id.ParseAccountID(u.AccountID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid accountId"))
			return
		}
		patches[i] = service.Patch{AccountID: accountID, Fields: u.Fields}
	}

	results, err := h.service.Update(ctx, patches)
	var rejected *reconcile.RejectedError
	switch {
	case errors.As(err, &rejected):
		code := dErrors.CodeOf(err)
		httputil.WriteJSON(w, httputil.StatusFor(code), updateResponse{Results: results, Error: string(code), Detail: dErrors.Message(err)})
	case err != nil:
		h.logger.ErrorContext(ctx, "update users failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
	default:
		httputil.WriteJSON(w, http.StatusOK, updateResponse{Results: results})
	}
}
