package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"examreg/internal/lookup/models"
	dErrors "examreg/pkg/domain-errors"
	"examreg/pkg/platform/httputil"
	"examreg/pkg/requestcontext"
)

// Catalog is the read side of the lookup service used by this handler.
type Catalog interface {
	ListValid(ctx context.Context, typeID models.TypeID, asOf time.Time) ([]models.Option, error)
	Today(ctx context.Context) time.Time
	Location() *time.Location
	Degraded() bool
}

// Handler serves lookup options for dropdowns.
type Handler struct {
	catalog Catalog
	logger  *slog.Logger
}

func New(catalog Catalog, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/lookups/{typeID}", h.HandleList)
}

type listResponse struct {
	TypeID  int             `json:"type_id"`
	AsOf    string          `json:"as_of"`
	Options []models.Option `json:"options"`
}

// HandleList returns the options valid today, or on ?as_of=YYYYMMDD.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	typeID, err := strconv.Atoi(chi.URLParam(r, "typeID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "type id must be numeric"))
		return
	}

	asOf := h.catalog.Today(ctx)
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.ParseInLocation("20060102", raw, h.catalog.Location())
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "as_of must be YYYYMMDD"))
			return
		}
		asOf = parsed
	}

	options, err := h.catalog.ListValid(ctx, models.TypeID(typeID), asOf)
	if err != nil {
		h.logger.WarnContext(ctx, "lookup list unavailable",
			"request_id", requestID,
			"type_id", typeID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "lookup catalog unavailable"))
		return
	}
	if h.catalog.Degraded() {
		w.Header().Set("X-Lookup-Status", "degraded")
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{
		TypeID:  typeID,
		AsOf:    models.YmdString(asOf),
		Options: options,
	})
}
