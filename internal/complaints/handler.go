package complaints

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/rbac"
	"github.com/servicedesk/servicedesk/internal/shared"
)

// Handler wires complaint endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the complaints handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers complaint routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermComplaintsView)).Get("/pending", h.handlePending)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	company, err := shared.ScopeCompany(shared.SessionFromContext(r.Context()), q.Get("company"))
	switch {
	case errors.Is(err, shared.ErrForeignCompany):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
		return
	case err != nil:
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		return
	}
	page, perPage := shared.PaginationFromQuery(q, maxPerPage)
	result, err := h.service.Pending(r.Context(), company, CriteriaFromQuery(q), page, perPage)
	if err != nil {
		h.logger.WarnContext(r.Context(), "pending complaints", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
