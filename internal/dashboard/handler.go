package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/rbac"
	"github.com/servicedesk/servicedesk/internal/shared"
)

const requestTimeout = 2 * time.Second

// Handler serves the dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermDashboardView)).Get("/", h.handleSnapshot)
	r.With(h.rbac.RequireUser).Get("/menu", h.handleMenu)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := h.service.Snapshot(ctx, companySelector(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	granted, err := h.rbac.Granted(r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard menu permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	cards, err := h.service.Menu(companySelector(r), granted)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cards": cards})
}

// companySelector prefers the query, then the company chosen at login.
func companySelector(r *http.Request) string {
	if c := r.URL.Query().Get("company"); c != "" {
		return c
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.Company() != "" {
		return sess.Company()
	}
	return SelectorAll
}
