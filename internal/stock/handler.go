package stock

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/rbac"
	"github.com/servicedesk/servicedesk/internal/shared"
	"github.com/servicedesk/servicedesk/internal/validation"
)

// Handler wires HTTP endpoints for the stock module.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the stock handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermStockEdit))
		r.Post("/update", h.handleUpdate)
		r.Post("/indents", h.handleIndent)
	})
	r.With(h.rbac.RequireAny(shared.PermStockView)).Get("/{spareCode}", h.handleCard)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	var form validation.StockUpdateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	movement, err := h.service.Update(r.Context(), UpdateInput{
		Company:        company,
		Form:           form,
		ActorID:        shared.ActorFromContext(r.Context()),
		IdempotencyKey: r.Header.Get(shared.IdempotencyHeader),
	})
	if err != nil {
		h.writeError(w, "stock update", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) handleIndent(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	var form validation.IndentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	indent, err := h.service.CreateIndent(r.Context(), company, form, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "stock indent", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, indent)
}

func (h *Handler) handleCard(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	card, err := h.service.Card(r.Context(), company, chi.URLParam(r, "spareCode"))
	if err != nil {
		h.writeError(w, "stock card", err)
		return
	}
	httpx.JSON(w, http.StatusOK, card)
}

// company resolves the single company a stock request acts on.
func (h *Handler) company(w http.ResponseWriter, r *http.Request) (string, bool) {
	company, err := shared.ScopeCompany(shared.SessionFromContext(r.Context()), r.URL.Query().Get("company"))
	switch {
	case errors.Is(err, shared.ErrForeignCompany):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
		return "", false
	case err != nil:
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		return "", false
	case !shared.ValidCompany(company):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "select a company")
		return "", false
	}
	return company, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var formErr *FormError
	switch {
	case errors.As(err, &formErr):
		httpx.JSON(w, http.StatusUnprocessableEntity, formErr.Result)
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", "Check stock availability")
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrLineNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		if !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error(op, slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
