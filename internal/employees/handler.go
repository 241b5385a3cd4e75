package employees

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

// Handler wires employee endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the employees handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermEmployeesView, shared.PermEmployeesEdit)).Get("/", h.handleList)
	r.With(h.rbac.RequireAll(shared.PermEmployeesEdit)).Post("/", h.handleCreate)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	company, ok := companyOf(w, r)
	if !ok {
		return
	}
	var form validation.EmployeeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	employee, err := h.service.Create(r.Context(), company, form, shared.ActorFromContext(r.Context()))
	var formErr *FormError
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusCreated, employee)
	case errors.As(err, &formErr):
		httpx.JSON(w, http.StatusUnprocessableEntity, formErr.Result)
	case errors.Is(err, ErrDuplicatePhone):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("create employee", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	company, ok := companyOf(w, r)
	if !ok {
		return
	}
	page, perPage := shared.PaginationFromQuery(r.URL.Query(), 100)
	rows, pagination, err := h.service.List(r.Context(), company, page, perPage)
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"employees": rows, "pagination": pagination})
}

func companyOf(w http.ResponseWriter, r *http.Request) (string, bool) {
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
