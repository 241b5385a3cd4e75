package rbac

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/shared"
)

// PermissionsHandler reports what the signed-in user may do.
type PermissionsHandler struct {
	logger *slog.Logger
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireUser).Get("/", h.listPermissions)
}

type permissionsResponse struct {
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Permissions []string `json:"permissions"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.rbac.Granted(r)
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	sort.Strings(perms)
	sess := shared.SessionFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, permissionsResponse{Role: sess.Role(), Company: sess.Company(), Permissions: perms})
}
