package dashboard

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/servicedesk/servicedesk/internal/rbac"
	"github.com/servicedesk/servicedesk/internal/shared"
)

func newTestRouter(t *testing.T, role, company string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(&countingRepo{data: sampleData()}, nil, logger)
	h := NewHandler(logger, svc, rbac.Middleware{Service: rbac.NewService(nil, nil), Logger: logger})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{ID: "test"}
			if role != "" {
				sess.SetUser("1", role, company)
			}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/dashboard", h.MountRoutes)
	return r
}

func TestHandlerSnapshotDefaultsToSessionCompany(t *testing.T) {
	router := newTestRouter(t, shared.RoleUser, shared.CompanyCGPISL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, shared.CompanyCGPISL, snap.Company)
	require.Equal(t, 4, snap.StockMeta.TotalStock)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/?company=ALL", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, 14, snap.StockMeta.TotalStock)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/?company=ACME", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMenuFiltersByRole(t *testing.T) {
	router := newTestRouter(t, shared.RoleUser, shared.CompanyCGCEL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/menu", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Cards []MenuCard `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []string{"stock", "grc", "complaints"}, cardKeys(body.Cards))
}

func TestHandlerRequiresSignIn(t *testing.T) {
	router := newTestRouter(t, "", "")
	for _, path := range []string{"/dashboard/", "/dashboard/menu"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
