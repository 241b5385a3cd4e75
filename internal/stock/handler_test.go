package stock

import (
	"bytes"
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
	"github.com/servicedesk/servicedesk/internal/validation"
)

func newTestRouter(t *testing.T, repo *memoryRepo, role, company string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, _, _, _ := newTestService(repo)
	h := NewHandler(logger, svc, rbac.Middleware{Service: rbac.NewService(nil, nil), Logger: logger})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{ID: "test"}
			if role != "" {
				sess.SetUser("4", role, company)
			}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/stock", h.MountRoutes)
	return r
}

func post(t *testing.T, h http.Handler, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerUpdateFlow(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(t, repo, shared.RoleUser, shared.CompanyCGCEL)

	rec := post(t, router, "/stock/update", validation.StockUpdateForm{}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var res validation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.Has("remark"))

	headers := map[string]string{shared.IdempotencyHeader: "req-1"}
	rec = post(t, router, "/stock/update", spareIn("6"), headers)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = post(t, router, "/stock/update", spareIn("6"), headers)
	require.Equal(t, http.StatusConflict, rec.Code)

	out := validation.StockUpdateForm{SpareCode: "SP-1", Division: "FANS", SpareDescription: "Motor",
		Qty: "7", OwnQty: "9", MovementType: validation.MovementSpareOut, Remark: "issue"}
	rec = post(t, router, "/stock/update", out, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock/SP-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var card Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	require.Equal(t, 6, card.Lines[0].OwnQty)
	require.Len(t, card.Movements, 1)
}

func TestHandlerRequiresCompany(t *testing.T) {
	router := newTestRouter(t, newMemoryRepo(), shared.RoleAdmin, shared.CompanyAll)
	rec := post(t, router, "/stock/update", spareIn("1"), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, router, "/stock/update?company=CGPISL", spareIn("1"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandlerPinsUserToSessionCompany(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(t, repo, shared.RoleUser, shared.CompanyCGCEL)

	rec := post(t, router, "/stock/update?company=CGPISL", spareIn("3"), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock/SP-1?company=CGPISL", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = post(t, router, "/stock/update?company=CGCEL", spareIn("3"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// the CGPISL ledger was never touched
	admin := newTestRouter(t, repo, shared.RoleAdmin, shared.CompanyCGPISL)
	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock/SP-1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerIndent(t *testing.T) {
	router := newTestRouter(t, newMemoryRepo(), shared.RoleUser, shared.CompanyCGCEL)
	rec := post(t, router, "/stock/indents", validation.IndentForm{
		SpareCode: "SP-1", IndentQty: "2", PartyName: "Depot", OrderNumber: "PO-9", OrderDate: "2024-03-01", Remark: "r",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var indent Indent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &indent))
	require.Equal(t, "IND000001", indent.IndentNumber)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stock/SP-404", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
