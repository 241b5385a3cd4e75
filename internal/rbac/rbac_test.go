package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/servicedesk/servicedesk/internal/shared"
)

type roleStub map[int64]string

func (s roleStub) RoleOf(_ context.Context, userID int64) (string, error) {
	role, ok := s[userID]
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func withSession(sess *shared.Session, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess != nil {
			r = r.WithContext(shared.ContextWithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

func newMiddleware(roles RoleSource) Middleware {
	return Middleware{Service: NewService(roles, nil), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func serve(t *testing.T, mw Middleware, sess *shared.Session, perms ...string) int {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := withSession(sess, mw.RequireAll(perms...)(ok))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Code
}

func userSession(id, role string) *shared.Session {
	sess := &shared.Session{ID: "s"}
	sess.SetUser(id, role, shared.CompanyCGCEL)
	return sess
}

func TestScopesForRole(t *testing.T) {
	svc := NewService(nil, nil)
	require.ElementsMatch(t, shared.AllScopes(), svc.ScopesForRole(" admin "))
	require.NotContains(t, svc.ScopesForRole(shared.RoleUser), shared.PermGRCUpload)
	require.Empty(t, svc.ScopesForRole("GUEST"))

	scopes := svc.ScopesForRole(shared.RoleUser)
	scopes[0] = "mutated"
	require.NotEqual(t, "mutated", svc.ScopesForRole(shared.RoleUser)[0])
}

func TestRequireAllUsesSessionRole(t *testing.T) {
	mw := newMiddleware(nil)

	require.Equal(t, http.StatusNoContent, serve(t, mw, userSession("1", shared.RoleAdmin), shared.PermGRCUpload))
	require.Equal(t, http.StatusForbidden, serve(t, mw, userSession("2", shared.RoleUser), shared.PermGRCUpload))
	require.Equal(t, http.StatusNoContent, serve(t, mw, userSession("2", shared.RoleUser), " GRC.VIEW "))
	require.Equal(t, http.StatusUnauthorized, serve(t, mw, nil, shared.PermGRCView))
	require.Equal(t, http.StatusNoContent, serve(t, mw, nil))
}

func TestRequireAllFallsBackToRoleSource(t *testing.T) {
	mw := newMiddleware(roleStub{5: shared.RoleUser})

	sess := &shared.Session{ID: "s"}
	sess.SetUser("5", "", shared.CompanyCGCEL)
	require.Equal(t, http.StatusNoContent, serve(t, mw, sess, shared.PermStockEdit))

	sess.SetUser("6", "", shared.CompanyCGCEL)
	require.Equal(t, http.StatusForbidden, serve(t, mw, sess, shared.PermStockEdit))

	sess.SetUser("abc", "", shared.CompanyCGCEL)
	require.Equal(t, http.StatusUnauthorized, serve(t, mw, sess, shared.PermStockEdit))
}

type failingSource struct{}

func (failingSource) RoleOf(context.Context, int64) (string, error) {
	return "", errors.New("db down")
}

func TestRequireAnyReportsSourceFailure(t *testing.T) {
	mw := newMiddleware(failingSource{})
	sess := &shared.Session{ID: "s"}
	sess.SetUser("5", "", shared.CompanyCGCEL)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	withSession(sess, mw.RequireAny(shared.PermGRCView, shared.PermStockView)(ok)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPermissionsHandler(t *testing.T) {
	mw := newMiddleware(nil)
	h := NewPermissionsHandler(mw.Logger, mw)
	r := chi.NewRouter()
	r.Route("/permissions", h.MountRoutes)

	rec := httptest.NewRecorder()
	withSession(userSession("2", shared.RoleUser), r).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body permissionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, shared.RoleUser, body.Role)
	require.Equal(t, shared.CompanyCGCEL, body.Company)
	require.ElementsMatch(t, shared.UserScopes(), body.Permissions)

	rec = httptest.NewRecorder()
	withSession(nil, r).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
