package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := NewSessionManager(client, "sd", time.Hour, false)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("7", RoleAdmin, CompanyCGCEL)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	require.True(t, mr.Exists("servicedesk:session:"+sess.ID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, "7", loaded.User())
	require.Equal(t, RoleAdmin, loaded.Role())
	require.Equal(t, CompanyCGCEL, loaded.Company())

	oldID := loaded.ID
	require.NoError(t, sm.Renew(ctx, loaded))
	require.NotEqual(t, oldID, loaded.ID)
	require.False(t, mr.Exists("servicedesk:session:"+oldID))

	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))
	sm.Destroy(loaded)
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, loaded))
	require.False(t, mr.Exists("servicedesk:session:"+loaded.ID))
	require.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestCSRFTokens(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := &Session{ID: "abc"}

	token, err := m.EnsureToken(sess)
	require.NoError(t, err)
	again, err := m.EnsureToken(sess)
	require.NoError(t, err)
	require.Equal(t, token, again)
	require.NoError(t, m.VerifyToken(sess, token))

	rotated, err := m.Rotate(sess)
	require.NoError(t, err)
	require.NotEqual(t, token, rotated)
	require.ErrorIs(t, m.VerifyToken(sess, token), ErrCSRFTokenMismatch)
	require.ErrorIs(t, m.VerifyToken(sess, ""), ErrCSRFTokenMissing)

	_, err = m.EnsureToken(nil)
	require.ErrorIs(t, err, ErrSessionMissing)
}

type execStub struct {
	tag  string
	sql  string
	args []any
}

func (e *execStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql = sql
	e.args = args
	return pgconn.NewCommandTag(e.tag), nil
}

func TestIdempotencyStore(t *testing.T) {
	db := &execStub{tag: "INSERT 0 1"}
	store := NewIdempotencyStore(db)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "req-1", "stock"))
	require.Equal(t, "req-1", db.args[0])

	db.tag = "INSERT 0 0"
	require.ErrorIs(t, store.CheckAndInsert(ctx, "req-1", "stock"), ErrIdempotencyConflict)
	require.Error(t, store.CheckAndInsert(ctx, "", "stock"))
	require.Error(t, store.CheckAndInsert(ctx, "req-2", ""))

	db.tag = "DELETE 3"
	removed, err := store.Cleanup(ctx, time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 3, removed)
}

func TestAuditLoggerRecord(t *testing.T) {
	db := &execStub{tag: "INSERT 0 1"}
	logger := NewAuditLogger(db)
	ctx := context.Background()

	require.ErrorIs(t, logger.Record(ctx, AuditLog{Action: "create"}), ErrAuditIncomplete)

	require.NoError(t, logger.Record(ctx, AuditLog{ActorID: 7, Action: "employee:create", Entity: AuditEntityEmployee, EntityID: "1"}))
	require.Equal(t, []byte(`{}`), db.args[4])
	require.Nil(t, db.args[5])
}

func TestPagination(t *testing.T) {
	q := url.Values{"page": {"2"}, "per_page": {"500"}}
	page, perPage := PaginationFromQuery(q, 100)
	require.Equal(t, 2, page)
	require.Equal(t, 100, perPage)

	p := NewPagination(3, 10, 25)
	require.Equal(t, 3, p.TotalPages)
	start, end := p.Window(25)
	require.Equal(t, 20, start)
	require.Equal(t, 25, end)

	start, end = NewPagination(9, 10, 25).Window(25)
	require.Equal(t, 25, start)
	require.Equal(t, 25, end)
}

func TestScopeCompany(t *testing.T) {
	admin := &Session{ID: "a"}
	admin.SetUser("1", RoleAdmin, CompanyCGCEL)
	company, err := ScopeCompany(admin, CompanyCGPISL)
	require.NoError(t, err)
	require.Equal(t, CompanyCGPISL, company)
	company, err = ScopeCompany(admin, "")
	require.NoError(t, err)
	require.Equal(t, CompanyCGCEL, company)

	user := &Session{ID: "u"}
	user.SetUser("2", RoleUser, CompanyCGCEL)
	company, err = ScopeCompany(user, "")
	require.NoError(t, err)
	require.Equal(t, CompanyCGCEL, company)
	company, err = ScopeCompany(user, CompanyCGCEL)
	require.NoError(t, err)
	require.Equal(t, CompanyCGCEL, company)
	_, err = ScopeCompany(user, CompanyCGPISL)
	require.ErrorIs(t, err, ErrForeignCompany)
	_, err = ScopeCompany(user, CompanyAll)
	require.ErrorIs(t, err, ErrForeignCompany)

	_, err = ScopeCompany(nil, CompanyCGCEL)
	require.ErrorIs(t, err, ErrSessionMissing)
}

func TestCompanySelectors(t *testing.T) {
	require.True(t, ValidCompany(CompanyCGPISL))
	require.False(t, ValidCompany(CompanyAll))
	require.True(t, ValidCompanySelector(CompanyAll))
	require.False(t, ValidCompanySelector("cgcel"))
}
