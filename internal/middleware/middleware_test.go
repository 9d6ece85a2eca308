package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-feed/internal/config"
	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/service"
)

type fakeAuth struct {
	users map[string]*model.User
	err   error
}

func (f fakeAuth) Authenticate(_ context.Context, raw string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[raw]; ok {
		return u, nil
	}
	return nil, service.Unauthorized("could not validate credentials")
}

func newAuthEcho(auth Authenticator, extra ...echo.MiddlewareFunc) *echo.Echo {
	log, _ := test.NewNullLogger()
	e := echo.New()
	mw := append([]echo.MiddlewareFunc{JWTAuth(auth, log)}, extra...)
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, Actor(c).ID)
	}, mw...)
	return e
}

func do(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	auth := fakeAuth{users: map[string]*model.User{"good": {ID: "u1", Role: model.RoleUser}}}
	e := newAuthEcho(auth)

	rec := do(e, "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	rec = do(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)

	rec = do(e, "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not validate credentials")
}

func TestJWTAuthStorageFailureIs500(t *testing.T) {
	e := newAuthEcho(fakeAuth{err: errors.New("db down")})
	rec := do(e, "anything")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRequireRole(t *testing.T) {
	auth := fakeAuth{users: map[string]*model.User{
		"user":  {ID: "u1", Role: model.RoleUser},
		"admin": {ID: "a1", Role: model.RoleAdmin},
	}}
	e := newAuthEcho(auth, RequireRole(model.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, do(e, "user").Code)
	assert.Equal(t, http.StatusOK, do(e, "admin").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/posts")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}
	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(cfg, c))

	cfg.KeyStrategy = ""
	assert.Equal(t, "rl:ip:10.0.0.1:user:anon:route:GET /api/posts", buildRateKey(cfg, c))

	SetActor(c, &model.User{ID: "u1"})
	cfg.KeyStrategy = "user_route"
	assert.Equal(t, "rl:user:u1:route:GET /api/posts", buildRateKey(cfg, c))
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	log, _ := test.NewNullLogger()
	e := echo.New()
	cache := NewResponseCache(config.CacheConfig{Enabled: true}, nil, nil, log)
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, log),
		cache.Middleware(),
		cache.PurgeOnWrite(),
	)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, cache.Purge(context.Background()))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[1,2]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `[1,2]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99, '{'})
	assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(6), cw.size)
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/posts/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/metrics", m.Handler())

	for i := 0; i < 2; i++ {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/posts/:id", "204")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "social_feed_http_requests_total"))
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "anon", entry.Data["actor_id"])
}
