package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-feed/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func feedCacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "feed", MaxBodyBytes: 1 << 20}
}

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
}

// feedApp serves a titles list on GET /api/posts behind the cache and the
// limiter, and appends to it on POST /api/posts.
type feedApp struct {
	e      *echo.Echo
	titles []string
	render func(c echo.Context)
}

func newFeedApp(rc *ResponseCache, limiter echo.MiddlewareFunc) *feedApp {
	a := &feedApp{titles: []string{"Hello"}}
	a.e = echo.New()
	a.e.Use(echomw.RequestID())
	a.e.GET("/api/posts", func(c echo.Context) error {
		snapshot := append([]string(nil), a.titles...)
		if a.render != nil {
			a.render(c)
		}
		return c.JSON(http.StatusOK, snapshot)
	}, limiter, rc.Middleware())
	a.e.POST("/api/posts", func(c echo.Context) error {
		a.titles = append(a.titles, c.QueryParam("title"))
		return c.NoContent(http.StatusCreated)
	}, rc.PurgeOnWrite())
	a.e.POST("/api/broken", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request"})
	}, rc.PurgeOnWrite())
	return a
}

func (a *feedApp) serve(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func titlesOf(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var out []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestResponseCacheHitReplaysOnlyContentHeaders(t *testing.T) {
	_, rdb := newRedis(t)
	log, _ := test.NewNullLogger()
	rl := limiterConfig()
	rl.Capacity = 10
	a := newFeedApp(NewResponseCache(feedCacheConfig(), rdb, nil, log), NewTokenBucket(rl, rdb, log))

	first := a.serve(http.MethodGet, "/api/posts")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := a.serve(http.MethodGet, "/api/posts")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, []string{"Hello"}, titlesOf(t, second))
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	ids := second.Header().Values(echo.HeaderXRequestID)
	require.Len(t, ids, 1)
	assert.NotEqual(t, first.Header().Get(echo.HeaderXRequestID), ids[0])
	assert.Equal(t, []string{"8"}, second.Header().Values("X-RateLimit-Remaining"))
}

func TestPurgeOnWriteInvalidatesFeed(t *testing.T) {
	mr, rdb := newRedis(t)
	log, _ := test.NewNullLogger()
	a := newFeedApp(NewResponseCache(feedCacheConfig(), rdb, nil, log), passThrough)

	require.Equal(t, "MISS", a.serve(http.MethodGet, "/api/posts").Header().Get("X-Cache"))
	require.Equal(t, "HIT", a.serve(http.MethodGet, "/api/posts").Header().Get("X-Cache"))

	rec := a.serve(http.MethodPost, "/api/broken")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, mr.Exists("feed:gen"), "a failed write leaves the cache alone")
	assert.Equal(t, "HIT", a.serve(http.MethodGet, "/api/posts").Header().Get("X-Cache"))

	rec = a.serve(http.MethodPost, "/api/posts?title=World")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.serve(http.MethodGet, "/api/posts")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, []string{"Hello", "World"}, titlesOf(t, rec))
}

func TestPurgeDropsStoredResponses(t *testing.T) {
	mr, rdb := newRedis(t)
	log, _ := test.NewNullLogger()
	rc := NewResponseCache(feedCacheConfig(), rdb, nil, log)
	a := newFeedApp(rc, passThrough)

	a.serve(http.MethodGet, "/api/posts")
	var stored []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "feed:v0:") {
			stored = append(stored, k)
		}
	}
	require.Len(t, stored, 1)
	assert.Greater(t, mr.TTL(stored[0]), time.Duration(0))

	require.NoError(t, rc.Purge(t.Context()))
	assert.Equal(t, []string{"feed:gen"}, mr.Keys())
	gen, err := mr.Get("feed:gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestRenderStartedBeforePurgeIsNotServed(t *testing.T) {
	_, rdb := newRedis(t)
	log, _ := test.NewNullLogger()
	rc := NewResponseCache(feedCacheConfig(), rdb, nil, log)
	a := newFeedApp(rc, passThrough)

	// A write commits and purges while the first feed read is still
	// rendering its snapshot.
	a.render = func(c echo.Context) {
		a.render = nil
		a.titles = append(a.titles, "World")
		require.NoError(t, rc.Purge(c.Request().Context()))
	}
	rec := a.serve(http.MethodGet, "/api/posts")
	assert.Equal(t, []string{"Hello"}, titlesOf(t, rec))

	rec = a.serve(http.MethodGet, "/api/posts")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, []string{"Hello", "World"}, titlesOf(t, rec))
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	mr, rdb := newRedis(t)
	log, _ := test.NewNullLogger()
	e := echo.New()
	e.GET("/api/posts", func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "unavailable"})
	}, NewResponseCache(feedCacheConfig(), rdb, nil, log).Middleware())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Empty(t, mr.Keys())
}

func TestTokenBucketBlocksWhenEmpty(t *testing.T) {
	mr, rdb := newRedis(t)
	log, _ := test.NewNullLogger()
	a := newFeedApp(NewResponseCache(config.CacheConfig{}, nil, nil, log), NewTokenBucket(limiterConfig(), rdb, log))

	rec := a.serve(http.MethodGet, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = a.serve(http.MethodGet, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = a.serve(http.MethodGet, "/api/posts")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.True(t, retry > 0 && retry <= 60, "retry after %d", retry)
	assert.Contains(t, rec.Body.String(), "too_many_requests")

	key := "rl:ip:192.0.2.1"
	require.True(t, mr.Exists(key))
	assert.Equal(t, "0", mr.HGet(key, "tokens"))
	assert.Greater(t, mr.TTL(key), time.Duration(0))
}

func TestRedisOutageFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	log, _ := test.NewNullLogger()
	a := newFeedApp(NewResponseCache(feedCacheConfig(), rdb, nil, log), NewTokenBucket(limiterConfig(), rdb, log))
	mr.Close()

	for i := 0; i < 3; i++ {
		rec := a.serve(http.MethodGet, "/api/posts")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
		assert.Empty(t, rec.Header().Get("X-Cache"))
		assert.Equal(t, []string{"Hello"}, titlesOf(t, rec))
	}
}
