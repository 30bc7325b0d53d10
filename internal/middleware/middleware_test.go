package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/config"
	"github.com/neofitness/gym-management/internal/utils"
)

const secret = "test-secret"

func bearer(t *testing.T, p auth.Principal) string {
	tok, err := utils.NewAccessToken(secret, p, 15, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func protected(roles ...auth.Role) *echo.Echo {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(http.StatusOK, echo.Map{"sub": p.SubjectID, "uid": userID(c)})
	}, JWTAuth(secret), RequireRole(roles...))
	return e
}

func do(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRoles(t *testing.T) {
	e := protected(auth.RoleAdmin, auth.RoleTrainer)

	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "Basic abc").Code)

	rec := do(e, bearer(t, auth.Principal{SubjectID: 3, Role: auth.RoleCustomer}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, bearer(t, auth.Principal{SubjectID: 7, Role: auth.RoleTrainer}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sub":7,"uid":"7"}`, rec.Body.String())
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(auth.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/bookings")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.9", rateKey(cfg, c))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:guest", rateKey(cfg, c))

	c.Set(userIDKey, "42")
	cfg.KeyStrategy = "user_route"
	assert.Equal(t, "rl:user:42:route:POST /v1/bookings", rateKey(cfg, c))
	cfg.KeyStrategy = ""
	assert.Equal(t, "rl:ip:10.0.0.9:user:42:route:POST /v1/bookings", rateKey(cfg, c))
}

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
}

func TestRateLimitFailsOpen(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := echo.New()
	mw := RateLimit(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1,
		RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}, unreachableRedis(), zap.New(core))
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, mw)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 3, logs.FilterMessage("rate limit check skipped").Len())
}

func TestRateLimitDisabledIsPassThrough(t *testing.T) {
	mw := RateLimit(config.RateLimitConfig{Enabled: false}, nil, zap.NewNop())
	called := false
	h := mw(func(c echo.Context) error { called = true; return nil })
	e := echo.New()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())))
	assert.True(t, called)
}

func TestResponseCacheKey(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Prefix: "cache", Methods: []string{"get"}}, nil, zap.NewNop())
	e := echo.New()
	ctxFor := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/pricings/:id")
		return c
	}
	k1 := rc.key(ctxFor("/v1/pricings/1"))
	k2 := rc.key(ctxFor("/v1/pricings/2"))
	assert.NotEqual(t, k1, k2)
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, k1)
	assert.True(t, rc.methods["GET"])
}

func TestResponseCacheWithoutRedis(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Prefix: "cache", Methods: []string{"GET"}}, nil, zap.NewNop())
	assert.NoError(t, rc.Purge(t.Context()))

	e := echo.New()
	e.GET("/p", func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"ok": true}) }, rc.Middleware())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCaptureWriterOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = w.Write([]byte("abc"))
	assert.False(t, w.overflow)
	_, _ = w.Write([]byte("def"))
	assert.True(t, w.overflow)
	assert.Equal(t, "abcdef", rec.Body.String())
}
