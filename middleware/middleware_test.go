package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sirswa/crm_backend/models"
)

type stubAuthenticator struct {
	principals map[string]*models.Principal
	err        error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*models.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.principals[token]; ok {
		return p, nil
	}
	return nil, &models.ErrUnauthorized{Message: "Token is not valid"}
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newProtectedServer(auth Authenticator) *echo.Echo {
	e := echo.New()
	g := e.Group("/api", Authenticate(auth, zap.NewNop()))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, GetPrincipal(c))
	})
	admin := g.Group("/users", RequireAdmin())
	admin.GET("", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	return e
}

func TestAuthenticate(t *testing.T) {
	staff := &models.Principal{ID: primitive.NewObjectID(), Role: models.RoleStaff}
	e := newProtectedServer(&stubAuthenticator{principals: map[string]*models.Principal{"good": staff}})

	rec := serve(e, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token, authorization denied")

	rec = serve(e, http.MethodGet, "/api/me", "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is not valid")

	rec = serve(e, http.MethodGet, "/api/me", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), staff.ID.Hex())
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	e := newProtectedServer(&stubAuthenticator{err: errors.New("connection reset")})

	rec := serve(e, http.MethodGet, "/api/me", "any")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server error")
}

func TestRequireAdmin(t *testing.T) {
	e := newProtectedServer(&stubAuthenticator{principals: map[string]*models.Principal{
		"staff": {ID: primitive.NewObjectID(), Role: models.RoleStaff},
		"admin": {ID: primitive.NewObjectID(), Role: models.RoleAdmin},
	}})

	rec := serve(e, http.MethodGet, "/api/users", "staff")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin access required")

	rec = serve(e, http.MethodGet, "/api/users", "admin")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBearerToken(t *testing.T) {
	e := echo.New()
	tests := map[string]string{
		"Bearer abc.def":  "abc.def",
		"bearer  abc.def": "abc.def",
		"Basic abc":       "",
		"":                "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, want, BearerToken(c), "header %q", header)
	}
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.SetEndpointLimit("/api/auth/login", rate.Every(time.Hour), 2)

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/api/leads", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/auth/login", "").Code)
	}
	rec := serve(e, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "retryAfter")

	// other endpoints keep their own budget
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/leads", "").Code)
}

func TestRateLimiter_CleanupEvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.SetEndpointLimit("/api/auth/login", rate.Every(time.Hour), 1)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	limiter.now = func() time.Time { return clock }

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.GET("/api/leads", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/api/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/leads", "").Code)
	clock = start.Add(8 * time.Minute)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/auth/login", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/api/auth/login", "").Code)
	assert.Equal(t, 2, limiter.Tracked())

	// the idle visitor goes, the blocked one stays until its block ends
	limiter.Cleanup(start.Add(11 * time.Minute))
	assert.Equal(t, 1, limiter.Tracked())

	limiter.Cleanup(start.Add(25 * time.Minute))
	assert.Equal(t, 0, limiter.Tracked())
}

func TestRateLimiter_RunCleanupStopsOnCancel(t *testing.T) {
	limiter := NewRateLimiter()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		limiter.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeadersWithConfig(SecurityConfig{HSTS: true}))
	e.GET("/uploads/x.png", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/leads", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := serve(e, http.MethodGet, "/api/leads", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	rec = serve(e, http.MethodGet, "/uploads/x.png", "")
	assert.Equal(t, "cross-origin", rec.Header().Get("Cross-Origin-Resource-Policy"))
}
