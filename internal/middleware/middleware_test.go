package middleware_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/middleware"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/service/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	t.Cleanup(rl.Stop)

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"message"`)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1})
	t.Cleanup(rl.Stop)

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "abc")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

type gateEnv struct {
	router   *gin.Engine
	sessions *middleware.Sessions
	provider *mocks.MockProvider
}

func setupGate(t *testing.T) *gateEnv {
	t.Helper()

	sessions := middleware.NewSessions(config.AuthConfig{
		SessionSecret: "0123456789abcdef0123",
		SessionTTL:    time.Hour,
	})
	provider := mocks.NewMockProvider()
	provider.AddUser("", "admin-token", &models.Profile{ID: "1", Username: "root"})
	provider.AddUser("", "user-token", &models.Profile{ID: "2", Username: "guest"})

	gate := middleware.NewGate(sessions, provider, []string{"1"}, nil)
	apiKeys := middleware.NewAPIKey(middleware.APIKeyConfig{ValidKeys: map[string]string{"key-1": "ci"}})

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("message.html").Parse(`{{.Title}}: {{.Message}}`)))

	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": middleware.IsAdmin(c)})
	}
	router.GET("/", gate.Interactive(false), ok)
	router.GET("/admin", gate.Interactive(true), ok)
	router.GET("/api/profile", apiKeys.Middleware(), gate.Programmatic(false), ok)
	router.GET("/api/links", apiKeys.Middleware(), gate.Programmatic(true), ok)

	return &gateEnv{router: router, sessions: sessions, provider: provider}
}

// sessionCookie issues a session for userID/token and returns the cookie.
func (e *gateEnv) sessionCookie(t *testing.T, userID, token string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, e.sessions.Issue(c, userID, token))

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (e *gateEnv) do(path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	e.router.ServeHTTP(w, req)
	return w
}

func withCookie(cookie *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

func TestGate_Interactive(t *testing.T) {
	env := setupGate(t)

	t.Run("anonymous is redirected to the provider", func(t *testing.T) {
		w := env.do("/admin", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://discord.test/authorize?state="))
	})

	t.Run("non-admin gets 403 page", func(t *testing.T) {
		w := env.do("/admin", withCookie(env.sessionCookie(t, "2", "user-token")))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Forbidden")
	})

	t.Run("non-admin may open authenticated pages", func(t *testing.T) {
		w := env.do("/", withCookie(env.sessionCookie(t, "2", "user-token")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		w := env.do("/admin", withCookie(env.sessionCookie(t, "1", "admin-token")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"admin":true}`, w.Body.String())
	})
}

func TestGate_Programmatic(t *testing.T) {
	env := setupGate(t)

	t.Run("anonymous gets empty 401", func(t *testing.T) {
		w := env.do("/api/links", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("non-admin gets empty 403", func(t *testing.T) {
		w := env.do("/api/links", withCookie(env.sessionCookie(t, "2", "user-token")))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("authenticated route accepts non-admin", func(t *testing.T) {
		w := env.do("/api/profile", withCookie(env.sessionCookie(t, "2", "user-token")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"admin":false}`, w.Body.String())
	})

	t.Run("admin passes", func(t *testing.T) {
		w := env.do("/api/links", withCookie(env.sessionCookie(t, "1", "admin-token")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("api key grants admin", func(t *testing.T) {
		w := env.do("/api/links", func(r *http.Request) { r.Header.Set("X-API-Key", "key-1") })
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do("/api/links", func(r *http.Request) { r.Header.Set("Authorization", "Bearer key-1") })
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown api key is rejected", func(t *testing.T) {
		w := env.do("/api/links", func(r *http.Request) { r.Header.Set("X-API-Key", "nope") })
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestGate_RevalidatesSession(t *testing.T) {
	env := setupGate(t)
	cookie := env.sessionCookie(t, "1", "admin-token")

	w := env.do("/api/links", withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code)

	env.provider.Revoke("admin-token")

	w = env.do("/api/links", withCookie(cookie))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGate_RejectsForeignSignature(t *testing.T) {
	env := setupGate(t)

	other := middleware.NewSessions(config.AuthConfig{SessionSecret: "another-secret-value", SessionTTL: time.Hour})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, other.Issue(c, "1", "admin-token"))
	forged := w.Result().Cookies()[0]

	resp := env.do("/api/links", withCookie(forged))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGate_SubjectMustMatchToken(t *testing.T) {
	env := setupGate(t)

	// a user token presented under the admin's id
	w := env.do("/api/links", withCookie(env.sessionCookie(t, "1", "user-token")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
