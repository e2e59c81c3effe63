package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FoodieHub/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "cart_session_id"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRegistry() *session.Registry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return session.NewRegistry(time.Hour, log)
}

func sessionRouter(registry *session.Registry) *gin.Engine {
	router := gin.New()
	router.Use(SessionMiddleware(registry, SessionCookie{Name: testCookie, MaxAge: time.Hour, Secure: true}))
	router.GET("/whoami", func(c *gin.Context) {
		current, ok := CurrentSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, current.ID)
	})
	return router
}

func TestSessionMiddleware_StartsSessionAndSetsCookie(t *testing.T) {
	t.Parallel()

	registry := newRegistry()
	router := sessionRouter(registry)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Equal(t, w.Body.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.Equal(t, 1, registry.Len())
}

func TestSessionMiddleware_ReusesKnownSession(t *testing.T) {
	t.Parallel()

	registry := newRegistry()
	existing := registry.Start()
	router := sessionRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: existing.ID})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, existing.ID, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, existing.ID, cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.Equal(t, 1, registry.Len())
}

func TestSessionMiddleware_ReplacesUnknownSession(t *testing.T) {
	t.Parallel()

	registry := newRegistry()
	router := sessionRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "expired"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, "expired", w.Body.String())
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, w.Body.String(), w.Result().Cookies()[0].Value)
}

func TestSessionMiddleware_SessionCookieWithoutIdleTimeout(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(SessionMiddleware(newRegistry(), SessionCookie{Name: testCookie}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Zero(t, cookies[0].MaxAge)
	assert.False(t, cookies[0].Secure)
}

func TestCheckLoginMiddleware(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.GET("/anon", CheckLoginMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/user", func(c *gin.Context) {
		c.Set("UserID", uint(1))
	}, CheckLoginMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckAdminPermissionMiddleware(t *testing.T) {
	t.Parallel()

	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				c.Set("Role", role)
			}
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	router := gin.New()
	router.GET("/none", withRole(""), CheckAdminPermissionMiddleware(), ok)
	router.GET("/user", withRole("user"), CheckAdminPermissionMiddleware(), ok)
	router.GET("/admin", withRole(AdminRole), CheckAdminPermissionMiddleware(), ok)

	cases := map[string]int{
		"/none":  http.StatusInternalServerError,
		"/user":  http.StatusForbidden,
		"/admin": http.StatusOK,
	}
	for path, want := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
