package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"simplelink/internal/apperrors"
	"simplelink/internal/config"
	"simplelink/internal/i18n"
	auth "simplelink/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	translator, err := i18n.New("en")
	require.NoError(t, err)

	router := gin.New()
	logger := zap.NewNop()
	router.Use(I18nMiddleware(translator), ErrorHandler(logger), GinZapRecovery(logger, true))
	router.Use(extra...)
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewManager("secret", "simplelink", 1)
	router := newTestRouter(t, AuthMiddleware(tokens))
	router.GET("/me", func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": c.GetString(ContextEmail)})
	})

	token, _, err := tokens.GenerateToken(7, "u@example.com", false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized", decodeError(t, w))
			}
		})
	}
}

func TestErrorHandler_Localizes(t *testing.T) {
	router := newTestRouter(t)
	router.GET("/taken", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrCodeTaken)
	})
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})

	req := httptest.NewRequest(http.MethodGet, "/taken", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Custom code already taken", decodeError(t, w))

	req = httptest.NewRequest(http.MethodGet, "/taken", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NotEqual(t, "Custom code already taken", decodeError(t, w))

	req = httptest.NewRequest(http.MethodGet, "/boom", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w), "internal causes are not leaked")
}

func TestGinZapRecovery(t *testing.T) {
	router := newTestRouter(t)
	router.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w))
}

func TestRateLimit(t *testing.T) {
	limit := &config.Limit{Enabled: true, Requests: 60, Burst: 2, SkipPaths: []string{"/api/health"}}
	router := newTestRouter(t, RateLimit(limit))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/x", ok)
	router.GET("/api/health", ok)

	do := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/x", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("/x", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("/x", "10.0.0.1"))

	// 其他客户端不受影响
	assert.Equal(t, http.StatusOK, do("/x", "10.0.0.2"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do("/api/health", "10.0.0.1"))
	}
}

func TestRateLimit_IgnoresForwardedForWithoutTrustedProxies(t *testing.T) {
	limit := &config.Limit{Enabled: true, Requests: 60, Burst: 2}
	router := newTestRouter(t, RateLimit(limit))
	require.NoError(t, router.SetTrustedProxies(nil))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	router := newTestRouter(t, RateLimit(&config.Limit{Enabled: false, Requests: 1, Burst: 1}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	router := newTestRouter(t, CorsMiddleware())
	router.POST("/api/shorten", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/shorten", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
