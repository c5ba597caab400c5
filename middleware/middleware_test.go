package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course_miniapp/logging"
	"course_miniapp/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerAuth(t *testing.T) {
	tokens := NewTokenService([]byte("secret"))
	valid, err := tokens.GenerateToken(models.User{ID: 1, TelegramID: 999999})
	require.NoError(t, err)

	expiredService := NewTokenService([]byte("secret"))
	expiredService.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := expiredService.GenerateToken(models.User{ID: 1})
	require.NoError(t, err)

	foreign, err := NewTokenService([]byte("other")).GenerateToken(models.User{ID: 1})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", BearerAuth(tokens, logging.Discard()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt(UserIDKey)})
	})

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"valid", "Bearer " + valid, http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, "authorization header is required"},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized, "authorization header must be in the format: Bearer {token}"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Invalid or expired token"},
		{"foreign signature", "Bearer " + foreign, http.StatusUnauthorized, "Invalid or expired token"},
		{"garbage", "Bearer mock-dev-token", http.StatusUnauthorized, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.JSONEq(t, `{"message":"`+tt.message+`"}`, w.Body.String())
			} else {
				assert.JSONEq(t, `{"user_id":1}`, w.Body.String())
			}
		})
	}
}

func TestTokenServiceClaims(t *testing.T) {
	tokens := NewTokenService([]byte("secret"))
	signed, err := tokens.GenerateToken(models.User{ID: 5, TelegramID: 77})
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, 5, claims.UserID)
	assert.Equal(t, int64(77), claims.TelegramID)
	assert.Equal(t, "5", claims.Subject)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLoggerWritesFields(t *testing.T) {
	var buf strings.Builder
	log := logging.NewWithOutput(&buf, "info", "json")

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	out := buf.String()
	assert.Contains(t, out, `"path":"/ping"`)
	assert.Contains(t, out, `"status":204`)
	assert.Contains(t, out, `"request_id"`)
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/projects/:projectId", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/projects/10", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/projects/20", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/projects/:projectId", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requests))
}

func TestCaptureInitData(t *testing.T) {
	r := gin.New()
	r.Use(CaptureInitData())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, InitData(c)) })

	req := httptest.NewRequest(http.MethodGet, "/?tgWebAppData=from%3Dquery", nil)
	assert.Equal(t, "from=query", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/?tgWebAppData=from%3Dquery", nil)
	req.Header.Set(InitDataHeader, " from=header ")
	assert.Equal(t, "from=header", serve(r, req).Body.String())

	assert.Empty(t, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())
}
