package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())

	r.Register(NewResource("/things").
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) }))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/things/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v2/things/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestResource_Middleware(t *testing.T) {
	engine := gin.New()
	var hits int
	res := NewResource("/guarded").
		Use(func(c *gin.Context) { hits++; c.Next() }).
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, "/guarded", res.Prefix())

	r := NewRouter(engine)
	r.Register(res)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/guarded", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, hits)
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newEngine(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	opts.Logger = zaptest.NewLogger(t)
	engine, err := New(opts, Handlers{Health: handler.NewHealthHandler(okPinger{})})
	require.NoError(t, err)
	return engine
}

func TestNew_HealthAndMiddleware(t *testing.T) {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = []string{"http://localhost:5173"}
	engine := newEngine(t, Options{CORS: cors, MaxBodySize: 1 << 20})

	for _, path := range []string{"/health", "/api/v1/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	}
}

func TestNew_NoRoute(t *testing.T) {
	engine := newEngine(t, Options{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestNew_RateLimit(t *testing.T) {
	engine := newEngine(t, Options{RateLimiter: middleware.NewRateLimiter(1, time.Hour)})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestNew_BodyLimitAppliesBeforeHandlers(t *testing.T) {
	engine := newEngine(t, Options{MaxBodySize: 8})

	req := httptest.NewRequest(http.MethodGet, "/health", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestNew_ServesUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1700000000000-milk.png"), []byte("png"), 0o644))
	engine := newEngine(t, Options{UploadsDir: dir, UploadsPrefix: "/uploads"})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/1700000000000-milk.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}
