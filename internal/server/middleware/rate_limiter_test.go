package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	pkgredis "github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(t *testing.T, max int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := pkgredis.NewFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), logger.NewNop())
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RateLimiter(rdb, RateLimiterConfig{MaxRequests: max, Window: time.Minute}, logger.NewNop()))
	r.POST("/chat", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r, mr
}

func request(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	r, _ := newLimitedRouter(t, 2)

	w := request(r, "192.0.2.1:1000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = request(r, "192.0.2.1:1000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = request(r, "192.0.2.1:1000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrTooManyRequests, body.Code)

	w = request(r, "198.51.100.7:1000")
	assert.Equal(t, http.StatusOK, w.Code, "other clients have their own window")
}

func TestRateLimiter_RedisDown(t *testing.T) {
	r, mr := newLimitedRouter(t, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, request(r, "192.0.2.1:1000").Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"192.0.2.1", "192.0.2.1"},
		{"fe80::1%eth0", "fe80::1"},
		{"", "unknown"},
		{"not-an-ip", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clientIP(tt.in), tt.in)
	}
}

func TestParseResult(t *testing.T) {
	allowed, remaining, reset, err := parseResult([]interface{}{int64(1), int64(4), int64(1000)})
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(4), remaining)
	assert.Equal(t, int64(1000), reset)

	_, _, _, err = parseResult("nope")
	assert.Error(t, err)
	_, _, _, err = parseResult([]interface{}{"1", int64(0), int64(0)})
	assert.Error(t, err)
}
