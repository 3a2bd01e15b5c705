package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doGet(r *gin.Engine, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTraceID_Generated(t *testing.T) {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, GetTraceID(c)) })

	w := doGet(r, "/t", nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Body.String()
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceID_Provided(t *testing.T) {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, GetTraceID(c)) })

	w := doGet(r, "/t", map[string]string{TraceIDHeader: "debug-trace-7"})
	assert.Equal(t, "debug-trace-7", w.Body.String())
	assert.Equal(t, "debug-trace-7", w.Header().Get(TraceIDHeader))
}

func TestTraceID_Distinct(t *testing.T) {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, GetTraceID(c)) })

	w1 := doGet(r, "/t", nil)
	w2 := doGet(r, "/t", nil)
	assert.NotEqual(t, w1.Body.String(), w2.Body.String())
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := gin.New()
	// Near-zero refill so the burst is all we get.
	r.Use(RateLimit(rate.Limit(0.001), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hdr := map[string]string{"X-Real-IP": "10.0.0.1"}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doGet(r, "/", hdr).Code, "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/", hdr).Code)
}

func TestRateLimit_SeparateIPs(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(rate.Limit(0.001), 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(r, "/", map[string]string{"X-Real-IP": "10.0.1.1"}).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/", map[string]string{"X-Real-IP": "10.0.1.2"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/", map[string]string{"X-Real-IP": "10.0.1.1"}).Code)
}

func TestAdminAuth(t *testing.T) {
	r := gin.New()
	r.Use(AdminAuth("sekrit"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/", map[string]string{AdminKeyHeader: "wrong"}).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/", map[string]string{AdminKeyHeader: "sekrit"}).Code)
}

func TestAdminAuth_EmptyKeyDisables(t *testing.T) {
	r := gin.New()
	r.Use(AdminAuth(""))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, doGet(r, "/", map[string]string{AdminKeyHeader: ""}).Code)
}
