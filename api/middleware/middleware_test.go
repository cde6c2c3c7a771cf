package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studytime/core/monitoring"
)

type captureLogger struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (c *captureLogger) Debugf(string, ...any)         {}
func (c *captureLogger) Debugw(string, map[string]any) {}
func (c *captureLogger) Infof(string, ...any)          {}
func (c *captureLogger) Warnf(string, ...any)          {}
func (c *captureLogger) Errorf(string, ...any)         {}
func (c *captureLogger) Infow(_ string, f map[string]any) {
	c.mu.Lock()
	c.entries = append(c.entries, f)
	c.mu.Unlock()
}

func newEngine(log *captureLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog(log))
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })
	return r
}

func TestRequestID_Generated(t *testing.T) {
	log := &captureLogger{}
	r := newEngine(log)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/id", nil))

	id := rr.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rr.Body.String())

	require.Len(t, log.entries, 1)
	assert.Equal(t, http.StatusOK, log.entries[0]["status"])
	assert.Equal(t, id, log.entries[0]["request_id"])
	assert.Equal(t, "/id", log.entries[0]["path"])
}

func TestRequestID_Echoed(t *testing.T) {
	r := newEngine(&captureLogger{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rr.Body.String())
}

type panicMonitor struct {
	monitoring.NopMonitor
	panics []any
	tags   map[string]string
}

func (p *panicMonitor) CapturePanic(r any, tags map[string]string) {
	p.panics = append(p.panics, r)
	p.tags = tags
}

func TestRecovery(t *testing.T) {
	mon := &panicMonitor{}
	monitoring.Init(mon)
	t.Cleanup(func() { monitoring.Init(monitoring.NopMonitor{}) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(&captureLogger{}))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rr.Body.String())
	require.Equal(t, []any{"kaboom"}, mon.panics)
	assert.Equal(t, "/boom", mon.tags["path"])
	assert.Equal(t, "req-1", mon.tags["request_id"])
}

func TestAccessLog_Latency(t *testing.T) {
	log := &captureLogger{}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AccessLog(log))
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		c.Status(http.StatusNoContent)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	require.Len(t, log.entries, 1)
	assert.Equal(t, http.StatusNoContent, log.entries[0]["status"])
	assert.GreaterOrEqual(t, log.entries[0]["latency_ms"].(float64), 5.0)
}
