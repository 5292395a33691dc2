package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0

	r := gin.New()
	r.GET("/rules", rc.Handler(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/missing", rc.Handler(), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, path, nil)
		require.NoError(t, err)
		r.ServeHTTP(w, req)
		return w
	}

	first := get("/rules")
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"calls":1}`, first.Body.String())

	second := get("/rules")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())
	assert.Equal(t, 1, calls)

	rc.Flush()
	assert.Equal(t, 0, rc.Len())
	third := get("/rules")
	assert.Equal(t, "MISS", third.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"calls":2}`, third.Body.String())

	get("/missing")
	assert.Equal(t, 1, rc.Len())
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/ping", nil)
		require.NoError(t, err)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes[i] = w.Code
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/ping", nil)
	require.NoError(t, err)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiter_ReusesLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(5), 1)
	assert.Same(t, l.GetLimiter("a"), l.GetLimiter("a"))
	assert.NotSame(t, l.GetLimiter("a"), l.GetLimiter("b"))
}
