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

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/force", RateLimiter(NewKeyedLimiter(rate.Every(time.Hour), 2), GlobalKey), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/force", nil)
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestKeyedLimiter_DropsIdleKeys(t *testing.T) {
	k := NewKeyedLimiterIdle(rate.Every(time.Hour), 1, 20*time.Millisecond)

	first := k.Get("10.0.0.1")
	require.True(t, first.Allow())
	assert.Same(t, first, k.Get("10.0.0.1"))
	k.Get("10.0.0.2")
	assert.Equal(t, 2, k.Len())

	time.Sleep(50 * time.Millisecond)
	k.limiters.DeleteExpired()
	assert.Equal(t, 0, k.Len())

	fresh := k.Get("10.0.0.1")
	assert.NotSame(t, first, fresh)
	assert.True(t, fresh.Allow())
}

func TestNewKeyedLimiter_IdleCoversRefill(t *testing.T) {
	k := NewKeyedLimiter(rate.Every(time.Minute), 5)
	l := k.Get("a")
	for i := 0; i < 5; i++ {
		require.True(t, l.Allow())
	}
	assert.False(t, k.Get("a").Allow())
}

func TestResponseCache(t *testing.T) {
	calls := 0
	rc := NewResponseCache(time.Minute)
	r := gin.New()
	r.GET("/stats", rc.Handler(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stats", nil)
		r.ServeHTTP(w, req)
		return w
	}

	w := get()
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	for i := 0; i < 2; i++ {
		w = get()
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"calls":1}`, w.Body.String())
	}
	assert.Equal(t, 1, calls)

	rc.Invalidate()
	w = get()
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":2}`, w.Body.String())
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	calls := 0
	rc := NewResponseCache(time.Minute)
	r := gin.New()
	r.GET("/stats", rc.Handler(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
	})
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stats", nil)
		r.ServeHTTP(w, req)
	}
	assert.Equal(t, 2, calls)
}
