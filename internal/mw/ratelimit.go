package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key. A bucket untouched for the
// idle period is dropped; by then it would have refilled anyway.
type KeyedLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

// NewKeyedLimiter expires idle buckets after the time a bucket needs to
// refill completely, but never sooner than a minute.
func NewKeyedLimiter(r rate.Limit, b int) *KeyedLimiter {
	idle := time.Minute
	if r > 0 && r != rate.Inf {
		if refill := time.Duration(float64(b) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return NewKeyedLimiterIdle(r, b, idle)
}

func NewKeyedLimiterIdle(r rate.Limit, b int, idle time.Duration) *KeyedLimiter {
	return &KeyedLimiter{limiters: cache.New(idle, 2*idle), r: r, b: b}
}

func (k *KeyedLimiter) Get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	if v, ok := k.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		k.limiters.SetDefault(key, l)
		return l
	}
	l := rate.NewLimiter(k.r, k.b)
	k.limiters.SetDefault(key, l)
	return l
}

// Len reports how many buckets are held, including expired ones the janitor
// has not collected yet.
func (k *KeyedLimiter) Len() int {
	return k.limiters.ItemCount()
}

// GlobalKey makes every caller share one bucket.
func GlobalKey(*gin.Context) string { return "global" }

// ClientIPKey gives every client address its own bucket.
func ClientIPKey(c *gin.Context) string { return c.ClientIP() }

// RateLimiter rejects requests over the limit with 429 and the API envelope.
func RateLimiter(limiter *KeyedLimiter, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Get(key(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, try again shortly.",
			})
			return
		}
		c.Next()
	}
}
