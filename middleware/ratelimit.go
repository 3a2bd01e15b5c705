package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterStore hands out one token bucket per client IP and evicts buckets
// idle longer than ttl.
type limiterStore struct {
	mu      sync.Mutex
	buckets map[string]*bucketEntry
	rps     rate.Limit
	burst   int
	ttl     time.Duration
}

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(rps rate.Limit, burst int, ttl time.Duration) *limiterStore {
	return &limiterStore{
		buckets: make(map[string]*bucketEntry),
		rps:     rps,
		burst:   burst,
		ttl:     ttl,
	}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.buckets[ip]
	if !ok {
		e = &bucketEntry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[ip] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func (s *limiterStore) evictStale() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for ip, e := range s.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(s.buckets, ip)
		}
	}
}

// RateLimit applies per-IP token-bucket limiting. rps is the sustained rate,
// burst the bucket size. Over-limit requests get HTTP 429.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst, 10*time.Minute)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			store.evictStale()
		}
	}()

	return func(c *gin.Context) {
		if !store.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
