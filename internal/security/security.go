package security

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Config holds security configuration
type Config struct {
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	AllowedOrigins    []string      `json:"allowed_origins"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// DefaultConfig returns secure defaults for a locally-served dashboard
func DefaultConfig() Config {
	return Config{
		MaxRequestsPerMin: 120,
		AllowedOrigins:    []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:8787"},
		TrustedProxies:    []string{"127.0.0.1", "::1"},
		RequestTimeout:    30 * time.Second,
	}
}

// Middleware provides security middleware for the review API
type Middleware struct {
	config Config

	mu         sync.Mutex
	ipLimiters map[string]*rate.Limiter
}

// NewMiddleware creates a new security middleware instance
func NewMiddleware(config Config) *Middleware {
	return &Middleware{
		config:     config,
		ipLimiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the per-IP limiter, creating it on first sight with
// burst capacity for initial requests.
func (sm *Middleware) limiterFor(ip string) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	limiter, exists := sm.ipLimiters[ip]
	if !exists {
		rps := rate.Limit(float64(sm.config.MaxRequestsPerMin) / 60.0)
		burst := sm.config.MaxRequestsPerMin / 2
		if burst < 5 {
			burst = 5
		}
		limiter = rate.NewLimiter(rps, burst)
		sm.ipLimiters[ip] = limiter
	}
	return limiter
}

// RateLimitByIP rejects clients that exceed the per-IP request budget
func (sm *Middleware) RateLimitByIP(c *gin.Context) {
	if !sm.limiterFor(c.ClientIP()).Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"ok":          false,
			"error":       "rate limit exceeded for IP",
			"retry_after": "60",
		})
		c.Abort()
		return
	}

	c.Next()
}

// SecurityHeaders adds security headers to responses
func (sm *Middleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "SAMEORIGIN")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

	if c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	c.Next()
}

// CORSConfig builds the CORS middleware for the configured origins
func (sm *Middleware) CORSConfig() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     sm.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
