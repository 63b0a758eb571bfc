package auth

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/job-board/internal/config"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

type principalLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles mutating requests per principal, falling back to the client IP
// for anonymous callers.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*principalLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	logger   *zap.Logger
}

// NewRateLimiter builds a limiter from config. A non-positive rate disables limiting.
func NewRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*principalLimiter),
		limit:    limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		logger:   logger,
	}
}

// Handle rejects the request with RATE_LIMITED once the caller's bucket is empty.
func (rl *RateLimiter) Handle(c *fiber.Ctx) error {
	key := c.IP()
	if principal, ok := PrincipalFromContext(c); ok {
		key = principal.Email
	}

	if !rl.limiterFor(key).Allow() {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rl.retryAfterSeconds()))
		rl.logger.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", c.Path()))
		return apperrors.NewRateLimited()
	}
	return c.Next()
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for k, entry := range rl.limiters {
		if now.Sub(entry.lastAccess) > rl.idleTTL {
			delete(rl.limiters, k)
		}
	}

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &principalLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}

func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.limit == rate.Inf || rl.limit <= 0 {
		return 1
	}
	secs := int(math.Ceil(1.0 / float64(rl.limit)))
	if secs < 1 {
		secs = 1
	}
	return secs
}
