package auth

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// LoginLimiter throttles credential attempts per client IP.
type LoginLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rateLim  rate.Limit
	burst    int
	lastSwep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter builds a limiter allowing ratePerSecond attempts with
// the given burst per client.
func NewLoginLimiter(ratePerSecond float64, burst int) *LoginLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &LoginLimiter{
		clients: make(map[string]*clientLimiter),
		rateLim: rate.Limit(ratePerSecond),
		burst:   burst,
	}
}

// Handle rejects requests exceeding the per-client budget.
func (l *LoginLimiter) Handle(c *fiber.Ctx) error {
	if !l.allow(c.IP()) {
		return apperrors.NewDomainError("RATE_LIMITED", "too many attempts, slow down", fiber.StatusTooManyRequests, nil)
	}
	return c.Next()
}

func (l *LoginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	// Drop stale client entries every sweep interval.
	if now.Sub(l.lastSwep) > 10*time.Minute {
		for key, client := range l.clients {
			if now.Sub(client.lastSeen) > 10*time.Minute {
				delete(l.clients, key)
			}
		}
		l.lastSwep = now
	}

	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.rateLim, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.Allow()
}
