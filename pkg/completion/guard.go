package completion

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Guarded wraps a Client with a consecutive-failure breaker: after
// maxFailures failed calls in a row, further calls fail fast until the
// cooldown elapses. A single success resets the counter.
type Guarded struct {
	inner       Client
	maxFailures int
	cooldown    time.Duration

	mu            sync.Mutex
	failures      int
	disabledUntil time.Time
	now           func() time.Time
}

// NewGuarded wraps client with a failure breaker.
func NewGuarded(client Client, maxFailures int, cooldown time.Duration) *Guarded {
	return &Guarded{
		inner:       client,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// Complete delegates to the wrapped client unless the breaker is open.
func (g *Guarded) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !g.allow() {
		return "", &ServiceError{Err: fmt.Errorf("completion disabled until %s after repeated failures",
			g.disabledAt().Format(time.RFC3339))}
	}

	text, err := g.inner.Complete(ctx, systemPrompt, userPrompt)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.failures++
		if g.maxFailures > 0 && g.failures >= g.maxFailures {
			g.disabledUntil = g.now().Add(g.cooldown)
		}
		return "", err
	}
	g.failures = 0
	g.disabledUntil = time.Time{}
	return text, nil
}

func (g *Guarded) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disabledUntil.IsZero() {
		return true
	}
	if g.now().After(g.disabledUntil) {
		// cooldown over, give the service another chance
		g.disabledUntil = time.Time{}
		g.failures = 0
		return true
	}
	return false
}

func (g *Guarded) disabledAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabledUntil
}
