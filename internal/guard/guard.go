// Package guard enforces per-tool usage limits: a total-call ceiling and
// a sustained rate bound. A denied call surfaces as a handler error, which
// the batch layer downgrades to a per-operation failure.
package guard

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Policy configures the limits applied to every tool.
type Policy struct {
	// MaxTotal limits total calls per tool for the process lifetime; 0 disables.
	MaxTotal int
	// RatePerMinute limits sustained calls per tool per minute; 0 disables.
	RatePerMinute int
}

type toolState struct {
	count   int
	limiter *rate.Limiter
}

// Guard tracks per-tool counters and rate limiters.
type Guard struct {
	mu     sync.Mutex
	byTool map[string]*toolState
	policy Policy
}

// New returns a Guard with the given policy.
func New(policy Policy) *Guard {
	return &Guard{
		byTool: make(map[string]*toolState),
		policy: policy,
	}
}

// Allow records one call for tool and returns an error when a limit is hit.
func (g *Guard) Allow(tool string) error {
	if g == nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.byTool[tool]
	if state == nil {
		state = &toolState{}
		if g.policy.RatePerMinute > 0 {
			state.limiter = rate.NewLimiter(
				rate.Every(time.Minute/time.Duration(g.policy.RatePerMinute)),
				g.policy.RatePerMinute,
			)
		}
		g.byTool[tool] = state
	}

	if g.policy.MaxTotal > 0 && state.count >= g.policy.MaxTotal {
		return fmt.Errorf("tool %s exceeded maximum of %d calls", tool, g.policy.MaxTotal)
	}
	if state.limiter != nil && !state.limiter.Allow() {
		return fmt.Errorf("tool %s is rate limited", tool)
	}

	state.count++
	return nil
}

// Count returns the number of recorded calls for tool.
func (g *Guard) Count(tool string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.byTool[tool]
	if state == nil {
		return 0
	}
	return state.count
}
