// Package cleanup runs the background worker that expires sessions and
// sweeps stale captcha challenges.
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// SessionExpirer ends sessions past their expiry and returns their IDs
type SessionExpirer interface {
	Expire(ctx context.Context) ([]string, error)
}

// ChallengeSweeper removes expired captcha challenges
type ChallengeSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Result summarizes one cleanup cycle
type Result struct {
	Sessions   int
	Challenges int
}

// Cleaner handles periodic cleanup of expired sessions and challenges
type Cleaner struct {
	sessions   SessionExpirer
	challenges ChallengeSweeper
	interval   time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(sessions SessionExpirer, challenges ChallengeSweeper, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		sessions:   sessions,
		challenges: challenges,
		interval:   interval,
	}
}

// Run blocks, cleaning up once immediately and then on every tick, until ctx is done
func (c *Cleaner) Run(ctx context.Context) error {
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return nil
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup cycle. Failures are logged and the
// remaining steps still run.
func (c *Cleaner) RunOnce(ctx context.Context) Result {
	slog.Debug("running cleanup cycle")
	var res Result

	ids, err := c.sessions.Expire(ctx)
	if err != nil {
		slog.Error("failed to expire sessions", "error", err)
	} else if len(ids) > 0 {
		res.Sessions = len(ids)
		slog.Info("expired sessions removed", "count", len(ids))
	}

	n, err := c.challenges.Sweep(ctx)
	if err != nil {
		slog.Error("failed to sweep captcha challenges", "error", err)
	} else if n > 0 {
		res.Challenges = n
		slog.Info("expired captcha challenges removed", "count", n)
	}

	return res
}
