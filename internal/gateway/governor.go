package gateway

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"
)

// Governor paces API usage against the host's primary rate limit. It keeps
// an atomic mirror of the most recently seen remaining-quota header and a
// running call counter; concurrent updates from whichever call completes
// first are safe, and staleness by a request or two is acceptable.
//
// The secondary ("abuse") rate limit is handled separately, at the HTTP
// transport, by the ratelimit waiter the client is built with.
type Governor struct {
	logger *logrus.Logger

	safety     int64         // quota floor kept in reserve
	pauseEvery int64         // courtesy pause cadence when quota is unknown
	pause      time.Duration // courtesy pause length

	calls     atomic.Int64
	nextPause atomic.Int64
	remaining atomic.Int64 // -1 until a quota signal has been seen
	resetAt   atomic.Int64 // unix seconds

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGovernor returns a Governor with the default safety floor (50 calls)
// and courtesy cadence (1s pause per 100 calls).
func NewGovernor(logger *logrus.Logger) *Governor {
	g := &Governor{
		logger:     logger,
		safety:     50,
		pauseEvery: 100,
		pause:      time.Second,
		now:        time.Now,
		sleep:      sleepCtx,
	}
	g.remaining.Store(-1)
	g.nextPause.Store(g.pauseEvery)
	return g
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Record notes one completed API call and mirrors the quota signal carried
// on its response, if any.
func (g *Governor) Record(resp *github.Response) {
	if resp == nil {
		return
	}
	g.calls.Add(1)
	if resp.Rate.Limit > 0 {
		g.remaining.Store(int64(resp.Rate.Remaining))
		g.resetAt.Store(resp.Rate.Reset.Unix())
	}
}

// Calls returns the number of API calls recorded so far.
func (g *Governor) Calls() int64 {
	return g.calls.Load()
}

// Wait blocks until the known remaining quota can absorb a batch of the
// given size plus the safety floor, sleeping through the reset window when
// it cannot. When no quota signal has been seen yet it returns immediately.
// Wait never fails the run; the only error it returns is ctx cancellation.
func (g *Governor) Wait(ctx context.Context, batch int) error {
	rem := g.remaining.Load()
	if rem < 0 || rem >= int64(batch)+g.safety {
		return nil
	}
	until := time.Unix(g.resetAt.Load(), 0).Sub(g.now()) + time.Second
	if until <= 0 {
		return nil
	}
	g.logger.WithFields(logrus.Fields{
		"remaining": rem,
		"batch":     batch,
		"sleep":     until.Round(time.Second),
	}).Info("Rate limit low, waiting for quota reset")
	return g.sleep(ctx, until)
}

// Pace inserts the courtesy pause once every pauseEvery recorded calls.
// It is the conservative fallback for runs where quota signals are missing
// or stale, and is cheap enough to call unconditionally between units of
// work.
func (g *Governor) Pace(ctx context.Context) error {
	next := g.nextPause.Load()
	if g.calls.Load() < next {
		return nil
	}
	if !g.nextPause.CompareAndSwap(next, next+g.pauseEvery) {
		return nil // another worker took this pause
	}
	g.logger.WithField("calls", g.calls.Load()).Debug("Courtesy pause")
	return g.sleep(ctx, g.pause)
}
