package pipeline

import (
	"context"
	"net"
	"time"

	"foodsense/internal/logger"
)

// Guard defaults: one bounded connect attempt polls the link every
// pollInterval up to maxAttempts (~40s worst case); after an exhausted
// attempt the next one may not start until the cooldown has elapsed.
const (
	guardPollInterval = 500 * time.Millisecond
	guardMaxAttempts  = 80
	guardCooldown     = 30 * time.Second
	linkProbeTimeout  = 2 * time.Second
)

// Link reports whether the underlying network link is currently usable.
type Link interface {
	Up() bool
}

// DialLink probes the link with a short TCP dial. Addr is host:port,
// normally the inference server itself.
type DialLink struct {
	Addr    string
	Timeout time.Duration
}

func (l DialLink) Up() bool {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = linkProbeTimeout
	}
	conn, err := net.DialTimeout("tcp", l.Addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Guard is the two-state connectivity machine: CONNECTED while the link
// reports up, DISCONNECTED otherwise. While down, a bounded reconnect
// attempt runs at most once per cooldown window; polling Ensure every cycle
// between windows is free and never re-enters the attempt loop.
type Guard struct {
	link        Link
	log         *logger.Logger
	poll        time.Duration
	maxAttempts int
	cooldown    time.Duration

	connected   bool
	lastAttempt time.Time
	attempted   bool

	now   func() time.Time
	sleep func(time.Duration)
}

func NewGuard(link Link, log *logger.Logger) *Guard {
	return &Guard{
		link:        link,
		log:         log,
		poll:        guardPollInterval,
		maxAttempts: guardMaxAttempts,
		cooldown:    guardCooldown,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Connected reports the last observed state without touching the link.
func (g *Guard) Connected() bool { return g.connected }

// Ensure observes the link and, when down and the cooldown allows, runs one
// bounded reconnect attempt. Returns the resulting state. Blocking: an
// attempt can take poll*maxAttempts.
func (g *Guard) Ensure(ctx context.Context) bool {
	if g.link.Up() {
		if !g.connected {
			g.log.Infow("link_up")
		}
		g.connected = true
		return true
	}

	if g.connected {
		g.log.Infow("link_lost")
	}
	g.connected = false

	if g.attempted && g.now().Sub(g.lastAttempt) < g.cooldown {
		return false
	}
	return g.attempt(ctx)
}

// attempt is the bounded connect loop. The attempt start time is recorded
// before polling so the cooldown is measured from the start of the attempt.
func (g *Guard) attempt(ctx context.Context) bool {
	g.lastAttempt = g.now()
	g.attempted = true
	g.log.Infow("link_reconnect_attempt", "poll", g.poll, "max_attempts", g.maxAttempts)

	for i := 0; i < g.maxAttempts; i++ {
		if ctx.Err() != nil {
			return false
		}
		if g.link.Up() {
			g.connected = true
			g.log.Infow("link_up", "after_polls", i+1)
			return true
		}
		g.sleep(g.poll)
	}

	g.log.Infow("link_reconnect_exhausted", "cooldown", g.cooldown)
	return false
}
