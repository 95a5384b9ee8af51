// Package ratelimit protects the API with a fixed-window limiter backed by
// the shared KV store, and offers a token-bucket limiter for outbound
// calls to upstream services.
package ratelimit

import (
	"context"
	"time"

	"github.com/driftpix/driftpix-server/internal/kv"
	"github.com/driftpix/driftpix-server/internal/logger"
)

const (
	windowPrefix    = "ratelimit:"
	violationPrefix = "ratelimit:violations:"
)

// Decision is the outcome of admitting one request.
type Decision struct {
	Allowed bool
	// RetryAfter is how long the client must wait when denied.
	RetryAfter time.Duration
	// Remaining is the number of requests left in the current window.
	Remaining int64
}

// Escalator is notified when a client keeps hammering a closed window.
// Implementations must be idempotent; the limiter may fire repeatedly.
type Escalator interface {
	Escalate(ctx context.Context, clientIP, reason string)
}

// WindowLimiter admits requests per (client, route) fixed window. Counters
// live in the shared KV store, so every server process enforces the same
// budget.
type WindowLimiter struct {
	store          kv.Store
	logger         *logger.Logger
	times          int64
	window         time.Duration
	escalateAfter  int64
	escalateWindow time.Duration
	escalator      Escalator
}

// Config holds the limiter settings.
type Config struct {
	// Times requests per Window per (client, route).
	Times  int
	Window time.Duration
	// EscalateAfter denials within EscalateWindow trigger the escalator.
	// Zero disables escalation.
	EscalateAfter  int
	EscalateWindow time.Duration
}

// NewWindow creates a window limiter. The escalator may be nil.
func NewWindow(store kv.Store, cfg Config, escalator Escalator, log *logger.Logger) *WindowLimiter {
	return &WindowLimiter{
		store:          store,
		logger:         log,
		times:          int64(cfg.Times),
		window:         cfg.Window,
		escalateAfter:  int64(cfg.EscalateAfter),
		escalateWindow: cfg.EscalateWindow,
		escalator:      escalator,
	}
}

// Admit counts the request against the client's window for the route and
// decides whether it may proceed. Denials feed a second, longer violation
// window; crossing its threshold hands the client to the escalator
// without blocking the request path.
func (l *WindowLimiter) Admit(ctx context.Context, clientIP, route string) (Decision, error) {
	count, remaining, err := l.store.IncrWindow(ctx, windowPrefix+clientIP+":"+route, l.window)
	if err != nil {
		return Decision{}, err
	}

	if count <= l.times {
		return Decision{Allowed: true, Remaining: l.times - count}, nil
	}

	decision := Decision{Allowed: false, RetryAfter: remaining}
	l.recordViolation(ctx, clientIP, route)
	return decision, nil
}

func (l *WindowLimiter) recordViolation(ctx context.Context, clientIP, route string) {
	if l.escalateAfter == 0 || l.escalator == nil {
		return
	}

	violations, _, err := l.store.IncrWindow(ctx, violationPrefix+clientIP, l.escalateWindow)
	if err != nil {
		l.logger.WithError(err).Warn("failed to record rate limit violation", "client_ip", clientIP)
		return
	}
	if violations < l.escalateAfter {
		return
	}

	l.logger.Warn("rate limit abuse threshold crossed",
		"client_ip", clientIP, "route", route, "violations", violations)

	// Escalation must not delay the response. The detached context keeps
	// the deny-list write alive past the request.
	go l.escalator.Escalate(context.WithoutCancel(ctx), clientIP, "rate limit abuse")
}
