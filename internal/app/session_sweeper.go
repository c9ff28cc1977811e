package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Sweeper drops expired sessions and reports how many were removed.
type Sweeper interface{ Sweep() int }

// SessionSweeper periodically evicts expired sessions from an in-process store.
type SessionSweeper struct {
	store    Sweeper
	interval time.Duration
}

// NewSessionSweeper returns nil for a nil store. interval defaults to one minute.
func NewSessionSweeper(store Sweeper, interval time.Duration) *SessionSweeper {
	if store == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{store: store, interval: interval}
}

// Run sweeps every interval until ctx ends.
func (s *SessionSweeper) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *SessionSweeper) sweepOnce(ctx context.Context) int {
	_, span := otel.Tracer("sessions.sweeper").Start(ctx, "SessionSweeper.sweepOnce")
	defer span.End()
	n := s.store.Sweep()
	span.SetAttributes(attribute.Int("sessions.evicted", n))
	if n > 0 {
		slog.Debug("expired sessions evicted", slog.Int("count", n))
	}
	return n
}
