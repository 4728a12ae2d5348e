package core

// scheduler.go expires idle sessions. The reaper is long-running and
// context-aware; it stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// StartReaper removes sessions idle for longer than the session TTL, checking
// every interval. It blocks until ctx is cancelled.
func (s *Service) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.opts.SessionTTL / 4
	}
	slog.Info("session reaper started",
		"ttl", s.opts.SessionTTL.String(),
		"interval", interval.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case now := <-ticker.C:
			if n := s.ReapIdle(now); n > 0 {
				slog.Info("expired idle sessions", "sessions_removed", n, "sessions_live", s.SessionCount())
			}
		}
	}
}

// ReapIdle removes sessions last used before now minus the TTL. Sessions with
// a load in progress are kept. It returns the number removed.
func (s *Service) ReapIdle(now time.Time) int {
	cutoff := now.Add(-s.opts.SessionTTL)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Loading() || sess.LastSeen().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.sessions.Set(float64(n))
		s.metrics.sessionsExpired.Add(float64(removed))
	}
	return removed
}
