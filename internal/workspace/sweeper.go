package workspace

// sweeper.go removes expired session folders in the background.
//
// Sessions are normally removed by an explicit clean_session call. Clients
// that never call it leave folders behind; the sweeper deletes any session
// whose folder has not been modified within the TTL.

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically removes expired sessions.
type Sweeper struct {
	ws       *Workspace
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	// OnRemove, when set, is called for every removed session.
	OnRemove func(Session)
}

// NewSweeper creates a sweeper for ws. Zero durations default to a 24h TTL
// checked every hour.
func NewSweeper(ws *Workspace, ttl, interval time.Duration, logger *slog.Logger) *Sweeper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{ws: ws, ttl: ttl, interval: interval, logger: logger, now: time.Now}
}

// Run sweeps immediately, then every interval, until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("session sweeper started", "ttl", s.ttl, "interval", s.interval)

	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs one pass and returns the number of sessions removed.
func (s *Sweeper) Sweep() int {
	start := s.now()

	removed, err := s.ws.RemoveOlderThan(start.Add(-s.ttl))
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
	}

	for _, sess := range removed {
		if s.OnRemove != nil {
			s.OnRemove(sess)
		}
		s.logger.Debug("removed expired session", "kind", sess.Kind, "session_id", sess.ID)
	}

	if len(removed) > 0 {
		s.logger.Info("session sweep completed",
			"sessions_removed", len(removed),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return len(removed)
}
