package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/doccompare/internal/logging"
	"github.com/JonMunkholm/doccompare/internal/store"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

// CleanSession removes the session's folders from every workspace kind.
// It returns ErrSessionNotFound when no folder existed. Archived history is
// kept, so the report stays available through Report.
func (s *Service) CleanSession(ctx context.Context, id string) (*CleanupResult, error) {
	if err := workspace.ValidateSessionID(id); err != nil {
		return nil, err
	}

	found, err := s.ws.Cleanup(id)
	if err != nil {
		return nil, fmt.Errorf("clean session %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	logging.FromContext(ctx).Info("session cleaned", "session_id", id)
	return &CleanupResult{Result: fmt.Sprintf("Session ID %s cleanup successfully", id)}, nil
}

// History returns the most recent comparisons, newest first. A limit of
// zero or less uses the configured history limit.
func (s *Service) History(ctx context.Context, limit int) ([]store.Record, error) {
	if s.store == nil {
		return []store.Record{}, nil
	}
	if limit <= 0 || limit > s.cfg.Store.HistoryLimit {
		limit = s.cfg.Store.HistoryLimit
	}
	recs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []store.Record{}
	}
	return recs, nil
}

// Comparison returns the archived record of a session.
func (s *Service) Comparison(ctx context.Context, id string) (store.Record, error) {
	if err := workspace.ValidateSessionID(id); err != nil {
		return store.Record{}, err
	}
	if s.store == nil {
		return store.Record{}, ErrComparisonNotFound
	}
	return s.store.Get(ctx, id)
}

// Report returns the archived HTML report of a session.
func (s *Service) Report(ctx context.Context, id string) ([]byte, error) {
	if err := workspace.ValidateSessionID(id); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrComparisonNotFound
	}
	return s.store.Report(ctx, id)
}
