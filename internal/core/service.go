package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/doccompare/internal/config"
	"github.com/JonMunkholm/doccompare/internal/logging"
	"github.com/JonMunkholm/doccompare/internal/report"
	"github.com/JonMunkholm/doccompare/internal/store"
	"github.com/JonMunkholm/doccompare/internal/tablediff"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

// Service provides the core business logic for document comparison.
type Service struct {
	cfg     *config.Config
	ws      *workspace.Workspace
	store   store.Store
	limiter *ComparisonLimiter
	aligner *tablediff.Aligner
	now     func() time.Time
}

// NewService creates a Service. st may be nil, in which case results are
// not archived and History/Report return ErrComparisonNotFound.
func NewService(cfg *config.Config, ws *workspace.Workspace, st store.Store) *Service {
	return &Service{
		cfg:     cfg,
		ws:      ws,
		store:   st,
		limiter: NewComparisonLimiter(cfg.Compare.MaxConcurrent, cfg.Compare.MaxWaitTime),
		aligner: tablediff.NewAligner(tablediff.WithLogger(slog.Default().With("component", "tablediff"))),
		now:     time.Now,
	}
}

// Limiter returns the limiter guarding comparisons.
func (s *Service) Limiter() *ComparisonLimiter {
	return s.limiter
}

// Workspace returns the session workspace.
func (s *Service) Workspace() *workspace.Workspace {
	return s.ws
}

// sessionID returns id, or a fresh one when id is empty.
func sessionID(id string) (string, error) {
	if id == "" {
		return workspace.NewSessionID(), nil
	}
	if err := workspace.ValidateSessionID(id); err != nil {
		return "", err
	}
	return id, nil
}

// resolve unescapes and checks one input path.
func (s *Service) resolve(input, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", &InputError{Input: input, Err: ErrMissingPath}
	}
	resolved, err := workspace.ResolveInput(p)
	if err != nil {
		return "", &InputError{Input: input, Path: p, Err: err}
	}
	if limit := s.cfg.Compare.MaxFileSize; limit > 0 {
		info, err := os.Stat(resolved)
		if err != nil {
			return "", &InputError{Input: input, Path: p, Err: err}
		}
		if info.Size() > limit {
			return "", &InputError{
				Input: input,
				Path:  p,
				Err:   fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), limit),
			}
		}
	}
	return resolved, nil
}

// begin acquires a limiter slot and applies the comparison timeout. The
// returned release func must be called when the comparison ends.
func (s *Service) begin(ctx context.Context) (context.Context, func(), error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, nil, err
	}
	cancel := func() {}
	if s.cfg.Compare.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Compare.Timeout)
	}
	return ctx, func() {
		cancel()
		s.limiter.Release()
	}, nil
}

// resultURL returns the browser URL of a session's report.
func (s *Service) resultURL(kind workspace.Kind, id string) string {
	u := s.ws.SessionURL(kind, id, report.FileName)
	if base := s.cfg.Server.BaseURL; base != "" {
		return strings.TrimSuffix(base, "/") + u
	}
	return u
}

// publish writes the report into the session folder and archives it.
// Archive failures are logged; the report on disk is still served.
func (s *Service) publish(ctx context.Context, rec store.Record, html []byte) error {
	kind := workspace.Kind(rec.Kind)
	path := filepath.Join(s.ws.SessionDir(kind, rec.SessionID), report.FileName)
	if err := report.Save(path, html); err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}

	rec.CreatedAt = s.now().UTC()
	rec.ClientIP = ClientIPFromContext(ctx)
	if err := s.store.Put(ctx, rec, html); err != nil {
		logging.FromContext(ctx).Warn("archive comparison failed",
			"session_id", rec.SessionID,
			"kind", rec.Kind,
			"error", err,
		)
	}
	return nil
}

// versionDirs returns the folder names the two inputs are copied into.
// Inputs from folders with the same name are kept apart with a suffix.
func versionDirs(p1, p2 string) (string, string) {
	v1, v2 := workspace.Version(p1), workspace.Version(p2)
	if v1 == "" {
		v1 = "file1"
	}
	if v2 == "" {
		v2 = "file2"
	}
	if v1 == v2 {
		return v1 + "_1", v2 + "_2"
	}
	return v1, v2
}
