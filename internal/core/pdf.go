package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/doccompare/internal/logging"
	"github.com/JonMunkholm/doccompare/internal/pdfdiff"
	"github.com/JonMunkholm/doccompare/internal/report"
	"github.com/JonMunkholm/doccompare/internal/store"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

// ComparePDF copies both documents into the session, diffs their text page
// by page and writes the report.
func (s *Service) ComparePDF(ctx context.Context, req PDFRequest) (*CompareResult, error) {
	id, err := sessionID(req.SessionID)
	if err != nil {
		return nil, err
	}
	log := logging.WithFields(ctx, "session_id", id, "kind", workspace.KindPDF)

	p1, err := s.resolve("file1", req.File1Path)
	if err != nil {
		return nil, err
	}
	p2, err := s.resolve("file2", req.File2Path)
	if err != nil {
		return nil, err
	}

	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()

	pages1, err := pdfdiff.ExtractPages(p1)
	if err != nil {
		return nil, &InputError{Input: "file1", Path: req.File1Path, Err: err}
	}
	pages2, err := pdfdiff.ExtractPages(p2)
	if err != nil {
		return nil, &InputError{Input: "file2", Path: req.File2Path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.ws.Create(workspace.KindPDF, id); err != nil {
		return nil, err
	}
	dir1, dir2 := versionDirs(p1, p2)
	doc1, err := s.ws.Prepare(workspace.KindPDF, id, p1, dir1)
	if err != nil {
		return nil, &InputError{Input: "file1", Path: req.File1Path, Err: err}
	}
	doc2, err := s.ws.Prepare(workspace.KindPDF, id, p2, dir2)
	if err != nil {
		return nil, &InputError{Input: "file2", Path: req.File2Path, Err: err}
	}

	diffs := pdfdiff.ComparePages(pages1, pages2)
	changed := pdfdiff.ChangedPages(diffs)

	html, err := report.Render(ctx, report.PDFReport(report.PDFData{
		Left:      report.FileInfo{Name: doc1.Name, Version: doc1.Version, URL: doc1.URL},
		Right:     report.FileInfo{Name: doc2.Name, Version: doc2.Version, URL: doc2.URL},
		Pages:     diffs,
		Watermark: req.Watermark,
	}))
	if err != nil {
		return nil, err
	}

	url := s.resultURL(workspace.KindPDF, id)
	rec := store.Record{
		SessionID:    id,
		Kind:         string(workspace.KindPDF),
		File1:        doc1.Name,
		File2:        doc2.Name,
		Version1:     doc1.Version,
		Version2:     doc2.Version,
		ResultURL:    url,
		Identical:    len(changed) == 0,
		ChangedPages: changed,
	}
	if err := s.publish(ctx, rec, html); err != nil {
		return nil, err
	}

	log.Info("pdf comparison complete",
		"pages_first", len(pages1),
		"pages_second", len(pages2),
		"changed_pages", len(changed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &CompareResult{SessionID: id, Result: url, Identical: len(changed) == 0}, nil
}
