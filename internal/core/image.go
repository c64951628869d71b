package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/doccompare/internal/imagediff"
	"github.com/JonMunkholm/doccompare/internal/logging"
	"github.com/JonMunkholm/doccompare/internal/report"
	"github.com/JonMunkholm/doccompare/internal/store"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

// CompareImage copies both images into the session, marks the regions where
// the second differs from the first on its copy, and writes a side-by-side
// report.
func (s *Service) CompareImage(ctx context.Context, req ImageRequest) (*CompareResult, error) {
	id, err := sessionID(req.SessionID)
	if err != nil {
		return nil, err
	}
	log := logging.WithFields(ctx, "session_id", id, "kind", workspace.KindImage)

	p1, err := s.resolve("file1", req.File1Path)
	if err != nil {
		return nil, err
	}
	p2, err := s.resolve("file2", req.File2Path)
	if err != nil {
		return nil, err
	}
	if !imagediff.IsSupported(p1) {
		return nil, &InputError{Input: "file1", Path: req.File1Path, Err: ErrUnsupportedImage}
	}
	if !imagediff.IsSupported(p2) {
		return nil, &InputError{Input: "file2", Path: req.File2Path, Err: ErrUnsupportedImage}
	}

	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()

	if _, err := s.ws.Create(workspace.KindImage, id); err != nil {
		return nil, err
	}
	dir1, dir2 := versionDirs(p1, p2)
	doc1, err := s.ws.Prepare(workspace.KindImage, id, p1, dir1)
	if err != nil {
		return nil, &InputError{Input: "file1", Path: req.File1Path, Err: err}
	}
	doc2, err := s.ws.Prepare(workspace.KindImage, id, p2, dir2)
	if err != nil {
		return nil, &InputError{Input: "file2", Path: req.File2Path, Err: err}
	}

	before, err := imagediff.Load(doc1.Path)
	if err != nil {
		return nil, &InputError{Input: "file1", Path: req.File1Path, Err: err}
	}
	after, err := imagediff.Load(doc2.Path)
	if err != nil {
		return nil, &InputError{Input: "file2", Path: req.File2Path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := imagediff.DefaultOptions()
	opts.Threshold = s.threshold()
	opts.Style = req.Style
	res, err := imagediff.Compare(before, after, opts)
	if err != nil {
		return nil, fmt.Errorf("compare images: %w", err)
	}
	if err := imagediff.Save(doc2.Path, res.Annotated); err != nil {
		return nil, err
	}

	html, err := report.Render(ctx, report.ImageReport(report.ImageData{
		Left:      report.FileInfo{Name: doc1.Name, Version: doc1.Version, URL: doc1.URL},
		Right:     report.FileInfo{Name: doc2.Name, Version: doc2.Version, URL: doc2.URL},
		Regions:   len(res.Regions),
		Watermark: req.Watermark,
	}))
	if err != nil {
		return nil, err
	}

	url := s.resultURL(workspace.KindImage, id)
	rec := store.Record{
		SessionID: id,
		Kind:      string(workspace.KindImage),
		File1:     doc1.Name,
		File2:     doc2.Name,
		Version1:  doc1.Version,
		Version2:  doc2.Version,
		ResultURL: url,
		Identical: !res.Changed(),
		Regions:   len(res.Regions),
	}
	if err := s.publish(ctx, rec, html); err != nil {
		return nil, err
	}

	log.Info("image comparison complete",
		"regions", len(res.Regions),
		"resized", res.Resized,
		"style", req.Style.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &CompareResult{SessionID: id, Result: url, Identical: !res.Changed()}, nil
}

func (s *Service) threshold() uint8 {
	t := s.cfg.Compare.PixelThreshold
	switch {
	case t <= 0:
		return imagediff.DefaultThreshold
	case t > 255:
		return 255
	}
	return uint8(t)
}
