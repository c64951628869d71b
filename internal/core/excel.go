package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/doccompare/internal/logging"
	"github.com/JonMunkholm/doccompare/internal/report"
	"github.com/JonMunkholm/doccompare/internal/spreadsheet"
	"github.com/JonMunkholm/doccompare/internal/store"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

// ExcelReportTitle is the page title of spreadsheet reports.
const ExcelReportTitle = "Excel Document Comparison"

// CompareExcel compares one sheet of each workbook and writes the two-pane
// report into the session folder.
//
// Validation order: both files must exist (ErrFileNotFound), then both
// sheets must exist (ErrSheetNotFound), then neither may be empty
// (ErrEmptySheet).
func (s *Service) CompareExcel(ctx context.Context, req ExcelRequest) (*CompareResult, error) {
	id, err := sessionID(req.SessionID)
	if err != nil {
		return nil, err
	}
	log := logging.WithFields(ctx, "session_id", id, "kind", workspace.KindExcel)

	p1, err := s.resolve("file1", req.File1Path)
	if err != nil {
		return nil, err
	}
	p2, err := s.resolve("file2", req.File2Path)
	if err != nil {
		return nil, err
	}

	sheet1, props1, err := findSheet("file1", p1, req.File1Sheet)
	if err != nil {
		return nil, err
	}
	sheet2, props2, err := findSheet("file2", p2, req.File2Sheet)
	if err != nil {
		return nil, err
	}
	if props1.Empty {
		return nil, &InputError{Input: "file1", Path: req.File1Path, Err: fmt.Errorf("%w: %s", ErrEmptySheet, sheet1)}
	}
	if props2.Empty {
		return nil, &InputError{Input: "file2", Path: req.File2Path, Err: fmt.Errorf("%w: %s", ErrEmptySheet, sheet2)}
	}

	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()

	t1, err := spreadsheet.ReadTable(p1, sheet1)
	if err != nil {
		return nil, &InputError{Input: "file1", Path: req.File1Path, Err: err}
	}
	t2, err := spreadsheet.ReadTable(p2, sheet2)
	if err != nil {
		return nil, &InputError{Input: "file2", Path: req.File2Path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.aligner.AlignAndDiff(t1, t2)
	if err != nil {
		return nil, fmt.Errorf("compare sheets: %w", err)
	}

	if _, err := s.ws.Create(workspace.KindExcel, id); err != nil {
		return nil, err
	}

	html, err := report.Render(ctx, report.ExcelReport(report.ExcelData{
		Title:     ExcelReportTitle,
		Left:      report.FileInfo{Name: filepath.Base(p1), Version: workspace.Version(p1), Sheet: sheet1},
		Right:     report.FileInfo{Name: filepath.Base(p2), Version: workspace.Version(p2), Sheet: sheet2},
		Result:    res,
		Watermark: req.Watermark,
	}))
	if err != nil {
		return nil, err
	}

	url := s.resultURL(workspace.KindExcel, id)
	rec := store.Record{
		SessionID:     id,
		Kind:          string(workspace.KindExcel),
		File1:         filepath.Base(p1),
		File2:         filepath.Base(p2),
		Version1:      workspace.Version(p1),
		Version2:      workspace.Version(p2),
		Sheet1:        sheet1,
		Sheet2:        sheet2,
		ResultURL:     url,
		Identical:     res.Identical(),
		DifferingRows: len(res.DifferingRows),
		CellDiffs:     len(res.CellDiffs),
	}
	if err := s.publish(ctx, rec, html); err != nil {
		return nil, err
	}

	log.Info("excel comparison complete",
		"rows", res.Left.Len(),
		"differing_rows", len(res.DifferingRows),
		"cell_diffs", len(res.CellDiffs),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &CompareResult{SessionID: id, Result: url, Identical: res.Identical()}, nil
}

// findSheet returns the sheet to compare and its properties. An empty name
// selects the first sheet.
func findSheet(input, path, name string) (string, spreadsheet.SheetProperties, error) {
	props, err := spreadsheet.Properties(path)
	if err != nil {
		return "", spreadsheet.SheetProperties{}, &InputError{Input: input, Path: path, Err: err}
	}
	if len(props) == 0 {
		return "", spreadsheet.SheetProperties{}, &InputError{Input: input, Path: path, Err: ErrEmptySheet}
	}
	if name == "" {
		return props[0].Name, props[0], nil
	}
	for _, p := range props {
		if p.Name == name {
			return name, p, nil
		}
	}
	return "", spreadsheet.SheetProperties{}, &InputError{
		Input: input,
		Path:  path,
		Err:   fmt.Errorf("%w: %s", ErrSheetNotFound, name),
	}
}
