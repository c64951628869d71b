// Package report renders comparison results as standalone HTML pages.
//
// Components are written in .templ files and compiled with templ generate;
// the generated _templ.go files are committed. They can be rendered to a
// file, to an HTTP response, or to a buffer for archiving.
package report

//go:generate templ generate

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/a-h/templ"
)

// FileName is the name of the rendered report inside a session folder.
const FileName = "comparison_result.html"

// FileInfo describes one side of a comparison in a report header.
type FileInfo struct {
	Name    string
	Version string
	Sheet   string
	// URL is the browser path of the (annotated) file, for image reports.
	URL string
}

// Render renders c into memory.
func Render(ctx context.Context, c templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders c to path, replacing any existing file atomically.
func WriteFile(ctx context.Context, path string, c templ.Component) error {
	html, err := Render(ctx, c)
	if err != nil {
		return err
	}
	return Save(path, html)
}

// Save writes already rendered HTML to path, replacing any existing file
// atomically.
func Save(path string, html []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.html")
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// formatValue renders a cell value the way it was read from the sheet.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

const bootstrapCSS = `<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.0.2/dist/css/bootstrap.min.css" rel="stylesheet" crossorigin="anonymous">
<link href="https://cdn.jsdelivr.net/npm/bootstrap-icons@1.11.3/font/bootstrap-icons.min.css" rel="stylesheet">
`

const baseStyle = `
body, .badge { font-size: 0.81rem }
.square-badge { border-radius: 0 }
.badge { padding: .35em .65em !important }
.card-header { padding: 0.3rem 0.5rem !important; font-weight: 500 }
.card-body { padding: 0.5rem !important }
.fileVersion { max-width: 20%; white-space: nowrap; overflow: hidden; text-overflow: ellipsis }
.headerFileName { max-width: 60%; white-space: nowrap; overflow: hidden; text-overflow: ellipsis }
.headerSheetName { max-width: 20%; white-space: nowrap; overflow: hidden; text-overflow: ellipsis }
.divScrollDiv { display: inline-block; width: 100%; border: 1px solid black; height: 98vh; overflow: auto }
`
