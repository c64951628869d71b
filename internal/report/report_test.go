package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/doccompare/internal/pdfdiff"
	"github.com/JonMunkholm/doccompare/internal/tablediff"
)

func mustTable(t *testing.T, rows [][]any) tablediff.Table {
	t.Helper()
	tbl, err := tablediff.NewTable(rows)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func render(t *testing.T, html []byte, err error) string {
	t.Helper()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return string(html)
}

func TestExcelReport(t *testing.T) {
	a := mustTable(t, [][]any{{"id", "name"}, {int64(1), "alpha"}})
	b := mustTable(t, [][]any{{"id", "name"}, {int64(1), "<beta>"}, {int64(2), "gamma"}})
	res, err := tablediff.AlignAndDiff(a, b)
	if err != nil {
		t.Fatalf("AlignAndDiff: %v", err)
	}

	html, err := Render(context.Background(), ExcelReport(ExcelData{
		Left:   FileInfo{Name: "q1.xlsx", Version: "v1", Sheet: "Data"},
		Right:  FileInfo{Name: "q1.xlsx", Version: "v2", Sheet: "Data"},
		Result: res,
	}))
	out := render(t, html, err)

	checks := []string{
		"<!doctype html>",
		`id="paneLeft"`,
		`id="paneRight"`,
		"q1.xlsx",
		"v2",
		"Data",
		"&lt;beta&gt;",
		"background-color: #ffb9b9;",
		"background-color: rgb(127, 162, 92);",
		DefaultWatermarkText,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "<beta>") {
		t.Error("cell value not escaped")
	}

	// Two differing rows, each marked on both panes.
	if got := strings.Count(out, "bi-arrow-bar-right\"></i>"); got != 4 {
		t.Errorf("row markers = %d, want 4", got)
	}
}

func TestExcelReport_Identical(t *testing.T) {
	a := mustTable(t, [][]any{{"x"}})
	res, err := tablediff.AlignAndDiff(a, a)
	if err != nil {
		t.Fatalf("AlignAndDiff: %v", err)
	}

	html, err := Render(context.Background(), ExcelReport(ExcelData{Result: res}))
	out := render(t, html, err)

	if strings.Contains(out, "background-color: #ffb9b9;") {
		t.Error("identical tables rendered a row marker")
	}
}

func TestImageReport(t *testing.T) {
	html, err := Render(context.Background(), ImageReport(ImageData{
		Left:    FileInfo{Name: "a.png", Version: "v1", URL: "/static/image/s1/v1/a.png"},
		Right:   FileInfo{Name: "a.png", Version: "v2", URL: "/static/image/s1/v2/a.png"},
		Regions: 3,
	}))
	out := render(t, html, err)

	for _, want := range []string{`src="/static/image/s1/v1/a.png"`, `src="/static/image/s1/v2/a.png"`, "3 changed regions."} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestPDFReport(t *testing.T) {
	pages := pdfdiff.ComparePages(
		[]pdfdiff.Page{{Number: 1, Lines: []string{"same", "old"}}},
		[]pdfdiff.Page{{Number: 1, Lines: []string{"same", "new"}}},
	)

	html, err := Render(context.Background(), PDFReport(PDFData{Pages: pages}))
	out := render(t, html, err)

	for _, want := range []string{"Page 1", `class="pdfLine removed">old`, `class="pdfLine added">new`, `class="pdfLine">same`} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWatermarkOverlay(t *testing.T) {
	tests := []struct {
		name    string
		wm      Watermark
		want    []string
		notWant []string
	}{
		{
			name: "default text",
			wm:   Watermark{},
			want: []string{DefaultWatermarkText, "rotate(-45deg)", "opacity: 0.3", "font-size: 42px"},
		},
		{
			name: "custom text and position",
			wm:   Watermark{Message: "Draft", Position: "top-right", FontSize: "20", Rotation: "0", Opacity: "0.5"},
			want: []string{">Draft<", "justify-content: flex-end", "font-size: 20px", "rotate(0deg)", "opacity: 0.5"},
		},
		{
			name:    "image",
			wm:      Watermark{ImageURL: "/static/logo.png", ImageWidth: "120", ImageHeight: "bad"},
			want:    []string{`src="/static/logo.png"`, `width="120"`},
			notWant: []string{"height=", DefaultWatermarkText},
		},
		{
			name:    "unsafe image url",
			wm:      Watermark{ImageURL: "javascript:alert(1)"},
			notWant: []string{"javascript:"},
		},
		{
			name: "clamped opacity",
			wm:   Watermark{Opacity: "7"},
			want: []string{"opacity: 1;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := Render(context.Background(), WatermarkOverlay(tt.wm))
			out := render(t, html, err)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("overlay %q missing %q", out, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("overlay %q contains %q", out, w)
				}
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(context.Background(), path, ErrorAlert("Sheet not found", "Check the name", "SHEET001")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "SHEET001") || strings.Contains(string(data), "stale") {
		t.Errorf("file content = %q", data)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"-", "-"},
		{int64(42), "42"},
		{3.5, "3.5"},
		{100.0, "100"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Every .templ source must have its generated counterpart committed next to it.
func TestGeneratedComponentsCommitted(t *testing.T) {
	sources, err := filepath.Glob("*.templ")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) == 0 {
		t.Fatal("no .templ sources found")
	}
	for _, src := range sources {
		gen := strings.TrimSuffix(src, ".templ") + "_templ.go"
		data, err := os.ReadFile(gen)
		if err != nil {
			t.Errorf("%s: %v", src, err)
			continue
		}
		if !strings.HasPrefix(string(data), "// Code generated by templ - DO NOT EDIT.") {
			t.Errorf("%s is not templ output", gen)
		}
	}
}

func TestErrorAlert(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		code    string
		want    []string
		notWant []string
	}{
		{name: "full", action: "Retry <later>", code: "SES003", want: []string{"<strong>Upload failed</strong>", "<span>Retry &lt;later&gt;</span>", "(SES003)"}},
		{name: "message only", notWant: []string{"<span>", "<small"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := Render(context.Background(), ErrorAlert("Upload failed", tt.action, tt.code))
			out := render(t, html, err)
			if !strings.Contains(out, `class="alert alert-danger"`) {
				t.Errorf("alert %q missing class", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("alert %q missing %q", out, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("alert %q contains %q", out, w)
				}
			}
		})
	}
}
