package core

import (
	"github.com/JonMunkholm/doccompare/internal/imagediff"
	"github.com/JonMunkholm/doccompare/internal/report"
)

// ExcelRequest compares one sheet of each of two workbooks. Empty sheet
// names select the first sheet.
type ExcelRequest struct {
	File1Path  string
	File1Sheet string
	File2Path  string
	File2Sheet string
	SessionID  string
	Watermark  report.Watermark
}

// ImageRequest compares two images.
type ImageRequest struct {
	File1Path string
	File2Path string
	SessionID string
	Style     imagediff.MarkStyle
	Watermark report.Watermark
}

// PDFRequest compares two PDF documents page by page.
type PDFRequest struct {
	File1Path string
	File2Path string
	SessionID string
	Watermark report.Watermark
}

// PropertiesRequest lists the sheets of two workbooks.
type PropertiesRequest struct {
	File1Path string
	File2Path string
}

// CompareResult is returned by every comparison.
type CompareResult struct {
	SessionID string `json:"session_id"`
	// Result is the URL of the HTML report.
	Result    string `json:"result"`
	Identical bool   `json:"identical"`
}

// SheetInfo describes one sheet in a PropertiesResult.
type SheetInfo struct {
	Index int  `json:"index"`
	Empty bool `json:"empty"`
}

// PropertiesResult maps sheet names to their properties for both files.
type PropertiesResult struct {
	File1 map[string]SheetInfo `json:"file1_properties"`
	File2 map[string]SheetInfo `json:"file2_properties"`
}

// CleanupResult is returned by CleanSession.
type CleanupResult struct {
	Result string `json:"result"`
}
