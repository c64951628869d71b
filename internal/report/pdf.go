package report

import "github.com/JonMunkholm/doccompare/internal/pdfdiff"

// PDFData is the input of PDFReport.
type PDFData struct {
	Left      FileInfo
	Right     FileInfo
	Pages     []pdfdiff.PageDiff
	Watermark Watermark
}

const pdfStyle = `
.pdfLine { white-space: pre-wrap; font-family: monospace; margin: 0; padding: 0 .25rem }
.pdfLine.removed { background-color: ` + rowMarkColor + ` }
.pdfLine.added { background-color: ` + cellMarkColor + `; text-decoration: underline red }
.pageBadge { font-weight: 500 }
`
