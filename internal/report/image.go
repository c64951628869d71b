package report

import "strconv"

// ImageData is the input of ImageReport.
type ImageData struct {
	Left      FileInfo
	Right     FileInfo
	Regions   int
	Watermark Watermark
}

const imageStyle = `
.imagePane img { max-width: 100%; height: auto }
`

func regionSummary(n int) string {
	switch n {
	case 0:
		return "No differences found."
	case 1:
		return "1 changed region."
	default:
		return strconv.Itoa(n) + " changed regions."
	}
}
