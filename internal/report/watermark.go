package report

import (
	"strconv"
	"strings"
)

// DefaultWatermarkText is shown when no watermark message is configured.
const DefaultWatermarkText = "Document Comparison"

// Watermark configures the overlay drawn over a report. Fields hold the raw
// request values; invalid numbers fall back to defaults.
type Watermark struct {
	Message     string
	ImageURL    string
	Position    string
	FontSize    string
	ImageHeight string
	ImageWidth  string
	Opacity     string
	Rotation    string
}

var positions = map[string][2]string{
	"center":       {"center", "center"},
	"top-left":     {"flex-start", "flex-start"},
	"top-right":    {"flex-start", "flex-end"},
	"bottom-left":  {"flex-end", "flex-start"},
	"bottom-right": {"flex-end", "flex-end"},
	"top":          {"flex-start", "center"},
	"bottom":       {"flex-end", "center"},
}

// style returns the CSS declarations for the overlay container.
func (wm Watermark) style() string {
	pos, ok := positions[strings.ToLower(strings.TrimSpace(wm.Position))]
	if !ok {
		pos = positions["center"]
	}

	var b strings.Builder
	b.WriteString("position: fixed; top: 0; left: 0; width: 100%; height: 100%; display: flex; pointer-events: none; z-index: 9999;")
	b.WriteString(" align-items: " + pos[0] + "; justify-content: " + pos[1] + ";")
	b.WriteString(" opacity: " + formatNumber(number(wm.Opacity, 0.3, 0, 1)) + ";")
	b.WriteString(" transform: rotate(" + formatNumber(number(wm.Rotation, -45, -360, 360)) + "deg);")
	if wm.ImageURL == "" {
		b.WriteString(" font-size: " + formatNumber(number(wm.FontSize, 42, 1, 400)) + "px; color: rgb(0, 0, 0);")
	}
	return b.String()
}

func (wm Watermark) text() string {
	if strings.TrimSpace(wm.Message) == "" {
		return DefaultWatermarkText
	}
	return wm.Message
}

// imageSize returns the clamped image dimension as an attribute value, or ""
// when s is blank or invalid.
func imageSize(s string) string {
	if v := number(s, 0, 1, 10000); v > 0 {
		return formatNumber(v)
	}
	return ""
}

// number parses s and clamps it to [lo, hi]; blank or invalid input yields def.
func number(s string, def, lo, hi float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px")), 64)
	if err != nil {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
