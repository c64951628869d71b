// Package imagediff finds changed regions between two raster images and marks
// them on the second image.
//
// The second image is scaled to the first image's size when they differ. Both
// are converted to grayscale, and every pixel whose absolute difference is
// above the threshold is marked as changed. Changed pixels are grouped into
// 8-connected regions; each outermost region's bounding box is drawn on the
// second image in red.
package imagediff

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// DefaultThreshold is the grayscale difference above which a pixel counts as changed.
const DefaultThreshold = 30

// ErrEmptyImage is returned when either input has zero width or height.
var ErrEmptyImage = errors.New("image has no pixels")

// MarkStyle selects how changed regions are drawn.
type MarkStyle int

const (
	// MarkBox outlines each region with a rectangle.
	MarkBox MarkStyle = iota
	// MarkUnderline draws a line below each region.
	MarkUnderline
)

// ParseMarkStyle maps "box" and "underline" to a MarkStyle. Anything else is MarkBox.
func ParseMarkStyle(s string) MarkStyle {
	if s == "underline" {
		return MarkUnderline
	}
	return MarkBox
}

func (s MarkStyle) String() string {
	if s == MarkUnderline {
		return "underline"
	}
	return "box"
}

// Options controls a comparison.
type Options struct {
	Threshold uint8
	Style     MarkStyle
	// Stroke is the line width in pixels. Zero uses 2 for boxes and 4 for underlines.
	Stroke int
	Color  color.RGBA
}

// DefaultOptions returns red 2px boxes with the default threshold.
func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Style:     MarkBox,
		Color:     color.RGBA{R: 255, A: 255},
	}
}

// Result holds the annotated image and the regions found.
type Result struct {
	Annotated *image.RGBA
	Regions   []image.Rectangle
	// Resized is true when the second image was scaled to the first's size.
	Resized bool
}

// Changed reports whether any region differs.
func (r *Result) Changed() bool {
	return len(r.Regions) > 0
}

// Compare diffs after against before and returns after with every changed
// region marked. Inputs are not modified.
func Compare(before, after image.Image, opts Options) (*Result, error) {
	bb, ab := before.Bounds(), after.Bounds()
	if bb.Empty() || ab.Empty() {
		return nil, ErrEmptyImage
	}
	if opts.Color == (color.RGBA{}) {
		opts.Color = color.RGBA{R: 255, A: 255}
	}

	size := image.Rect(0, 0, bb.Dx(), bb.Dy())
	canvas := image.NewRGBA(size)
	resized := bb.Dx() != ab.Dx() || bb.Dy() != ab.Dy()
	if resized {
		draw.CatmullRom.Scale(canvas, size, after, ab, draw.Src, nil)
	} else {
		draw.Draw(canvas, size, after, ab.Min, draw.Src)
	}

	mask := diffMask(toGray(before), toGray(canvas), opts.Threshold)
	regions := outermost(components(mask, size.Dx(), size.Dy()))

	for _, r := range regions {
		switch opts.Style {
		case MarkUnderline:
			underline(canvas, r, stroke(opts, 4), opts.Color)
		default:
			outline(canvas, r, stroke(opts, 2), opts.Color)
		}
	}

	return &Result{Annotated: canvas, Regions: regions, Resized: resized}, nil
}

func stroke(opts Options, fallback int) int {
	if opts.Stroke > 0 {
		return opts.Stroke
	}
	return fallback
}

// toGray converts img to an 8-bit grayscale image anchored at the origin.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// diffMask marks pixels whose absolute difference exceeds threshold.
func diffMask(a, b *image.Gray, threshold uint8) []bool {
	mask := make([]bool, len(a.Pix))
	w, h := a.Rect.Dx(), a.Rect.Dy()
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := 0; x < w; x++ {
			d := int(ra[x]) - int(rb[x])
			if d < 0 {
				d = -d
			}
			if d > int(threshold) {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}

func outline(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	bounds := img.Bounds()
	half := width / 2
	outer := image.Rect(r.Min.X-half, r.Min.Y-half, r.Max.X+width-half, r.Max.Y+width-half)
	inner := outer.Inset(width)

	fill(img, image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y).Intersect(bounds), c)
	fill(img, image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y).Intersect(bounds), c)
	fill(img, image.Rect(outer.Min.X, outer.Min.Y, inner.Min.X, outer.Max.Y).Intersect(bounds), c)
	fill(img, image.Rect(inner.Max.X, outer.Min.Y, outer.Max.X, outer.Max.Y).Intersect(bounds), c)
}

func underline(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	y := r.Max.Y + width
	line := image.Rect(r.Min.X, y-width/2, r.Max.X, y-width/2+width)
	fill(img, line.Intersect(img.Bounds()), c)
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}
