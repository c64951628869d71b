package imagediff

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func paint(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func TestCompare_Identical(t *testing.T) {
	a := solid(40, 30, white)
	b := solid(40, 30, white)

	res, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if res.Changed() {
		t.Errorf("Regions = %v, want none", res.Regions)
	}
	if res.Resized {
		t.Error("Resized = true for same-size inputs")
	}
}

func TestCompare_FindsRegions(t *testing.T) {
	a := solid(100, 80, white)
	b := solid(100, 80, white)
	paint(b, image.Rect(10, 10, 20, 15), black)
	paint(b, image.Rect(60, 50, 70, 70), black)

	res, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	want := []image.Rectangle{
		image.Rect(10, 10, 20, 15),
		image.Rect(60, 50, 70, 70),
	}
	if len(res.Regions) != len(want) {
		t.Fatalf("Regions = %v, want %v", res.Regions, want)
	}
	for i := range want {
		if res.Regions[i] != want[i] {
			t.Errorf("Regions[%d] = %v, want %v", i, res.Regions[i], want[i])
		}
	}

	// Box edge is drawn in red on the annotated copy.
	if got := res.Annotated.RGBAAt(10, 9); got != red {
		t.Errorf("pixel above region = %v, want red", got)
	}
	// Region interior is left untouched.
	if got := res.Annotated.RGBAAt(15, 12); got != black {
		t.Errorf("pixel inside region = %v, want black", got)
	}
	// Inputs are not modified.
	if got := b.RGBAAt(10, 9); got != white {
		t.Errorf("input modified at (10,9): %v", got)
	}
}

func TestCompare_BelowThreshold(t *testing.T) {
	a := solid(20, 20, color.Gray{Y: 100})
	b := solid(20, 20, color.Gray{Y: 120})

	res, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if res.Changed() {
		t.Errorf("difference of 20 produced regions %v", res.Regions)
	}

	opts := DefaultOptions()
	opts.Threshold = 10
	res, err = Compare(a, b, opts)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(res.Regions) != 1 || res.Regions[0] != image.Rect(0, 0, 20, 20) {
		t.Errorf("Regions = %v, want whole image", res.Regions)
	}
}

func TestCompare_DiagonalPixelsJoin(t *testing.T) {
	a := solid(10, 10, white)
	b := solid(10, 10, white)
	b.Set(2, 2, black)
	b.Set(3, 3, black)
	b.Set(4, 4, black)

	res, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(res.Regions) != 1 || res.Regions[0] != image.Rect(2, 2, 5, 5) {
		t.Errorf("Regions = %v, want single 8-connected region", res.Regions)
	}
}

func TestCompare_NestedRegionDropped(t *testing.T) {
	a := solid(50, 50, white)
	b := solid(50, 50, white)
	// hollow square with a dot in the middle
	paint(b, image.Rect(10, 10, 40, 12), black)
	paint(b, image.Rect(10, 38, 40, 40), black)
	paint(b, image.Rect(10, 10, 12, 40), black)
	paint(b, image.Rect(38, 10, 40, 40), black)
	paint(b, image.Rect(24, 24, 26, 26), black)

	res, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(res.Regions) != 1 || res.Regions[0] != image.Rect(10, 10, 40, 40) {
		t.Errorf("Regions = %v, want outer square only", res.Regions)
	}
}

func TestCompare_ResizesSecondImage(t *testing.T) {
	a := solid(40, 40, white)
	b := solid(80, 80, white)

	res, err := Compare(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !res.Resized {
		t.Error("Resized = false, want true")
	}
	if got := res.Annotated.Bounds(); got != a.Bounds() {
		t.Errorf("Annotated bounds = %v, want %v", got, a.Bounds())
	}
}

func TestCompare_Underline(t *testing.T) {
	a := solid(60, 60, white)
	b := solid(60, 60, white)
	paint(b, image.Rect(10, 10, 30, 20), black)

	opts := DefaultOptions()
	opts.Style = MarkUnderline

	res, err := Compare(a, b, opts)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if got := res.Annotated.RGBAAt(20, 24); got != red {
		t.Errorf("underline pixel = %v, want red", got)
	}
	if got := res.Annotated.RGBAAt(20, 9); got != white {
		t.Errorf("pixel above region = %v, want white for underline style", got)
	}
}

func TestCompare_EmptyImage(t *testing.T) {
	_, err := Compare(image.NewRGBA(image.Rect(0, 0, 0, 0)), solid(1, 1, white), DefaultOptions())
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Compare() error = %v, want ErrEmptyImage", err)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	img := solid(8, 6, white)
	paint(img, image.Rect(0, 0, 2, 2), red)

	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, img); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Bounds() != img.Bounds() {
				t.Errorf("bounds = %v, want %v", got.Bounds(), img.Bounds())
			}
			r, g, b, _ := got.At(1, 1).RGBA()
			if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
				t.Errorf("pixel (1,1) = %v, want red", got.At(1, 1))
			}
		})
	}

	if err := Save(filepath.Join(dir, "out.xyz"), img); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Save(.xyz) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseMarkStyle(t *testing.T) {
	if ParseMarkStyle("underline") != MarkUnderline {
		t.Error("ParseMarkStyle(underline) != MarkUnderline")
	}
	if ParseMarkStyle("") != MarkBox {
		t.Error("ParseMarkStyle(\"\") != MarkBox")
	}
}
