package imagediff

import (
	"image"
	"sort"
)

// components labels 8-connected regions of set pixels and returns their
// bounding boxes in scan order of each region's first pixel.
func components(mask []bool, w, h int) []image.Rectangle {
	seen := make([]bool, len(mask))
	var boxes []image.Rectangle
	var stack []int

	for start, set := range mask {
		if !set || seen[start] {
			continue
		}

		box := image.Rect(start%w, start/w, start%w+1, start/w+1)
		seen[start] = true
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := p%w, p/w

			if px < box.Min.X {
				box.Min.X = px
			}
			if px+1 > box.Max.X {
				box.Max.X = px + 1
			}
			if py+1 > box.Max.Y {
				box.Max.Y = py + 1
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					q := ny*w + nx
					if mask[q] && !seen[q] {
						seen[q] = true
						stack = append(stack, q)
					}
				}
			}
		}

		boxes = append(boxes, box)
	}

	return boxes
}

// outermost drops boxes that lie entirely inside another box, keeping the
// external regions only. Output is sorted top-to-bottom, left-to-right.
func outermost(boxes []image.Rectangle) []image.Rectangle {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Dx()*boxes[i].Dy() > boxes[j].Dx()*boxes[j].Dy()
	})

	kept := make([]image.Rectangle, 0, len(boxes))
	for _, b := range boxes {
		inside := false
		for _, k := range kept {
			if b.In(k) {
				inside = true
				break
			}
		}
		if !inside {
			kept = append(kept, b)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Min.Y != kept[j].Min.Y {
			return kept[i].Min.Y < kept[j].Min.Y
		}
		return kept[i].Min.X < kept[j].Min.X
	})
	return kept
}
