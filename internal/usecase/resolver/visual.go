package resolver

import (
	"image"
	"sort"

	"desktop-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
)

var laplacian = [9]float64{
	-1, -1, -1,
	-1, 8, -1,
	-1, -1, -1,
}

// detectRegions finds button- and icon-like blobs: connected edge components
// whose bounding box passes the area and aspect ratio limits. Boxes nested in
// a larger accepted box are dropped. Result is in raster order.
func detectRegions(img image.Image, cfg Config) []entity.Rect {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return nil
	}

	gray := imaging.Grayscale(img)
	edges := imaging.Convolve3x3(gray, laplacian, &imaging.ConvolveOptions{Abs: true})

	w, h := edges.Bounds().Dx(), edges.Bounds().Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := edges.Pix[y*edges.Stride:]
		for x := 0; x < w; x++ {
			mask[y*w+x] = row[x*4] >= cfg.EdgeThreshold
		}
	}

	var boxes []entity.Rect
	seen := make([]bool, w*h)
	stack := make([]int, 0, 256)
	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		minX, minY, maxX, maxY := w, h, -1, -1

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					n := ny*w + nx
					if mask[n] && !seen[n] {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		r := entity.Rect{X: minX + b.Min.X, Y: minY + b.Min.Y, W: maxX - minX + 1, H: maxY - minY + 1}
		if acceptRegion(r, cfg) {
			boxes = append(boxes, r)
		}
	}

	boxes = dropNested(boxes)
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Y != boxes[j].Y {
			return boxes[i].Y < boxes[j].Y
		}
		return boxes[i].X < boxes[j].X
	})
	return boxes
}

func acceptRegion(r entity.Rect, cfg Config) bool {
	area := r.Area()
	if area < cfg.MinRegionArea || area > cfg.MaxRegionArea {
		return false
	}
	aspect := float64(r.W) / float64(r.H)
	return aspect >= cfg.MinAspect && aspect <= cfg.MaxAspect
}

func dropNested(boxes []entity.Rect) []entity.Rect {
	out := boxes[:0:0]
	for i, r := range boxes {
		nested := false
		for j, o := range boxes {
			if i != j && o.Area() > r.Area() && contains(o, r) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, r)
		}
	}
	return out
}

func contains(outer, inner entity.Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.X+inner.W <= outer.X+outer.W && inner.Y+inner.H <= outer.Y+outer.H
}

// iconAbove looks for a visual element sitting directly above a text box,
// the "icon with caption" layout. Only the band above the caption is scanned.
func iconAbove(img image.Image, caption entity.Rect, cfg Config) (entity.Rect, bool) {
	c := caption.Center()
	b := img.Bounds()

	area := image.Rect(
		c.X-cfg.IconMaxDX*2, caption.Y-cfg.IconMaxDY-cfg.IconMaxDX,
		c.X+cfg.IconMaxDX*2, caption.Y,
	).Intersect(b)
	if area.Dx() < 3 || area.Dy() < 3 {
		return entity.Rect{}, false
	}

	crop := imaging.Crop(img, area)
	var (
		best  entity.Rect
		found bool
	)
	for _, r := range detectRegions(crop, cfg) {
		r.X += area.Min.X
		r.Y += area.Min.Y
		rc := r.Center()
		dy := c.Y - rc.Y
		dx := rc.X - c.X
		if dx < 0 {
			dx = -dx
		}
		if dy < cfg.IconMinDY || dy > cfg.IconMaxDY || dx >= cfg.IconMaxDX {
			continue
		}
		if !found || dy < c.Y-best.Center().Y {
			best, found = r, true
		}
	}
	return best, found
}
