package entity

import (
	"image"
	"time"
)

// Screenshot is a captured frame. Masked lists the bands that were blanked
// before the image left the capture layer.
type Screenshot struct {
	Image      image.Image
	Masked     []Rect
	CapturedAt time.Time
}

func (s *Screenshot) Width() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

func (s *Screenshot) Height() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

func (s *Screenshot) InMaskedBand(p Point) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Masked {
		if r.Contains(p) {
			return true
		}
	}
	return false
}
