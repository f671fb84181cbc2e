package screen

import (
	"context"
	"image"
	"image/color"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
)

var _ output.ScreenPort = (*MaskedScreen)(nil)

// MaskedScreen blanks the taskbar band at the bottom of every frame before it
// reaches text extraction, and records the band on the screenshot.
type MaskedScreen struct {
	next          output.ScreenPort
	taskbarHeight int
	logger        output.LoggerPort
}

func NewMaskedScreen(next output.ScreenPort, taskbarHeight int, logger output.LoggerPort) *MaskedScreen {
	return &MaskedScreen{next: next, taskbarHeight: taskbarHeight, logger: logger}
}

func (m *MaskedScreen) Capture(ctx context.Context) (*entity.Screenshot, error) {
	shot, err := m.next.Capture(ctx)
	if err != nil {
		return nil, err
	}
	if shot == nil || shot.Image == nil || m.taskbarHeight <= 0 {
		return shot, nil
	}

	masked, band := Mask(shot.Image, m.taskbarHeight)
	if band.Empty() {
		return shot, nil
	}

	m.logger.Debug("Taskbar band masked", "y", band.Y, "height", band.H)
	return &entity.Screenshot{
		Image:      masked,
		Masked:     append(append([]entity.Rect(nil), shot.Masked...), band),
		CapturedAt: shot.CapturedAt,
	}, nil
}

// Mask paints the bottom height pixels of img black and returns the copy
// with the band in image coordinates.
func Mask(img image.Image, height int) (*image.NRGBA, entity.Rect) {
	b := img.Bounds()
	if height > b.Dy() {
		height = b.Dy()
	}
	out := imaging.Clone(img)
	if height <= 0 {
		return out, entity.Rect{}
	}

	band := imaging.New(b.Dx(), height, color.Black)
	out = imaging.Paste(out, band, image.Pt(0, b.Dy()-height))
	return out, entity.Rect{X: 0, Y: b.Dy() - height, W: b.Dx(), H: height}
}
