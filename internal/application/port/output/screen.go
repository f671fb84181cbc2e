package output

import (
	"context"
	"image"

	"desktop-agent/internal/domain/entity"
)

type ScreenPort interface {
	Capture(ctx context.Context) (*entity.Screenshot, error)
}

// OCRPort extracts text entries with their boxes from a frame.
type OCRPort interface {
	Recognize(ctx context.Context, img image.Image) ([]entity.TextRegion, error)
}
