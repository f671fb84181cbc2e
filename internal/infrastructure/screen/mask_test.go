package screen

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticScreen struct {
	shot *entity.Screenshot
	err  error
}

func (s staticScreen) Capture(context.Context) (*entity.Screenshot, error) {
	return s.shot, s.err
}

func white(w, h int) image.Image {
	return imaging.New(w, h, color.White)
}

func TestMask(t *testing.T) {
	out, band := Mask(white(100, 80), 20)

	assert.Equal(t, entity.Rect{X: 0, Y: 60, W: 100, H: 20}, band)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(50, 59))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(50, 60))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(99, 79))
}

func TestMask_TallerThanImage(t *testing.T) {
	_, band := Mask(white(10, 10), 50)
	assert.Equal(t, entity.Rect{X: 0, Y: 0, W: 10, H: 10}, band)
}

func TestMaskedScreen_Capture(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	src := &entity.Screenshot{Image: white(200, 100), CapturedAt: at}
	m := NewMaskedScreen(staticScreen{shot: src}, 40, logger.NewNop())

	shot, err := m.Capture(context.Background())

	require.NoError(t, err)
	require.Len(t, shot.Masked, 1)
	assert.True(t, shot.InMaskedBand(entity.Point{X: 10, Y: 70}))
	assert.False(t, shot.InMaskedBand(entity.Point{X: 10, Y: 59}))
	assert.Equal(t, at, shot.CapturedAt)
	assert.Empty(t, src.Masked, "source screenshot is left untouched")
}

func TestMaskedScreen_Disabled(t *testing.T) {
	src := &entity.Screenshot{Image: white(20, 20)}
	shot, err := NewMaskedScreen(staticScreen{shot: src}, 0, logger.NewNop()).Capture(context.Background())

	require.NoError(t, err)
	assert.Same(t, src, shot)
}

func TestMaskedScreen_Error(t *testing.T) {
	_, err := NewMaskedScreen(staticScreen{err: errors.New("no display")}, 40, logger.NewNop()).Capture(context.Background())
	assert.EqualError(t, err, "no display")
}
