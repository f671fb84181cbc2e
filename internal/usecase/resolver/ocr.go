package resolver

import (
	"context"
	"image"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var _ output.OCRPort = (*OCREngine)(nil)

// OCREngine is a lazily started, shared text extraction handle. The engine is
// created on first use; a start-up failure is kept and returned as an
// *entity.OCRInitError on every later call.
type OCREngine struct {
	name  string
	start func() (output.OCRPort, error)

	once   sync.Once
	engine output.OCRPort
	err    error
}

func NewOCREngine(name string, start func() (output.OCRPort, error)) *OCREngine {
	return &OCREngine{name: name, start: start}
}

func (e *OCREngine) init() {
	e.once.Do(func() {
		engine, err := e.start()
		if err != nil {
			e.err = &entity.OCRInitError{Engine: e.name, Err: err}
			return
		}
		e.engine = engine
	})
}

// Ready starts the engine if needed and reports the start-up error, if any.
func (e *OCREngine) Ready() error {
	e.init()
	return e.err
}

func (e *OCREngine) Recognize(ctx context.Context, img image.Image) ([]entity.TextRegion, error) {
	if err := e.Ready(); err != nil {
		return nil, err
	}
	return e.engine.Recognize(ctx, img)
}
