package output

import (
	"context"
	"time"

	"desktop-agent/internal/domain/entity"
)

type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// InputPort is the pointer and keyboard primitive set. Implementations
// return an error instead of partially applying an event.
type InputPort interface {
	Click(ctx context.Context, at entity.Point, button MouseButton, clicks int) error
	MoveTo(ctx context.Context, at entity.Point) error
	Type(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
	KeyDown(ctx context.Context, key string) error
	KeyUp(ctx context.Context, key string) error
	Scroll(ctx context.Context, direction string, amount int) error
	Drag(ctx context.Context, from, to entity.Point, duration time.Duration) error
}
