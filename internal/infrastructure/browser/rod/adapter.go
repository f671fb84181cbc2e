package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var (
	_ output.ScreenPort = (*BrowserAdapter)(nil)
	_ output.InputPort  = (*BrowserAdapter)(nil)
	_ output.WebPort    = (*BrowserAdapter)(nil)
	_ output.OCRPort    = (*BrowserAdapter)(nil)
)

const (
	defaultTimeout    = 10 * time.Second
	scrollNotchPixels = 100
	dragStepInterval  = 16 * time.Millisecond
)

// BrowserAdapter drives a Chromium page as the screen surface: the viewport
// is the screen, CDP input events are the pointer and keyboard.
type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	logger   output.LoggerPort
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	Width      int
	Height     int
	StartURL   string
	Logger     output.LoggerPort
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: 0,
		Timeout:    defaultTimeout,
		NoSandbox:  true,
		Width:      1280,
		Height:     800,
		StartURL:   "about:blank",
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.StartURL == "" {
		cfg.StartURL = "about:blank"
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-setuid-sandbox")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: cfg.StartURL})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if cfg.Width > 0 && cfg.Height > 0 {
		err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             cfg.Width,
			Height:            cfg.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}, nil
}

// Capture takes a PNG of the visible viewport, so image pixels and mouse
// coordinates share one space.
func (b *BrowserAdapter) Capture(ctx context.Context) (*entity.Screenshot, error) {
	data, err := b.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	return &entity.Screenshot{Image: img, CapturedAt: time.Now()}, nil
}

func (b *BrowserAdapter) MoveTo(ctx context.Context, at entity.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.page.Mouse.MoveTo(point(at)); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, at entity.Point, button output.MouseButton, clicks int) error {
	if err := b.MoveTo(ctx, at); err != nil {
		return err
	}
	if clicks < 1 {
		clicks = 1
	}
	if err := b.page.Mouse.Click(mouseButton(button), clicks); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	b.settle()
	return nil
}

func (b *BrowserAdapter) Drag(ctx context.Context, from, to entity.Point, duration time.Duration) error {
	if err := b.MoveTo(ctx, from); err != nil {
		return err
	}
	if err := b.page.Mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("mouse down failed: %w", err)
	}

	steps := int(duration / dragStepInterval)
	if steps < 1 {
		steps = 1
	}
	moveErr := b.page.Mouse.MoveLinear(point(to), steps)

	if err := b.page.Mouse.Up(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("mouse up failed: %w", err)
	}
	if moveErr != nil {
		return fmt.Errorf("drag move failed: %w", moveErr)
	}
	return nil
}

func (b *BrowserAdapter) Scroll(ctx context.Context, direction string, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount <= 0 {
		amount = 1
	}
	delta := float64(amount * scrollNotchPixels)

	var dx, dy float64
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "down":
		dy = delta
	case "up":
		dy = -delta
	case "right":
		dx = delta
	case "left":
		dx = -delta
	default:
		return fmt.Errorf("unknown scroll direction: %s", direction)
	}

	if err := b.page.Mouse.Scroll(dx, dy, amount); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	b.settle()
	return nil
}

func (b *BrowserAdapter) Type(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.page.InsertText(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Press(ctx context.Context, key string) error {
	k, err := lookupKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.page.Keyboard.Type(k); err != nil {
		return fmt.Errorf("failed to press %s: %w", key, err)
	}
	b.settle()
	return nil
}

func (b *BrowserAdapter) KeyDown(ctx context.Context, key string) error {
	k, err := lookupKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.page.Keyboard.Press(k); err != nil {
		return fmt.Errorf("key down %s failed: %w", key, err)
	}
	return nil
}

// KeyUp ignores ctx so that held modifiers are always released.
func (b *BrowserAdapter) KeyUp(_ context.Context, key string) error {
	k, err := lookupKey(key)
	if err != nil {
		return err
	}
	if err := b.page.Keyboard.Release(k); err != nil {
		return fmt.Errorf("key up %s failed: %w", key, err)
	}
	return nil
}

func (b *BrowserAdapter) OpenURL(ctx context.Context, url string) error {
	page := b.page.Context(ctx).Timeout(b.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	return nil
}

// Recognize reads text boxes from the live DOM instead of pixels. The frame
// is ignored; boxes are reported in viewport coordinates.
func (b *BrowserAdapter) Recognize(ctx context.Context, _ image.Image) ([]entity.TextRegion, error) {
	res, err := b.page.Context(ctx).Timeout(b.timeout).Eval(textBoxesJS)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}
	return decodeBoxes(res.Value)
}

func (b *BrowserAdapter) CurrentURL() string {
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) settle() {
	if err := b.page.WaitIdle(time.Second); err != nil && b.logger != nil {
		b.logger.Debug("Page did not go idle", "error", err)
	}
}

func point(p entity.Point) proto.Point {
	return proto.Point{X: float64(p.X), Y: float64(p.Y)}
}

func mouseButton(b output.MouseButton) proto.InputMouseButton {
	switch b {
	case output.ButtonRight:
		return proto.InputMouseButtonRight
	case output.ButtonMiddle:
		return proto.InputMouseButtonMiddle
	default:
		return proto.InputMouseButtonLeft
	}
}
