package oracle

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"golang.org/x/time/rate"
)

type Config struct {
	Temperature float32
	MaxTokens   int
	MaxWidth    int
	JPEGQuality int

	// RequestsPerMinute paces oracle calls; zero disables pacing.
	RequestsPerMinute int
}

func DefaultConfig() Config {
	return Config{
		Temperature: 0.3,
		MaxTokens:   800,
		MaxWidth:    1024,
		JPEGQuality: 75,
	}
}

// Answer is the raw oracle text plus the factor that maps coordinates on the
// image it saw back onto the screen.
type Answer struct {
	Text  string
	Scale float64
}

type Client struct {
	llm     output.LLMPort
	cfg     Config
	limiter *rate.Limiter
	logger  output.LoggerPort
}

func NewClient(llm output.LLMPort, cfg Config, logger output.LoggerPort) *Client {
	c := &Client{llm: llm, cfg: cfg, logger: logger}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// Ask sends system instructions, a prompt and, when shot is non-nil, the
// screenshot as a downscaled JPEG.
func (c *Client) Ask(ctx context.Context, system, prompt string, shot *entity.Screenshot) (Answer, error) {
	user := entity.Message{Role: entity.RoleUser, Content: prompt}
	scale := 1.0

	if shot != nil && shot.Image != nil {
		data, s, err := c.encode(shot)
		if err != nil {
			return Answer{}, err
		}
		scale = s
		user.Images = []entity.ImageAttachment{{MIMEType: "image/jpeg", Data: data}}
		user.Content = fmt.Sprintf("%s\n\nSCREENSHOT: %dx%d pixels; coordinates you give are multiplied by %.2f to reach the screen.",
			prompt, int(float64(shot.Width())/scale+0.5), int(float64(shot.Height())/scale+0.5), scale)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Answer{}, fmt.Errorf("oracle rate limit: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: system},
			user,
		},
		Temperature:  c.cfg.Temperature,
		MaxTokens:    c.cfg.MaxTokens,
		JSONResponse: true,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("oracle request failed: %w", err)
	}

	c.logger.Info("Oracle answered",
		"duration", time.Since(start),
		"responseLength", len(resp.Message.Content),
		"withImage", len(user.Images) > 0,
	)
	return Answer{Text: resp.Message.Content, Scale: scale}, nil
}

func (c *Client) encode(shot *entity.Screenshot) ([]byte, float64, error) {
	img := shot.Image
	scale := 1.0
	if c.cfg.MaxWidth > 0 && img.Bounds().Dx() > c.cfg.MaxWidth {
		resized := imaging.Resize(img, c.cfg.MaxWidth, 0, imaging.Lanczos)
		scale = float64(img.Bounds().Dx()) / float64(resized.Bounds().Dx())
		img = resized
	}

	quality := c.cfg.JPEGQuality
	if quality <= 0 {
		quality = 75
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, 0, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), scale, nil
}
