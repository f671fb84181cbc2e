package tesseract

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var _ output.OCRPort = (*Engine)(nil)

// Runner executes the tesseract binary with stdin and returns stdout.
type Runner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

func execRunner(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

type Config struct {
	Path     string
	Language string
	Runner   Runner
}

type Engine struct {
	path     string
	language string
	run      Runner
}

// New checks that the binary answers --version. It is meant to be the start
// function of a lazily initialized OCR handle.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Path == "" {
		cfg.Path = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Runner == nil {
		cfg.Runner = execRunner
	}

	if _, err := cfg.Runner(ctx, cfg.Path, []string{"--version"}, nil); err != nil {
		return nil, fmt.Errorf("tesseract not available: %w", err)
	}
	return &Engine{path: cfg.Path, language: cfg.Language, run: cfg.Runner}, nil
}

func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]entity.TextRegion, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}

	out, err := e.run(ctx, e.path, []string{"stdin", "stdout", "-l", e.language, "--psm", "11", "tsv"}, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("tesseract failed: %w", err)
	}

	origin := img.Bounds().Min
	regions, err := ParseTSV(out)
	if err != nil {
		return nil, err
	}
	for i := range regions {
		regions[i].Box.X += origin.X
		regions[i].Box.Y += origin.Y
	}
	return regions, nil
}

type word struct {
	text string
	conf float64
	box  entity.Rect
}

// ParseTSV turns tesseract TSV output into word entries followed by one
// entry per multi-word line.
func ParseTSV(data []byte) ([]entity.TextRegion, error) {
	var (
		words     []entity.TextRegion
		lines     []entity.TextRegion
		lineOrder []string
		byLine    = map[string][]word{}
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		cols := strings.Split(scanner.Text(), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		conf, err := strconv.ParseFloat(cols[10], 64)
		if text == "" || err != nil || conf < 0 {
			continue
		}

		var nums [4]int
		for i := range nums {
			n, err := strconv.Atoi(cols[6+i])
			if err != nil {
				return nil, fmt.Errorf("bad tsv box %q: %w", cols[6+i], err)
			}
			nums[i] = n
		}

		w := word{text: text, conf: conf / 100, box: entity.Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}}
		words = append(words, entity.TextRegion{Text: w.text, Confidence: w.conf, Box: w.box})

		key := strings.Join(cols[1:5], ".")
		if _, ok := byLine[key]; !ok {
			lineOrder = append(lineOrder, key)
		}
		byLine[key] = append(byLine[key], w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, key := range lineOrder {
		ws := byLine[key]
		if len(ws) < 2 {
			continue
		}
		lines = append(lines, mergeLine(ws))
	}
	return append(words, lines...), nil
}

func mergeLine(ws []word) entity.TextRegion {
	texts := make([]string, len(ws))
	minX, minY := ws[0].box.X, ws[0].box.Y
	maxX, maxY := ws[0].box.X+ws[0].box.W, ws[0].box.Y+ws[0].box.H
	sum := 0.0
	for i, w := range ws {
		texts[i] = w.text
		sum += w.conf
		minX = min(minX, w.box.X)
		minY = min(minY, w.box.Y)
		maxX = max(maxX, w.box.X+w.box.W)
		maxY = max(maxY, w.box.Y+w.box.H)
	}
	return entity.TextRegion{
		Text:       strings.Join(texts, " "),
		Confidence: sum / float64(len(ws)),
		Box:        entity.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY},
	}
}
