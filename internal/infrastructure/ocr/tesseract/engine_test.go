package tesseract

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"desktop-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t800\t600\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t20\t50\t12\t96.5\tLearn\n" +
	"5\t1\t1\t1\t1\t2\t64\t21\t40\t12\t91.5\tMore\n" +
	"5\t1\t2\t1\t1\t1\t300\t400\t30\t14\t88\t$99\n" +
	"5\t1\t2\t1\t1\t2\t340\t400\t10\t14\t-1\t \n"

func TestParseTSV(t *testing.T) {
	regions, err := ParseTSV([]byte(sampleTSV))
	require.NoError(t, err)

	require.Len(t, regions, 4)
	assert.Equal(t, entity.TextRegion{Text: "Learn", Confidence: 0.965, Box: entity.Rect{X: 10, Y: 20, W: 50, H: 12}}, regions[0])
	assert.Equal(t, "$99", regions[2].Text)

	line := regions[3]
	assert.Equal(t, "Learn More", line.Text)
	assert.Equal(t, entity.Rect{X: 10, Y: 20, W: 94, H: 13}, line.Box)
	assert.InDelta(t, 0.94, line.Confidence, 1e-9)
}

func TestParseTSV_BadBox(t *testing.T) {
	_, err := ParseTSV([]byte("header\n5\t1\t1\t1\t1\t1\tx\t0\t1\t1\t90\tword\n"))
	assert.Error(t, err)
}

func TestNew_BinaryMissing(t *testing.T) {
	runner := func(context.Context, string, []string, []byte) ([]byte, error) {
		return nil, errors.New("executable file not found")
	}

	_, err := New(context.Background(), Config{Runner: runner})

	assert.ErrorContains(t, err, "tesseract not available")
}

func TestEngine_Recognize(t *testing.T) {
	var gotArgs []string
	var gotStdin []byte
	runner := func(_ context.Context, name string, args []string, stdin []byte) ([]byte, error) {
		if len(args) == 1 && args[0] == "--version" {
			return []byte("tesseract 5.3.0"), nil
		}
		gotArgs = args
		gotStdin = stdin
		return []byte(sampleTSV), nil
	}

	engine, err := New(context.Background(), Config{Path: "/usr/bin/tesseract", Runner: runner})
	require.NoError(t, err)

	img := image.NewGray(image.Rect(5, 5, 105, 105))
	regions, err := engine.Recognize(context.Background(), img)

	require.NoError(t, err)
	assert.Equal(t, "stdin stdout -l eng --psm 11 tsv", strings.Join(gotArgs, " "))
	assert.True(t, strings.HasPrefix(string(gotStdin), "\x89PNG"))
	assert.Equal(t, 15, regions[0].Box.X, "boxes are shifted by the image origin")
}
