package di

import (
	"context"
	"image"
	"testing"
	"time"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapConfig map[string]string

func (m mapConfig) Get(key string) string { return m[key] }
func (m mapConfig) MustGet(key string) string { return m[key] }
func (m mapConfig) GetWithDefault(key, def string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
func (m mapConfig) GetBool(_ string, def bool) bool { return def }
func (m mapConfig) GetInt(_ string, def int) int { return def }
func (m mapConfig) GetFloat(_ string, def float64) float64 { return def }
func (m mapConfig) GetDuration(_ string, def time.Duration) time.Duration { return def }

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg := ConfigFromEnv(mapConfig{"OPENROUTER_API_KEY": "k", "OPENROUTER_MODEL_NAME": "m"})

	assert.Equal(t, "openrouter", cfg.OracleProvider)
	assert.Equal(t, "k", cfg.OpenRouterAPIKey)
	assert.InDelta(t, 0.3, cfg.OracleTemperature, 1e-9)
	assert.Equal(t, 800, cfg.OracleMaxTokens)
	assert.Zero(t, cfg.OracleRPM)
	assert.Equal(t, 15, cfg.AgentMaxSteps)
	assert.Equal(t, 48, cfg.TaskbarHeight)
	assert.Equal(t, "dom", cfg.OCREngine)
	assert.Equal(t, "policy.yaml", cfg.PolicyFile)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestNewLLM(t *testing.T) {
	log := logger.NewNop()

	_, err := newLLM(context.Background(), Config{OracleProvider: "openrouter"}, log)
	assert.ErrorContains(t, err, "OPENROUTER_API_KEY")

	_, err = newLLM(context.Background(), Config{OracleProvider: "gemini"}, log)
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = newLLM(context.Background(), Config{OracleProvider: "carrier-pigeon"}, log)
	assert.ErrorContains(t, err, "carrier-pigeon")

	llm, err := newLLM(context.Background(), Config{OpenRouterAPIKey: "k", OpenRouterModel: "m"}, log)
	require.NoError(t, err)
	assert.NotNil(t, llm)
}

type fixedOCR struct{}

func (fixedOCR) Recognize(context.Context, image.Image) ([]entity.TextRegion, error) {
	return []entity.TextRegion{{Text: "OK", Confidence: 0.95}}, nil
}

func TestNewOCR_DOMUsesPage(t *testing.T) {
	engine := newOCR(Config{OCREngine: "dom"}, fixedOCR{}, logger.NewNop())

	require.NoError(t, engine.Ready())
	regions, err := engine.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	require.NoError(t, err)
	assert.Equal(t, "OK", regions[0].Text)
}

func TestNewOCR_TesseractMissingBinary(t *testing.T) {
	engine := newOCR(Config{OCREngine: "tesseract", TesseractPath: "/nonexistent/tesseract"}, fixedOCR{}, logger.NewNop())

	var initErr *entity.OCRInitError
	assert.ErrorAs(t, engine.Ready(), &initErr)
}
