package oracle

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStep_WithTextAround(t *testing.T) {
	response := `Sure, here is the next step:

{
  "success": true,
  "status": "continue",
  "reasoning": "The Save button is visible",
  "commands": [{"command_type": "mouse", "action": "click", "parameters": {"target": "Save"}}],
  "final_response": ""
}

Good luck!`

	doc, err := DecodeStep(response)
	if err != nil {
		t.Fatalf("DecodeStep failed: %v", err)
	}
	if doc.AgentStatus() != entity.StatusContinue {
		t.Errorf("Expected status=continue, got %s", doc.Status)
	}
	if len(doc.Commands) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(doc.Commands))
	}

	cmd, err := doc.Commands[0].ToCommand(1)
	if err != nil {
		t.Fatalf("ToCommand failed: %v", err)
	}
	if cmd.Params.Text("target") != "Save" {
		t.Errorf("Expected target=Save, got %q", cmd.Params.Text("target"))
	}
	if cmd.Confidence != 0.8 {
		t.Errorf("Expected default confidence 0.8, got %f", cmd.Confidence)
	}
}

func TestDecodeStep_NotJSON(t *testing.T) {
	_, err := DecodeStep("I cannot help with that.")
	if !errors.Is(err, entity.ErrOracleDecode) {
		t.Fatalf("Expected ErrOracleDecode, got %v", err)
	}
}

func TestDecodeStep_Malformed(t *testing.T) {
	_, err := DecodeStep(`{"status": "continue", "commands": [}`)
	assert.ErrorIs(t, err, entity.ErrOracleDecode)
}

func TestDecodeStep_UnknownStatus(t *testing.T) {
	_, err := DecodeStep(`{"status": "thinking"}`)
	assert.ErrorIs(t, err, entity.ErrOracleDecode)
}

func TestDecodePlan(t *testing.T) {
	doc, err := DecodePlan(`{"commands": [
		{"kind": "program", "action": "start", "parameters": {"program": "notepad"}, "confidence": 0.95},
		{"command_type": "keyboard", "action": "type", "parameters": {"text": "hi"}}
	], "explanation": "open and type", "warnings": ["none"], "requires_confirmation": true}`)

	require.NoError(t, err)
	assert.True(t, doc.Succeeded())
	assert.True(t, doc.RequiresConfirmation)
	assert.Equal(t, "open and type", doc.Explanation)
	require.Len(t, doc.Commands, 2)

	first, err := doc.Commands[0].ToCommand(1)
	require.NoError(t, err)
	assert.Equal(t, entity.KindProgram, first.Kind)
	assert.Equal(t, 0.95, first.Confidence)
	assert.Equal(t, "program start", first.RawText)
}

func TestToCommand_ScalesCoordinates(t *testing.T) {
	doc := CommandDoc{CommandType: "Mouse", Action: "CLICK", Parameters: entity.NewParams("x", 100.0, "y", 51.0)}

	cmd, err := doc.ToCommand(2.5)

	require.NoError(t, err)
	x, _ := cmd.Params.Int("x")
	y, _ := cmd.Params.Int("y")
	assert.Equal(t, 250, x)
	assert.Equal(t, 128, y)
	assert.Equal(t, []string{"x", "y"}, cmd.Params.Keys())
}

func TestToCommand_Rejects(t *testing.T) {
	_, err := CommandDoc{CommandType: "mouse", Action: "juggle"}.ToCommand(1)
	assert.ErrorIs(t, err, entity.ErrInvalidCommand)

	_, err = CommandDoc{CommandType: "keyboard", Action: "type"}.ToCommand(1)
	assert.ErrorIs(t, err, entity.ErrInvalidCommand)
}

type captureLLM struct {
	req  output.ChatRequest
	resp string
	err  error
}

func (c *captureLLM) Chat(_ context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: c.resp}}, nil
}

func TestClient_AskDownscalesScreenshot(t *testing.T) {
	llm := &captureLLM{resp: `{"status":"complete"}`}
	client := NewClient(llm, DefaultConfig(), logger.NewNop())
	shot := &entity.Screenshot{Image: image.NewNRGBA(image.Rect(0, 0, 2048, 1000))}

	answer, err := client.Ask(context.Background(), "system", "goal", shot)

	require.NoError(t, err)
	assert.Equal(t, `{"status":"complete"}`, answer.Text)
	assert.InDelta(t, 2.0, answer.Scale, 0.001)

	require.Len(t, llm.req.Messages, 2)
	assert.Equal(t, entity.RoleSystem, llm.req.Messages[0].Role)
	user := llm.req.Messages[1]
	require.Len(t, user.Images, 1)
	assert.Equal(t, "image/jpeg", user.Images[0].MIMEType)
	assert.Contains(t, user.Content, "1024x500")
	assert.True(t, llm.req.JSONResponse)
	assert.Equal(t, 800, llm.req.MaxTokens)

	img, err := imaging.Decode(bytes.NewReader(user.Images[0].Data))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
}

func TestClient_AskWithoutScreenshot(t *testing.T) {
	llm := &captureLLM{resp: "{}"}
	client := NewClient(llm, DefaultConfig(), logger.NewNop())

	answer, err := client.Ask(context.Background(), "system", "plan this", nil)

	require.NoError(t, err)
	assert.Equal(t, 1.0, answer.Scale)
	assert.Empty(t, llm.req.Messages[1].Images)
	assert.Equal(t, "plan this", llm.req.Messages[1].Content)
}

func TestClient_AskTransportError(t *testing.T) {
	client := NewClient(&captureLLM{err: errors.New("503")}, DefaultConfig(), logger.NewNop())

	_, err := client.Ask(context.Background(), "s", "p", nil)

	assert.ErrorContains(t, err, "oracle request failed")
}

func TestClient_PacesRequests(t *testing.T) {
	llm := &captureLLM{resp: `{}`}
	cfg := DefaultConfig()
	cfg.RequestsPerMinute = 1
	client := NewClient(llm, cfg, logger.NewNop())

	_, err := client.Ask(context.Background(), "system", "first", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Ask(ctx, "system", "second", nil)

	assert.ErrorContains(t, err, "rate limit")
	assert.Equal(t, "first", llm.req.Messages[1].Content, "the paced call never reached the model")
}
