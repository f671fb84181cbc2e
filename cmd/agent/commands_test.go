package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"desktop-agent/internal/di"
	"desktop-agent/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

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

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCmd(t *testing.T) {
	out, err := execute(t, newApp(), "parse", "press ctrl+s then type hello")

	require.NoError(t, err)
	assert.Contains(t, out, "1. keyboard/")
	assert.Contains(t, out, "2. keyboard/type {text: hello}")
}

func TestSuggestCmd(t *testing.T) {
	out, err := execute(t, newApp(), "suggest", "cl")

	require.NoError(t, err)
	assert.Contains(t, out, "click")
}

func TestActionsCmd(t *testing.T) {
	out, err := execute(t, newApp(), "actions")

	require.NoError(t, err)
	assert.Contains(t, out, "mouse/click")
	assert.Contains(t, out, "web/navigate (url)")
}

func TestRunCmd_ContainerFailure(t *testing.T) {
	var got di.Config
	a := &app{
		config: mapConfig{"OCR_ENGINE": "tesseract"},
		container: func(_ context.Context, cfg di.Config) (*di.Container, error) {
			got = cfg
			return nil, errors.New("no browser")
		},
	}

	_, err := execute(t, a, "--headless", "run", "click", "OK")

	assert.EqualError(t, err, "no browser")
	assert.True(t, got.BrowserHeadless)
	assert.Equal(t, "tesseract", got.OCREngine)
	assert.Equal(t, 48, got.TaskbarHeight)
}

func TestAgentCmd_MaxStepsFlag(t *testing.T) {
	var got di.Config
	a := &app{
		config: mapConfig{},
		container: func(_ context.Context, cfg di.Config) (*di.Container, error) {
			got = cfg
			return nil, errors.New("stop")
		},
	}

	_, err := execute(t, a, "agent", "--max-steps", "4", "open", "notepad")

	assert.Error(t, err)
	assert.Equal(t, 4, got.AgentMaxSteps)
}

func TestRunCmd_RequiresText(t *testing.T) {
	_, err := execute(t, newApp(), "run")

	assert.Error(t, err)
}

func TestReportJSON(t *testing.T) {
	report := &entity.SequenceReport{
		RunID:          "r1",
		StepsAttempted: 2,
		Results: []entity.ExecutionResult{
			entity.Succeeded("Pressed enter", nil),
			entity.Failed(entity.CodePolicyBlocked, "Step 2 blocked: system/shutdown"),
		},
	}

	var out bytes.Buffer
	require.NoError(t, writeJSON(&out, reportJSON(report)))

	assert.JSONEq(t, `{
		"success": false,
		"run_id": "r1",
		"steps_attempted": 2,
		"results": [
			{"success": true, "message": "Pressed enter"},
			{"success": false, "message": "Step 2 blocked: system/shutdown", "error_code": "POLICY_BLOCKED"}
		]
	}`, out.String())
}
