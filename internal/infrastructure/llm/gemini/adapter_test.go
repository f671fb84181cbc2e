package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessages(t *testing.T) {
	system, contents := convertMessages([]entity.Message{
		{Role: entity.RoleSystem, Content: "You control a desktop"},
		{Role: entity.RoleUser, Content: "next step", Images: []entity.ImageAttachment{{Data: []byte{1, 2}}}},
		{Role: entity.RoleAssistant, Content: "{}"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "You control a desktop", system.Parts[0].Text)

	require.Len(t, contents, 2)
	assert.Equal(t, string(genai.RoleUser), string(contents[0].Role))
	require.Len(t, contents[0].Parts, 2)
	assert.Equal(t, "next step", contents[0].Parts[0].Text)
	require.NotNil(t, contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", contents[0].Parts[1].InlineData.MIMEType)
	assert.Equal(t, string(genai.RoleModel), string(contents[1].Role))
}

func TestConvertMessages_NoSystem(t *testing.T) {
	system, contents := convertMessages([]entity.Message{{Role: entity.RoleUser, Content: "hi"}})

	assert.Nil(t, system)
	assert.Len(t, contents, 1)
}

func TestChat(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"status\":\"complete\"}"}]}}]}`)
	}))
	defer server.Close()

	cfg := DefaultConfig("key", "")
	cfg.BaseURL = server.URL
	adapter, err := NewGeminiAdapter(context.Background(), cfg)
	require.NoError(t, err)

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "sys"},
			{Role: entity.RoleUser, Content: "go"},
		},
		MaxTokens:    800,
		JSONResponse: true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"status":"complete"}`, resp.Message.Content)
	assert.True(t, strings.Contains(body, "application/json"), body)
	assert.True(t, strings.Contains(body, "800"), body)
}
