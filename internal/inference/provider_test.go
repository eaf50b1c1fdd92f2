package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"gemini", Config{Provider: "gemini", APIKey: "k", Model: "gemini-2.5-flash"}, "gemini", false},
		{"openai", Config{Provider: "OpenAI", APIKey: "k", Model: "gpt-4.1-mini"}, "openai", false},
		{"gemini without key", Config{Provider: "gemini", Model: "gemini-2.5-flash"}, "", true},
		{"openai without model", Config{Provider: "openai", APIKey: "k"}, "", true},
		{"unknown provider", Config{Provider: "anthropic", APIKey: "k", Model: "m"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestGeminiProvider_Generate(t *testing.T) {
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"a\":"}, {"text": "1}"}]}, "finishReason": "STOP"}]}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{Provider: "gemini", APIKey: "test-key", Model: "gemini-2.5-flash", BaseURL: server.URL})
	require.NoError(t, err)

	schema := map[string]any{"$schema": "https://json-schema.org/draft/2020-12/schema", "type": "object"}
	text, err := p.Generate(context.Background(), Request{Prompt: "hello", Schema: schema, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "hello", captured.Contents[0].Parts[0].Text)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
	assert.InDelta(t, 0.2, captured.GenerationConfig.Temperature, 1e-9)
	assert.Equal(t, "object", captured.GenerationConfig.ResponseJSONSchema["type"])
	assert.NotContains(t, captured.GenerationConfig.ResponseJSONSchema, "$schema")
	// The caller's schema is left untouched.
	assert.Contains(t, schema, "$schema")
}

func TestGeminiProvider_Errors(t *testing.T) {
	t.Run("status error carries code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error": {"status": "UNAVAILABLE"}}`))
		}))
		defer server.Close()

		p, err := NewProvider(Config{Provider: "gemini", APIKey: "k", Model: "m", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = p.Generate(context.Background(), Request{Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("no candidates is empty text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		}))
		defer server.Close()

		p, err := NewProvider(Config{Provider: "gemini", APIKey: "k", Model: "m", BaseURL: server.URL})
		require.NoError(t, err)

		text, err := p.Generate(context.Background(), Request{Prompt: "x"})
		require.NoError(t, err)
		assert.Empty(t, text)
	})
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/responses"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"object": "response",
			"created_at": 0,
			"status": "completed",
			"model": "gpt-4.1-mini",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"status": "completed",
				"role": "assistant",
				"content": [{"type": "output_text", "text": "{\"ok\":true}", "annotations": []}]
			}]
		}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{Provider: "openai", APIKey: "test-key", Model: "gpt-4.1-mini", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	schema, _ := SchemaFor(DashboardSchemaName)
	text, err := p.Generate(context.Background(), Request{Prompt: "hello", Schema: schema, SchemaName: "CRMDashboard", Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	assert.Equal(t, "gpt-4.1-mini", captured["model"])
	textCfg, ok := captured["text"].(map[string]any)
	require.True(t, ok)
	format, ok := textCfg["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "CRMDashboard", format["name"])
	assert.Equal(t, true, format["strict"])
}
