package inference

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// openAIProvider implements Provider with the OpenAI Responses API and strict
// JSON schema output.
type openAIProvider struct {
	client openai.Client
	model  string
}

func newOpenAIProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("OpenAI model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are handled by the gateway so attempts and delays stay predictable.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &openAIProvider{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func (p *openAIProvider) Name() string {
	return "openai"
}

// Generate sends the prompt and returns the concatenated output text.
func (p *openAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   req.SchemaName,
			Schema: req.Schema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:       p.model,
		Temperature: openai.Float(req.Temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxTokens))
	}

	slog.Debug("OpenAI request starting", "model", p.model, "schema", req.SchemaName, "prompt_chars", len(req.Prompt))

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	text := resp.OutputText()
	slog.Debug("OpenAI response received", "model", p.model, "status", resp.Status, "content_length", len(text))

	return text, nil
}
