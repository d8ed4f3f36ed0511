package producer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

var ErrEmptyReply = errors.New("producer: model returned empty response")

// OpenAI generates graphs through the chat completions API in JSON mode.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI creates a producer from a client config. An empty model
// defaults to GPT-4o.
func NewOpenAI(cfg openai.ClientConfig, model string, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = openai.GPT4o
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model, logger: logger}
}

func (o *OpenAI) Generate(ctx context.Context, description string) (schematic.Graph, error) {
	if err := CheckDescription(description); err != nil {
		return schematic.Graph{}, permanent("openai", err)
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Prompt(description)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != http.StatusTooManyRequests {
			return schematic.Graph{}, permanent("openai", err)
		}
		return schematic.Graph{}, transient("openai", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return schematic.Graph{}, permanent("openai", ErrEmptyReply)
	}
	g, err := DecodeResponse(resp.Choices[0].Message.Content)
	if err != nil {
		o.logger.Warn("openai reply rejected", "model", o.model, "err", err)
		return schematic.Graph{}, permanent("openai", err)
	}
	o.logger.Debug("openai generated graph", "model", o.model,
		"components", len(g.Components), "connections", len(g.Connections))
	return g, nil
}
