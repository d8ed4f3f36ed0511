package producer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/ollama"
)

// Ollama generates graphs with a local model constrained to ResponseSchema.
type Ollama struct {
	client *ollama.Client
	logger *slog.Logger
}

// NewOllama wraps an Ollama chat client.
func NewOllama(client *ollama.Client, logger *slog.Logger) *Ollama {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ollama{client: client, logger: logger}
}

func (o *Ollama) Generate(ctx context.Context, description string) (schematic.Graph, error) {
	if err := CheckDescription(description); err != nil {
		return schematic.Graph{}, permanent("ollama", err)
	}
	content, err := o.client.Chat(ctx, []ollama.Message{
		ollama.System(SystemPrompt),
		ollama.User(Prompt(description)),
	}, ResponseSchema)
	if err != nil {
		var se *ollama.StatusError
		if errors.As(err, &se) && se.Code < 500 {
			return schematic.Graph{}, permanent("ollama", err)
		}
		return schematic.Graph{}, transient("ollama", err)
	}
	g, err := DecodeResponse(content)
	if err != nil {
		o.logger.Warn("ollama reply rejected", "model", o.client.Model(), "err", err)
		return schematic.Graph{}, permanent("ollama", err)
	}
	o.logger.Debug("ollama generated graph", "model", o.client.Model(),
		"components", len(g.Components), "connections", len(g.Connections))
	return g, nil
}
