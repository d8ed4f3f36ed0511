package producer

import (
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/config"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/ollama"
)

// Producer kinds accepted by Build.
const (
	KindOllama = "ollama"
	KindOpenAI = "openai"
	KindHCL    = "hcl"
)

// Build constructs the configured concrete producer, unguarded.
func Build(cfg config.ProducerConfig, logger *slog.Logger) (Producer, error) {
	switch cfg.Kind {
	case KindOllama, "":
		return NewOllama(ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, &http.Client{}), logger), nil
	case KindOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("producer: openai: OPENAI_API_KEY is not set")
		}
		return NewOpenAI(openai.DefaultConfig(cfg.OpenAIKey), cfg.OpenAIModel, logger), nil
	case KindHCL:
		dir := cfg.HCLDir
		if dir == "" {
			dir = "."
		}
		return HCLFile{Dir: dir}, nil
	}
	return nil, fmt.Errorf("producer: unknown kind %q", cfg.Kind)
}

// GuardOptsFrom maps generation settings onto GuardOpts.
func GuardOptsFrom(cfg config.GenerateConfig) GuardOpts {
	opts := DefaultGuardOpts
	opts.Limiter.Rate = cfg.Rate
	opts.Limiter.Burst = cfg.Burst
	opts.Timeout = cfg.Timeout
	return opts
}
