// Package config loads settings from defaults, an optional TOML file, an
// optional .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds every setting of the server and CLI.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	NATS     NATSConfig     `toml:"nats"`
	Producer ProducerConfig `toml:"producer"`
	Generate GenerateConfig `toml:"generate"`
	Canvas   CanvasConfig   `toml:"canvas"`
}

type ServerConfig struct {
	Port       string `toml:"port"`
	GRPCPort   string `toml:"grpc_port"`
	CORSOrigin string `toml:"cors_origin"`
}

// NATSConfig controls change publication. An empty URL disables it.
type NATSConfig struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// ProducerConfig selects and configures the graph producer.
type ProducerConfig struct {
	Kind        string `toml:"kind"` // "ollama", "openai" or "hcl"
	OllamaURL   string `toml:"ollama_url"`
	OllamaModel string `toml:"ollama_model"`
	OpenAIKey   string `toml:"openai_api_key"`
	OpenAIModel string `toml:"openai_model"`
	HCLDir      string `toml:"hcl_dir"`
}

// GenerateConfig guards producer calls.
type GenerateConfig struct {
	Rate    float64       `toml:"rate"` // requests per second, 0 disables limiting
	Burst   int           `toml:"burst"`
	Timeout time.Duration `toml:"timeout"`
}

type CanvasConfig struct {
	ResistorStyle string `toml:"resistor_style"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080", GRPCPort: "9090", CORSOrigin: "*"},
		NATS:     NATSConfig{SubjectPrefix: "schematic"},
		Producer: ProducerConfig{Kind: "ollama", OllamaURL: "http://localhost:11434", OllamaModel: "llama3.1"},
		Generate: GenerateConfig{Rate: 1, Burst: 3, Timeout: 60 * time.Second},
		Canvas:   CanvasConfig{ResistorStyle: "IEEE_ZIGZAG"},
	}
}

// Load builds a Config. tomlPath and envFile are optional; a named TOML
// file must exist, a missing .env file is ignored.
func Load(tomlPath, envFile string) (*Config, error) {
	cfg := Default()
	if tomlPath != "" {
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", tomlPath, err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.Server.Port = envOr("PORT", c.Server.Port)
	c.Server.GRPCPort = envOr("GRPC_PORT", c.Server.GRPCPort)
	c.Server.CORSOrigin = envOr("CORS_ORIGIN", c.Server.CORSOrigin)
	c.NATS.URL = envOr("NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = envOr("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)
	c.Producer.Kind = envOr("PRODUCER", c.Producer.Kind)
	c.Producer.OllamaURL = envOr("OLLAMA_URL", c.Producer.OllamaURL)
	c.Producer.OllamaModel = envOr("OLLAMA_MODEL", c.Producer.OllamaModel)
	c.Producer.OpenAIKey = envOr("OPENAI_API_KEY", c.Producer.OpenAIKey)
	c.Producer.OpenAIModel = envOr("OPENAI_MODEL", c.Producer.OpenAIModel)
	c.Producer.HCLDir = envOr("HCL_DIR", c.Producer.HCLDir)
	c.Canvas.ResistorStyle = envOr("RESISTOR_STYLE", c.Canvas.ResistorStyle)

	if v := os.Getenv("GENERATE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: GENERATE_RATE: %w", err)
		}
		c.Generate.Rate = f
	}
	if v := os.Getenv("GENERATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: GENERATE_BURST: %w", err)
		}
		c.Generate.Burst = n
	}
	if v := os.Getenv("GENERATE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: GENERATE_TIMEOUT: %w", err)
		}
		c.Generate.Timeout = d
	}
	return nil
}
