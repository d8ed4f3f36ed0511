package producer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/config"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/fn"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/ollama"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/resilience"
)

const ledCircuit = `{
  "components": [
    {"id": "bat", "type": "source", "subType": "Battery", "label": "B1", "value": "9V", "description": "supply"},
    {"id": "r1", "type": "LOAD", "subType": "Resistor", "label": "R1", "value": "330 ohm", "description": "limits current"},
    {"id": "gnd", "type": "GROUND", "subType": "Ground", "label": "GND", "description": "return"}
  ],
  "connections": [
    {"id": "c1", "fromId": "bat", "toId": "r1"},
    {"id": "c2", "fromId": "r1", "toId": "gnd"}
  ]
}`

func TestDecodeResponse(t *testing.T) {
	for _, content := range []string{ledCircuit, "```json\n" + ledCircuit + "\n```"} {
		g, err := DecodeResponse(content)
		if err != nil {
			t.Fatal(err)
		}
		if len(g.Components) != 3 || len(g.Connections) != 2 {
			t.Fatalf("expected 3 components and 2 connections, got %d/%d", len(g.Components), len(g.Connections))
		}
		if g.Components[0].Type != schematic.RoleSource {
			t.Fatalf("expected role normalized to SOURCE, got %q", g.Components[0].Type)
		}
		if g.Components[2].Value != "" || g.Components[2].Position != nil {
			t.Fatalf("expected absent value and position, got %+v", g.Components[2])
		}
	}
}

func TestDecodeResponseRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":            "sorry, I cannot help",
		"missing connections": `{"components": []}`,
		"unknown role":        `{"components": [{"id": "x", "type": "MAGIC"}], "connections": []}`,
		"duplicate id":        `{"components": [{"id": "x", "type": "LOAD"}, {"id": "x", "type": "LOAD"}], "connections": []}`,
		"empty connection id": `{"components": [], "connections": [{"id": "", "fromId": "a", "toId": "b"}]}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeResponse(content); !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDecodeResponseAcceptsDanglingEndpoints(t *testing.T) {
	g, err := DecodeResponse(`{"components": [], "connections": [{"id": "c", "fromId": "a", "toId": "b"}]}`)
	if err != nil || len(g.Connections) != 1 {
		t.Fatalf("expected dangling connection kept, got %v %+v", err, g)
	}
}

func TestResponseSchemaListsRoles(t *testing.T) {
	var schema struct {
		Properties struct {
			Components struct {
				Items struct {
					Properties struct {
						Type struct {
							Enum []string `json:"enum"`
						} `json:"type"`
					} `json:"properties"`
				} `json:"items"`
			} `json:"components"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(ResponseSchema, &schema); err != nil {
		t.Fatal(err)
	}
	if got := schema.Properties.Components.Items.Properties.Type.Enum; len(got) != 6 || got[0] != "SOURCE" {
		t.Fatalf("unexpected role enum %v", got)
	}
}

func TestOllamaProducer(t *testing.T) {
	var sawSchema bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []ollama.Message `json:"messages"`
			Format   json.RawMessage  `json:"format"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		sawSchema = len(req.Format) > 0
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "LED with a battery") {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": ledCircuit},
			"done":    true,
		})
	}))
	defer srv.Close()

	p := NewOllama(ollama.NewClient(srv.URL, "llama3.1", nil), nil)
	g, err := p.Generate(context.Background(), "an LED with a battery")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Components) != 3 || !sawSchema {
		t.Fatalf("expected 3 components with schema sent, got %d (schema %v)", len(g.Components), sawSchema)
	}
}

func TestOllamaProducerClassifiesFailures(t *testing.T) {
	status := http.StatusServiceUnavailable
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()
	p := NewOllama(ollama.NewClient(srv.URL, "m", nil), nil)

	_, err := p.Generate(context.Background(), "x")
	var ge *GenerationError
	if !errors.As(err, &ge) || !ge.Transient {
		t.Fatalf("expected transient GenerationError for 503, got %v", err)
	}
	status = http.StatusBadRequest
	if _, err := p.Generate(context.Background(), "x"); IsTransient(err) {
		t.Fatalf("expected permanent error for 400, got %v", err)
	}
}

func TestOpenAIProducer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Errorf("expected JSON object response format, got %+v", req.ResponseFormat)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"model":   req.Model,
			"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": ledCircuit}}},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	g, err := NewOpenAI(cfg, "", nil).Generate(context.Background(), "an LED with a battery")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(g.Connections))
	}
}

const hclCircuitSrc = `
component "bat" {
  type     = "SOURCE"
  sub_type = "Battery"
  label    = "B1"
  value    = "12V"
  position = [50, 150]
}

component "lamp" {
  type     = "load"
  sub_type = "Light"
  label    = "L1"
}

connection "c1" {
  from = "bat"
  to   = "lamp"
}
`

func TestHCLFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lamp.hcl"), []byte(hclCircuitSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := HCLFile{Dir: dir}.Generate(context.Background(), "lamp.hcl")
	if err != nil {
		t.Fatal(err)
	}
	bat, _ := g.Component("bat")
	if bat.Position == nil || *bat.Position != (schematic.Position{X: 50, Y: 150}) || bat.Value != "12V" {
		t.Fatalf("unexpected bat %+v", bat)
	}
	lamp, _ := g.Component("lamp")
	if lamp.Type != schematic.RoleLoad || lamp.Position != nil {
		t.Fatalf("unexpected lamp %+v", lamp)
	}
	if len(g.Connections) != 1 || g.Connections[0].FromID != "bat" || g.Connections[0].ToID != "lamp" {
		t.Fatalf("unexpected connections %+v", g.Connections)
	}
}

func TestDecodeHCLRejectsBadPosition(t *testing.T) {
	src := `component "x" {
  type     = "LOAD"
  sub_type = "LED"
  position = [1, 2, 3]
}`
	if _, err := DecodeHCL("bad.hcl", []byte(src)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeHCLLayoutVariables(t *testing.T) {
	src := `component "x" {
  type     = "LOAD"
  sub_type = "LED"
  position = [layout.origin_x + 2 * layout.step_x, layout.row_y + 40]
}`
	g, err := DecodeHCL("grid.hcl", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	x, _ := g.Component("x")
	if x.Position == nil || *x.Position != (schematic.Position{X: 370, Y: 190}) {
		t.Fatalf("expected (370,190), got %+v", x.Position)
	}
}

func TestHCLFileStaysInsideDir(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "circuits")
	if err := os.MkdirAll(filepath.Join(base, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(parent, "outside.hcl")
	for _, path := range []string{outside, filepath.Join(base, "nested", "lamp.hcl")} {
		if err := os.WriteFile(path, []byte(hclCircuitSrc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	h := HCLFile{Dir: base}

	if _, err := h.Generate(context.Background(), "nested/lamp.hcl"); err != nil {
		t.Fatalf("expected nested file to load, got %v", err)
	}
	for _, name := range []string{"../outside.hcl", outside, "nested/../../outside.hcl"} {
		_, err := h.Generate(context.Background(), name)
		if !errors.Is(err, ErrOutsideDir) {
			t.Fatalf("%s: expected ErrOutsideDir, got %v", name, err)
		}
		if IsTransient(err) {
			t.Fatalf("%s: expected a permanent error", name)
		}
	}
}

func TestHCLFileMissing(t *testing.T) {
	if _, err := (HCLFile{Dir: t.TempDir()}).Generate(context.Background(), "nope.hcl"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func fastGuard() GuardOpts {
	return GuardOpts{
		Limiter: resilience.LimiterOpts{},
		Breaker: resilience.BreakerOpts{FailThreshold: 2, Timeout: time.Hour},
		Retry:   fn.RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond},
	}
}

func TestGuardRetriesTransientOnly(t *testing.T) {
	calls := 0
	flaky := Func(func(context.Context, string) (schematic.Graph, error) {
		calls++
		if calls < 3 {
			return schematic.Graph{}, transient("test", errors.New("connection reset"))
		}
		return schematic.Empty(), nil
	})
	if _, err := Guard(flaky, fastGuard(), nil).Generate(context.Background(), "x"); err != nil || calls != 3 {
		t.Fatalf("expected success on third call, got %v after %d", err, calls)
	}

	calls = 0
	broken := Func(func(context.Context, string) (schematic.Graph, error) {
		calls++
		return schematic.Graph{}, permanent("test", ErrMalformed)
	})
	if _, err := Guard(broken, fastGuard(), nil).Generate(context.Background(), "x"); !errors.Is(err, ErrMalformed) || calls != 1 {
		t.Fatalf("expected one call ending in ErrMalformed, got %v after %d", err, calls)
	}
}

func TestGuardOpensBreaker(t *testing.T) {
	down := Func(func(context.Context, string) (schematic.Graph, error) {
		return schematic.Graph{}, transient("test", errors.New("refused"))
	})
	opts := fastGuard()
	opts.Retry.MaxAttempts = 1
	g := Guard(down, opts, nil)
	for i := 0; i < 2; i++ {
		_, _ = g.Generate(context.Background(), "x")
	}
	if _, err := g.Generate(context.Background(), "x"); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if g.BreakerState() != resilience.StateOpen {
		t.Fatalf("expected open, got %v", g.BreakerState())
	}
}

func TestGuardRateLimits(t *testing.T) {
	opts := fastGuard()
	opts.Limiter = resilience.LimiterOpts{Rate: 0.001, Burst: 1}
	g := Guard(Func(func(context.Context, string) (schematic.Graph, error) { return schematic.Empty(), nil }), opts, nil)
	if _, err := g.Generate(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background(), "x"); !errors.Is(err, resilience.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGuardRejectsBlankDescription(t *testing.T) {
	called := false
	p := Func(func(context.Context, string) (schematic.Graph, error) { called = true; return schematic.Empty(), nil })
	if _, err := Guard(p, fastGuard(), nil).Generate(context.Background(), "  \n"); !errors.Is(err, ErrEmptyDescription) || called {
		t.Fatalf("expected ErrEmptyDescription without a call, got %v (called %v)", err, called)
	}
}

func TestGuardFailuresAreGenerationErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := Func(func(context.Context, string) (schematic.Graph, error) {
		cancel()
		return schematic.Graph{}, transient("test", errors.New("connection reset"))
	})
	opts := fastGuard()
	opts.Retry.InitialWait = time.Hour
	opts.Retry.MaxWait = time.Hour

	_, err := Guard(p, opts, nil).Generate(ctx, "x")
	var ge *GenerationError
	if !errors.As(err, &ge) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected GenerationError wrapping context.Canceled, got %T %v", err, err)
	}

	limited := fastGuard()
	limited.Limiter = resilience.LimiterOpts{Rate: 0.001, Burst: 1}
	g := Guard(Func(func(context.Context, string) (schematic.Graph, error) { return schematic.Empty(), nil }), limited, nil)
	_, _ = g.Generate(context.Background(), "x")
	_, err = g.Generate(context.Background(), "x")
	if !errors.As(err, &ge) || !errors.Is(err, resilience.ErrRateLimited) {
		t.Fatalf("expected GenerationError wrapping ErrRateLimited, got %T %v", err, err)
	}

	_, err = g.Generate(context.Background(), " ")
	if !errors.As(err, &ge) || ge.Transient || !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected permanent GenerationError for blank description, got %v", err)
	}
}

func TestGuardTimeout(t *testing.T) {
	slow := Func(func(ctx context.Context, _ string) (schematic.Graph, error) {
		<-ctx.Done()
		return schematic.Graph{}, transient("test", ctx.Err())
	})
	opts := fastGuard()
	opts.Retry.MaxAttempts = 1
	opts.Timeout = 5 * time.Millisecond
	if _, err := Guard(slow, opts, nil).Generate(context.Background(), "x"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		cfg     config.ProducerConfig
		wantErr bool
	}{
		{config.ProducerConfig{Kind: KindOllama, OllamaURL: "http://localhost:11434", OllamaModel: "m"}, false},
		{config.ProducerConfig{Kind: KindOpenAI}, true},
		{config.ProducerConfig{Kind: KindOpenAI, OpenAIKey: "k"}, false},
		{config.ProducerConfig{Kind: KindHCL, HCLDir: "."}, false},
		{config.ProducerConfig{Kind: "gemini"}, true},
	}
	for _, tt := range tests {
		p, err := Build(tt.cfg, nil)
		if (err != nil) != tt.wantErr || (err == nil && p == nil) {
			t.Fatalf("%s: unexpected result %v, %v", tt.cfg.Kind, p, err)
		}
	}

	p, err := Build(config.ProducerConfig{Kind: KindHCL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if h, ok := p.(HCLFile); !ok || h.Dir != "." {
		t.Fatalf("expected HCL producer confined to the working directory, got %#v", p)
	}
}
