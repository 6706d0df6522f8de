package inference

import (
	"context"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	// DefaultCallTimeout bounds a single model call. A call that exceeds
	// it counts as a failure of that tier and triggers fallback.
	DefaultCallTimeout = 120 * time.Second

	DefaultTemperature = 0.1
	DefaultMaxTokens   = 2000
)

// Gateway issues a text-completion request to a configured model and
// returns raw text or a typed failure. The wire protocol to the model
// provider is the gateway's concern alone.
type Gateway interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// OllamaGateway is a Gateway backed by a local Ollama server.
type OllamaGateway struct {
	serverURL   string
	temperature float64
	maxTokens   int
	timeout     time.Duration

	mu      sync.Mutex
	clients map[string]*ollama.LLM
}

type GatewayOption func(*OllamaGateway)

func WithCallTimeout(d time.Duration) GatewayOption {
	return func(g *OllamaGateway) { g.timeout = d }
}

func WithTemperature(t float64) GatewayOption {
	return func(g *OllamaGateway) { g.temperature = t }
}

func WithMaxTokens(n int) GatewayOption {
	return func(g *OllamaGateway) { g.maxTokens = n }
}

// NewOllamaGateway creates a gateway against the given Ollama server URL.
// Model clients are created lazily per model identifier and reused.
func NewOllamaGateway(serverURL string, opts ...GatewayOption) *OllamaGateway {
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}
	g := &OllamaGateway{
		serverURL:   serverURL,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		timeout:     DefaultCallTimeout,
		clients:     make(map[string]*ollama.LLM),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *OllamaGateway) client(model string) (*ollama.LLM, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[model]; ok {
		return c, nil
	}
	c, err := ollama.New(
		ollama.WithServerURL(g.serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, TranslateError(model, err)
	}
	g.clients[model] = c
	return c, nil
}

// Complete sends a blocking completion request to the given model.
func (g *OllamaGateway) Complete(ctx context.Context, model, prompt string) (string, error) {
	c, err := g.client(model)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := llms.GenerateFromSinglePrompt(callCtx, c, prompt,
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		return "", TranslateError(model, err)
	}
	return resp, nil
}
