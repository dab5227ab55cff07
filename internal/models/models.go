// Package models creates the generative and embedding clients used to index
// documents and answer queries.
//
// Clients are created fresh for every chat request through a Provider, so a
// configuration change or a restarted model server never leaves a stale
// connection behind. The production Provider talks to an Ollama server via
// langchaingo:
//
//	provider, err := models.NewOllamaProvider(models.Config{
//	    BaseURL:        "http://localhost:11434",
//	    LLM:            "mistral",
//	    Embedding:      "mistral",
//	    RequestTimeout: 5 * time.Minute,
//	})
//	clients, err := provider.NewClients()
//	answer, err := llms.GenerateFromSinglePrompt(ctx, clients.LLM, prompt)
package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds model provider configuration.
type Config struct {
	// BaseURL is the model server address, e.g. http://localhost:11434.
	BaseURL string

	// LLM is the generative model name.
	LLM string

	// Embedding is the embedding model name.
	Embedding string

	// RequestTimeout bounds every request made to the model server.
	RequestTimeout time.Duration
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.LLM == "" {
		return fmt.Errorf("%w: llm model required", ErrInvalidConfig)
	}
	if c.Embedding == "" {
		return fmt.Errorf("%w: embedding model required", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Clients is one generative client and one embedding client.
type Clients struct {
	LLM      llms.Model
	Embedder embeddings.Embedder
}

// Provider creates model clients.
type Provider interface {
	NewClients() (*Clients, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func() (*Clients, error)

// NewClients calls f.
func (f ProviderFunc) NewClients() (*Clients, error) {
	return f()
}

// OllamaProvider creates clients for an Ollama server.
type OllamaProvider struct {
	config Config
}

// NewOllamaProvider returns a provider for config.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &OllamaProvider{config: config}, nil
}

// Config returns the provider configuration.
func (p *OllamaProvider) Config() Config {
	return p.config
}

// NewClients creates a new generative client and a new embedding client.
func (p *OllamaProvider) NewClients() (*Clients, error) {
	httpClient := &http.Client{Timeout: p.config.RequestTimeout}

	llm, err := p.newOllama(p.config.LLM, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	embedClient := llm
	if p.config.Embedding != p.config.LLM {
		embedClient, err = p.newOllama(p.config.Embedding, httpClient)
		if err != nil {
			return nil, fmt.Errorf("creating embedding client: %w", err)
		}
	}

	embedder, err := embeddings.NewEmbedder(embedClient)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Clients{LLM: llm, Embedder: embedder}, nil
}

func (p *OllamaProvider) newOllama(model string, httpClient *http.Client) (*ollama.LLM, error) {
	return ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(p.config.BaseURL),
		ollama.WithHTTPClient(httpClient),
	)
}
