// Package modelstest provides deterministic in-process model clients for
// tests. Nothing here talks to a model server.
package modelstest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"github.com/fyrsmithlabs/docchat/internal/models"
)

// Dimensions is the size of vectors returned by Embedder.
const Dimensions = 64

// LLM is a scripted llms.Model that records every prompt it receives.
type LLM struct {
	// Respond produces the completion for a prompt. When nil the prompt is
	// echoed back.
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

var _ llms.Model = (*LLM)(nil)

// GenerateContent implements llms.Model.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := promptText(messages)

	l.mu.Lock()
	l.prompts = append(l.prompts, prompt)
	l.mu.Unlock()

	text := prompt
	if l.Respond != nil {
		var err error
		text, err = l.Respond(prompt)
		if err != nil {
			return nil, err
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}, nil
}

// Call implements llms.Model.
func (l *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l, prompt, options...)
}

// Prompts returns every prompt received so far.
func (l *LLM) Prompts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.prompts...)
}

// PromptsContaining returns the prompts that contain substr.
func (l *LLM) PromptsContaining(substr string) []string {
	var out []string
	for _, p := range l.Prompts() {
		if strings.Contains(p, substr) {
			out = append(out, p)
		}
	}
	return out
}

func promptText(messages []llms.MessageContent) string {
	var sb strings.Builder
	for _, m := range messages {
		for _, part := range m.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				sb.WriteString(tc.Text)
			}
		}
	}
	return sb.String()
}

// Embedder hashes words into a fixed-size bag-of-words vector, so texts
// sharing words are similar.
type Embedder struct {
	// Err, when set, is returned by every call.
	Err error

	mu    sync.Mutex
	calls int
}

var _ embeddings.Embedder = (*Embedder)(nil)

// EmbedDocuments implements embeddings.Embedder.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.record(ctx); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = Vector(t)
	}
	return out, nil
}

// EmbedQuery implements embeddings.Embedder.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := e.record(ctx); err != nil {
		return nil, err
	}
	return Vector(text), nil
}

// Calls returns how many embedding requests were made.
func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *Embedder) record(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return e.Err
}

// Vector returns the deterministic embedding of text. The last dimension is
// always set so no vector is zero.
func Vector(text string) []float32 {
	v := make([]float32, Dimensions)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%(Dimensions-1)]++
	}
	v[Dimensions-1] = 0.1
	return v
}

// Provider returns a models.Provider handing out llm and embedder on every
// call.
func Provider(llm *LLM, embedder *Embedder) models.Provider {
	return models.ProviderFunc(func() (*models.Clients, error) {
		return &models.Clients{LLM: llm, Embedder: embedder}, nil
	})
}
