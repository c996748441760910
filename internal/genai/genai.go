// Package genai abstracts the text-generation backends used by the
// generative extraction pass. Two backends are provided: a local Ollama
// server and the hosted Anthropic API. Both take a raw prompt and return
// the model's text; prompt construction and JSON recovery belong to the
// extractor, not here.
package genai

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// limited wraps a Generator with a concurrency gate. Generation is far
// slower than fetching, so the run controller caps in-flight calls
// independently of the page-worker pool.
type limited struct {
	inner Generator
	slots *semaphore.Weighted
}

// Limited caps concurrent Generate calls at n. n <= 0 means no gate.
func Limited(g Generator, n int) Generator {
	if n <= 0 {
		return g
	}
	return &limited{inner: g, slots: semaphore.NewWeighted(int64(n))}
}

func (l *limited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.slots.Release(1)
	return l.inner.Generate(ctx, prompt)
}
