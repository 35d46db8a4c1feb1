package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Generator produces free-form model text for a system instruction and user
// content.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// ModelBackend is a model provider addressed by model name.
type ModelBackend interface {
	GenerateWithModel(ctx context.Context, model, system, user string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	IsModelNotFound(err error) bool
}

// FallbackGenerator calls the configured model and, when the provider reports
// that model as missing, retries once with a model picked from the provider's
// list. Any other failure is returned as is.
type FallbackGenerator struct {
	Backend ModelBackend
	Model   string
	// Prefer is a substring favoured when picking the fallback model.
	Prefer string
	// Timeout bounds each model attempt; zero leaves ctx as is.
	Timeout time.Duration
}

// NewFallbackGenerator returns a generator that prefers "flash" models on fallback.
func NewFallbackGenerator(backend ModelBackend, model string) *FallbackGenerator {
	return &FallbackGenerator{Backend: backend, Model: model, Prefer: "flash"}
}

func (g *FallbackGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	out, err := g.attempt(ctx, g.Model, system, user)
	if err == nil {
		return out, nil
	}
	if !g.Backend.IsModelNotFound(err) {
		return "", fmt.Errorf("failed to generate content with %s: %w", g.Model, err)
	}

	models, listErr := g.Backend.ListModels(ctx)
	if listErr != nil {
		return "", fmt.Errorf("failed to list models after %s was not found: %w", g.Model, listErr)
	}
	fallback, ok := PickFallback(models, g.Model, g.Prefer)
	if !ok {
		return "", fmt.Errorf("model %s not found and no fallback available: %w", g.Model, err)
	}

	out, err = g.attempt(ctx, fallback, system, user)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with fallback %s: %w", fallback, err)
	}
	return out, nil
}

func (g *FallbackGenerator) attempt(ctx context.Context, model, system, user string) (string, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	return g.Backend.GenerateWithModel(ctx, model, system, user)
}

// PickFallback chooses a model other than failed, taking the first name
// containing prefer and otherwise the first available name. A "models/"
// prefix is ignored when comparing names.
func PickFallback(models []string, failed, prefer string) (string, bool) {
	failed = bareModel(failed)
	var first string
	for _, m := range models {
		name := bareModel(m)
		if name == "" || name == failed {
			continue
		}
		if prefer != "" && strings.Contains(strings.ToLower(name), strings.ToLower(prefer)) {
			return name, true
		}
		if first == "" {
			first = name
		}
	}
	return first, first != ""
}

func bareModel(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "models/")
}
