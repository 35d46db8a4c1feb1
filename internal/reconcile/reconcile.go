// Package reconcile turns model output into recipes and merges it with
// structured page data.
package reconcile

import (
	"context"
	"fmt"

	"recipebox/internal/normalize"
	"recipebox/internal/recipe"
)

// Reconciler asks a Generator for a recipe and normalizes the answer.
type Reconciler struct {
	Generator       Generator
	Headers         normalize.HeaderRules
	DefaultServings int
}

// New creates a Reconciler using the default header rules.
func New(gen Generator) *Reconciler {
	return &Reconciler{Generator: gen, Headers: normalize.DefaultHeaderRules(), DefaultServings: 1}
}

// FromModel prompts the model with the page text and the structured hint and
// returns its normalized recipe. Malformed output is reported with
// ErrMalformedOutput.
func (r *Reconciler) FromModel(ctx context.Context, pageURL, text string, hint *recipe.Recipe) (*recipe.Recipe, error) {
	system, user := BuildPrompt(pageURL, text, hint)
	out, err := r.Generator.Generate(ctx, system, user)
	if err != nil {
		return nil, err
	}
	servings := r.DefaultServings
	if hint != nil && hint.OriginalServings > 0 {
		servings = hint.OriginalServings
	}
	parsed, err := ParseModelOutput(out, servings, r.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return parsed, nil
}
