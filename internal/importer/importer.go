// Package importer runs the parse pipeline: fetch a page, gate it through the
// classifiers, extract structured data, consult the model when needed and
// store the canonical recipe.
package importer

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipebox/internal/classify"
	"recipebox/internal/normalize"
	"recipebox/internal/platform/fetch"
	"recipebox/internal/platform/logger"
	"recipebox/internal/reconcile"
	"recipebox/internal/recipe"
	"recipebox/internal/structured"
)

// Fetcher downloads a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Cache remembers parsed recipes by source URL.
type Cache interface {
	Get(ctx context.Context, sourceURL string) (*recipe.Recipe, bool, error)
	Set(ctx context.Context, sourceURL string, r *recipe.Recipe) error
}

// Thumbnails stores a local copy of a recipe image.
type Thumbnails interface {
	Save(ctx context.Context, id, imageURL string) (string, error)
}

// Importer turns URLs and markup into stored canonical recipes.
type Importer struct {
	Fetcher    Fetcher
	Store      recipe.Store
	Reconciler *reconcile.Reconciler
	Tables     classify.Tables
	Headers    normalize.HeaderRules

	// Optional collaborators.
	Cache      Cache
	Thumbnails Thumbnails

	now   func() time.Time
	newID func() string
}

// New creates an Importer with the default heuristics.
func New(fetcher Fetcher, gen reconcile.Generator, store recipe.Store) *Importer {
	return &Importer{
		Fetcher:    fetcher,
		Store:      store,
		Reconciler: reconcile.New(gen),
		Tables:     classify.DefaultTables(),
		Headers:    normalize.DefaultHeaderRules(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SetHeuristics replaces the classifier and heading tables.
func (im *Importer) SetHeuristics(h Heuristics) {
	im.Tables = h.Classifier
	im.Headers = h.Headers
	im.Reconciler.Headers = h.Headers
}

// SetDefaultServings sets the serving count assumed when neither the page
// nor the model provides one.
func (im *Importer) SetDefaultServings(n int) {
	if n >= 1 {
		im.Reconciler.DefaultServings = n
	}
}

// Import fetches rawURL, parses it and stores the result.
func (im *Importer) Import(ctx context.Context, rawURL string) (*recipe.Record, error) {
	sourceURL, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	r, hit := im.cached(ctx, sourceURL)
	if !hit {
		page, err := im.Fetcher.Fetch(ctx, sourceURL)
		if err != nil {
			return nil, &Error{Kind: KindFetchFailed, Err: err}
		}
		pageURL := page.FinalURL
		if pageURL == "" {
			pageURL = sourceURL
		}
		r, err = im.Parse(ctx, pageURL, page.HTML, page.Status)
		if err != nil {
			return nil, err
		}
		if im.Cache != nil {
			if err := im.Cache.Set(ctx, sourceURL, r); err != nil {
				logger.Warn("Failed to cache recipe", zap.String("url", sourceURL), zap.Error(err))
			}
		}
	}

	rec := &recipe.Record{
		ID:        im.newID(),
		SourceURL: sourceURL,
		CreatedAt: im.now().UTC(),
		Recipe:    *r,
	}
	if im.Thumbnails != nil && r.ImageURL != nil {
		path, err := im.Thumbnails.Save(ctx, rec.ID, *r.ImageURL)
		if err != nil {
			logger.Warn("Failed to save thumbnail", zap.String("id", rec.ID), zap.Error(err))
		} else {
			rec.ThumbnailPath = path
		}
	}

	if err := im.Store.SaveRecipe(ctx, rec); err != nil {
		return nil, err
	}
	logger.Info("Recipe imported",
		zap.String("id", rec.ID),
		zap.String("url", sourceURL),
		zap.Bool("cache_hit", hit),
		zap.Int("ingredients", len(rec.Ingredients)),
	)
	return rec, nil
}

func (im *Importer) cached(ctx context.Context, sourceURL string) (*recipe.Recipe, bool) {
	if im.Cache == nil {
		return nil, false
	}
	r, ok, err := im.Cache.Get(ctx, sourceURL)
	if err != nil {
		logger.Warn("Recipe cache lookup failed", zap.String("url", sourceURL), zap.Error(err))
		return nil, false
	}
	return r, ok && r != nil
}

// Parse turns already-fetched markup into a canonical recipe. status is the
// page's HTTP status; 0 means unknown and is treated as success.
//
// Paywall statuses and phrases reject the page first, then pages that do not
// look like recipes. A usable structured candidate that needs no enrichment
// is returned without calling the model.
func (im *Importer) Parse(ctx context.Context, pageURL, markup string, status int) (*recipe.Recipe, error) {
	if im.Tables.PaywallStatus(status) {
		return nil, newError(KindPaywalled, "source answered with status %d", status)
	}
	if status != 0 && (status < 200 || status > 299) {
		return nil, newError(KindFetchFailed, "source answered with status %d", status)
	}
	if strings.TrimSpace(markup) == "" {
		return nil, newError(KindNotRecipe, "page is empty")
	}

	res, err := structured.New(im.Headers).Extract(markup, pageURL)
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Err: err}
	}
	if im.Tables.LooksPaywalled(markup, res.Text) {
		return nil, newError(KindPaywalled, "page content is behind a paywall")
	}
	if !im.Tables.LooksLikeRecipe(res.Text, res.Found) {
		return nil, newError(KindNotRecipe, "page does not look like a recipe")
	}

	if res.Recipe != nil && !res.NeedsEnrichment {
		logger.Debug("Using structured data only", zap.String("url", pageURL))
		return res.Recipe, nil
	}

	model, err := im.Reconciler.FromModel(ctx, pageURL, res.Text, res.Recipe)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &Error{Kind: KindGenerationFailed, Err: err}
	}

	merged := reconcile.Merge(res.Recipe, model, res.ImageURL)
	if len(merged.Ingredients) == 0 || len(merged.Instructions) == 0 {
		return nil, newError(KindGenerationFailed, "model returned no ingredients or instructions")
	}
	return merged, nil
}

// ValidateURL checks that rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", newError(KindInvalidInput, "url must be an absolute http or https address")
	}
	return u.String(), nil
}
