package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipebox/internal/platform/logger"
	"recipebox/internal/recipe"
	"recipebox/internal/scale"
	"recipebox/internal/shopping"
)

const (
	defaultImportTimeout = 45 * time.Second
	storeTimeout         = 5 * time.Second
	maxShoppingRecipes   = 50
)

// Importer defines the parse pipeline used by the handlers.
type Importer interface {
	Import(ctx context.Context, rawURL string) (*recipe.Record, error)
	Parse(ctx context.Context, pageURL, markup string, status int) (*recipe.Recipe, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Importer      Importer
	RecipeStore   recipe.Store
	Shopping      *shopping.Merger
	Generator     shopping.Generator
	ImportTimeout time.Duration
	Version       string
}

// NewHandler creates a new Handler. gen may be nil, which disables
// shopping-list consolidation.
func NewHandler(importer Importer, store recipe.Store, merger *shopping.Merger, gen shopping.Generator) *Handler {
	if merger == nil {
		merger = shopping.New(nil)
	}
	return &Handler{
		Importer:      importer,
		RecipeStore:   store,
		Shopping:      merger,
		Generator:     gen,
		ImportTimeout: defaultImportTimeout,
	}
}

type importRequest struct {
	URL string `json:"url" binding:"required"`
}

type parseRequest struct {
	URL    string `json:"url"`
	HTML   string `json:"html" binding:"required"`
	Status int    `json:"status"`
}

type shoppingRequest struct {
	RecipeIDs   []string        `json:"recipe_ids"`
	Recipes     []recipe.Recipe `json:"recipes"`
	Consolidate bool            `json:"consolidate"`
}

// ImportRecipe fetches a page by URL, parses it and stores the recipe.
func (h *Handler) ImportRecipe(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "url is required")
		return
	}

	// Create a context with a timeout for the fetch and model calls
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.ImportTimeout)
	defer cancel()

	rec, err := h.Importer.Import(ctx, req.URL)
	if err != nil {
		logger.Warn("Import failed", zap.String("url", req.URL), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ParseRecipe parses markup the caller already fetched. Nothing is stored.
func (h *Handler) ParseRecipe(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "html is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.ImportTimeout)
	defer cancel()

	r, err := h.Importer.Parse(ctx, req.URL, req.HTML, req.Status)
	if err != nil {
		logger.Warn("Parse failed", zap.String("url", req.URL), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListRecipes returns stored recipes, newest first.
func (h *Handler) ListRecipes(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, codeInvalidRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	records, err := h.RecipeStore.ListRecipes(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetRecipe returns a single stored recipe.
func (h *Handler) GetRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	rec, err := h.RecipeStore.GetRecipe(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteRecipe removes a stored recipe.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.RecipeStore.DeleteRecipe(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetIngredients returns a recipe's ingredients scaled to ?servings= and
// shown in metric units when ?metric=true.
func (h *Handler) GetIngredients(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	rec, err := h.RecipeStore.GetRecipe(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	servings := rec.OriginalServings
	if s := c.Query("servings"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(c, http.StatusBadRequest, codeInvalidRequest, "servings must be a positive integer")
			return
		}
		servings = n
	}
	metric := false
	if s := c.Query("metric"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidRequest, "metric must be true or false")
			return
		}
		metric = b
	}

	c.JSON(http.StatusOK, scale.Compute(&rec.Recipe, servings, metric))
}

// ShoppingList merges the ingredients of stored and inline recipes.
func (h *Handler) ShoppingList(c *gin.Context) {
	var req shoppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}
	total := len(req.RecipeIDs) + len(req.Recipes)
	if total == 0 {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "recipe_ids or recipes is required")
		return
	}
	if total > maxShoppingRecipes {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "too many recipes")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.ImportTimeout)
	defer cancel()

	stored, err := h.loadRecipes(ctx, req.RecipeIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	recipes := make([]*recipe.Recipe, 0, total)
	recipes = append(recipes, stored...)
	for i := range req.Recipes {
		recipes = append(recipes, &req.Recipes[i])
	}

	items := h.Shopping.Merge(recipes)
	if req.Consolidate && h.Generator != nil {
		// Consolidate hands back the deterministic list on failure.
		var cerr error
		items, cerr = h.Shopping.Consolidate(ctx, h.Generator, items)
		if cerr != nil {
			logger.Warn("Shopping list consolidation failed", zap.Error(cerr))
		}
	}
	c.JSON(http.StatusOK, items)
}

// loadRecipes fetches recipes by id concurrently, keeping the request order.
func (h *Handler) loadRecipes(ctx context.Context, ids []string) ([]*recipe.Recipe, error) {
	out := make([]*recipe.Recipe, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rec, err := h.RecipeStore.GetRecipe(gctx, id)
			if err != nil {
				return err
			}
			out[i] = &rec.Recipe
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.Version,
		"timestamp": time.Now().UTC(),
	})
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
