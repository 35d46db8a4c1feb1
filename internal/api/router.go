package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

const maxBodySize = 10 << 20

var defaultOrigins = []string{"http://localhost:8081"}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// ImagesDir is served under /images when set.
	ImagesDir string
}

// NewRouter wires the middleware and routes for h.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := gin.New()

	r.Use(Recovery())
	r.Use(requestid.New())
	r.Use(Logger())

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(BodySizeLimit(maxBodySize))

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/recipes/import", h.ImportRecipe)
		v1.POST("/recipes/parse", h.ParseRecipe)
		v1.GET("/recipes", h.ListRecipes)
		v1.GET("/recipes/:id", h.GetRecipe)
		v1.DELETE("/recipes/:id", h.DeleteRecipe)
		v1.GET("/recipes/:id/ingredients", h.GetIngredients)
		v1.POST("/shopping-list", h.ShoppingList)
	}

	if opts.ImagesDir != "" {
		r.Static("/images", opts.ImagesDir)
	}
	return r
}
