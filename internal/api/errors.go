package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipebox/internal/importer"
	"recipebox/internal/recipe"
)

// Stable error codes returned in the "code" field.
const (
	codeNotRecipe        = "NOT_A_RECIPE"
	codePaywalled        = "PAYWALLED"
	codeFetchFailed      = "FETCH_FAILED"
	codeGenerationFailed = "GENERATION_FAILED"
	codeInvalidRequest   = "INVALID_REQUEST"
	codeNotFound         = "NOT_FOUND"
	codeTimeout          = "REQUEST_TIMEOUT"
	codeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// kindStatus gives each import failure kind its status, code and a fixed
// message. Wrapped causes carry upstream URLs and client errors, so they are
// logged but never sent.
var kindStatus = map[importer.Kind]struct {
	status  int
	code    string
	message string
}{
	importer.KindNotRecipe:        {http.StatusUnprocessableEntity, codeNotRecipe, "page does not look like a recipe"},
	importer.KindPaywalled:        {http.StatusPaymentRequired, codePaywalled, "page is behind a paywall"},
	importer.KindFetchFailed:      {http.StatusBadGateway, codeFetchFailed, "could not retrieve the page"},
	importer.KindGenerationFailed: {http.StatusBadGateway, codeGenerationFailed, "could not build a recipe from the page"},
	importer.KindInvalidInput:     {http.StatusBadRequest, codeInvalidRequest, "invalid request"},
}

// respondError maps err to a status and code. The error itself is recorded
// on the context for the request log only.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	if m, ok := kindStatus[importer.KindOf(err)]; ok {
		writeError(c, m.status, m.code, m.message)
		return
	}
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		writeError(c, http.StatusNotFound, codeNotFound, "recipe not found")
	case isTimeout(err):
		writeError(c, http.StatusGatewayTimeout, codeTimeout, "request timed out")
	default:
		writeError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}
