package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/covers"
	"github.com/openshelf/openshelf/internal/database/books"
)

// CoversController handles book cover requests.
type CoversController struct {
	cache *covers.Cache
	books *books.Repository
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache *covers.Cache, repo *books.Repository) *CoversController {
	return &CoversController{cache: cache, books: repo}
}

// GetCover serves a cached book cover image.
// GET /api/v1/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil || book.CoverPath == "" {
		c.Status(http.StatusNotFound)
		return
	}

	// Get cached cover (fetches if not cached)
	cachePath, err := cc.cache.GetCover(id, book.CoverPath)
	if err != nil || cachePath == "" {
		// Fallback: redirect to the original URL
		c.Redirect(http.StatusTemporaryRedirect, book.CoverPath)
		return
	}

	c.File(cachePath)
}
