package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reader"
)

// ReaderController serves book content: previews, single pages and the
// full text for entitled readers.
type ReaderController struct {
	books *books.Repository
	pager *reader.Pager
}

func NewReaderController(repo *books.Repository, pager *reader.Pager) *ReaderController {
	return &ReaderController{books: repo, pager: pager}
}

// GetPreview serves the watermarked preview window. Available to everyone,
// identity or not.
// GET /api/v1/books/:id/preview
func (rc *ReaderController) GetPreview(c *gin.Context) {
	book, ok := rc.findBook(c)
	if !ok {
		return
	}

	preview, err := rc.pager.GetPreview(book, auth.Identity(c))
	if err != nil {
		respondInternalError(c, err, "build preview")
		return
	}

	c.JSON(http.StatusOK, preview)
}

// GetPage serves a single page of a book.
// GET /api/v1/books/:id/page?page=N
func (rc *ReaderController) GetPage(c *gin.Context) {
	book, ok := rc.findBook(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		respondBadRequest(c, "page query parameter must be an integer")
		return
	}

	content, err := rc.pager.GetPage(book, auth.Identity(c), page)
	if err != nil {
		rc.respondReaderError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// ReadBook serves the book's content in one response: all pages for full
// entitlement, the preview window otherwise. Anonymous requests are
// rejected.
// GET /api/v1/books/:id/read
func (rc *ReaderController) ReadBook(c *gin.Context) {
	book, ok := rc.findBook(c)
	if !ok {
		return
	}

	content, err := rc.pager.GetFullContent(book, auth.Identity(c))
	if err != nil {
		rc.respondReaderError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

func (rc *ReaderController) findBook(c *gin.Context) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	found, err := rc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return nil, false
	}
	if found == nil {
		respondNotFound(c, "book")
		return nil, false
	}
	return found, true
}

// respondReaderError maps the reading pipeline's error taxonomy to HTTP
// statuses.
func (rc *ReaderController) respondReaderError(c *gin.Context, err error) {
	var notFound *reader.PageNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":        "page not found",
			"current_page": notFound.Page,
			"total_pages":  notFound.TotalPages,
		})
		return
	}

	var limited *reader.PreviewLimitError
	if errors.As(err, &limited) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":                 "page is outside the preview window",
			"current_page":          limited.Page,
			"total_pages":           limited.TotalPages,
			"preview_limit":         limited.PreviewLimit,
			"subscription_required": true,
		})
		return
	}

	if errors.Is(err, reader.ErrIdentityRequired) {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	respondInternalError(c, err, "read book")
}
