package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/metadata"
	"github.com/openshelf/openshelf/internal/tasks"
)

// MetadataController triggers book metadata enrichment from OpenLibrary.
// Enrichment runs on the task queue when available, synchronously otherwise.
type MetadataController struct {
	enricher   *metadata.Enricher
	books      *books.Repository
	taskClient *tasks.Client
}

func NewMetadataController(enricher *metadata.Enricher, bookRepo *books.Repository, taskClient *tasks.Client) *MetadataController {
	return &MetadataController{
		enricher:   enricher,
		books:      bookRepo,
		taskClient: taskClient,
	}
}

// EnrichBook enriches a book using its stored ISBN.
// POST /api/v1/books/:id/enrich
func (mc *MetadataController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := mc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}
	if book.ISBN == "" {
		respondBadRequest(c, "book has no ISBN; use fetch-by-isbn instead")
		return
	}

	if mc.taskClient != nil {
		if _, err := mc.taskClient.Add(tasks.EnrichBookTask{BookID: id}).Save(); err != nil {
			respondInternalError(c, err, "queue enrichment task")
			return
		}
		respondAccepted(c, "enrichment queued", gin.H{"book_id": id})
		return
	}

	result, err := mc.enricher.EnrichBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusBadGateway, "metadata lookup failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

type fetchByISBNRequest struct {
	ISBN string `json:"isbn" binding:"required"`
}

// FetchByISBN enriches a book using an explicitly provided ISBN, storing
// the ISBN on the book when the lookup succeeds.
// POST /api/v1/books/:id/fetch-by-isbn
func (mc *MetadataController) FetchByISBN(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := mc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	var req fetchByISBNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "isbn is required")
		return
	}

	isbn := metadata.NormalizeISBN(req.ISBN)
	if isbn == "" {
		respondBadRequest(c, "isbn must be 10 or 13 digits")
		return
	}

	if mc.taskClient != nil {
		if _, err := mc.taskClient.Add(tasks.EnrichBookTask{BookID: id, ISBN: isbn}).Save(); err != nil {
			respondInternalError(c, err, "queue enrichment task")
			return
		}
		respondAccepted(c, "enrichment queued", gin.H{"book_id": id, "isbn": isbn})
		return
	}

	result, err := mc.enricher.EnrichBookWithISBN(c.Request.Context(), id, isbn)
	if err != nil {
		respondError(c, http.StatusBadGateway, "metadata lookup failed")
		return
	}
	c.JSON(http.StatusOK, result)
}
