package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/cache"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/documents"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/tasks"
)

// BooksController handles the catalog API: cached listings, lookups and
// admin mutations.
type BooksController struct {
	books      *books.Repository
	cache      *cache.QueryCache
	documents  *documents.Store
	audit      *audit.Service
	taskClient *tasks.Client
}

func NewBooksController(repo *books.Repository, queryCache *cache.QueryCache, docs *documents.Store, auditService *audit.Service, taskClient *tasks.Client) *BooksController {
	return &BooksController{
		books:      repo,
		cache:      queryCache,
		documents:  docs,
		audit:      auditService,
		taskClient: taskClient,
	}
}

// ListResponse is the serialized catalog listing page.
type ListResponse struct {
	Data     []entities.Book `json:"data"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PerPage  int             `json:"per_page"`
	LastPage int             `json:"last_page"`
}

// ListBooks serves the catalog listing through the query cache.
// GET /api/v1/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	params := books.ListParams{
		Search:  c.Query("q"),
		Genre:   c.Query("genre"),
		Sort:    c.Query("sort"),
		Page:    intQuery(c, "page"),
		PerPage: intQuery(c, "per_page"),
	}.Normalize()

	payload, err := bc.cache.GetOrCompute(params.Fingerprint(), func() ([]byte, error) {
		result, err := bc.books.List(params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(ListResponse{
			Data:     result.Books,
			Total:    result.Total,
			Page:     result.Page,
			PerPage:  result.PerPage,
			LastPage: result.LastPage,
		})
	})
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// SearchBooks finds books by title, author or ISBN. Unlike the listing this
// is uncached and unpaginated.
// GET /api/v1/books/search
func (bc *BooksController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	found, err := bc.books.Search(query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": found, "count": len(found)})
}

// GetBook returns a single book.
// GET /api/v1/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// bookRequest is the create/update payload.
type bookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Year        int    `json:"year"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	ISBN        string `json:"isbn"`
}

// CreateBook adds a book to the catalog and invalidates cached listings.
// POST /api/v1/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	book := &entities.Book{
		Title:       req.Title,
		Author:      req.Author,
		Year:        req.Year,
		Genre:       req.Genre,
		Description: req.Description,
		ISBN:        req.ISBN,
	}
	if err := bc.books.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	bc.cache.InvalidateAll()
	bc.audit.Record(auth.UserIDPtr(c), "book_create", "book", book.ID, map[string]any{"title": book.Title})

	// Fill in missing metadata in the background when an ISBN is known
	if book.ISBN != "" && bc.taskClient != nil {
		_, _ = bc.taskClient.Add(tasks.EnrichBookTask{BookID: book.ID}).Save()
	}

	respondCreated(c, book)
}

// UpdateBook edits a book and invalidates cached listings.
// PUT /api/v1/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Year = req.Year
	book.Genre = req.Genre
	book.Description = req.Description
	book.ISBN = req.ISBN

	if err := bc.books.Update(book); err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	bc.cache.InvalidateAll()
	bc.audit.Record(auth.UserIDPtr(c), "book_update", "book", book.ID, map[string]any{"title": book.Title})

	c.JSON(http.StatusOK, book)
}

// DeleteBook soft-deletes a book and invalidates cached listings. The
// uploaded document stays behind so a restore brings the book back whole.
// DELETE /api/v1/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	if err := bc.books.Delete(id); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	bc.cache.InvalidateAll()
	bc.audit.Record(auth.UserIDPtr(c), "book_delete", "book", id, map[string]any{"title": book.Title})

	respondSuccess(c, "book deleted")
}

// RestoreBook brings back a soft-deleted book.
// POST /api/v1/books/:id/restore
func (bc *BooksController) RestoreBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.Restore(id)
	if err != nil {
		if errors.Is(err, books.ErrNotDeleted) {
			respondConflict(c, "book is not deleted")
			return
		}
		respondInternalError(c, err, "restore book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	bc.cache.InvalidateAll()
	bc.audit.Record(auth.UserIDPtr(c), "book_restore", "book", id, map[string]any{"title": book.Title})

	c.JSON(http.StatusOK, book)
}

// UploadDocument attaches a PDF document to a book. Replacement order keeps
// concurrent readers working: save the new file, commit the handle, remove
// the old file.
// POST /api/v1/books/:id/document
func (bc *BooksController) UploadDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		respondBadRequest(c, "document file is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return
	}
	defer src.Close()

	handle, err := bc.documents.Save(src)
	if err != nil {
		respondInternalError(c, err, "save document")
		return
	}

	if err := bc.books.SetDocumentPath(id, handle); err != nil {
		// The commit failed, so the freshly written file is unreachable
		_ = bc.documents.Remove(handle)
		respondInternalError(c, err, "commit document")
		return
	}

	if book.DocumentPath != "" {
		_ = bc.documents.Remove(book.DocumentPath)
	}

	bc.cache.InvalidateAll()
	bc.audit.Record(auth.UserIDPtr(c), "book_document_upload", "book", id, map[string]any{
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
	})

	respondSuccess(c, "document uploaded")
}

// intQuery parses an integer query parameter, returning 0 when absent or
// malformed so normalization applies the default.
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
