package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/likes"
)

// LikesController handles per-book likes.
type LikesController struct {
	likes *likes.Repository
	books *books.Repository
	audit *audit.Service
}

func NewLikesController(likeRepo *likes.Repository, bookRepo *books.Repository, auditService *audit.Service) *LikesController {
	return &LikesController{likes: likeRepo, books: bookRepo, audit: auditService}
}

// ToggleLike flips the current user's like of a book.
// POST /api/v1/books/:id/like
func (lc *LikesController) ToggleLike(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := lc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	status, err := lc.likes.Toggle(user.ID, id)
	if err != nil {
		respondInternalError(c, err, "toggle like")
		return
	}

	lc.audit.Record(auth.UserIDPtr(c), "book_like_toggle", "book", id, map[string]any{
		"is_liked": status.IsLiked,
	})

	c.JSON(http.StatusOK, status)
}

// LikeStatus reports the book's like count and, for authenticated callers,
// whether they like it.
// GET /api/v1/books/:id/likes
func (lc *LikesController) LikeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := lc.books.Find(id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	var userID uint
	if user := auth.CurrentUser(c); user != nil {
		userID = user.ID
	}

	status, err := lc.likes.StatusFor(userID, id)
	if err != nil {
		respondInternalError(c, err, "get like status")
		return
	}

	c.JSON(http.StatusOK, status)
}
