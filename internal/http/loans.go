package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
)

// LoansController handles borrowing and returning books.
type LoansController struct {
	loans      *loans.Repository
	books      *books.Repository
	audit      *audit.Service
	periodDays int
}

func NewLoansController(loanRepo *loans.Repository, bookRepo *books.Repository, auditService *audit.Service, periodDays int) *LoansController {
	if periodDays < 1 {
		periodDays = 30
	}
	return &LoansController{
		loans:      loanRepo,
		books:      bookRepo,
		audit:      auditService,
		periodDays: periodDays,
	}
}

// BorrowBook creates a loan of the book for the current user. Holding a
// loan grants full reading access until the book is returned.
// POST /api/v1/books/:id/borrow
func (lc *LoansController) BorrowBook(c *gin.Context) {
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

	loan, err := lc.loans.Borrow(user.ID, id, lc.periodDays)
	if err != nil {
		if errors.Is(err, loans.ErrAlreadyBorrowed) {
			respondConflict(c, "book already borrowed")
			return
		}
		respondInternalError(c, err, "borrow book")
		return
	}

	lc.audit.Record(auth.UserIDPtr(c), "loan_borrow", "loan", loan.ID, map[string]any{
		"book_id": id,
		"due_at":  loan.DueAt,
	})

	respondCreated(c, loan)
}

// ReturnLoan marks a loan as returned. Users can only return their own
// loans; admins can return any.
// POST /api/v1/loans/:id/return
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := lc.loans.Find(id)
	if err != nil {
		respondInternalError(c, err, "get loan")
		return
	}
	if loan == nil {
		respondNotFound(c, "loan")
		return
	}
	if loan.UserID != user.ID && !user.IsAdmin {
		respondError(c, http.StatusForbidden, "not your loan")
		return
	}

	returned, err := lc.loans.Return(id)
	if err != nil {
		if errors.Is(err, loans.ErrAlreadyReturned) {
			respondConflict(c, "loan already returned")
			return
		}
		respondInternalError(c, err, "return loan")
		return
	}

	lc.audit.Record(auth.UserIDPtr(c), "loan_return", "loan", id, map[string]any{
		"book_id": loan.BookID,
	})

	c.JSON(http.StatusOK, returned)
}

// ListLoans returns the current user's loans, newest first.
// GET /api/v1/loans?active=true&overdue=true
func (lc *LoansController) ListLoans(c *gin.Context) {
	user := auth.CurrentUser(c)

	params := loans.ListParams{
		UserID:     user.ID,
		OnlyActive: c.Query("active") == "true",
		Overdue:    c.Query("overdue") == "true",
	}

	found, err := lc.loans.List(params)
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": found, "count": len(found)})
}
