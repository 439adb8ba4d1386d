package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
)

// ExportController serves CSV exports of the catalog and loan ledger.
type ExportController struct {
	books *books.Repository
	loans *loans.Repository
}

func NewExportController(bookRepo *books.Repository, loanRepo *loans.Repository) *ExportController {
	return &ExportController{books: bookRepo, loans: loanRepo}
}

// ExportBooks streams the filtered catalog as CSV.
// GET /api/v1/books/export.csv
func (ec *ExportController) ExportBooks(c *gin.Context) {
	params := books.ExportParams{
		Search:   c.Query("q"),
		Genre:    c.Query("genre"),
		YearFrom: intQuery(c, "year_from"),
		YearTo:   intQuery(c, "year_to"),
	}

	found, err := ec.books.Export(params)
	if err != nil {
		respondInternalError(c, err, "export books")
		return
	}

	setCSVHeaders(c, "books")

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "title", "author", "year", "genre", "isbn", "created_at"})
	for _, book := range found {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(book.ID), 10),
			book.Title,
			book.Author,
			strconv.Itoa(book.Year),
			book.Genre,
			book.ISBN,
			book.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

// ExportLoans streams the loan ledger as CSV. Admin only.
// GET /api/v1/loans/export.csv
func (ec *ExportController) ExportLoans(c *gin.Context) {
	onlyActive := c.Query("active") == "true"

	found, err := ec.loans.Export(onlyActive)
	if err != nil {
		respondInternalError(c, err, "export loans")
		return
	}

	setCSVHeaders(c, "loans")

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "user", "book", "borrowed_at", "due_at", "returned_at"})
	for _, loan := range found {
		returnedAt := ""
		if loan.ReturnedAt != nil {
			returnedAt = loan.ReturnedAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{
			strconv.FormatUint(uint64(loan.ID), 10),
			loan.User.Username,
			loan.Book.Title,
			loan.BorrowedAt.Format(time.RFC3339),
			loan.DueAt.Format(time.RFC3339),
			returnedAt,
		})
	}
	w.Flush()
}

func setCSVHeaders(c *gin.Context, name string) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
}
