package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
)

func TestBorrowBook(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)
	borrowURL := fmt.Sprintf("/api/v1/books/%d/borrow", book.ID)

	t.Run("requires authentication", func(t *testing.T) {
		w := app.request(t, http.MethodPost, borrowURL, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("creates the loan", func(t *testing.T) {
		w := app.request(t, http.MethodPost, borrowURL, app.userToken, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var loan entities.Loan
		decodeJSON(t, w, &loan)
		assert.Equal(t, book.ID, loan.BookID)
		assert.Equal(t, app.userID, loan.UserID)
		assert.Equal(t, loan.BorrowedAt.AddDate(0, 0, 30), loan.DueAt)
	})

	t.Run("double borrow conflicts", func(t *testing.T) {
		w := app.request(t, http.MethodPost, borrowURL, app.userToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/books/999/borrow", app.userToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReturnLoan(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)

	loan, err := app.loans.Borrow(app.userID, book.ID, 30)
	require.NoError(t, err)
	returnURL := fmt.Sprintf("/api/v1/loans/%d/return", loan.ID)

	t.Run("another user may not return it", func(t *testing.T) {
		other, err := app.users.Create("carol", "carol@example.com", false)
		require.NoError(t, err)

		w := app.request(t, http.MethodPost, returnURL, other.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner returns it", func(t *testing.T) {
		w := app.request(t, http.MethodPost, returnURL, app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var returned entities.Loan
		decodeJSON(t, w, &returned)
		assert.NotNil(t, returned.ReturnedAt)
	})

	t.Run("second return conflicts", func(t *testing.T) {
		w := app.request(t, http.MethodPost, returnURL, app.userToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("admin can return anyone's loan", func(t *testing.T) {
		loan, err := app.loans.Borrow(app.userID, book.ID, 30)
		require.NoError(t, err)

		w := app.request(t, http.MethodPost, fmt.Sprintf("/api/v1/loans/%d/return", loan.ID), app.adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown loan", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/loans/999/return", app.userToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListLoans(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)

	loan, err := app.loans.Borrow(app.userID, book.ID, 30)
	require.NoError(t, err)
	_, err = app.loans.Return(loan.ID)
	require.NoError(t, err)
	_, err = app.loans.Borrow(app.userID, book.ID, 30)
	require.NoError(t, err)

	t.Run("all loans", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/loans", app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count int `json:"count"`
		}
		decodeJSON(t, w, &resp)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("active only", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/loans?active=true", app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count int `json:"count"`
		}
		decodeJSON(t, w, &resp)
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("loans are scoped to the caller", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/loans", app.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count int `json:"count"`
		}
		decodeJSON(t, w, &resp)
		assert.Equal(t, 0, resp.Count)
	})
}

func TestLoansExportCSV(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)

	_, err := app.loans.Borrow(app.userID, book.ID, 30)
	require.NoError(t, err)

	t.Run("admin only", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/loans/export.csv", app.userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("exports the ledger", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/loans/export.csv", app.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Body.String(), "id,user,book,borrowed_at,due_at,returned_at")
		assert.Contains(t, w.Body.String(), "alice")
		assert.Contains(t, w.Body.String(), "Dune")
	})
}
