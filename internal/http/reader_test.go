package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reader"
)

func seedReadableBook(t *testing.T, app *testApp) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", Year: 1965}
	require.NoError(t, app.books.Create(book))
	return book
}

func TestGetPreviewEndpoint(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)

	t.Run("anonymous preview is watermarked", func(t *testing.T) {
		w := app.request(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d/preview", book.ID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var preview reader.Preview
		decodeJSON(t, w, &preview)

		assert.Equal(t, 3, preview.PreviewLimit)
		assert.Equal(t, 50, preview.TotalPages)
		require.Len(t, preview.Pages, 3)
		for _, page := range preview.Pages {
			assert.True(t, page.IsPreview)
			assert.Contains(t, page.Text, reader.DefaultPreviewBanner)
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books/999/preview", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetPageEndpoint(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)
	pageURL := func(page string) string {
		return fmt.Sprintf("/api/v1/books/%d/page?page=%s", book.ID, page)
	}

	t.Run("page within the preview window", func(t *testing.T) {
		w := app.request(t, http.MethodGet, pageURL("2"), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var content reader.PageContent
		decodeJSON(t, w, &content)
		assert.Equal(t, 2, content.Page)
		assert.True(t, content.IsPreview)
	})

	t.Run("page beyond the preview window", func(t *testing.T) {
		w := app.request(t, http.MethodGet, pageURL("4"), app.userToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]any
		decodeJSON(t, w, &resp)
		assert.Equal(t, true, resp["subscription_required"])
		assert.Equal(t, float64(3), resp["preview_limit"])
		assert.Equal(t, float64(50), resp["total_pages"])
		assert.NotContains(t, w.Body.String(), "Page 4 of 50")
	})

	t.Run("page out of range", func(t *testing.T) {
		w := app.request(t, http.MethodGet, pageURL("51"), app.userToken, nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp map[string]any
		decodeJSON(t, w, &resp)
		assert.Equal(t, float64(50), resp["total_pages"])
	})

	t.Run("malformed page parameter", func(t *testing.T) {
		w := app.request(t, http.MethodGet, pageURL("banana"), "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = app.request(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d/page", book.ID), "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("subscriber reads deep pages clean", func(t *testing.T) {
		sw := app.request(t, http.MethodPost, "/api/v1/subscriptions", app.userToken, nil)
		require.Equal(t, http.StatusCreated, sw.Code)

		w := app.request(t, http.MethodGet, pageURL("42"), app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var content reader.PageContent
		decodeJSON(t, w, &content)
		assert.False(t, content.IsPreview)
		assert.Empty(t, content.Watermark)
	})
}

func TestReadBookEndpoint(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)
	readURL := fmt.Sprintf("/api/v1/books/%d/read", book.ID)

	t.Run("anonymous is rejected", func(t *testing.T) {
		w := app.request(t, http.MethodGet, readURL, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("member without entitlement gets the preview window", func(t *testing.T) {
		w := app.request(t, http.MethodGet, readURL, app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var content reader.PageContent
		decodeJSON(t, w, &content)
		assert.True(t, content.IsPreview)
		assert.Contains(t, content.Text, "=== PAGE 3 ===")
		assert.NotContains(t, content.Text, "=== PAGE 4 ===")
	})

	t.Run("borrower gets the whole book", func(t *testing.T) {
		bw := app.request(t, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/borrow", book.ID), app.userToken, nil)
		require.Equal(t, http.StatusCreated, bw.Code)

		w := app.request(t, http.MethodGet, readURL, app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var content reader.PageContent
		decodeJSON(t, w, &content)
		assert.False(t, content.IsPreview)
		assert.Contains(t, content.Text, "=== PAGE 50 ===")
	})
}
