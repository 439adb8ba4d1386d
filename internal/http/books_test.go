package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
)

func TestListBooks_ServesThroughCache(t *testing.T) {
	app := setupTestApp(t)

	// First listing caches the empty catalog
	w := app.request(t, http.MethodGet, "/api/v1/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing ListResponse
	decodeJSON(t, w, &listing)
	assert.Equal(t, int64(0), listing.Total)

	// A write that bypasses the API does not invalidate; the stale listing
	// keeps being served
	require.NoError(t, app.books.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert"}))

	w = app.request(t, http.MethodGet, "/api/v1/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &listing)
	assert.Equal(t, int64(0), listing.Total, "listing still cached")

	// A catalog mutation through the API invalidates, so the next listing
	// sees both books
	created := app.request(t, http.MethodPost, "/api/v1/books", app.adminToken, map[string]any{
		"title": "Hyperion", "author": "Dan Simmons",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	w = app.request(t, http.MethodGet, "/api/v1/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &listing)
	assert.Equal(t, int64(2), listing.Total)
}

func TestListBooks_FiltersAndPagination(t *testing.T) {
	app := setupTestApp(t)

	seed := []map[string]any{
		{"title": "Dune", "author": "Frank Herbert", "year": 1965, "genre": "Science Fiction"},
		{"title": "Hyperion", "author": "Dan Simmons", "year": 1989, "genre": "Science Fiction"},
		{"title": "The Hobbit", "author": "J.R.R. Tolkien", "year": 1937, "genre": "Fantasy"},
	}
	for _, book := range seed {
		w := app.request(t, http.MethodPost, "/api/v1/books", app.adminToken, book)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("genre filter", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books?genre=Fantasy", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var listing ListResponse
		decodeJSON(t, w, &listing)
		require.Len(t, listing.Data, 1)
		assert.Equal(t, "The Hobbit", listing.Data[0].Title)
	})

	t.Run("search with sort", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books?genre=Science+Fiction&sort=-year", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var listing ListResponse
		decodeJSON(t, w, &listing)
		require.Len(t, listing.Data, 2)
		assert.Equal(t, "Hyperion", listing.Data[0].Title)
	})

	t.Run("pagination metadata", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books?per_page=2&page=2", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var listing ListResponse
		decodeJSON(t, w, &listing)
		assert.Equal(t, int64(3), listing.Total)
		assert.Len(t, listing.Data, 1)
		assert.Equal(t, 2, listing.Page)
		assert.Equal(t, 2, listing.LastPage)
	})

	t.Run("malformed paging falls back to defaults", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books?page=banana", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var listing ListResponse
		decodeJSON(t, w, &listing)
		assert.Equal(t, 1, listing.Page)
	})
}

func TestSearchBooks(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(t, http.MethodPost, "/api/v1/books", app.adminToken, map[string]any{
		"title": "Dune", "author": "Frank Herbert", "isbn": "9780441013593",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("matches isbn", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books/search?q=9780441013593", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count int `json:"count"`
		}
		decodeJSON(t, w, &resp)
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("missing query", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books/search", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetBook(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(t, http.MethodPost, "/api/v1/books", app.adminToken, map[string]any{
		"title": "Dune", "author": "Frank Herbert",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var book entities.Book
	decodeJSON(t, w, &book)

	t.Run("found", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books/1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var found entities.Book
		decodeJSON(t, w, &found)
		assert.Equal(t, book.ID, found.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books/999", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books/banana", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateBook(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(t, http.MethodPost, "/api/v1/books", app.adminToken, map[string]any{
		"title": "Dune", "author": "Frank Herbert",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.request(t, http.MethodPut, "/api/v1/books/1", app.adminToken, map[string]any{
		"title": "Dune Messiah", "author": "Frank Herbert", "year": 1969,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated entities.Book
	decodeJSON(t, w, &updated)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, 1969, updated.Year)

	t.Run("invalid payload", func(t *testing.T) {
		w := app.request(t, http.MethodPut, "/api/v1/books/1", app.adminToken, map[string]any{
			"title": "No Author",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteAndRestoreBook(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(t, http.MethodPost, "/api/v1/books", app.adminToken, map[string]any{
		"title": "Dune", "author": "Frank Herbert",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("restore of a live book conflicts", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/books/1/restore", app.adminToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	w = app.request(t, http.MethodDelete, "/api/v1/books/1", app.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("deleted book is gone from reads", func(t *testing.T) {
		w := app.request(t, http.MethodGet, "/api/v1/books/1", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var listing ListResponse
		lw := app.request(t, http.MethodGet, "/api/v1/books", "", nil)
		require.Equal(t, http.StatusOK, lw.Code)
		decodeJSON(t, lw, &listing)
		assert.Equal(t, int64(0), listing.Total)
	})

	t.Run("restore brings it back", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/books/1/restore", app.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		gw := app.request(t, http.MethodGet, "/api/v1/books/1", "", nil)
		assert.Equal(t, http.StatusOK, gw.Code)
	})

	t.Run("deleting an unknown book 404s", func(t *testing.T) {
		w := app.request(t, http.MethodDelete, "/api/v1/books/999", app.adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksExportCSV(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(t, http.MethodPost, "/api/v1/books", app.adminToken, map[string]any{
		"title": "Dune", "author": "Frank Herbert", "year": 1965,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.request(t, http.MethodGet, "/api/v1/books/export.csv", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "id,title,author,year,genre,isbn,created_at")
	assert.Contains(t, w.Body.String(), "Dune")
}
