package books

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupBooksRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return NewRepository(db.DB)
}

func seedCatalog(t *testing.T, repo *Repository) {
	t.Helper()

	books := []entities.Book{
		{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: "Science Fiction"},
		{Title: "Hyperion", Author: "Dan Simmons", Year: 1989, Genre: "Science Fiction"},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Year: 1937, Genre: "Fantasy"},
		{Title: "Dune Messiah", Author: "Frank Herbert", Year: 1969, Genre: "Science Fiction"},
	}
	for i := range books {
		require.NoError(t, repo.Create(&books[i]))
	}
}

func TestListParams_Normalize(t *testing.T) {
	params := ListParams{Search: "  dune ", Sort: "title", Page: 0, PerPage: 500}.Normalize()

	assert.Equal(t, "dune", params.Search)
	assert.Equal(t, "", params.Sort, "default sort collapses to empty")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, maxPerPage, params.PerPage)
}

func TestListParams_Fingerprint(t *testing.T) {
	t.Run("defaults collapse to absent keys", func(t *testing.T) {
		fp := ListParams{Page: 1, PerPage: defaultPerPage, Sort: "title"}.Fingerprint()
		assert.Empty(t, fp["page"])
		assert.Empty(t, fp["per_page"])
		assert.Empty(t, fp["sort"])
	})

	t.Run("explicit defaults equal omitted defaults", func(t *testing.T) {
		a := ListParams{Search: "dune"}.Fingerprint()
		b := ListParams{Search: "dune", Page: 1, PerPage: defaultPerPage}.Fingerprint()
		assert.Equal(t, a, b)
	})

	t.Run("non defaults survive", func(t *testing.T) {
		fp := ListParams{Page: 3, PerPage: 5, Genre: "Fantasy"}.Fingerprint()
		assert.Equal(t, "3", fp["page"])
		assert.Equal(t, "5", fp["per_page"])
		assert.Equal(t, "Fantasy", fp["genre"])
	})
}

func TestRepository_List(t *testing.T) {
	repo := setupBooksRepo(t)
	seedCatalog(t, repo)

	t.Run("lists everything sorted by title", func(t *testing.T) {
		result, err := repo.List(ListParams{})
		require.NoError(t, err)

		assert.Equal(t, int64(4), result.Total)
		require.Len(t, result.Books, 4)
		assert.Equal(t, "Dune", result.Books[0].Title)
		assert.Equal(t, "The Hobbit", result.Books[3].Title)
	})

	t.Run("search matches title or author", func(t *testing.T) {
		result, err := repo.List(ListParams{Search: "dune"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)

		result, err = repo.List(ListParams{Search: "tolkien"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
	})

	t.Run("genre filter is exact", func(t *testing.T) {
		result, err := repo.List(ListParams{Genre: "Fantasy"})
		require.NoError(t, err)
		require.Len(t, result.Books, 1)
		assert.Equal(t, "The Hobbit", result.Books[0].Title)
	})

	t.Run("descending sort", func(t *testing.T) {
		result, err := repo.List(ListParams{Sort: "-year"})
		require.NoError(t, err)
		require.Len(t, result.Books, 4)
		assert.Equal(t, 1989, result.Books[0].Year)
		assert.Equal(t, 1937, result.Books[3].Year)
	})

	t.Run("unknown sort fields are ignored", func(t *testing.T) {
		result, err := repo.List(ListParams{Sort: "password;drop table books"})
		require.NoError(t, err)
		assert.Equal(t, "Dune", result.Books[0].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := repo.List(ListParams{Page: 2, PerPage: 3})
		require.NoError(t, err)

		assert.Equal(t, int64(4), result.Total)
		assert.Len(t, result.Books, 1)
		assert.Equal(t, 2, result.Page)
		assert.Equal(t, 2, result.LastPage)
	})
}

func TestRepository_Search(t *testing.T) {
	repo := setupBooksRepo(t)
	seedCatalog(t, repo)

	books, err := repo.Search("herbert")
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestRepository_SoftDeleteAndRestore(t *testing.T) {
	repo := setupBooksRepo(t)

	book := &entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, repo.Create(book))

	require.NoError(t, repo.Delete(book.ID))

	t.Run("deleted book is hidden from Find and List", func(t *testing.T) {
		found, err := repo.Find(book.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		result, err := repo.List(ListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Total)
	})

	t.Run("FindWithDeleted still sees it", func(t *testing.T) {
		found, err := repo.FindWithDeleted(book.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.DeletedAt.Valid)
	})

	t.Run("restore brings it back", func(t *testing.T) {
		restored, err := repo.Restore(book.ID)
		require.NoError(t, err)
		require.NotNil(t, restored)

		found, err := repo.Find(book.ID)
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("restoring a live book fails", func(t *testing.T) {
		_, err := repo.Restore(book.ID)
		assert.ErrorIs(t, err, ErrNotDeleted)
	})

	t.Run("restoring an unknown book returns nil", func(t *testing.T) {
		restored, err := repo.Restore(99999)
		require.NoError(t, err)
		assert.Nil(t, restored)
	})
}

func TestRepository_UpdateMetadata(t *testing.T) {
	repo := setupBooksRepo(t)

	book := &entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, repo.Create(book))

	require.NoError(t, repo.UpdateMetadata(book.ID, map[string]any{
		"year":        1965,
		"description": "Spice and sand.",
	}))

	found, err := repo.Find(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1965, found.Year)
	assert.Equal(t, "Spice and sand.", found.Description)

	// No-op update is fine
	require.NoError(t, repo.UpdateMetadata(book.ID, nil))
}

func TestRepository_SetDocumentPath(t *testing.T) {
	repo := setupBooksRepo(t)

	book := &entities.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, repo.Create(book))

	require.NoError(t, repo.SetDocumentPath(book.ID, "doc_abc.pdf"))

	found, err := repo.Find(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "doc_abc.pdf", found.DocumentPath)
}

func TestRepository_Export(t *testing.T) {
	repo := setupBooksRepo(t)
	seedCatalog(t, repo)

	t.Run("year range", func(t *testing.T) {
		books, err := repo.Export(ExportParams{YearFrom: 1960, YearTo: 1970})
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("genre and search combine", func(t *testing.T) {
		books, err := repo.Export(ExportParams{Search: "dune", Genre: "Science Fiction"})
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})
}
