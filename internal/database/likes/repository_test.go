package likes

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
)

func setupLikesRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return NewRepository(db.DB)
}

func TestRepository_Toggle(t *testing.T) {
	repo := setupLikesRepo(t)

	status, err := repo.Toggle(1, 1)
	require.NoError(t, err)
	assert.True(t, status.IsLiked)
	assert.Equal(t, int64(1), status.LikesCount)

	status, err = repo.Toggle(1, 1)
	require.NoError(t, err)
	assert.False(t, status.IsLiked)
	assert.Equal(t, int64(0), status.LikesCount)
}

func TestRepository_TogglesAreIndependentPerUser(t *testing.T) {
	repo := setupLikesRepo(t)

	_, err := repo.Toggle(1, 1)
	require.NoError(t, err)
	status, err := repo.Toggle(2, 1)
	require.NoError(t, err)

	assert.True(t, status.IsLiked)
	assert.Equal(t, int64(2), status.LikesCount)

	status, err = repo.Toggle(1, 1)
	require.NoError(t, err)
	assert.False(t, status.IsLiked)
	assert.Equal(t, int64(1), status.LikesCount)
}

func TestRepository_StatusFor(t *testing.T) {
	repo := setupLikesRepo(t)

	_, err := repo.Toggle(1, 1)
	require.NoError(t, err)

	t.Run("anonymous sees the count only", func(t *testing.T) {
		status, err := repo.StatusFor(0, 1)
		require.NoError(t, err)
		assert.False(t, status.IsLiked)
		assert.Equal(t, int64(1), status.LikesCount)
	})

	t.Run("another user sees the count only", func(t *testing.T) {
		status, err := repo.StatusFor(2, 1)
		require.NoError(t, err)
		assert.False(t, status.IsLiked)
		assert.Equal(t, int64(1), status.LikesCount)
	})

	t.Run("unliked book is empty", func(t *testing.T) {
		status, err := repo.StatusFor(1, 42)
		require.NoError(t, err)
		assert.False(t, status.IsLiked)
		assert.Equal(t, int64(0), status.LikesCount)
	})
}
