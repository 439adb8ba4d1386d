package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database/likes"
)

func TestToggleLike(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)
	likeURL := fmt.Sprintf("/api/v1/books/%d/like", book.ID)

	t.Run("requires authentication", func(t *testing.T) {
		w := app.request(t, http.MethodPost, likeURL, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("toggles on and off", func(t *testing.T) {
		w := app.request(t, http.MethodPost, likeURL, app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status likes.Status
		decodeJSON(t, w, &status)
		assert.True(t, status.IsLiked)
		assert.Equal(t, int64(1), status.LikesCount)

		w = app.request(t, http.MethodPost, likeURL, app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		decodeJSON(t, w, &status)
		assert.False(t, status.IsLiked)
		assert.Equal(t, int64(0), status.LikesCount)
	})

	t.Run("unknown book", func(t *testing.T) {
		w := app.request(t, http.MethodPost, "/api/v1/books/999/like", app.userToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLikeStatus(t *testing.T) {
	app := setupTestApp(t)
	book := seedReadableBook(t, app)
	statusURL := fmt.Sprintf("/api/v1/books/%d/likes", book.ID)

	w := app.request(t, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/like", book.ID), app.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("anonymous sees the count", func(t *testing.T) {
		w := app.request(t, http.MethodGet, statusURL, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status likes.Status
		decodeJSON(t, w, &status)
		assert.False(t, status.IsLiked)
		assert.Equal(t, int64(1), status.LikesCount)
	})

	t.Run("the liker sees their like", func(t *testing.T) {
		w := app.request(t, http.MethodGet, statusURL, app.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status likes.Status
		decodeJSON(t, w, &status)
		assert.True(t, status.IsLiked)
	})
}
