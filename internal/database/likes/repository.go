// Package likes provides database operations for book likes.
package likes

import (
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Status is the like state of a book, optionally from one user's point of
// view.
type Status struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

// Repository handles all like database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Toggle flips the user's like of a book and returns the resulting status.
func (r *Repository) Toggle(userID, bookID uint) (*Status, error) {
	var like entities.Like
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&like).Error

	switch {
	case err == gorm.ErrRecordNotFound:
		like = entities.Like{UserID: userID, BookID: bookID}
		if err := r.db.Create(&like).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := r.db.Delete(&like).Error; err != nil {
			return nil, err
		}
	}

	return r.StatusFor(userID, bookID)
}

// StatusFor returns the book's like count and whether the user likes it.
// A zero userID (anonymous) reports IsLiked false.
func (r *Repository) StatusFor(userID, bookID uint) (*Status, error) {
	var count int64
	if err := r.db.Model(&entities.Like{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
		return nil, err
	}

	status := &Status{LikesCount: count}
	if userID != 0 {
		var liked int64
		if err := r.db.Model(&entities.Like{}).
			Where("user_id = ? AND book_id = ?", userID, bookID).
			Count(&liked).Error; err != nil {
			return nil, err
		}
		status.IsLiked = liked > 0
	}
	return status, nil
}
