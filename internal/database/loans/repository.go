// Package loans provides database operations for book loans.
package loans

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// ErrAlreadyReturned is reported when returning a loan twice.
var ErrAlreadyReturned = fmt.Errorf("loan already returned")

// ErrAlreadyBorrowed is reported when a user borrows a book they already
// hold an active loan for.
var ErrAlreadyBorrowed = fmt.Errorf("book already borrowed")

// ListParams filter a user-facing loan listing.
type ListParams struct {
	UserID     uint
	OnlyActive bool
	Overdue    bool
}

// Repository handles all loan database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// ActiveLoan retrieves the user's unreturned loan of a book, or nil.
func (r *Repository) ActiveLoan(userID, bookID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.
		Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
		First(&loan).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Borrow creates a loan of the book for the user, due after periodDays.
func (r *Repository) Borrow(userID, bookID uint, periodDays int) (*entities.Loan, error) {
	existing, err := r.ActiveLoan(userID, bookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyBorrowed
	}

	now := r.now()
	loan := &entities.Loan{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, periodDays),
	}
	if err := r.db.Create(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

// Return marks a loan as returned. Returning twice is an error.
func (r *Repository) Return(loanID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.First(&loan, loanID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if loan.ReturnedAt != nil {
		return nil, ErrAlreadyReturned
	}

	now := r.now()
	if err := r.db.Model(&loan).Update("returned_at", now).Error; err != nil {
		return nil, err
	}
	loan.ReturnedAt = &now
	return &loan, nil
}

// Find retrieves a loan by ID, or nil.
func (r *Repository) Find(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Preload("Book").First(&loan, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List retrieves loans for a user, newest first.
func (r *Repository) List(params ListParams) ([]entities.Loan, error) {
	query := r.db.Preload("Book").Where("user_id = ?", params.UserID)
	if params.OnlyActive {
		query = query.Where("returned_at IS NULL")
	}
	if params.Overdue {
		query = query.Where("returned_at IS NULL AND due_at < ?", r.now())
	}

	var loans []entities.Loan
	err := query.Order("borrowed_at DESC").Find(&loans).Error
	return loans, err
}

// Export retrieves all loans with book and user preloaded, newest first, for
// CSV export.
func (r *Repository) Export(onlyActive bool) ([]entities.Loan, error) {
	query := r.db.Preload("Book").Preload("User")
	if onlyActive {
		query = query.Where("returned_at IS NULL")
	}

	var loans []entities.Loan
	err := query.Order("borrowed_at DESC").Find(&loans).Error
	return loans, err
}
