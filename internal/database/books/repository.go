// Package books provides database operations for the catalog.
//
// Listing queries run through the catalog query cache at the HTTP layer;
// this package only executes them. Mutations here do not invalidate the
// cache; the caller owns that, so invalidation stays visible at the call
// site of every mutating operation.
package books

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

const (
	defaultPerPage = 15
	maxPerPage     = 50
	defaultSort    = "title"
)

// ErrNotDeleted is reported when restoring a book that is not soft-deleted.
var ErrNotDeleted = fmt.Errorf("book is not deleted")

// sortableFields is the allowlist for listing sort keys. Unknown sort
// fields are silently ignored, matching lenient query-parameter handling.
var sortableFields = map[string]bool{
	"title":      true,
	"author":     true,
	"year":       true,
	"genre":      true,
	"created_at": true,
}

// ListParams are the catalog listing filters after normalization.
type ListParams struct {
	Search  string // matches title or author, substring
	Genre   string // exact match
	Sort    string // comma-separated fields, "-" prefix for descending
	Page    int
	PerPage int
}

// Normalize clamps paging values and applies defaults so that logically
// identical queries are identical values (and identical cache fingerprints).
func (p ListParams) Normalize() ListParams {
	p.Search = strings.TrimSpace(p.Search)
	p.Genre = strings.TrimSpace(p.Genre)
	p.Sort = strings.TrimSpace(p.Sort)
	if p.Sort == defaultSort {
		p.Sort = ""
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// Fingerprint returns the canonical key/value form of the params, used for
// cache fingerprinting. Defaults collapse to absent keys.
func (p ListParams) Fingerprint() map[string]string {
	p = p.Normalize()
	m := map[string]string{
		"q":     p.Search,
		"genre": p.Genre,
		"sort":  p.Sort,
	}
	if p.Page > 1 {
		m["page"] = strconv.Itoa(p.Page)
	}
	if p.PerPage != defaultPerPage {
		m["per_page"] = strconv.Itoa(p.PerPage)
	}
	return m
}

// ListResult is one page of the catalog listing.
type ListResult struct {
	Books    []entities.Book
	Total    int64
	Page     int
	PerPage  int
	LastPage int
}

// ExportParams filter the full catalog export.
type ExportParams struct {
	Search   string
	Genre    string
	YearFrom int
	YearTo   int
}

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find retrieves a live (not soft-deleted) book by ID.
func (r *Repository) Find(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindWithDeleted retrieves a book by ID including soft-deleted ones.
func (r *Repository) FindWithDeleted(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Unscoped().First(&book, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List executes a catalog listing query.
func (r *Repository) List(params ListParams) (*ListResult, error) {
	params = params.Normalize()

	query := r.db.Model(&entities.Book{})
	query = applyFilters(query, params.Search, params.Genre)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	query = applySort(query, params.Sort)

	var books []entities.Book
	offset := (params.Page - 1) * params.PerPage
	if err := query.Limit(params.PerPage).Offset(offset).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	lastPage := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return &ListResult{
		Books:    books,
		Total:    total,
		Page:     params.Page,
		PerPage:  params.PerPage,
		LastPage: lastPage,
	}, nil
}

// Search finds books matching the query in title, author or ISBN, sorted by
// title. Unlike List it is uncached and unpaginated.
func (r *Repository) Search(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.
		Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", pattern, pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// Export retrieves all books matching the filters, sorted by title, for CSV
// export.
func (r *Repository) Export(params ExportParams) ([]entities.Book, error) {
	query := applyFilters(r.db.Model(&entities.Book{}), strings.TrimSpace(params.Search), strings.TrimSpace(params.Genre))
	if params.YearFrom != 0 {
		query = query.Where("year >= ?", params.YearFrom)
	}
	if params.YearTo != 0 {
		query = query.Where("year <= ?", params.YearTo)
	}

	var books []entities.Book
	err := query.Order("title ASC").Find(&books).Error
	return books, err
}

// Create inserts a new book.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// Update persists changes to an existing book.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Save(book).Error
}

// Delete soft-deletes a book.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// Restore brings back a soft-deleted book. Restoring a live book is an
// error so the handler can answer with a meaningful status.
func (r *Repository) Restore(id uint) (*entities.Book, error) {
	book, err := r.FindWithDeleted(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, nil
	}
	if !book.DeletedAt.Valid {
		return nil, ErrNotDeleted
	}

	if err := r.db.Unscoped().Model(book).Update("deleted_at", nil).Error; err != nil {
		return nil, fmt.Errorf("restore book: %w", err)
	}
	book.DeletedAt = gorm.DeletedAt{}
	return book, nil
}

// UpdateMetadata applies a partial column update, used by enrichment.
func (r *Repository) UpdateMetadata(id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error
}

// SetDocumentPath commits a new document handle on the book row.
func (r *Repository) SetDocumentPath(id uint, handle string) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Update("document_path", handle).Error
}

// SetCoverPath commits a new cover path on the book row.
func (r *Repository) SetCoverPath(id uint, path string) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Update("cover_path", path).Error
}

func applyFilters(query *gorm.DB, search, genre string) *gorm.DB {
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", pattern, pattern)
	}
	if genre != "" {
		query = query.Where("genre = ?", genre)
	}
	return query
}

func applySort(query *gorm.DB, sort string) *gorm.DB {
	if sort == "" {
		return query.Order("title ASC")
	}

	applied := false
	for _, field := range strings.Split(sort, ",") {
		field = strings.TrimSpace(field)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = field[1:]
		}
		if !sortableFields[field] {
			continue
		}
		query = query.Order(field + " " + direction)
		applied = true
	}
	if !applied {
		query = query.Order("title ASC")
	}
	return query
}
