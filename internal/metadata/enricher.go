package metadata

import (
	"context"
	"fmt"

	"github.com/openshelf/openshelf/internal/entities"
)

// Provider defines the interface for fetching book metadata.
type Provider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
}

// BookStore defines the catalog operations enrichment needs.
type BookStore interface {
	Find(id uint) (*entities.Book, error)
	UpdateMetadata(id uint, updates map[string]any) error
}

// CoverInvalidator defines the interface for invalidating cached covers.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// ListingInvalidator defines the interface for invalidating cached catalog
// listings after enrichment writes.
type ListingInvalidator interface {
	InvalidateAll()
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
}

// Enricher fills missing book fields from OpenLibrary by ISBN. Fields the
// book already has are never overwritten, except the cover URL which tracks
// the freshest known cover.
type Enricher struct {
	provider Provider
	books    BookStore
	covers   CoverInvalidator
	listings ListingInvalidator
}

// NewEnricher creates a new Enricher with the given metadata provider and
// catalog store.
func NewEnricher(provider Provider, books BookStore) *Enricher {
	return &Enricher{provider: provider, books: books}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.covers = invalidator
}

// SetListingInvalidator sets the listing cache invalidator (optional).
func (e *Enricher) SetListingInvalidator(invalidator ListingInvalidator) {
	e.listings = invalidator
}

// EnrichBook fetches metadata for a book by its ISBN and updates it in the
// database. Books without an ISBN cannot be enriched.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.books.Find(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return nil, fmt.Errorf("book %d not found", bookID)
	}
	if book.ISBN == "" {
		return nil, fmt.Errorf("book %d has no ISBN", bookID)
	}

	return e.enrich(ctx, book, book.ISBN)
}

// EnrichBookWithISBN enriches a book using an explicitly provided ISBN,
// saving the ISBN on the book when the lookup succeeds.
func (e *Enricher) EnrichBookWithISBN(ctx context.Context, bookID uint, isbn string) (*EnrichmentResult, error) {
	book, err := e.books.Find(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return nil, fmt.Errorf("book %d not found", bookID)
	}

	return e.enrich(ctx, book, isbn)
}

func (e *Enricher) enrich(ctx context.Context, book *entities.Book, isbn string) (*EnrichmentResult, error) {
	meta, err := e.provider.SearchByISBN(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup failed: %w", err)
	}

	updates, fieldsUpdated := buildUpdates(book, meta)
	if meta.ISBN != "" && book.ISBN != meta.ISBN {
		updates["isbn"] = meta.ISBN
		fieldsUpdated = append(fieldsUpdated, "isbn")
	}

	if len(fieldsUpdated) > 0 {
		if _, changed := updates["cover_path"]; changed && e.covers != nil {
			_ = e.covers.InvalidateCover(book.ID)
		}

		if err := e.books.UpdateMetadata(book.ID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}

		if e.listings != nil {
			e.listings.InvalidateAll()
		}

		book, err = e.books.Find(book.ID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
	}, nil
}

// buildUpdates compares existing book data with fetched metadata and
// returns only the columns that should change.
func buildUpdates(book *entities.Book, meta *BookMetadata) (map[string]any, []string) {
	updates := map[string]any{}
	var fieldsUpdated []string

	if book.Description == "" && meta.Description != "" {
		updates["description"] = meta.Description
		fieldsUpdated = append(fieldsUpdated, "description")
	}

	if book.Year == 0 && meta.Year > 0 {
		updates["year"] = meta.Year
		fieldsUpdated = append(fieldsUpdated, "year")
	}

	if meta.CoverURL != "" && book.CoverPath != meta.CoverURL {
		updates["cover_path"] = meta.CoverURL
		fieldsUpdated = append(fieldsUpdated, "cover_path")
	}

	if book.Genre == "" && len(meta.Subjects) > 0 {
		updates["genre"] = meta.Subjects[0]
		fieldsUpdated = append(fieldsUpdated, "genre")
	}

	return updates, fieldsUpdated
}
