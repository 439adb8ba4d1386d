package reader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/openshelf/openshelf/internal/entities"
)

// DocumentSource supplies page-indexed text for a book. Page numbers are
// 1-based; PageText returns ErrPageOutOfRange outside [1, PageCount].
type DocumentSource interface {
	PageCount() int
	PageText(page int) (string, error)
}

// DocumentOpener opens a stored document by its opaque handle.
// Implemented by the documents store.
type DocumentOpener interface {
	Open(handle string) (io.ReadSeekCloser, int64, error)
}

// SourceResolver picks the DocumentSource for a book: the real document when
// its handle resolves to a parsable PDF, the synthetic generator otherwise.
// Resolution happens once per request; callers never see extraction errors.
type SourceResolver struct {
	store         DocumentOpener
	fallbackPages int
}

func NewSourceResolver(store DocumentOpener, fallbackPages int) *SourceResolver {
	if fallbackPages < 1 {
		fallbackPages = 1
	}
	return &SourceResolver{
		store:         store,
		fallbackPages: fallbackPages,
	}
}

// Resolve never fails. A missing handle, an unreadable file, or a parse
// failure all degrade silently to the synthetic source for this request.
func (r *SourceResolver) Resolve(book *entities.Book) DocumentSource {
	if book.DocumentPath == "" {
		return newSyntheticDocument(book, r.fallbackPages)
	}

	f, size, err := r.store.Open(book.DocumentPath)
	if err != nil {
		return newSyntheticDocument(book, r.fallbackPages)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return newSyntheticDocument(book, r.fallbackPages)
	}

	pages, err := extractPages(bytes.NewReader(data), size)
	if err != nil {
		return newSyntheticDocument(book, r.fallbackPages)
	}

	return &pdfDocument{pages: pages}
}

// pdfDocument holds the extracted text of every physical page. Extraction is
// eager so that a mid-document parse failure falls back for the whole
// request instead of surfacing halfway through.
type pdfDocument struct {
	pages []string
}

func (d *pdfDocument) PageCount() int {
	return len(d.pages)
}

func (d *pdfDocument) PageText(page int) (string, error) {
	if page < 1 || page > len(d.pages) {
		return "", ErrPageOutOfRange
	}
	return d.pages[page-1], nil
}

// extractPages parses the PDF and returns per-page plain text. The pdf
// library panics on some malformed inputs, so extraction is fenced with a
// recover and reported as an ordinary error.
func extractPages(f io.ReaderAt, size int64) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(f, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	total := doc.NumPage()
	if total < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			return nil, fmt.Errorf("pdf page %d is missing", i)
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
