package reader

import (
	"fmt"
	"strings"
	"time"

	"github.com/openshelf/openshelf/internal/entities"
)

// PageContent is the unit of delivered content. Produced fresh per request,
// never persisted.
type PageContent struct {
	BookID     uint   `json:"book_id"`
	Title      string `json:"title"`
	Page       int    `json:"current_page"`
	TotalPages int    `json:"total_pages"`
	Text       string `json:"content"`
	IsPreview  bool   `json:"is_preview"`
	Watermark  string `json:"watermark,omitempty"`
}

// Preview is the result of the preview operation: up to the preview ceiling
// of watermarked pages, with the document's true total page count.
type Preview struct {
	BookID       uint          `json:"book_id"`
	Title        string        `json:"title"`
	Pages        []PageContent `json:"preview_pages"`
	TotalPages   int           `json:"total_pages"`
	PreviewLimit int           `json:"preview_limit"`
}

// DocumentResolver resolves the document source for a book. Implemented by
// SourceResolver; an interface so tests can substitute fixed documents.
type DocumentResolver interface {
	Resolve(book *entities.Book) DocumentSource
}

// Pager orchestrates document sources and entitlement to answer page and
// full-content requests, enforcing the preview ceiling.
type Pager struct {
	sources      DocumentResolver
	entitlements *EntitlementResolver
	watermarker  *Watermarker
	previewLimit int
	now          func() time.Time
}

func NewPager(sources DocumentResolver, entitlements *EntitlementResolver, watermarker *Watermarker, previewLimit int) *Pager {
	if previewLimit < 1 {
		previewLimit = 1
	}
	return &Pager{
		sources:      sources,
		entitlements: entitlements,
		watermarker:  watermarker,
		previewLimit: previewLimit,
		now:          time.Now,
	}
}

// SetClock overrides the pager's clock. Used by tests.
func (p *Pager) SetClock(now func() time.Time) {
	p.now = now
}

// GetPage returns one page of the book's content.
//
// The range check runs before the entitlement gate so that out-of-range
// requests report NotFound rather than a misleading denial. A denied page is
// returned without its text: PreviewLimitError carries only the numbers.
func (p *Pager) GetPage(book *entities.Book, identity *Identity, page int) (*PageContent, error) {
	source := p.sources.Resolve(book)
	total := source.PageCount()

	if page < 1 || page > total {
		return nil, &PageNotFoundError{Page: page, TotalPages: total}
	}

	level, err := p.entitlements.Resolve(identity, book, p.now())
	if err != nil {
		return nil, err
	}
	// Anonymous callers read single pages at preview level.
	if level == LevelDenied {
		level = LevelPreview
	}

	if level != LevelFull && page > p.previewLimit {
		return nil, &PreviewLimitError{Page: page, TotalPages: total, PreviewLimit: p.previewLimit}
	}

	text, err := source.PageText(page)
	if err != nil {
		return nil, fmt.Errorf("read page %d: %w", page, err)
	}

	content := &PageContent{
		BookID:     book.ID,
		Title:      book.Title,
		Page:       page,
		TotalPages: total,
		Text:       text,
	}
	if level != LevelFull {
		p.watermarker.Apply(content)
	}
	return content, nil
}

// GetFullContent returns the book's content as a single unit: every page for
// full entitlement, the preview window otherwise. Anonymous callers are
// rejected with ErrIdentityRequired before any document work happens.
func (p *Pager) GetFullContent(book *entities.Book, identity *Identity) (*PageContent, error) {
	level, err := p.entitlements.Resolve(identity, book, p.now())
	if err != nil {
		return nil, err
	}
	if level == LevelDenied {
		return nil, ErrIdentityRequired
	}

	source := p.sources.Resolve(book)
	total := source.PageCount()

	last := total
	if level != LevelFull && last > p.previewLimit {
		last = p.previewLimit
	}

	var b strings.Builder
	for page := 1; page <= last; page++ {
		text, err := source.PageText(page)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", page, err)
		}
		fmt.Fprintf(&b, "=== PAGE %d ===\n\n%s\n\n", page, text)
	}

	content := &PageContent{
		BookID:     book.ID,
		Title:      book.Title,
		Page:       1,
		TotalPages: total,
		Text:       b.String(),
	}
	if level != LevelFull {
		p.watermarker.Apply(content)
	}
	return content, nil
}

// GetPreview returns the preview window of the book: up to previewLimit
// watermarked pages. Always available, identity or not; entitlement is still
// resolved so that subscribers see their pages unwatermarked.
func (p *Pager) GetPreview(book *entities.Book, identity *Identity) (*Preview, error) {
	level, err := p.entitlements.Resolve(identity, book, p.now())
	if err != nil {
		return nil, err
	}

	source := p.sources.Resolve(book)
	total := source.PageCount()

	last := total
	if last > p.previewLimit {
		last = p.previewLimit
	}

	pages := make([]PageContent, 0, last)
	for page := 1; page <= last; page++ {
		text, err := source.PageText(page)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", page, err)
		}
		content := PageContent{
			BookID:     book.ID,
			Title:      book.Title,
			Page:       page,
			TotalPages: total,
			Text:       text,
		}
		if level != LevelFull {
			p.watermarker.Apply(&content)
		}
		pages = append(pages, content)
	}

	return &Preview{
		BookID:       book.ID,
		Title:        book.Title,
		Pages:        pages,
		TotalPages:   total,
		PreviewLimit: p.previewLimit,
	}, nil
}
