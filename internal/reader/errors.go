package reader

import (
	"errors"
	"fmt"
)

// ErrIdentityRequired is returned by full-content requests without a caller
// identity. Preview and single-page requests never return it.
var ErrIdentityRequired = errors.New("identity required")

// ErrPageOutOfRange is returned by a DocumentSource for page numbers outside
// [1, PageCount].
var ErrPageOutOfRange = errors.New("page out of range")

// PageNotFoundError reports a request for a page outside the document's true
// range, carrying the range so the caller can surface it.
type PageNotFoundError struct {
	Page       int
	TotalPages int
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %d not found (document has %d pages)", e.Page, e.TotalPages)
}

// PreviewLimitError reports a page request beyond the preview ceiling by a
// caller without full entitlement. The page text is never attached.
type PreviewLimitError struct {
	Page         int
	TotalPages   int
	PreviewLimit int
}

func (e *PreviewLimitError) Error() string {
	return fmt.Sprintf("page %d exceeds preview limit of %d pages", e.Page, e.PreviewLimit)
}
