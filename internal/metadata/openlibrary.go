package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// BookMetadata contains enriched book information from external sources.
type BookMetadata struct {
	Title          string   `json:"title,omitempty"`
	Author         string   `json:"author,omitempty"`
	ISBN           string   `json:"isbn,omitempty"`
	CoverURL       string   `json:"cover_url,omitempty"`
	Year           int      `json:"year,omitempty"`
	Description    string   `json:"description,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
	PageCount      int      `json:"page_count,omitempty"`
	OpenLibraryKey string   `json:"open_library_key,omitempty"`
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a new OpenLibrary API client with rate limiting.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

// SearchByISBN looks up a book by its ISBN and returns metadata.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	c.rateLimiter.wait()

	url := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	var bookData openLibraryBook
	if err := c.getJSON(ctx, url, &bookData); err != nil {
		return nil, fmt.Errorf("fetch ISBN data: %w", err)
	}

	meta := c.convertToMetadata(&bookData, isbn)

	// The edition record references authors by key only
	if len(bookData.Authors) > 0 && meta.Author == "" {
		if name, err := c.fetchAuthorName(ctx, bookData.Authors[0].Key); err == nil {
			meta.Author = name
		}
	}

	return meta, nil
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	c.rateLimiter.wait()

	url := fmt.Sprintf("%s%s.json", c.baseURL, authorKey)
	var authorData struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, url, &authorData); err != nil {
		return "", err
	}
	return authorData.Name, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "OpenShelf/1.0 (https://github.com/openshelf/openshelf)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *OpenLibraryClient) convertToMetadata(book *openLibraryBook, isbn string) *BookMetadata {
	meta := &BookMetadata{
		Title:          book.Title,
		ISBN:           isbn,
		OpenLibraryKey: book.Key,
		PageCount:      book.NumberOfPages,
	}

	if isbn != "" {
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn)
	}

	if book.PublishDate != "" {
		meta.Year = extractYear(book.PublishDate)
	}

	// Description can be a plain string or a {type, value} object
	switch v := book.Description.(type) {
	case string:
		meta.Description = v
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			meta.Description = val
		}
	}

	if len(book.Subjects) > 0 {
		meta.Subjects = book.Subjects
	}

	return meta
}

// NormalizeISBN removes hyphens and spaces from an ISBN. Anything that is
// not 10 or 13 digits long afterwards normalizes to the empty string.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: find 4 consecutive digits
	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			var year int
			if _, err := fmt.Sscanf(dateStr[i:i+4], "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}

	return 0
}

// OpenLibrary API response types (internal)

type openLibraryBook struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	Authors       []authorRef `json:"authors"`
	Publishers    []string    `json:"publishers"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
	Description   any         `json:"description"`
	Subjects      []string    `json:"subjects"`
	Covers        []int       `json:"covers"`
}

type authorRef struct {
	Key string `json:"key"`
}
