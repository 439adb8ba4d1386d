package reader

import (
	"fmt"
	"strings"

	"github.com/openshelf/openshelf/internal/entities"
)

// syntheticDocument generates placeholder page text from book metadata. The
// output is a pure function of (metadata, page number): no randomness and no
// clock, so repeated calls and restarts produce byte-identical text.
type syntheticDocument struct {
	book  entities.Book
	pages int
}

func newSyntheticDocument(book *entities.Book, pages int) *syntheticDocument {
	return &syntheticDocument{book: *book, pages: pages}
}

func (d *syntheticDocument) PageCount() int {
	return d.pages
}

func (d *syntheticDocument) PageText(page int) (string, error) {
	if page < 1 || page > d.pages {
		return "", ErrPageOutOfRange
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Page %d of %d\n\n", page, d.pages)
	fmt.Fprintf(&b, "%s\n", d.book.Title)
	fmt.Fprintf(&b, "Author: %s\n", d.book.Author)
	if d.book.Year != 0 {
		fmt.Fprintf(&b, "Year: %d\n", d.book.Year)
	}
	if d.book.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", d.book.Genre)
	}
	b.WriteString("\n")

	if page == 1 {
		if d.book.Description != "" {
			fmt.Fprintf(&b, "Description:\n%s\n\n", d.book.Description)
		} else {
			b.WriteString("Description:\nNo description is available for this book.\n\n")
		}
	}

	if page <= 10 {
		fmt.Fprintf(&b, "This is the content of page %d.\n", page)
		b.WriteString("The text of the book begins here...\n\n")
		b.WriteString("Lorem ipsum dolor sit amet, consectetur adipiscing elit.\n")
		b.WriteString("Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.\n")
		b.WriteString("Ut enim ad minim veniam, quis nostrud exercitation.\n")
	} else {
		fmt.Fprintf(&b, "This is page %d of the book.\n", page)
		b.WriteString("The content continues...\n")
	}

	return b.String(), nil
}
