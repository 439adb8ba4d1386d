// Command seed_catalog creates a database pre-filled with public domain
// books, a demo reader and an administrator, for local development.
// Usage: go run cmd/seed_catalog/main.go [-db path/to/openshelf.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/subscriptions"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "path to the database file")
	flag.Parse()

	log.Printf("Seeding catalog database at %s...", *dbPath)

	// Start from a fresh database
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	bookRepo := books.NewRepository(db.DB)
	for _, book := range publicDomainBooks() {
		book := book
		if err := bookRepo.Create(&book); err != nil {
			log.Printf("Failed to save book %s: %v", book.Title, err)
			continue
		}
		log.Printf("Saved: %s by %s (%d)", book.Title, book.Author, book.Year)
	}

	seedAccounts(db)

	log.Println("Catalog seeded successfully!")
}

func seedAccounts(db *database.Database) {
	userRepo := users.NewRepository(db.DB)
	subscriptionRepo := subscriptions.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)

	admin, err := userRepo.Create("admin", "admin@localhost", true)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	log.Printf("Admin token: %s", admin.Token)

	reader, err := userRepo.Create("reader", "reader@localhost", false)
	if err != nil {
		log.Fatalf("Failed to create reader: %v", err)
	}
	log.Printf("Reader token: %s", reader.Token)

	if _, err := subscriptionRepo.Create(reader.ID, entities.SubscriptionPlanBasic, 30, time.Now()); err != nil {
		log.Printf("Failed to create demo subscription: %v", err)
	}
	if _, err := loanRepo.Borrow(reader.ID, 1, 30); err != nil {
		log.Printf("Failed to create demo loan: %v", err)
	}
}

func publicDomainBooks() []entities.Book {
	return []entities.Book{
		{
			Title:       "Meditations",
			Author:      "Marcus Aurelius",
			Year:        180,
			Genre:       "Philosophy",
			ISBN:        "9780812968255",
			Description: "Personal writings of the Roman emperor on Stoic philosophy and self-discipline.",
		},
		{
			Title:       "Pride and Prejudice",
			Author:      "Jane Austen",
			Year:        1813,
			Genre:       "Fiction",
			ISBN:        "9780141439518",
			Description: "A novel of manners following Elizabeth Bennet and Mr. Darcy.",
		},
		{
			Title:       "Frankenstein",
			Author:      "Mary Shelley",
			Year:        1818,
			Genre:       "Fiction",
			ISBN:        "9780486282114",
			Description: "Victor Frankenstein creates a sapient creature in an unorthodox experiment.",
		},
		{
			Title:       "On the Origin of Species",
			Author:      "Charles Darwin",
			Year:        1859,
			Genre:       "Science",
			ISBN:        "9780451529060",
			Description: "The foundation of evolutionary biology.",
		},
		{
			Title:       "Crime and Punishment",
			Author:      "Fyodor Dostoevsky",
			Year:        1866,
			Genre:       "Fiction",
			ISBN:        "9780140449136",
			Description: "The mental anguish of an impoverished ex-student who commits a murder.",
		},
		{
			Title:       "War and Peace",
			Author:      "Leo Tolstoy",
			Year:        1869,
			Genre:       "Fiction",
			ISBN:        "9781400079988",
			Description: "The French invasion of Russia through the lives of five aristocratic families.",
		},
		{
			Title:       "The Picture of Dorian Gray",
			Author:      "Oscar Wilde",
			Year:        1890,
			Genre:       "Fiction",
			ISBN:        "9780141439570",
			Description: "A man sells his soul so that a portrait ages in his place.",
		},
		{
			Title:       "The Art of War",
			Author:      "Sun Tzu",
			Year:        1910,
			Genre:       "Philosophy",
			ISBN:        "9781590302255",
			Description: "An ancient treatise on strategy and conflict, in the Lionel Giles translation.",
		},
	}
}
