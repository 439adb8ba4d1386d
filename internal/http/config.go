package http

import (
	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/cache"
	"github.com/openshelf/openshelf/internal/covers"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/likes"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/subscriptions"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/documents"
	"github.com/openshelf/openshelf/internal/metadata"
	"github.com/openshelf/openshelf/internal/reader"
	"github.com/openshelf/openshelf/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database      *database.Database
	Books         *books.Repository
	Loans         *loans.Repository
	Subscriptions *subscriptions.Repository
	Likes         *likes.Repository
	Users         *users.Repository
	AuditService  *audit.Service

	// Reading pipeline
	Pager *reader.Pager

	// Catalog listing cache
	ListingCache *cache.QueryCache

	// Uploaded document storage
	Documents *documents.Store

	// Cover caching
	CoverCache *covers.Cache

	// Metadata enrichment (optional; falls back to synchronous enrichment
	// when TaskClient is nil)
	Enricher   *metadata.Enricher
	TaskClient *tasks.Client

	// Authentication
	AuthMiddleware *auth.Middleware

	// Loan duration in days
	LoanPeriodDays int

	// Application info
	Version string
}
