package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability and
// reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Resolve bearer tokens on every request; most routes work anonymously
	router.Use(cfg.AuthMiddleware.Optional())

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.ListingCache, cfg.Documents, cfg.AuditService, cfg.TaskClient)
	readerController := NewReaderController(cfg.Books, cfg.Pager)
	loansController := NewLoansController(cfg.Loans, cfg.Books, cfg.AuditService, cfg.LoanPeriodDays)
	subscriptionsController := NewSubscriptionsController(cfg.Subscriptions, cfg.AuditService)
	likesController := NewLikesController(cfg.Likes, cfg.Books, cfg.AuditService)
	exportController := NewExportController(cfg.Books, cfg.Loans)
	usersController := NewUsersController(cfg.Users, cfg.AuditService)

	var metadataController *MetadataController
	if cfg.Enricher != nil {
		metadataController = NewMetadataController(cfg.Enricher, cfg.Books, cfg.TaskClient)
	}
	var coversController *CoversController
	if cfg.CoverCache != nil {
		coversController = NewCoversController(cfg.CoverCache, cfg.Books)
	}

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api/v1")
	authRequired := cfg.AuthMiddleware.Required()
	adminOnly := cfg.AuthMiddleware.AdminOnly()

	// Catalog
	api.GET("/books", booksController.ListBooks)
	api.GET("/books/search", booksController.SearchBooks)
	api.GET("/books/export.csv", exportController.ExportBooks)
	api.GET("/books/:id", booksController.GetBook)
	api.POST("/books", adminOnly, booksController.CreateBook)
	api.PUT("/books/:id", adminOnly, booksController.UpdateBook)
	api.DELETE("/books/:id", adminOnly, booksController.DeleteBook)
	api.POST("/books/:id/restore", adminOnly, booksController.RestoreBook)
	api.POST("/books/:id/document", adminOnly, booksController.UploadDocument)

	// Reading
	api.GET("/books/:id/preview", readerController.GetPreview)
	api.GET("/books/:id/page", readerController.GetPage)
	api.GET("/books/:id/read", readerController.ReadBook)

	// Covers
	if coversController != nil {
		api.GET("/books/:id/cover", coversController.GetCover)
	}

	// Metadata enrichment
	if metadataController != nil {
		api.POST("/books/:id/enrich", adminOnly, metadataController.EnrichBook)
		api.POST("/books/:id/fetch-by-isbn", adminOnly, metadataController.FetchByISBN)
	}

	// Likes
	api.GET("/books/:id/likes", likesController.LikeStatus)
	api.POST("/books/:id/like", authRequired, likesController.ToggleLike)

	// Loans
	api.POST("/books/:id/borrow", authRequired, loansController.BorrowBook)
	api.GET("/loans", authRequired, loansController.ListLoans)
	api.GET("/loans/export.csv", adminOnly, exportController.ExportLoans)
	api.POST("/loans/:id/return", authRequired, loansController.ReturnLoan)

	// Subscriptions
	api.POST("/subscriptions", authRequired, subscriptionsController.Subscribe)
	api.GET("/subscriptions", authRequired, subscriptionsController.ListSubscriptions)
	api.GET("/subscriptions/current", authRequired, subscriptionsController.CurrentSubscription)

	// Accounts
	api.POST("/users", adminOnly, usersController.CreateUser)
	api.GET("/me", authRequired, usersController.Me)

	return router
}
