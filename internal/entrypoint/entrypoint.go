// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/cache"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/covers"
	"github.com/openshelf/openshelf/internal/database"
	auditrepo "github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/likes"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/subscriptions"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/documents"
	http_controllers "github.com/openshelf/openshelf/internal/http"
	"github.com/openshelf/openshelf/internal/metadata"
	"github.com/openshelf/openshelf/internal/reader"
	"github.com/openshelf/openshelf/internal/scheduler"
	"github.com/openshelf/openshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting OpenShelf v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	bookRepo := books.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)
	subscriptionRepo := subscriptions.NewRepository(db.DB)
	likeRepo := likes.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)
	auditService := audit.NewService(auditRepo)

	// Seed an administrator so a fresh install has a usable token
	seedAdmin(userRepo)

	// Uploaded document storage
	documentStore, err := documents.NewStore(cfg.Storage.DocumentsDir)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	// Cover cache for locally caching book covers
	coverCache, err := covers.NewCache(cfg.Storage.CoversDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
		coverCache = nil
	} else {
		log.Printf("Cover cache initialized at %s", cfg.Storage.CoversDir)
	}

	// Catalog listing cache
	memoryStore := cache.NewMemoryStore()
	listingCache := cache.NewQueryCache(memoryStore, cfg.Cache.ListingTTL)

	// Reading pipeline
	sourceResolver := reader.NewSourceResolver(documentStore, cfg.Reader.FallbackPageCount)
	entitlementResolver := reader.NewEntitlementResolver(subscriptionRepo, loanRepo)
	watermarker := reader.NewWatermarker(reader.DefaultPreviewBanner)
	pager := reader.NewPager(sourceResolver, entitlementResolver, watermarker, cfg.Reader.PreviewPageLimit)

	// Metadata enricher for book enrichment from OpenLibrary
	openLibraryClient := metadata.NewOpenLibraryClient()
	enricher := metadata.NewEnricher(openLibraryClient, bookRepo)
	enricher.SetListingInvalidator(listingCache)
	if coverCache != nil {
		enricher.SetCoverInvalidator(coverCache)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichBookQueue(enricher),
			tasks.NewCleanupAuditQueue(auditRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Maintenance scheduler: audit retention and cache sweeping
	maintenance := scheduler.NewMaintenanceScheduler(cfg.Maintenance, cfg.Audit, taskClient, memoryStore)
	if err := maintenance.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	authMiddleware := auth.NewMiddleware(userRepo)

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Books:          bookRepo,
		Loans:          loanRepo,
		Subscriptions:  subscriptionRepo,
		Likes:          likeRepo,
		Users:          userRepo,
		AuditService:   auditService,
		Pager:          pager,
		ListingCache:   listingCache,
		Documents:      documentStore,
		CoverCache:     coverCache,
		Enricher:       enricher,
		TaskClient:     taskClient,
		AuthMiddleware: authMiddleware,
		LoanPeriodDays: cfg.Loans.PeriodDays,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		maintenance.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// seedAdmin creates the first administrator account on an empty user table
// and prints its API token once.
func seedAdmin(userRepo *users.Repository) {
	count, err := userRepo.Count()
	if err != nil {
		log.Printf("WARNING: could not check for existing users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	admin, err := userRepo.Create("admin", "admin@localhost", true)
	if err != nil {
		log.Printf("WARNING: could not seed admin user: %v", err)
		return
	}
	log.Printf("Created admin user. API token (shown once): %s", admin.Token)
}
