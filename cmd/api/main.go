package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/cache"
	"stockcount-api/internal/config"
	"stockcount-api/internal/drive"
	"stockcount-api/internal/handler"
	"stockcount-api/internal/imagestore"
	"stockcount-api/internal/middleware"
	"stockcount-api/internal/recordstore"
	"stockcount-api/internal/repository"
	"stockcount-api/internal/router"
	"stockcount-api/internal/service"
	"stockcount-api/internal/sheets"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting stock count API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	loc := cfg.App.Location()
	branches := branch.NewDirectory(cfg.App.Branches)
	var readyChecks []handler.ReadyCheck

	// Relational record backend (optional)
	var catalog repository.CatalogRepository
	switch cfg.Relational.Type {
	case "supabase":
		sbRepo, err := repository.NewSupabaseCatalogRepository(cfg.Relational.SupabaseURL, cfg.Relational.SupabaseKey, cfg.Relational.Timeout)
		if err != nil {
			log.Printf("Warning: Supabase backend unavailable: %v", err)
		} else {
			catalog = sbRepo
			log.Println("Supabase catalog repository initialized")
		}
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresCatalogRepository(cfg.Relational.PostgresDSN())
		if err != nil {
			log.Printf("Warning: PostgreSQL backend unavailable: %v", err)
		} else {
			seedBranches(pgRepo, branches)
			catalog = pgRepo
			log.Println("PostgreSQL catalog repository initialized")
		}
	case "none", "":
		log.Println("Relational backend disabled")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteCatalogRepository(cfg.Relational.Path)
		if err != nil {
			log.Printf("Warning: SQLite backend unavailable: %v", err)
		} else {
			seedBranches(sqliteRepo, branches)
			catalog = sqliteRepo
			log.Println("SQLite catalog repository initialized")
		}
	}
	if catalog != nil {
		defer catalog.Close()
		readyChecks = append(readyChecks, handler.ReadyCheck{
			Name: "relational",
			Check: func(ctx context.Context) error {
				_, err := catalog.GetStats(ctx)
				return err
			},
		})
	}

	// Google Sheets (optional)
	var sheetClient sheets.ValuesClient
	var productSource service.ProductSource
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sheets.Timeout)
	gc, err := sheets.NewGoogleClient(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.Timeout)
	cancel()
	if err != nil {
		log.Printf("Warning: Google Sheets unavailable: %v", err)
	} else {
		sheetClient = gc
		productSource = sheets.NewProductSheet(gc, cfg.Sheets.ProductSheetID, cfg.Sheets.ProductSheetName)
		log.Println("Google Sheets client initialized")

		if cfg.Sheets.InitHeaders {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Sheets.Timeout)
			err := sheets.InitHeaders(ctx, gc,
				cfg.Sheets.ProductSheetID, cfg.Sheets.ProductSheetName,
				cfg.Sheets.StockSheetID, cfg.Sheets.StockSheetName)
			cancel()
			if err != nil {
				log.Printf("Warning: Sheet header initialization failed: %v", err)
			}
		}
	}

	// Google Drive with delegated authorization (optional)
	var driveClient *drive.Client
	if dc, err := drive.NewClient(cfg.Images.DriveCredentialsFile, cfg.Images.DriveTokenFile, cfg.Images.DriveTimeout); err != nil {
		log.Printf("Warning: Google Drive unavailable: %v", err)
	} else {
		driveClient = dc
		log.Println("Google Drive client initialized")
	}

	// Photo strategies, in priority order
	var imageStores []imagestore.Store
	if cfg.Images.AppsScriptURL != "" {
		imageStores = append(imageStores, imagestore.NewAppsScriptStore(cfg.Images.AppsScriptURL, cfg.Images.AppsScriptTimeout))
	}
	if driveClient != nil {
		imageStores = append(imageStores, imagestore.NewDriveStore(driveClient))
	}
	imageStores = append(imageStores, imagestore.NewLocalStore(cfg.Images.UploadDir))
	images := imagestore.NewChain(branches, cfg.Images.RootFolder, imageStores...)
	log.Printf("Image strategies: %v", images.Names())

	// Record backends; an unconfigured backend still reports false in saved_to
	relationalStore := recordstore.Unavailable(recordstore.RelationalName)
	if catalog != nil {
		relationalStore = recordstore.NewRelationalStore(catalog, branches, cfg.Relational.Timeout)
	}
	sheetStore := recordstore.Unavailable(recordstore.SheetName)
	if sheetClient != nil {
		sheetStore = recordstore.NewSheetStore(sheetClient, cfg.Sheets.StockSheetID, cfg.Sheets.StockSheetName, loc)
	}

	// Login accounts
	users, mysqlDB := openUsers(cfg)
	if mysqlDB != nil {
		defer mysqlDB.Close()
		readyChecks = append(readyChecks, handler.ReadyCheck{Name: "mysql", Check: mysqlDB.PingContext})
	}

	// Session store
	var sessionStore cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, using memory sessions: %v", err)
		} else {
			sessionStore = redisCache
			readyChecks = append(readyChecks, handler.ReadyCheck{Name: "redis", Check: redisCache.Ping})
		}
	}
	if sessionStore == nil {
		sessionStore = cache.NewMemoryCache()
	}
	defer sessionStore.Close()

	// Initialize services
	sessionService := service.NewSessionService(sessionStore, users, cfg.App.SecretKey, cfg.Cache.SessionTTL)
	lookupService := service.NewLookupService(catalog, productSource, loc, cfg.Relational.Timeout)
	submissionService := service.NewSubmissionService(images, relationalStore, sheetStore)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Name, cfg.App.Version, readyChecks...)
	stockHandler := handler.NewStockHandler(lookupService, submissionService)
	authHandler := handler.NewAuthHandler(sessionService, cfg.App.IsProduction())

	adminCfg := handler.AdminConfig{
		Catalog:         catalog,
		RelationalType:  cfg.Relational.Type,
		Branches:        branches.Entries(),
		RecordBackends:  submissionService.Backends(),
		ImageStrategies: images.Names(),
	}
	if driveClient != nil {
		adminCfg.Drive = driveClient
	}
	adminHandler := handler.NewAdminHandler(adminCfg)

	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Sessions: sessionService,
	})

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		StockHandler:   stockHandler,
		AdminHandler:   adminHandler,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

// seedBranches inserts the configured branches so lookups by display name hit.
func seedBranches(repo *repository.SQLCatalogRepository, branches *branch.Directory) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.SeedBranches(ctx, branches.Entries()); err != nil {
		log.Printf("Warning: Branch seeding failed: %v", err)
	}
}

// openUsers returns the login account source. MySQL falls back to the static
// list when it cannot be reached.
func openUsers(cfg *config.Config) (repository.UserRepository, *sql.DB) {
	if cfg.Users.Source == "mysql" {
		db, err := sql.Open("mysql", cfg.Database.DSN())
		if err != nil {
			log.Printf("Warning: MySQL connection failed: %v", err)
		} else {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			repo, err := repository.NewMySQLUserRepository(ctx, db)
			cancel()
			if err == nil {
				log.Println("MySQL user repository initialized")
				return repo, db
			}
			log.Printf("Warning: MySQL user repository unavailable: %v", err)
			db.Close()
		}
		log.Println("Falling back to static users")
	}

	repo, err := repository.NewStaticUserRepository(cfg.Users.Static)
	if err != nil {
		log.Fatalf("Invalid USERS configuration: %v", err)
	}
	return repo, nil
}
