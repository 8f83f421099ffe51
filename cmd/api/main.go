package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/pressmate/media-crm/api/internal/auth"
	"github.com/pressmate/media-crm/api/internal/config"
	"github.com/pressmate/media-crm/api/internal/database"
	"github.com/pressmate/media-crm/api/internal/entity"
	"github.com/pressmate/media-crm/api/internal/handler"
	middlewarepkg "github.com/pressmate/media-crm/api/internal/middleware"
	"github.com/pressmate/media-crm/api/internal/repository"
	"github.com/pressmate/media-crm/api/internal/router"
	"github.com/pressmate/media-crm/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	orgsRepo := repository.NewPGXOrganizationsRepository(pool)
	contactsRepo := repository.NewPGXContactsRepository(pool)
	candidatesRepo := repository.NewPGXCandidatesRepository(pool)
	scanJobsRepo := repository.NewPGXScanJobsRepository(pool)
	companiesRepo := repository.NewPGXCompaniesRepository(pool)
	publicationsRepo := repository.NewPGXPublicationsRepository(pool)

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)

	snapshotter := service.NewSnapshotter(publicationsRepo, cfg.Matching.PhoneRegion)
	scanner := service.NewScanner(orgsRepo, contactsRepo, candidatesRepo, scanJobsRepo, snapshotter, service.ScanConfig{
		MinOrganizations: cfg.Matching.MinOrganizations,
		MinScore:         cfg.Matching.MinScore,
		DevelopmentMode:  cfg.Matching.DevelopmentMode,
		Concurrency:      cfg.Matching.ScanConcurrency,
		TrustedDomains:   cfg.Matching.TrustedDomains,
	})

	var assist service.MergeAssist
	if cfg.MergeAssistURL != "" {
		assist = service.NewHTTPMergeAssist(nil, cfg.MergeAssistURL)
	}
	importer := service.NewImporter(candidatesRepo, companiesRepo, publicationsRepo, contactsRepo, assist, service.ImportConfig{
		MinScore:  cfg.Matching.ImportMinScore,
		BatchSize: cfg.Matching.ImportBatchSize,
	})

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserAdminHandler(userService),
		Candidates: handler.NewCandidatesHandler(candidatesRepo),
		Scan:       handler.NewScanHandler(scanner, scanJobsRepo),
		Import:     handler.NewImportHandler(importer),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	scanCtx, stopScans := context.WithCancel(context.Background())
	defer stopScans()
	if cfg.AutoScanInterval > 0 {
		go runScheduledScans(scanCtx, scanner, cfg.AutoScanInterval)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	stopScans()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// runScheduledScans triggers a detection pass at the configured interval
// until the context is cancelled. Failures are logged and the schedule
// keeps going.
func runScheduledScans(ctx context.Context, scanner *service.Scanner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := scanner.Run(ctx, service.ScanOptions{Trigger: entity.ScanTriggerAutomatic})
			if err != nil {
				log.Printf("scheduled scan failed: %v", err)
				continue
			}
			log.Printf("scheduled scan %s completed: %d candidates created, %d updated",
				job.ID, job.Stats.CandidatesCreated, job.Stats.CandidatesUpdated)
		}
	}
}
