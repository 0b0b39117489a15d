package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"polisave/internal/analysis/taskclient"
	"polisave/internal/config"
	"polisave/internal/email/noop"
	"polisave/internal/email/ses"
	"polisave/internal/extract/claude"
	"polisave/internal/handler"
	"polisave/internal/port"
	"polisave/internal/repository/postgres"
	"polisave/internal/router"
	"polisave/internal/service"
	s3storage "polisave/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	offerRepo := postgres.NewOfferRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email delivery
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	// Remote analyzer is optional; without it the pipeline relies on local
	// text extraction.
	var analyzer port.DocumentAnalyzer
	if cfg.Analyzer.BaseURL != "" {
		analyzer = taskclient.NewClient(&cfg.Analyzer)
	} else {
		log.Println("analyzer base URL not configured, using local text extraction only")
	}

	extractor := claude.NewExtractor(&cfg.Extractor)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	documentSvc := service.NewDocumentService(docRepo, fileRepo, offerRepo, s3Client, cfg.S3)
	offerSvc := service.NewOfferService(docRepo, fileRepo, offerRepo, userRepo, s3Client, analyzer, extractor, emailSender, cfg.S3, cfg.Analyzer)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	documentH := handler.NewDocumentHandler(documentSvc)
	offerH := handler.NewOfferHandler(offerSvc, documentSvc)
	exportH := handler.NewExportHandler(offerSvc, documentSvc)
	userH := handler.NewUserHandler(userSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, authH, documentH, offerH, exportH, userH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the analyze queue worker
	worker := service.NewAnalyzeQueueWorker(docRepo, offerSvc, service.AnalyzeQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
		JobTimeout:   time.Duration(cfg.Queue.JobTimeoutSecs) * time.Second,
	})
	go worker.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
