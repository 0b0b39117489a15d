package service

import (
	"context"
	"log"
	"sync"
	"time"

	"polisave/internal/domain"
	"polisave/internal/port"
)

// AnalyzeQueueConfig holds settings for the analyze queue worker.
type AnalyzeQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
	JobTimeout   time.Duration
}

// AnalyzeQueueWorker polls for queued documents and dispatches them to the
// offer pipeline.
type AnalyzeQueueWorker struct {
	docRepo  port.DocumentRepository
	pipeline OfferService
	cfg      AnalyzeQueueConfig
	wg       sync.WaitGroup
}

// NewAnalyzeQueueWorker creates a new AnalyzeQueueWorker.
func NewAnalyzeQueueWorker(docRepo port.DocumentRepository, pipeline OfferService, cfg AnalyzeQueueConfig) *AnalyzeQueueWorker {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &AnalyzeQueueWorker{
		docRepo:  docRepo,
		pipeline: pipeline,
		cfg:      cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight analyses have finished.
func (w *AnalyzeQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("analyzeQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("analyzeQueueWorker: shutting down, waiting for in-flight analyses...")
			w.wg.Wait()
			log.Printf("analyzeQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			docs, err := w.docRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("analyzeQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range docs {
				doc := docs[i] // copy for goroutine

				if w.cfg.MaxRetries > 0 && doc.AnalysisAttempts >= w.cfg.MaxRetries {
					log.Printf("analyzeQueueWorker: document %s exceeded %d attempts, not retrying", doc.ID, w.cfg.MaxRetries)
					_ = w.docRepo.UpdateAnalysis(ctx, doc.ID, domain.AnalysisStatusFailed, "retry limit exceeded", nil)
					continue
				}

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context so
					// in-flight analyses complete even during shutdown.
					jobCtx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
					defer cancel()

					log.Printf("analyzeQueueWorker: dispatching document %s (attempt %d)", doc.ID, doc.AnalysisAttempts+1)
					if err := w.pipeline.AnalyzeDocument(jobCtx, &doc); err != nil {
						log.Printf("analyzeQueueWorker: document %s: %v", doc.ID, err)
					}
				}()
			}
		}
	}
}
