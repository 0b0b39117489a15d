package noop

import (
	"context"
	"log"

	"polisave/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs notifications to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendAnalysisCompleted(_ context.Context, toEmail, toName, documentName string) error {
	log.Printf("[NOOP EMAIL] Analysis completed for %s (%s): %s", toName, toEmail, documentName)
	return nil
}

func (s *noopSender) SendAnalysisFailed(_ context.Context, toEmail, toName, documentName, reason string) error {
	log.Printf("[NOOP EMAIL] Analysis failed for %s (%s): %s: %s", toName, toEmail, documentName, reason)
	return nil
}
