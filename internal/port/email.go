package port

import "context"

// EmailSender defines the contract for sending analysis notifications.
type EmailSender interface {
	SendAnalysisCompleted(ctx context.Context, toEmail, toName, documentName string) error
	SendAnalysisFailed(ctx context.Context, toEmail, toName, documentName, reason string) error
}
