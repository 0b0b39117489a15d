package port

import (
	"context"

	"polisave/internal/analysis"
)

// DocumentAnalyzer abstracts the remote document-analysis service. The URL is
// a time-limited signed reference to the document bytes.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, signedURL string, opts *analysis.Options) (*analysis.Result, error)
}
