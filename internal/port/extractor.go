package port

import "context"

// ExtractInput carries the document bytes and metadata for the secondary AI
// offer extraction.
type ExtractInput struct {
	Data        []byte
	ContentType string
	FileName    string
	ProductHint string
}

// ExtractOutput is the extractor's loosely-typed result. Payload is the raw
// decoded JSON object; the offer builder type-checks every field it reads.
type ExtractOutput struct {
	Payload map[string]any
	Model   string
}

// OfferExtractor abstracts the secondary generative-AI extraction pass.
type OfferExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
