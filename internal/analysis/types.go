// Package analysis defines the types and error taxonomy shared by the remote
// document analysis client and its consumers.
package analysis

// BoundingBox locates a block on its page. Coordinates are in the remote
// service's own units; they are carried through for diagnostics only.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Block is one classified unit of text on a page. The remote service may nest
// blocks; Children form a tree whose depth is bounded only by the source
// document, so consumers flatten it iteratively rather than recursively.
type Block struct {
	Type       string       `json:"type"`
	Category   string       `json:"category"`
	Label      string       `json:"label"`
	Text       string       `json:"text"`
	PageNumber int          `json:"page_number"`
	Confidence *float64     `json:"confidence,omitempty"`
	Box        *BoundingBox `json:"box,omitempty"`
	Children   []Block      `json:"children,omitempty"`
}

// Page is the full extracted content of one document page. Pages are
// 1-indexed and immutable after construction.
type Page struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Blocks     []Block `json:"blocks,omitempty"`
}

// StructureSummary carries document-level metadata from the remote service.
type StructureSummary struct {
	PageCount  int      `json:"page_count"`
	BlockCount int      `json:"block_count"`
	Confidence *float64 `json:"confidence,omitempty"`
	Language   string   `json:"language,omitempty"`
}

// Result is the normalized output of one document analysis.
type Result struct {
	Text      string           `json:"text"`
	Pages     []Page           `json:"pages"`
	Structure StructureSummary `json:"structure_summary"`
}

// Options carries per-call overrides for an analysis request. A non-empty
// OrganizationID takes precedence over the client's configured default and is
// applied to both the submit and poll requests of that call.
type Options struct {
	DocumentID     string
	OrganizationID string
}

// FlattenBlocks returns the block tree in pre-order using an explicit
// work-list. Nesting depth is untrusted remote input, so no recursion.
func FlattenBlocks(blocks []Block) []Block {
	if len(blocks) == 0 {
		return nil
	}
	var flat []Block
	stack := make([]Block, len(blocks))
	for i := range blocks {
		// Reverse so the stack pops in document order.
		stack[len(blocks)-1-i] = blocks[i]
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := b.Children
		b.Children = nil
		flat = append(flat, b)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return flat
}
