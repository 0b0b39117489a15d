// Package classifier turns raw page or plain-text content into typed,
// confidence-scored insurance sections. It is independent of which upstream
// extractor produced the text: block mode consumes analyzer pages with their
// block trees, paragraph mode consumes plain text from the local extractor.
package classifier

import (
	"strings"

	"polisave/internal/analysis"
	"polisave/internal/domain"
)

const (
	minParagraphLen = 10
	minBlockLen     = 20
	snippetLen      = 240

	unmatchedBlockConfidence = 0.2
	matchedBlockFloor        = 0.4
	matchedBlockCeiling      = 0.9
)

// ParsedSection is one classified unit of document text. Sections are emitted
// in encounter order, not grouped by type.
type ParsedSection struct {
	Type       domain.SectionType `json:"type"`
	Content    string             `json:"content"`
	Keywords   []string           `json:"keywords,omitempty"`
	Confidence float64            `json:"confidence"`
	PageStart  int                `json:"page_start,omitempty"`
	PageEnd    int                `json:"page_end,omitempty"`
	Snippet    string             `json:"snippet"`
}

// SectionSource records where a section came from, for diagnostics.
type SectionSource struct {
	Type       domain.SectionType `json:"type"`
	Origin     string             `json:"origin"` // paragraph | block | page
	PageNumber int                `json:"page_number,omitempty"`
}

// Segmentation is the full classifier output for one document.
type Segmentation struct {
	Sections []ParsedSection  `json:"sections"`
	Sources  []SectionSource  `json:"sources"`
	Product  ProductTypeGuess `json:"product"`
}

// IdentifiedRatio is the share of sections classified as something other than
// unknown. The offer builder folds it into the extraction confidence grade.
func (s Segmentation) IdentifiedRatio() float64 {
	if len(s.Sections) == 0 {
		return 0
	}
	identified := 0
	for _, sec := range s.Sections {
		if sec.Type != domain.SectionUnknown {
			identified++
		}
	}
	return float64(identified) / float64(len(s.Sections))
}

// Segment classifies analyzer output in block mode: every page contributes a
// synthetic whole-page candidate plus its flattened block tree. Candidates
// under 20 characters are skipped.
func Segment(pages []analysis.Page) Segmentation {
	var seg Segmentation
	var fullText []string

	for _, page := range pages {
		if page.Text != "" {
			fullText = append(fullText, page.Text)
		}

		if text := strings.TrimSpace(page.Text); len([]rune(text)) >= minBlockLen {
			section := classifyCandidate(text, "", nil, page.PageNumber)
			seg.Sections = append(seg.Sections, section)
			seg.Sources = append(seg.Sources, SectionSource{
				Type: section.Type, Origin: "page", PageNumber: page.PageNumber,
			})
		}

		for _, block := range analysis.FlattenBlocks(page.Blocks) {
			text := strings.TrimSpace(block.Text)
			if len([]rune(text)) < minBlockLen {
				continue
			}
			hint := strings.TrimSpace(block.Category + " " + block.Label)
			pageNumber := block.PageNumber
			if pageNumber == 0 {
				pageNumber = page.PageNumber
			}
			section := classifyCandidate(text, hint, block.Confidence, pageNumber)
			seg.Sections = append(seg.Sections, section)
			seg.Sources = append(seg.Sources, SectionSource{
				Type: section.Type, Origin: "block", PageNumber: pageNumber,
			})
		}
	}

	seg.Product = InferProductType(strings.Join(fullText, "\n"))
	return seg
}

// SegmentText classifies plain text in paragraph mode: contiguous non-blank
// lines form paragraphs, paragraphs under 10 characters are dropped, and each
// paragraph's line range maps back to a page via a synthesized line→page
// index (the text divided evenly across pageCount pages).
func SegmentText(text string, pageCount int) Segmentation {
	var seg Segmentation
	lines := strings.Split(text, "\n")
	lineToPage := buildLineIndex(len(lines), pageCount)

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if len([]rune(content)) >= minParagraphLen {
			section := classifyParagraph(content, lineToPage(start), lineToPage(end-1))
			seg.Sections = append(seg.Sections, section)
			seg.Sources = append(seg.Sources, SectionSource{
				Type: section.Type, Origin: "paragraph", PageNumber: section.PageStart,
			})
		}
		start = -1
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(lines))

	seg.Product = InferProductType(text)
	return seg
}

// buildLineIndex returns a line→page mapping for synthesized pages. With no
// usable page count every line maps to page 1.
func buildLineIndex(lineCount, pageCount int) func(int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	perPage := (lineCount + pageCount - 1) / pageCount
	if perPage < 1 {
		perPage = 1
	}
	return func(line int) int {
		page := line/perPage + 1
		if page > pageCount {
			page = pageCount
		}
		return page
	}
}

func classifyParagraph(content string, pageStart, pageEnd int) ParsedSection {
	sectionType, matched, ratio := classifyText(content, "")
	return ParsedSection{
		Type:       sectionType,
		Content:    content,
		Keywords:   matched,
		Confidence: ratio,
		PageStart:  pageStart,
		PageEnd:    pageEnd,
		Snippet:    snippet(content),
	}
}

// classifyCandidate scores a block-mode candidate. An explicit block-level
// confidence from the analyzer takes precedence over the computed score;
// otherwise matched candidates score 0.4+ratio capped at 0.9 and unmatched
// ones floor at 0.2.
func classifyCandidate(content, hint string, explicit *float64, pageNumber int) ParsedSection {
	sectionType, matched, ratio := classifyText(content, hint)

	var confidence float64
	switch {
	case explicit != nil:
		confidence = *explicit
	case sectionType == domain.SectionUnknown:
		confidence = unmatchedBlockConfidence
	default:
		confidence = matchedBlockFloor + ratio
		if confidence > matchedBlockCeiling {
			confidence = matchedBlockCeiling
		}
	}

	return ParsedSection{
		Type:       sectionType,
		Content:    content,
		Keywords:   matched,
		Confidence: confidence,
		PageStart:  pageNumber,
		PageEnd:    pageNumber,
		Snippet:    snippet(content),
	}
}

// classifyText scores the candidate against every section category and
// returns the best match. Only a strictly higher ratio displaces an earlier
// category, so ties resolve to catalog declaration order.
func classifyText(content, hint string) (domain.SectionType, []string, float64) {
	haystack := strings.ToLower(content)
	if hint != "" {
		haystack += " " + strings.ToLower(hint)
	}

	best := domain.SectionUnknown
	var bestMatched []string
	bestRatio := 0.0

	for _, cat := range sectionCatalog {
		var matched []string
		for _, kw := range cat.Keywords {
			if strings.Contains(haystack, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}
		ratio := float64(len(matched)) / float64(len(cat.Keywords))
		if ratio > bestRatio {
			best = cat.Type
			bestMatched = matched
			bestRatio = ratio
		}
	}
	return best, bestMatched, bestRatio
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLen {
		return content
	}
	return string(runes[:snippetLen]) + "..."
}
