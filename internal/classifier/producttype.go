package classifier

import (
	"strings"

	"polisave/internal/domain"
)

// ProductMatch lists one product type's keyword hits, for diagnostics.
type ProductMatch struct {
	Type     domain.ProductType `json:"type"`
	Keywords []string           `json:"keywords"`
	Ratio    float64            `json:"ratio"`
}

// ProductTypeGuess is the product-type heuristic result: the winning type
// plus the individual matches of every type that matched at all.
type ProductTypeGuess struct {
	Type    domain.ProductType `json:"type"`
	Matches []ProductMatch     `json:"matches,omitempty"`
}

// InferProductType scans the full document text against the product keyword
// catalog and picks the type with the highest matched ratio. With no keyword
// hit anywhere the guess is unknown with no matches.
func InferProductType(text string) ProductTypeGuess {
	haystack := strings.ToLower(text)
	guess := ProductTypeGuess{Type: domain.ProductUnknown}
	bestRatio := 0.0

	for _, cat := range productCatalog {
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
		guess.Matches = append(guess.Matches, ProductMatch{
			Type: cat.Type, Keywords: matched, Ratio: ratio,
		})
		if ratio > bestRatio {
			guess.Type = cat.Type
			bestRatio = ratio
		}
	}
	return guess
}
