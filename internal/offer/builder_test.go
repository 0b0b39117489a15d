package offer_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polisave/internal/classifier"
	"polisave/internal/domain"
	"polisave/internal/offer"
)

// segmentationWithRatio fabricates a segmentation whose identified ratio is
// identified/total, using premium sections as the identified ones.
func segmentationWithRatio(identified, total int) classifier.Segmentation {
	seg := classifier.Segmentation{}
	for i := 0; i < total; i++ {
		sectionType := domain.SectionUnknown
		if i < identified {
			sectionType = domain.SectionPremium
		}
		seg.Sections = append(seg.Sections, classifier.ParsedSection{Type: sectionType})
	}
	return seg
}

func fullExtraction() map[string]any {
	return map[string]any{
		"insurer":      "PZU",
		"product_type": "life",
		"insured": []any{
			map[string]any{
				"name": "Jan Kowalski",
				"age":  float64(34),
				"role": "główny",
				"plans": []any{
					map[string]any{"name": "Ochrona Plus", "sum": "100 000,00", "premium": "89,50"},
				},
			},
		},
		"base_contracts": []any{
			map[string]any{"name": "Umowa podstawowa", "sum": float64(100000), "premium": float64(89.5)},
		},
		"additional_contracts": []any{
			map[string]any{"name": "Poważne zachorowanie", "sum": float64(50000), "premium": float64(31)},
		},
		"discounts":                      []any{"10% za zakup online"},
		"total_premium_before_discounts": "134,00",
		"total_premium_after_discounts":  "120,50",
		"assistance": []any{
			map[string]any{"name": "Pomoc medyczna", "coverage": "24/7", "limits": "3 wizyty"},
		},
		"duration": map[string]any{"start": "2026-09-01", "end": "2027-08-31", "variant": "standard"},
		"notes":    []any{"oferta ważna 30 dni"},
	}
}

func TestBuild_CompleteExtraction(t *testing.T) {
	out := offer.Build(offer.BuildInput{
		DocumentID:     "doc-1",
		SourceDocument: "oferta_pzu.pdf",
		Extraction:     fullExtraction(),
		Segmentation:   segmentationWithRatio(8, 10),
	})

	assert.Equal(t, "doc-1", out.OfferID)
	assert.Equal(t, "PZU", out.Insurer)
	assert.Equal(t, domain.ProductLife, out.ProductType)
	require.Len(t, out.Insured, 1)
	assert.Equal(t, "Jan Kowalski", out.Insured[0].Name)
	require.NotNil(t, out.Insured[0].Age)
	assert.Equal(t, 34, *out.Insured[0].Age)
	require.Len(t, out.Insured[0].Plans, 1)
	require.NotNil(t, out.Insured[0].Plans[0].Sum)
	assert.InDelta(t, 100000, *out.Insured[0].Plans[0].Sum, 1e-9)

	require.NotNil(t, out.TotalPremiumBeforeDiscounts)
	assert.InDelta(t, 134.0, *out.TotalPremiumBeforeDiscounts, 1e-9)
	require.NotNil(t, out.TotalPremiumAfterDiscounts)
	assert.InDelta(t, 120.5, *out.TotalPremiumAfterDiscounts, 1e-9)

	assert.Empty(t, out.MissingFields)
	assert.Equal(t, domain.ConfidenceHigh, out.ExtractionConfidence)
}

func TestBuild_EmptyExtraction(t *testing.T) {
	out := offer.Build(offer.BuildInput{
		SourceDocument: "unknown.pdf",
		Extraction:     nil,
		Segmentation:   classifier.Segmentation{},
	})

	assert.NotEmpty(t, out.OfferID)

	// Insured is never empty: one placeholder plus the ledger entry.
	require.Len(t, out.Insured, 1)
	assert.Empty(t, out.Insured[0].Name)
	assert.Contains(t, out.MissingFields, "insured")
	assert.Contains(t, out.MissingFields, "total_premium_after_discounts")
	assert.Contains(t, out.MissingFields, "insurer")
	assert.Contains(t, out.MissingFields, "product_type")

	assert.Nil(t, out.TotalPremiumBeforeDiscounts)
	assert.Nil(t, out.TotalPremiumAfterDiscounts)

	assert.True(t, sort.StringsAreSorted(out.MissingFields))
	assert.Equal(t, domain.ConfidenceLow, out.ExtractionConfidence)
}

func TestBuild_LegacyPremiumTotalFallback(t *testing.T) {
	ex := fullExtraction()
	delete(ex, "total_premium_after_discounts")
	ex["premium"] = map[string]any{"total": "110,00"}

	out := offer.Build(offer.BuildInput{
		DocumentID:   "doc-2",
		Extraction:   ex,
		Segmentation: segmentationWithRatio(8, 10),
	})

	require.NotNil(t, out.TotalPremiumAfterDiscounts)
	assert.InDelta(t, 110.0, *out.TotalPremiumAfterDiscounts, 1e-9)
	assert.NotContains(t, out.MissingFields, "total_premium_after_discounts")
}

func TestBuild_AssistanceStringUpgrade(t *testing.T) {
	ex := fullExtraction()
	ex["assistance"] = []any{"Telemedycyna"}

	out := offer.Build(offer.BuildInput{
		DocumentID:   "doc-3",
		Extraction:   ex,
		Segmentation: segmentationWithRatio(8, 10),
	})

	require.Len(t, out.Assistance, 1)
	assert.Equal(t, domain.AssistanceItem{
		Name: "Telemedycyna", Coverage: "24/7", Limits: "standardowe",
	}, out.Assistance[0])
}

func TestBuild_DiscountUnionAndDedupe(t *testing.T) {
	ex := fullExtraction()
	ex["discounts"] = []any{"zniżka: 10% za pakiet"}

	seg := segmentationWithRatio(8, 10)
	seg.Sections = append(seg.Sections, classifier.ParsedSection{
		Type:    domain.SectionDiscount,
		Content: "zniżka: 10% za pakiet\nrabat lojalnościowy 5%\nzwykła linia bez promocji",
	})

	out := offer.Build(offer.BuildInput{
		DocumentID:   "doc-4",
		Extraction:   ex,
		Segmentation: seg,
	})

	assert.Equal(t, []string{"zniżka: 10% za pakiet", "rabat lojalnościowy 5%"}, out.Discounts)
}

func TestBuild_ProductTypeFallsBackToClassifier(t *testing.T) {
	ex := fullExtraction()
	ex["product_type"] = "spaceship" // not a known enum value

	seg := segmentationWithRatio(8, 10)
	seg.Product = classifier.ProductTypeGuess{Type: domain.ProductHealth}

	out := offer.Build(offer.BuildInput{
		DocumentID:   "doc-5",
		Extraction:   ex,
		Segmentation: seg,
	})

	assert.Equal(t, domain.ProductHealth, out.ProductType)
	assert.NotContains(t, out.MissingFields, "product_type")
}

func TestBuild_InsuredSubfieldLedger(t *testing.T) {
	ex := fullExtraction()
	ex["insured"] = []any{
		map[string]any{
			"name": "Anna Nowak",
			// age absent
			"plans": []any{
				map[string]any{"name": "Pakiet", "sum": "not a number"},
			},
		},
	}

	out := offer.Build(offer.BuildInput{
		DocumentID:   "doc-6",
		Extraction:   ex,
		Segmentation: segmentationWithRatio(8, 10),
	})

	assert.Contains(t, out.MissingFields, "insured[0].age")
	assert.Contains(t, out.MissingFields, "insured[0].plans[0].sum")
	assert.Contains(t, out.MissingFields, "insured[0].plans[0].premium")
	assert.NotContains(t, out.MissingFields, "insured")
}

func TestGrade_Precedence(t *testing.T) {
	base := fullExtraction()

	// Missing the after-discounts premium forces low regardless of ratio.
	ex := map[string]any{}
	for k, v := range base {
		ex[k] = v
	}
	delete(ex, "total_premium_after_discounts")
	out := offer.Build(offer.BuildInput{Extraction: ex, Segmentation: segmentationWithRatio(10, 10)})
	assert.Equal(t, domain.ConfidenceLow, out.ExtractionConfidence)

	// More than three missing fields is at most medium.
	ex = map[string]any{}
	for k, v := range base {
		ex[k] = v
	}
	delete(ex, "insurer")
	delete(ex, "discounts")
	delete(ex, "assistance")
	delete(ex, "duration")
	out = offer.Build(offer.BuildInput{Extraction: ex, Segmentation: segmentationWithRatio(10, 10)})
	assert.Equal(t, domain.ConfidenceMedium, out.ExtractionConfidence)
	assert.Greater(t, len(out.MissingFields), 3)

	// A mid-band ratio downgrades even a clean ledger.
	out = offer.Build(offer.BuildInput{Extraction: base, Segmentation: segmentationWithRatio(6, 10)})
	assert.Equal(t, domain.ConfidenceMedium, out.ExtractionConfidence)

	// Strong ratio and clean ledger is high.
	out = offer.Build(offer.BuildInput{Extraction: base, Segmentation: segmentationWithRatio(8, 10)})
	assert.Equal(t, domain.ConfidenceHigh, out.ExtractionConfidence)
}
