package offer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polisave/internal/domain"
	"polisave/internal/offer"
)

func ptr(f float64) *float64 { return &f }

func sampleOffers() []domain.UnifiedOffer {
	age := 34
	return []domain.UnifiedOffer{
		{
			OfferID:        "o1",
			SourceDocument: "oferta_pzu.pdf",
			Insurer:        "PZU",
			ProductType:    domain.ProductLife,
			Insured: []domain.InsuredPerson{
				{Name: "Jan Kowalski", Age: &age, Role: "główny"},
			},
			BaseContracts: []domain.ContractItem{
				{Name: "Umowa podstawowa", Sum: ptr(100000)},
			},
			Discounts:                   []string{"10% online"},
			TotalPremiumBeforeDiscounts: ptr(134),
			TotalPremiumAfterDiscounts:  ptr(120.5),
			Assistance: []domain.AssistanceItem{
				{Name: "Pomoc medyczna", Coverage: "24/7"},
			},
			Duration:             domain.OfferDuration{Start: "2026-09-01", End: "2027-08-31", Variant: "standard"},
			ExtractionConfidence: domain.ConfidenceHigh,
		},
		{
			OfferID:              "o2",
			SourceDocument:       "oferta_warta.pdf",
			Insured:              []domain.InsuredPerson{{}},
			MissingFields:        []string{"insured", "insurer"},
			ExtractionConfidence: domain.ConfidenceLow,
		},
	}
}

func TestBuildComparison_Layout(t *testing.T) {
	table := offer.BuildComparison(sampleOffers())

	assert.Equal(t, []string{"Field", "oferta_pzu.pdf", "oferta_warta.pdf"}, table.Header)
	require.Len(t, table.Rows, 15)
	for _, row := range table.Rows {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, "Insurer", table.Rows[0][0])
	assert.Equal(t, "PZU", table.Rows[0][1])
}

func TestBuildComparison_MissingCells(t *testing.T) {
	table := offer.BuildComparison(sampleOffers())

	rowByField := map[string][]string{}
	for _, row := range table.Rows {
		rowByField[row[0]] = row
	}

	assert.Equal(t, offer.MissingCell, rowByField["Insurer"][2])
	assert.Equal(t, offer.MissingCell, rowByField["Product type"][2])
	assert.Equal(t, offer.MissingCell, rowByField["Insured"][2])
	assert.Equal(t, offer.MissingCell, rowByField["Premium before discounts"][2])
	assert.Equal(t, offer.MissingCell, rowByField["Premium after discounts"][2])
	assert.Equal(t, "insured, insurer", rowByField["Missing fields"][2])
	assert.Equal(t, "low", rowByField["Extraction confidence"][2])
}

func TestBuildComparison_Formatting(t *testing.T) {
	table := offer.BuildComparison(sampleOffers())

	rowByField := map[string][]string{}
	for _, row := range table.Rows {
		rowByField[row[0]] = row
	}

	assert.Equal(t, "Jan Kowalski (34), główny", rowByField["Insured"][1])
	assert.Equal(t, "Umowa podstawowa 100000.00", rowByField["Base contracts"][1])
	assert.Equal(t, "120.50", rowByField["Premium after discounts"][1])
	assert.Equal(t, "Pomoc medyczna", rowByField["Assistance"][1])
	assert.Equal(t, "2026-09-01", rowByField["Valid from"][1])
}

func TestBuildComparison_HeaderFallsBackToOfferID(t *testing.T) {
	table := offer.BuildComparison([]domain.UnifiedOffer{{OfferID: "offer-x"}})
	assert.Equal(t, []string{"Field", "offer-x"}, table.Header)
}
