package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polisave/internal/classifier"
	"polisave/internal/domain"
)

func TestInferProductType_Life(t *testing.T) {
	guess := classifier.InferProductType(
		"Oferta ubezpieczenia na życie i dożycie. Świadczenie z tytułu śmierć ubezpieczonego.")

	assert.Equal(t, domain.ProductLife, guess.Type)
	require.NotEmpty(t, guess.Matches)
	assert.Equal(t, domain.ProductLife, guess.Matches[0].Type)
	assert.Contains(t, guess.Matches[0].Keywords, "na życie")
}

func TestInferProductType_BestRatioWins(t *testing.T) {
	// One life hit out of five versus three auto hits out of five.
	guess := classifier.InferProductType(
		"Ubezpieczenie na życie kierowcy. Pojazd: samochód osobowy, autocasco w pakiecie.")

	assert.Equal(t, domain.ProductAuto, guess.Type)
	assert.Len(t, guess.Matches, 2)
}

func TestInferProductType_NoMatch(t *testing.T) {
	guess := classifier.InferProductType("completely unrelated english text")

	assert.Equal(t, domain.ProductUnknown, guess.Type)
	assert.Empty(t, guess.Matches)
}
