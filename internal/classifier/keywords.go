package classifier

import "polisave/internal/domain"

// Keyword catalogs for Polish insurance offer documents. Both catalogs are
// ordered slices, not maps: classification ties resolve to the first declared
// category, and that order must be stable across runs. The catalogs are
// read-only and safe to share across concurrent segmentations.

type sectionKeywords struct {
	Type     domain.SectionType
	Keywords []string
}

var sectionCatalog = []sectionKeywords{
	{
		Type: domain.SectionInsured,
		Keywords: []string{
			"ubezpieczony",
			"ubezpieczona",
			"ubezpieczeni",
			"osoba ubezpieczona",
			"współubezpieczony",
			"małżonek",
			"partner",
			"dziecko",
			"wiek",
		},
	},
	{
		Type: domain.SectionBaseContract,
		Keywords: []string{
			"umowa podstawowa",
			"umowa główna",
			"zakres podstawowy",
			"ochrona podstawowa",
			"suma ubezpieczenia",
			"śmierć ubezpieczonego",
		},
	},
	{
		Type: domain.SectionAdditionalContract,
		Keywords: []string{
			"umowa dodatkowa",
			"umowy dodatkowe",
			"opcja dodatkowa",
			"pakiet dodatkowy",
			"rozszerzenie ochrony",
			"poważne zachorowanie",
			"pobyt w szpitalu",
			"trwały uszczerbek",
		},
	},
	{
		Type: domain.SectionAssistance,
		Keywords: []string{
			"assistance",
			"pomoc medyczna",
			"infolinia medyczna",
			"organizacja wizyty",
			"transport medyczny",
			"druga opinia medyczna",
		},
	},
	{
		Type: domain.SectionPremium,
		Keywords: []string{
			"składka",
			"składki",
			"składka miesięczna",
			"składka roczna",
			"łączna składka",
			"suma składek",
			"do zapłaty",
		},
	},
	{
		Type: domain.SectionDiscount,
		Keywords: []string{
			"zniżka",
			"zniżki",
			"rabat",
			"promocja",
			"obniżka",
			"upust",
		},
	},
	{
		Type: domain.SectionDuration,
		Keywords: []string{
			"okres ubezpieczenia",
			"okres ochrony",
			"czas trwania",
			"data rozpoczęcia",
			"data zakończenia",
			"obowiązuje od",
			"obowiązuje do",
			"wariant",
		},
	},
}

type productKeywords struct {
	Type     domain.ProductType
	Keywords []string
}

var productCatalog = []productKeywords{
	{
		Type: domain.ProductLife,
		Keywords: []string{
			"na życie",
			"ubezpieczenie życia",
			"polisa życiowa",
			"dożycie",
			"śmierć ubezpieczonego",
		},
	},
	{
		Type: domain.ProductHealth,
		Keywords: []string{
			"zdrowotne",
			"leczenie",
			"wizyty lekarskie",
			"badania diagnostyczne",
			"rehabilitacja",
			"szpital",
		},
	},
	{
		Type: domain.ProductAccident,
		Keywords: []string{
			"nnw",
			"następstw nieszczęśliwych wypadków",
			"nieszczęśliwy wypadek",
			"uszczerbek na zdrowiu",
			"złamanie",
		},
	},
	{
		Type: domain.ProductTravel,
		Keywords: []string{
			"podróż",
			"turystyczne",
			"za granicą",
			"koszty leczenia za granicą",
			"bagaż",
		},
	},
	{
		Type: domain.ProductProperty,
		Keywords: []string{
			"mieszkanie",
			"nieruchomość",
			"mienie",
			"zalanie",
			"kradzież z włamaniem",
		},
	},
	{
		Type: domain.ProductAuto,
		Keywords: []string{
			"oc komunikacyjne",
			"autocasco",
			"pojazd",
			"samochód",
			"kierowca",
		},
	},
}
