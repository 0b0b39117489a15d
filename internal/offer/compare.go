package offer

import (
	"fmt"
	"strconv"
	"strings"

	"polisave/internal/domain"
)

// MissingCell is how the comparison table renders a value the builder could
// not determine.
const MissingCell = "—"

// ComparisonTable is the side-by-side view of selected offers: one column
// per offer, one row per canonical field.
type ComparisonTable struct {
	Header []string
	Rows   [][]string
}

var comparisonFields = []string{
	"Insurer",
	"Product type",
	"Insured",
	"Base contracts",
	"Additional contracts",
	"Discounts",
	"Premium before discounts",
	"Premium after discounts",
	"Assistance",
	"Valid from",
	"Valid to",
	"Variant",
	"Notes",
	"Missing fields",
	"Extraction confidence",
}

// BuildComparison lays out the selected offers side by side. The first column
// holds field names; each offer contributes one column headed by its source
// document name.
func BuildComparison(offers []domain.UnifiedOffer) ComparisonTable {
	table := ComparisonTable{
		Header: make([]string, 0, len(offers)+1),
	}
	table.Header = append(table.Header, "Field")
	for i := range offers {
		name := offers[i].SourceDocument
		if name == "" {
			name = offers[i].OfferID
		}
		table.Header = append(table.Header, name)
	}

	for _, field := range comparisonFields {
		row := make([]string, 0, len(offers)+1)
		row = append(row, field)
		for i := range offers {
			row = append(row, comparisonCell(&offers[i], field))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func comparisonCell(o *domain.UnifiedOffer, field string) string {
	switch field {
	case "Insurer":
		return orMissing(o.Insurer)
	case "Product type":
		if o.ProductType == "" || o.ProductType == domain.ProductUnknown {
			return MissingCell
		}
		return string(o.ProductType)
	case "Insured":
		return orMissing(formatInsured(o.Insured))
	case "Base contracts":
		return orMissing(formatContracts(o.BaseContracts))
	case "Additional contracts":
		return orMissing(formatContracts(o.AdditionalContracts))
	case "Discounts":
		return orMissing(strings.Join(o.Discounts, "; "))
	case "Premium before discounts":
		return formatAmount(o.TotalPremiumBeforeDiscounts)
	case "Premium after discounts":
		return formatAmount(o.TotalPremiumAfterDiscounts)
	case "Assistance":
		return orMissing(formatAssistance(o.Assistance))
	case "Valid from":
		return orMissing(o.Duration.Start)
	case "Valid to":
		return orMissing(o.Duration.End)
	case "Variant":
		return orMissing(o.Duration.Variant)
	case "Notes":
		return orMissing(strings.Join(o.Notes, "; "))
	case "Missing fields":
		return strings.Join(o.MissingFields, ", ")
	case "Extraction confidence":
		return string(o.ExtractionConfidence)
	default:
		return ""
	}
}

func formatInsured(people []domain.InsuredPerson) string {
	var parts []string
	for _, p := range people {
		name := p.Name
		if name == "" {
			continue
		}
		if p.Age != nil {
			name = fmt.Sprintf("%s (%d)", name, *p.Age)
		}
		if p.Role != "" {
			name += ", " + p.Role
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "; ")
}

func formatContracts(items []domain.ContractItem) string {
	var parts []string
	for _, c := range items {
		s := c.Name
		if c.Sum != nil {
			s += " " + formatAmount(c.Sum)
		}
		if s != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "; ")
}

func formatAssistance(items []domain.AssistanceItem) string {
	var parts []string
	for _, a := range items {
		if a.Name != "" {
			parts = append(parts, a.Name)
		}
	}
	return strings.Join(parts, "; ")
}

func formatAmount(v *float64) string {
	if v == nil {
		return MissingCell
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return MissingCell
	}
	return s
}
