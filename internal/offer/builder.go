// Package offer builds the canonical UnifiedOffer record from the secondary
// AI extraction and the classified sections. The extraction wins when a field
// is present and well-typed; sections are the fallback; everything else lands
// in the missing-field ledger with the type-appropriate zero value.
package offer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"polisave/internal/classifier"
	"polisave/internal/domain"
)

// BuildInput carries everything the builder reconciles for one document.
type BuildInput struct {
	DocumentID     string
	SourceDocument string
	// Extraction is the secondary AI extraction payload. Its shape is defined
	// elsewhere, so every field read is defensively type-checked.
	Extraction   map[string]any
	Segmentation classifier.Segmentation
}

// discountLineRe matches "zniżka: 10% za pakiet" style lines inside
// discount-classified sections.
var discountLineRe = regexp.MustCompile(`(?i)(zniżk\w*|rabat\w*|promocj\w*|obniżk\w*|upust\w*)\s*[:\-]?\s+(\S.*)`)

// Build produces one UnifiedOffer. Fields resolve independently: the AI
// extraction first, classified sections second, the missing ledger last. The
// confidence grade is a deterministic function of the ledger and the
// classifier's identified-section ratio.
func Build(input BuildInput) *domain.UnifiedOffer {
	ex := input.Extraction
	if ex == nil {
		ex = map[string]any{}
	}

	b := &builder{extraction: ex, segmentation: input.Segmentation}

	offerID := input.DocumentID
	if offerID == "" {
		offerID = uuid.NewString()
	}

	out := &domain.UnifiedOffer{
		OfferID:        offerID,
		SourceDocument: input.SourceDocument,
	}

	out.Insurer = b.resolveString("insurer", "insurer", "insurer_name", "company")
	out.ProductType = b.resolveProductType()
	out.Insured = b.resolveInsured()
	out.BaseContracts = b.resolveContracts("base_contracts", "base_contract")
	out.AdditionalContracts = b.resolveContracts("additional_contracts", "additional_contract")
	out.Discounts = b.resolveDiscounts()
	out.TotalPremiumBeforeDiscounts = b.resolveNumber("total_premium_before_discounts", "total_premium_before_discounts", "premium_before_discounts")
	out.TotalPremiumAfterDiscounts = b.resolvePremiumAfter()
	out.Assistance = b.resolveAssistance()
	out.Duration = b.resolveDuration()
	out.Notes = stringSlice(ex["notes"])

	sort.Strings(b.missing)
	out.MissingFields = b.missing
	out.ExtractionConfidence = grade(b.missing, input.Segmentation.IdentifiedRatio())
	return out
}

type builder struct {
	extraction   map[string]any
	segmentation classifier.Segmentation
	missing      []string
}

func (b *builder) markMissing(path string) {
	for _, m := range b.missing {
		if m == path {
			return
		}
	}
	b.missing = append(b.missing, path)
}

// resolveString reads the first well-typed string among the given extraction
// keys, marking path missing when none is usable.
func (b *builder) resolveString(path string, keys ...string) string {
	for _, key := range keys {
		if s, ok := b.extraction[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	b.markMissing(path)
	return ""
}

func (b *builder) resolveProductType() domain.ProductType {
	if s, ok := b.extraction["product_type"].(string); ok {
		switch pt := domain.ProductType(strings.ToLower(strings.TrimSpace(s))); pt {
		case domain.ProductLife, domain.ProductHealth, domain.ProductAccident,
			domain.ProductTravel, domain.ProductProperty, domain.ProductAuto:
			return pt
		}
	}
	if guess := b.segmentation.Product.Type; guess != domain.ProductUnknown && guess != "" {
		return guess
	}
	b.markMissing("product_type")
	return domain.ProductUnknown
}

// resolveInsured uses the extraction's insured array verbatim, validating
// every numeric as it goes. The result is never empty: with no usable array a
// single placeholder person is emitted and "insured" is marked missing, since
// downstream rendering assumes at least one row.
func (b *builder) resolveInsured() []domain.InsuredPerson {
	raw, _ := b.extraction["insured"].([]any)
	var people []domain.InsuredPerson

	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		person := domain.InsuredPerson{}
		if s, ok := obj["name"].(string); ok && strings.TrimSpace(s) != "" {
			person.Name = strings.TrimSpace(s)
		} else {
			b.markMissing(fmt.Sprintf("insured[%d].name", i))
		}
		if age := ParseNumber(obj["age"]); age != nil {
			n := int(*age)
			person.Age = &n
		} else {
			b.markMissing(fmt.Sprintf("insured[%d].age", i))
		}
		if s, ok := obj["role"].(string); ok {
			person.Role = strings.TrimSpace(s)
		}

		plans, _ := obj["plans"].([]any)
		for j, p := range plans {
			planObj, ok := p.(map[string]any)
			if !ok {
				continue
			}
			plan := domain.PlanEntry{}
			if s, ok := planObj["name"].(string); ok {
				plan.Name = strings.TrimSpace(s)
			}
			if plan.Sum = ParseNumber(planObj["sum"]); plan.Sum == nil {
				b.markMissing(fmt.Sprintf("insured[%d].plans[%d].sum", i, j))
			}
			if plan.Premium = ParseNumber(planObj["premium"]); plan.Premium == nil {
				b.markMissing(fmt.Sprintf("insured[%d].plans[%d].premium", i, j))
			}
			person.Plans = append(person.Plans, plan)
		}
		people = append(people, person)
	}

	if len(people) == 0 {
		b.markMissing("insured")
		return []domain.InsuredPerson{{}}
	}
	return people
}

func (b *builder) resolveContracts(path string, keys ...string) []domain.ContractItem {
	var raw []any
	for _, key := range append([]string{path}, keys...) {
		if arr, ok := b.extraction[key].([]any); ok && len(arr) > 0 {
			raw = arr
			break
		}
	}
	if len(raw) == 0 {
		b.markMissing(path)
		return nil
	}

	var items []domain.ContractItem
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
				items = append(items, domain.ContractItem{Name: strings.TrimSpace(s)})
			}
			continue
		}
		item := domain.ContractItem{}
		if s, ok := obj["name"].(string); ok {
			item.Name = strings.TrimSpace(s)
		}
		if item.Sum = ParseNumber(obj["sum"]); item.Sum == nil {
			b.markMissing(fmt.Sprintf("%s[%d].sum", path, i))
		}
		if item.Premium = ParseNumber(obj["premium"]); item.Premium == nil {
			b.markMissing(fmt.Sprintf("%s[%d].premium", path, i))
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		b.markMissing(path)
	}
	return items
}

// resolveDiscounts unions the extraction's discount strings with lines
// matched inside discount-classified sections, de-duplicated by exact string
// equality after trimming.
func (b *builder) resolveDiscounts() []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, s := range stringSlice(b.extraction["discounts"]) {
		add(s)
	}
	for _, section := range b.segmentation.Sections {
		if section.Type != domain.SectionDiscount {
			continue
		}
		for _, line := range strings.Split(section.Content, "\n") {
			if m := discountLineRe.FindString(line); m != "" {
				add(m)
			}
		}
	}

	if len(out) == 0 {
		b.markMissing("discounts")
	}
	return out
}

func (b *builder) resolveNumber(path string, keys ...string) *float64 {
	for _, key := range keys {
		if n := ParseNumber(b.extraction[key]); n != nil {
			return n
		}
	}
	b.markMissing(path)
	return nil
}

// resolvePremiumAfter falls back to the legacy single premium.total field
// before marking the after-discounts total missing.
func (b *builder) resolvePremiumAfter() *float64 {
	if n := ParseNumber(b.extraction["total_premium_after_discounts"]); n != nil {
		return n
	}
	if premium, ok := b.extraction["premium"].(map[string]any); ok {
		if n := ParseNumber(premium["total"]); n != nil {
			return n
		}
	}
	b.markMissing("total_premium_after_discounts")
	return nil
}

// resolveAssistance accepts both the object-array shape and the legacy
// string-array shape; bare strings are upgraded to the default 24/7 coverage.
func (b *builder) resolveAssistance() []domain.AssistanceItem {
	raw, _ := b.extraction["assistance"].([]any)
	var items []domain.AssistanceItem
	for _, entry := range raw {
		switch val := entry.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				items = append(items, domain.AssistanceItem{
					Name: s, Coverage: "24/7", Limits: "standardowe",
				})
			}
		case map[string]any:
			item := domain.AssistanceItem{}
			if s, ok := val["name"].(string); ok {
				item.Name = strings.TrimSpace(s)
			}
			if s, ok := val["coverage"].(string); ok {
				item.Coverage = strings.TrimSpace(s)
			}
			if s, ok := val["limits"].(string); ok {
				item.Limits = strings.TrimSpace(s)
			}
			if item.Name != "" {
				items = append(items, item)
			}
		}
	}
	if len(items) == 0 {
		b.markMissing("assistance")
	}
	return items
}

func (b *builder) resolveDuration() domain.OfferDuration {
	d := domain.OfferDuration{}
	obj, _ := b.extraction["duration"].(map[string]any)
	if obj == nil {
		obj = b.extraction
	}

	pick := func(keys ...string) string {
		for _, key := range keys {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}

	if d.Start = pick("start", "valid_from"); d.Start == "" {
		b.markMissing("duration.start")
	}
	if d.End = pick("end", "valid_to"); d.End == "" {
		b.markMissing("duration.end")
	}
	if d.Variant = pick("variant"); d.Variant == "" {
		b.markMissing("duration.variant")
	}
	return d
}

// grade derives the extraction confidence. The precedence is fixed: the
// hard-required fields are checked first, the volume/ratio downgrade second,
// and high requires both a strong ratio and a clean ledger.
func grade(missing []string, identifiedRatio float64) domain.ExtractionConfidence {
	for _, m := range missing {
		if m == "insured" || m == "total_premium_after_discounts" {
			return domain.ConfidenceLow
		}
	}
	if len(missing) > 3 || (identifiedRatio >= 0.5 && identifiedRatio <= 0.7) {
		return domain.ConfidenceMedium
	}
	if identifiedRatio > 0.7 && len(missing) == 0 {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceMedium
}

func stringSlice(v any) []string {
	var out []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}
