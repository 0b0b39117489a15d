package extract

import "fmt"

// BuildOfferPrompt returns the extraction prompt for one insurance offer
// document. The model must answer with a single JSON object matching
// OfferSchema; productHint narrows the expected product when the uploader
// supplied one.
func BuildOfferPrompt(productHint string) string {
	hint := "unknown"
	if productHint != "" {
		hint = productHint
	}
	return fmt.Sprintf(`You are extracting structured data from a Polish insurance offer document (product hint: %s).

Return ONLY a single JSON object, no markdown fences and no commentary, with these fields:
- "insurer": insurer name as printed on the offer
- "product_type": one of "life", "health", "accident", "travel", "property", "auto"
- "insured": array of {"name", "age", "role", "plans": [{"name", "sum", "premium"}]}
- "base_contracts": array of {"name", "sum", "premium"}
- "additional_contracts": array of {"name", "sum", "premium"}
- "discounts": array of discount descriptions as printed
- "total_premium_before_discounts": number
- "total_premium_after_discounts": number
- "assistance": array of {"name", "coverage", "limits"}
- "duration": {"start", "end", "variant"} with dates in YYYY-MM-DD
- "notes": array of free-text remarks worth surfacing to a human reviewer

Amounts in the document use Polish formatting ("1 234,56 zł"); emit them as plain numbers.
Omit a field entirely if the document does not state it. Never guess a value.`, hint)
}
