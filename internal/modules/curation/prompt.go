package curation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"concierge/internal/modules/catalog"
	"concierge/internal/modules/intent"
)

// SystemPrompt constrains the curator to the supplied catalog and to a reply format
// that ExtractRecommendations can parse.
const SystemPrompt = `You are a gift concierge for an online gift shop.
Your job is to select the best 3-5 products from the provided catalog
and explain why each fits the customer's needs.

STRICT RULES - you will be audited on these:
1. Only reference products in the CATALOG provided to you. Never invent products.
2. Only use attributes present in the product data (name, price, description, tags).
   Do not claim a product is "vegan" or "nut-free" unless that tag exists in the data.
3. Do not make claims about delivery timing or availability.
4. Do not upsell or pressure. Present options, then step back.
5. Keep each product explanation to 1-2 sentences focused on why it fits THIS customer.

Response format:
- Output plain text only (no Markdown).
- Do NOT use asterisks '*', bold '**', bullets, or numbered lists.
- Put each recommendation on its own line using EXACTLY this pattern:
  Product Name (SKU: CATALOG_CODE): 1-2 sentence explanation
- After the recommendations, end with this exact sentence on its own line:
  Let me know if you'd like more details on any of these, or if none of these feel right.

Do not continue beyond that unless the customer responds.

Tone: Warm, helpful, human. Like a knowledgeable friend - not a salesperson.

Output your response as plain text (not JSON). The system will parse SKUs from your response.`

const generalSearch = "General gift search"

// Summarize renders the populated intent fields one per line.
func Summarize(in intent.ExtractedIntent) string {
	var parts []string
	if v := in.OccasionValue(); v != "" {
		parts = append(parts, "Occasion: "+v)
	}
	if v := strings.TrimSpace(in.RecipientValue()); v != "" {
		parts = append(parts, "Recipient: "+v)
	}
	if v := in.UrgencyValue(); v != "" {
		parts = append(parts, "Urgency: "+v)
	}
	if v := in.BudgetValue(); v != "" {
		parts = append(parts, "Budget: "+v)
	}
	if len(in.Dietary) > 0 {
		parts = append(parts, "Dietary requirements: "+strings.Join(in.Dietary, ", "))
	}
	if len(parts) == 0 {
		return generalSearch
	}
	return strings.Join(parts, "\n")
}

// BuildPrompt renders the curator's user message. It is deterministic: the same intent
// and candidates always produce the same text. A non-positive limit means MaxCandidates.
func BuildPrompt(in intent.ExtractedIntent, candidates []catalog.Product, limit int) string {
	if limit <= 0 {
		limit = MaxCandidates
	}
	return fmt.Sprintf(`CUSTOMER INTENT:
%s

CATALOG (products matching their search):
%s

Based on the customer's needs and the available products, recommend the best 3-5 options with brief explanations.`,
		Summarize(in), encodeCatalog(truncate(candidates, limit)))
}

func encodeCatalog(products []catalog.Product) string {
	if len(products) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		// Product holds only strings, floats and string slices.
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

func truncate(products []catalog.Product, n int) []catalog.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}
