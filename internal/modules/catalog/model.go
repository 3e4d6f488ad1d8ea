// README: Catalog product record and search limits.
package catalog

import "strings"

const (
	// MaxKeywords is the number of keywords fetched per search.
	MaxKeywords = 3
	// MaxTags caps the labels kept per product.
	MaxTags = 4
)

// Product is a catalog record as shown to the curator and returned to clients.
type Product struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	PDPURL      string   `json:"pdp_url"`
}

// Key is the case-insensitive identity used for SKU deduplication.
func (p Product) Key() string {
	return SKUKey(p.SKU)
}

// SKUKey normalises a SKU for comparison.
func SKUKey(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
