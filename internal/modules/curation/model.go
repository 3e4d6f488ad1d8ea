// README: Curation result and limits for the second model pass.
package curation

import "concierge/internal/modules/catalog"

const (
	// MaxCandidates bounds how many search results are shown to the curator.
	MaxCandidates = 15
	// MaxRecommendations bounds the products returned to the customer.
	MaxRecommendations = 5
	// DefaultMaxTokens bounds the curator's reply.
	DefaultMaxTokens = 800
)

// Result is the customer-facing outcome of a curation pass.
// Products are always copies of entries from the candidate list.
type Result struct {
	Reply    string            `json:"reply"`
	Products []catalog.Product `json:"products"`
}
