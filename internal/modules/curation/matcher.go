package curation

import (
	"regexp"
	"strings"

	"concierge/internal/modules/catalog"
)

var skuMention = regexp.MustCompile(`(?i)\bSKU:\s*([A-Za-z0-9_-]{3,40})\b`)

// matchStrategy recovers recommended products from a reply. Strategies run in table
// order and the first one that returns anything wins.
type matchStrategy struct {
	name  string
	match func(reply string, candidates []catalog.Product) []catalog.Product
}

var strategies = []matchStrategy{
	{name: "sku", match: MatchBySKU},
	{name: "name", match: MatchByName},
	{name: "top", match: func(_ string, candidates []catalog.Product) []catalog.Product {
		return TopCandidates(candidates)
	}},
}

// ExtractRecommendations returns at most MaxRecommendations products, each taken from
// candidates, with no repeated SKU. Products the reply does not reference are only
// returned by the last-resort strategy, which shows the leading candidates.
func ExtractRecommendations(reply string, candidates []catalog.Product) []catalog.Product {
	products, _ := extract(reply, candidates)
	return products
}

func extract(reply string, candidates []catalog.Product) ([]catalog.Product, string) {
	for _, s := range strategies {
		if found := s.match(reply, candidates); len(found) > 0 {
			return dedupe(found), s.name
		}
	}
	return []catalog.Product{}, ""
}

// MatchBySKU resolves "SKU: <code>" mentions against candidate SKUs, case-insensitively,
// in order of first mention. Codes that match no candidate are ignored.
func MatchBySKU(reply string, candidates []catalog.Product) []catalog.Product {
	index := make(map[string]int, len(candidates))
	for i, p := range candidates {
		key := p.Key()
		if key == "" {
			continue
		}
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	var out []catalog.Product
	seen := make(map[string]bool)
	for _, m := range skuMention.FindAllStringSubmatch(reply, -1) {
		key := catalog.SKUKey(m[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		if i, ok := index[key]; ok {
			out = append(out, candidates[i])
		}
	}
	return out
}

// MatchByName collects candidates whose full name appears in the reply, in candidate order.
func MatchByName(reply string, candidates []catalog.Product) []catalog.Product {
	lower := strings.ToLower(reply)
	var out []catalog.Product
	seen := make(map[string]bool)
	for _, p := range candidates {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		key := p.Key()
		if name == "" || key == "" || seen[key] {
			continue
		}
		if strings.Contains(lower, name) {
			seen[key] = true
			out = append(out, p)
			if len(out) == MaxRecommendations {
				break
			}
		}
	}
	return out
}

// TopCandidates returns the leading candidates regardless of the reply text.
// The reply may then describe products other than the ones returned.
func TopCandidates(candidates []catalog.Product) []catalog.Product {
	var out []catalog.Product
	seen := make(map[string]bool)
	for _, p := range candidates {
		key := p.Key()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}

func dedupe(products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, 0, min(len(products), MaxRecommendations))
	seen := make(map[string]bool)
	for _, p := range products {
		key := p.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}
