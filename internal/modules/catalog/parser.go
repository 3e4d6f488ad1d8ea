package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var genericCategories = map[string]bool{
	"All Products":          true,
	"Featured Arrangements": true,
}

// ParseProduct maps one raw search record onto Product, falling back across the
// alternative field names the catalog uses. Records without a SKU or name are rejected.
func ParseProduct(raw map[string]any, baseURL string) (Product, bool) {
	sku := firstString(raw, "catalogCode", "number", "id")
	name := strings.TrimSpace(scalarString(raw["name"]))
	if sku == "" || name == "" {
		return Product{}, false
	}

	price, ok := toFloat(raw["minPrice"])
	if !ok {
		price, _ = toFloat(raw["maxPrice"])
	}

	return Product{
		SKU:         sku,
		Name:        name,
		Price:       price,
		ImageURL:    firstString(raw, "image", "thumbnail"),
		Description: firstString(raw, "description", "metaTagDescription"),
		Tags:        parseTags(raw),
		PDPURL:      productURL(scalarString(raw["url"]), baseURL),
	}, true
}

func parseTags(raw map[string]any) []string {
	tags := []string{}
	if occasion := strings.TrimSpace(scalarString(raw["occasion"])); occasion != "" {
		tags = append(tags, occasion)
	}

	if category := scalarString(raw["category"]); category != "" {
		parts := strings.Split(category, ",")
		if len(parts) > 3 {
			parts = parts[:3]
		}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" || genericCategories[part] || slices.Contains(tags, part) {
				continue
			}
			tags = append(tags, part)
			if len(tags) >= MaxTags {
				break
			}
		}
	}

	if truthy(raw["promo"]) {
		tags = append(tags, "Sale")
	}
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	return tags
}

func productURL(path, baseURL string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/product/" + strings.TrimLeft(path, "/")
}

// firstString returns the first non-empty scalar among keys.
func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(scalarString(raw[k])); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool, nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	return true
}
