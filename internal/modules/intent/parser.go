// README: Lenient parser from raw model text to ExtractedIntent; every field is validated on its own.
package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	errNotObject = errors.New("payload is not a JSON object")
	errNoSchema  = errors.New("payload has none of the intent fields")
	errTrailing  = errors.New("unexpected data after JSON object")
	schemaKeys   = []string{"occasion", "urgency", "recipient", "budget", "dietary", "keywords", "needs_clarification", "clarifying_question", "confidence"}
)

// ParseIntent turns model output into an intent. It never fails: unusable input yields Fallback().
func ParseIntent(raw string) ExtractedIntent {
	in, err := parse(raw)
	if err != nil {
		return Fallback()
	}
	return in
}

func parse(raw string) (ExtractedIntent, error) {
	data, err := decodeObject(stripCodeFence(raw))
	if err != nil {
		return ExtractedIntent{}, err
	}
	if !hasSchemaKey(data) {
		return ExtractedIntent{}, errNoSchema
	}

	in := ExtractedIntent{
		Dietary:  toStringSlice(data["dietary"]),
		Keywords: toStringSlice(data["keywords"]),
	}

	// Unknown occasions still signal "there is an occasion", so they become "other".
	if v := data["occasion"]; truthy(v) {
		o := OccasionOther
		if s, ok := v.(string); ok && Occasion(normalize(s)).Valid() {
			o = Occasion(normalize(s))
		}
		in.Occasion = &o
	}
	// Urgency and budget are dropped when unrecognised.
	if s, ok := data["urgency"].(string); ok && Urgency(normalize(s)).Valid() {
		u := Urgency(normalize(s))
		in.Urgency = &u
	}
	if s, ok := data["budget"].(string); ok && Budget(normalize(s)).Valid() {
		b := Budget(normalize(s))
		in.Budget = &b
	}

	in.Recipient = optString(data["recipient"])
	in.ClarifyingQuestion = optString(data["clarifying_question"])
	in.NeedsClarification = toBool(data["needs_clarification"])
	in.Confidence = clampConfidence(toFloat(data["confidence"]))

	if len(in.Keywords) > MaxKeywords {
		in.Keywords = in.Keywords[:MaxKeywords]
	}
	return in, nil
}

// stripCodeFence removes a ``` fence and an optional language tag such as "json".
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	i := 0
	for i < len(text) && isASCIILetter(text[i]) {
		i++
	}
	return strings.TrimSpace(text[i:])
}

func decodeObject(payload string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode intent json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailing
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

func hasSchemaKey(data map[string]any) bool {
	for _, k := range schemaKeys {
		if _, ok := data[k]; ok {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// truthy follows JSON-ish truthiness: null, false, "", 0, [] and {} are all "not set".
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return strings.TrimSpace(val) != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toStringSlice(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range val {
			var s string
			switch x := item.(type) {
			case string:
				s = x
			case json.Number:
				s = x.String()
			case bool:
				s = strconv.FormatBool(x)
			default:
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func toBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch normalize(val) {
		case "true", "yes", "1":
			return true
		}
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	}
	return false
}

func toFloat(v any) float64 {
	switch val := v.(type) {
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return 0
}

func clampConfidence(f float64) float64 {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
