package curation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text untouched", input: "Here are some ideas.\nEnjoy!", want: "Here are some ideas.\nEnjoy!"},
		{name: "bold and italic", input: "**Berry Box** is *great*", want: "Berry Box is great"},
		{name: "dash bullets", input: "- one\n- two", want: "one\ntwo"},
		{name: "unicode bullet", input: "• one", want: "one"},
		{name: "numbered", input: "1. one\n2) two\n10. ten", want: "one\ntwo\nten"},
		{name: "indented marker", input: "   - nested", want: "nested"},
		{name: "stacked markers", input: "1. - **Tulips**", want: "Tulips"},
		{name: "crlf line endings", input: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "outer blank lines", input: "\n\n  hello  \n\n", want: "hello"},
		{name: "dash without space kept", input: "-5% off", want: "-5% off"},
		{name: "number without space kept", input: "2.5 lbs of fruit", want: "2.5 lbs of fruit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.input))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"**Hi** there\n- a\n  * b\n3) c",
		"1. 2. 3. deep",
		"-  x",
		"***",
		"-\n•\n1.",
		"line one\r\n\r\n - line two **bold**",
		"Chocolate Box (SKU: CH-1): Rich and sweet.\nLet me know!",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		assert.False(t, strings.Contains(once, "*"), "input %q", in)
	}
}
