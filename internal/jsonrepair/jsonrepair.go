// Package jsonrepair recovers JSON objects from raw LLM output. Model
// replies routinely wrap JSON in markdown fences, use typographic quotes,
// leave unescaped quotes inside string values, or get cut off mid-object;
// Extract applies a sequence of cheap repairs before giving up.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenRe     = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*")
	fenceCloseRe    = regexp.MustCompile("(?s)\\s*```\\s*$")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`, // “
	"”", `"`, // ”
	"‘", "'", // ‘
	"’", "'", // ’
)

// Extract pulls the first JSON object out of raw model output. The second
// return is false when no object could be recovered; a top-level array is
// not an object and counts as absence.
func Extract(text string) (map[string]any, bool) {
	candidate, ok := sliceObject(text)
	if !ok {
		return nil, false
	}

	if obj, ok := parseObject(candidate); ok {
		return obj, true
	}

	// Unescaped quotes inside string values are the most common failure.
	if obj, ok := parseObject(escapeInnerQuotes(candidate)); ok {
		return obj, true
	}

	return nil, false
}

// ExtractLenient is Extract with two extra repairs applied before parsing:
// raw control characters inside string literals are escaped and trailing
// commas before a closing brace or bracket are removed. Used for the small
// day-detail responses where these defects dominate.
func ExtractLenient(text string) (map[string]any, bool) {
	candidate, ok := sliceObject(text)
	if !ok {
		return nil, false
	}

	candidate = escapeControlChars(candidate)
	candidate = trailingCommaRe.ReplaceAllString(candidate, "$1")

	if obj, ok := parseObject(candidate); ok {
		return obj, true
	}
	if obj, ok := parseObject(escapeInnerQuotes(candidate)); ok {
		return obj, true
	}

	return nil, false
}

// LooksTruncated reports whether raw model output appears to have been cut
// off before the object closed: more opening than closing braces, or a
// trailing comma.
func LooksTruncated(text string) bool {
	s := strings.TrimSpace(stripFences(text))
	if s == "" {
		return false
	}
	if strings.Count(s, "{") > strings.Count(s, "}") {
		return true
	}
	return strings.HasSuffix(s, ",")
}

// sliceObject strips markdown fences and typographic quotes and cuts the
// text down to the outermost-brace span.
func sliceObject(text string) (string, bool) {
	s := strings.TrimSpace(stripFences(text))
	if s == "" {
		return "", false
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}

	return smartQuoteReplacer.Replace(s[start : end+1]), true
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = fenceOpenRe.ReplaceAllString(s, "")
	return fenceCloseRe.ReplaceAllString(s, "")
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// escapeInnerQuotes walks the text tracking string state and escapes any
// double quote that appears inside a string value but does not terminate
// it. A quote is treated as closing only when the next non-space character
// is a structural one (colon, comma, closing brace or bracket) or the end
// of input.
func escapeInnerQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' {
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c != '"' {
			b.WriteByte(c)
			continue
		}

		if !inString {
			inString = true
			b.WriteByte(c)
			continue
		}

		if closesString(s, i+1) {
			inString = false
			b.WriteByte(c)
		} else {
			b.WriteString(`\"`)
		}
	}

	return b.String()
}

// closesString reports whether a quote at position i-1 terminates its
// string, judged by the next non-space character.
func closesString(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ':', ',', '}', ']':
			return true
		default:
			return false
		}
	}
	return true
}

// escapeControlChars replaces raw newlines, carriage returns and tabs that
// occur inside string literals with their escape sequences.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		switch {
		case c == '\\':
			b.WriteByte(c)
			escaped = true
		case c == '"':
			inString = !inString
			b.WriteByte(c)
		case inString && c == '\n':
			b.WriteString(`\n`)
		case inString && c == '\r':
			b.WriteString(`\r`)
		case inString && c == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
