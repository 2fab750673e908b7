package schedule

import (
	"strings"
	"unicode"
)

const fence = "```"

// NormalizeResponse turns a raw model reply into a best-effort JSON string.
// A fenced block (optionally tagged, e.g. ```json) is unwrapped; text
// without fence markers is returned trimmed.
func NormalizeResponse(raw string) string {
	text := strings.TrimSpace(raw)

	start := strings.Index(text, fence)
	if start == -1 {
		return text
	}

	body := text[start+len(fence):]
	body = stripLanguageTag(body)

	if end := strings.Index(body, fence); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// stripLanguageTag drops an info string such as "json" directly following
// the opening fence. A tag may share its line with the payload
// ("```json {...}"), in which case it is dropped only when a JSON object
// or array follows. Anything that is not a bare word is kept.
func stripLanguageTag(body string) string {
	tagEnd := strings.IndexFunc(body, func(r rune) bool { return !isWordRune(r) })
	if tagEnd > 0 {
		rest := strings.TrimSpace(body[tagEnd:])
		if strings.HasPrefix(rest, "{") || strings.HasPrefix(rest, "[") {
			return rest
		}
	}

	nl := strings.IndexByte(body, '\n')
	if nl == -1 {
		return body
	}
	tag := strings.TrimSpace(body[:nl])
	if tag == "" || isWord(tag) {
		return body[nl+1:]
	}
	return body
}

func isWord(s string) bool {
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
