package dispatch

import "unicode"

// DefaultMaxChars stays under LINE's 5000 character limit per text message.
const DefaultMaxChars = 4500

// Split breaks text into chunks of at most maxLen runes. Each cut is made at
// the last newline at or before maxLen, or exactly at maxLen when the window
// has none. Whitespace at the start of each remainder is dropped and a cut
// holding only whitespace is not emitted, so joining the chunks with that
// whitespace restores the original text.
func Split(text string, maxLen int) []string {
	if text == "" {
		return nil
	}
	if maxLen < 1 {
		maxLen = 1
	}

	runes := []rune(text)
	var chunks []string
	for len(runes) > maxLen {
		cut := lastNewline(runes[:maxLen+1])
		if cut <= 0 {
			cut = maxLen
		}
		if !isBlank(runes[:cut]) {
			chunks = append(chunks, string(runes[:cut]))
		}
		runes = trimLeadingSpace(runes[cut:])
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastNewline(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '\n' {
			return i
		}
	}
	return -1
}

func isBlank(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func trimLeadingSpace(runes []rune) []rune {
	i := 0
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return runes[i:]
}
