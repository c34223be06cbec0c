package lexicon

// Token is a lowercased word with its byte offset and ordinal index.
// Hyphenated and apostrophe-joined words stay single tokens so terms like
// "results-driven" match as one unit.
type Token struct {
	Text  string
	Start int
	Index int
}

// Tokenize splits text into word tokens. Pure and allocation-light; shared
// by the matcher and the contextual window rules so both agree on token
// positions.
func Tokenize(text string) []Token {
	var tokens []Token
	n := len(text)
	i := 0
	for i < n {
		if !isWordByte(text[i]) {
			i++
			continue
		}
		start := i
		for i < n && (isWordByte(text[i]) || isJoiner(text, i)) {
			i++
		}
		tokens = append(tokens, Token{
			Text:  lowerASCII(text[start:i]),
			Start: start,
			Index: len(tokens),
		})
	}
	return tokens
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// isJoiner reports whether the hyphen or apostrophe at i sits between two
// word bytes.
func isJoiner(text string, i int) bool {
	if text[i] != '-' && text[i] != '\'' {
		return false
	}
	return i > 0 && isWordByte(text[i-1]) && i+1 < len(text) && isWordByte(text[i+1])
}

func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
