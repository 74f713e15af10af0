package wordlist

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Load returns the candidate words in file order. Every line is a word:
// entries are neither trimmed, de-duplicated nor filtered, so a blank line
// requests the base URL itself. Line boundaries are those of Split.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
	}
	return Split(string(data)), nil
}

// Split breaks raw wordlist content into lines. \n, \r\n and \r end a line,
// as do \v, \f, the ASCII separators \x1c-\x1e, NEL (U+0085) and the
// Unicode line and paragraph separators. A final boundary does not start an
// empty word.
func Split(raw string) []string {
	words := []string{}
	start := 0
	for i, r := range raw {
		if !isLineBoundary(r) {
			continue
		}
		if i < start {
			// \n of a \r\n pair, already consumed.
			continue
		}
		words = append(words, raw[start:i])
		start = i + utf8.RuneLen(r)
		if r == '\r' && strings.HasPrefix(raw[start:], "\n") {
			start++
		}
	}
	if start < len(raw) {
		words = append(words, raw[start:])
	}
	return words
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
