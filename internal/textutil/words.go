// Package textutil holds the small text helpers shared by the lexical
// retriever and the claim verifier, so both sides score overlap the
// same way.
package textutil

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_\-]+`)

// ContentWords extracts lowercased content words: word-like runs of at
// least two characters starting with a letter
func ContentWords(s string) []string {
	matches := wordRe.FindAllString(s, -1)
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		words = append(words, strings.ToLower(m))
	}
	return words
}

// WordSet returns the content words of s as a set
func WordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range ContentWords(s) {
		set[w] = true
	}
	return set
}

// Overlap counts how many words of a appear in set b
func Overlap(a map[string]bool, b map[string]bool) int {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	n := 0
	for w := range small {
		if large[w] {
			n++
		}
	}
	return n
}
