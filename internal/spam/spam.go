// Package spam holds the gibberish heuristic that gates marketing-list
// writes on the public lead form. It is a crude letter-pattern check, not
// a classifier: its job is to keep keyboard-mash bot entries out of the
// subscriber list while letting every plausible human name through.
package spam

import (
	"strings"
	"unicode"
)

// minLength below which a value is never flagged. Initials and very short
// names give the ratio rules nothing to work with.
const minLength = 4

// vowels includes y so names like Lynn or Wyn do not trip the
// zero-vowel rule.
const vowels = "aeiouy"

// IsLikelySpam reports whether a free-text name field looks like
// keyboard-mash. The check is case-insensitive and ignores surrounding
// whitespace. Callers that flag a submission must still answer the client
// exactly as if it had been accepted; only the marketing-list write is
// suppressed. Returning the standard failure shape here would hand bots a
// signal to iterate against.
func IsLikelySpam(text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	runes := []rune(s)
	if len(runes) < minLength {
		return false
	}

	var (
		vowelCount     int
		consonantCount int
		consonantRun   int
		repeatRun      int
		prev           rune
	)

	for i, r := range runes {
		if i > 0 && r == prev {
			repeatRun++
			if repeatRun >= 4 {
				return true
			}
		} else {
			repeatRun = 1
		}
		prev = r

		if !unicode.IsLetter(r) {
			consonantRun = 0
			continue
		}
		if strings.ContainsRune(vowels, r) {
			vowelCount++
			consonantRun = 0
			continue
		}
		consonantCount++
		consonantRun++
		if consonantRun >= 5 {
			return true
		}
	}

	if vowelCount == 0 {
		return true
	}
	if len(runes) > 6 && consonantCount > 4*vowelCount {
		return true
	}
	return false
}
