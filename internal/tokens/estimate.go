// Package tokens approximates how many linguistic tokens a transcript holds.
// The count is a size gate only and does not track any model tokenizer.
package tokens

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the estimate above which long processing needs confirmation.
const DefaultThreshold = 10000

// Estimate counts word-like runs (letters, digits, combining marks, apostrophes,
// hyphens) plus every standalone punctuation or symbol rune.
func Estimate(text string) int {
	text = norm.NFC.String(text)

	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case isWordRune(r):
			if !inWord {
				count++
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			count++
			inWord = false
		}
	}
	return count
}

// Exceeds reports whether count is strictly above threshold.
func Exceeds(count, threshold int) bool {
	return count > threshold
}

func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
		return true
	}
	switch r {
	case '\'', '’', 'ʼ', '-':
		return true
	}
	return false
}
