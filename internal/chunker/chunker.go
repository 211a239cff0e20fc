// Package chunker splits long transcripts into ordered, bounded segments that
// break on sentence boundaries wherever possible.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Split normalizes whitespace in text and groups its sentences into chunks.
// Lengths are measured in runes. A chunk is closed before a sentence that
// would push it past maxLen, or once it has reached targetLen. A sentence
// longer than maxLen is cut into maxLen-sized slices.
//
// strings.Join(Split(t, m, n), "") == Normalize(t) always holds.
func Split(text string, maxLen, targetLen int) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	if maxLen <= 0 {
		return []string{normalized}
	}
	if targetLen <= 0 || targetLen > maxLen {
		targetLen = maxLen
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range Sentences(normalized) {
		n := utf8.RuneCountInString(sentence)

		if n > maxLen {
			flush()
			chunks = append(chunks, hardSplit(sentence, maxLen)...)
			continue
		}

		if currentLen > 0 {
			overMax := currentLen+n > maxLen
			overTarget := currentLen >= targetLen && currentLen+n > targetLen
			if overMax || overTarget {
				flush()
			}
		}

		current.WriteString(sentence)
		currentLen += n
	}
	flush()

	return chunks
}

// Normalize collapses every whitespace run to one space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Sentences cuts text after every run of '.', '!' or '?'. The trailing
// remainder, if any, is the last element. Nothing is trimmed, so the
// elements concatenate back to text.
func Sentences(text string) []string {
	var out []string
	start := 0
	inTerminator := false

	for i, r := range text {
		isTerm := r == '.' || r == '!' || r == '?'
		if inTerminator && !isTerm {
			out = append(out, text[start:i])
			start = i
		}
		inTerminator = isTerm
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func hardSplit(s string, size int) []string {
	runes := []rune(s)
	parts := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}
