package summarizer

import (
	"fmt"
	"strings"
)

const (
	singlePassRole = "You are a meeting note-taker."
	sanitizeRole   = "You clean up raw speech-to-text output."
	extractRole    = "You extract the substance of one part of a longer meeting."
	synthesisRole  = "You assemble final meeting notes from partial extracts."
)

const formattingRules = `Formatting rules:
- Write in %s.
- Use markdown: headings for sections, bullet points, bold for key terms.
- Render every formula or calculation in LaTeX, inline as $...$ and display as $$...$$.
- Add an "Action items" section only if the source names concrete tasks, owners or deadlines. Otherwise leave it out entirely.
- Do not invent facts that are not in the source.`

const singlePassTemplate = singlePassRole + ` Given the meeting transcript below, write structured notes with these sections:

## Summary
A 2-3 sentence overview of what the meeting was about.

## Key points
Decisions, numbers, parameters and conclusions, grouped by topic.

## Action items
Tasks and deadlines, with the responsible person if identifiable.

If a section has no content, omit it.

%s

Transcript:
---
%s
---`

const sanitizeTemplate = sanitizeRole + ` Rewrite the fragment below as clean prose:
- remove filler words, false starts, stutters and repetition;
- keep every fact, number, name and technical term exactly;
- keep the original language; do not translate, summarize or add commentary.

Return only the cleaned text.

Transcript fragment:
---
%s
---`

const extractTemplate = extractRole + ` From the fragment below, list as bullet points:
- key points and decisions;
- parameters, figures and definitions;
- tasks and deadlines, if any are stated.

%s

%s

Fragment:
---
%s
---`

const synthesisTemplate = synthesisRole + ` The extracts below come from consecutive parts of one meeting, in order. Merge them into one coherent document:
- organize the content under headed sections by topic, not by part;
- remove duplicates across extracts and keep the chronology of decisions;
- render formulas consistently.

%s

Extracts:
---
%s
---`

func (s *implSummarizer) language() string {
	return s.cfg.Summary.Language
}

func (s *implSummarizer) singlePassPrompt(transcript string) string {
	return fmt.Sprintf(singlePassTemplate, fmt.Sprintf(formattingRules, s.language()), transcript)
}

func sanitizePrompt(chunk string) string {
	return fmt.Sprintf(sanitizeTemplate, chunk)
}

func (s *implSummarizer) extractPrompt(crumb, sanitized string) string {
	prior := "This is the first part of the meeting."
	if crumb != "" {
		var b strings.Builder
		b.WriteString("Earlier in the meeting (for continuity only, do not repeat):\n")
		for _, line := range strings.Split(crumb, "\n") {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		prior = strings.TrimRight(b.String(), "\n")
	}
	return fmt.Sprintf(extractTemplate, prior, fmt.Sprintf(formattingRules, s.language()), sanitized)
}

func (s *implSummarizer) synthesisPrompt(blocks []string) string {
	return fmt.Sprintf(synthesisTemplate, fmt.Sprintf(formattingRules, s.language()), strings.Join(blocks, "\n\n"))
}
