// Package strategy implements the Writer and Judge Strategies (spec §4.4,
// §4.5): prompt composition plus the matching response parser for each
// agent type. Composition follows the teacher's pkg/agent/prompt.Builder
// style — small string-building methods assembled by one entry point —
// and parsing follows pkg/agent/controller's ParseReActResponse: a
// regex-first pass with a forgiving fallback chain rather than a single
// brittle match.
package strategy

import (
	"fmt"
	"regexp"
	"strings"
)

// writerBasePrompt is injected ahead of every writer invocation's personality
// prompt, naming the exact output contract the parser below expects.
const writerBasePrompt = `You are an AI writer entering a literary contest. Produce a single original piece of writing that satisfies the contest description and the guidance below.

Respond with exactly two lines in this format and nothing else:
Title: <your title>
Text: <your text>`

// WriterContext carries the inputs the Writer Strategy composes into a prompt.
type WriterContext struct {
	AgentPersonality  string // agent.Prompt
	ContestDescription string
	GuidanceTitle     string
	GuidanceRequirements string
}

// BuildWriterPrompt composes the writer prompt structurally (spec §4.4):
// base instructions, personality, then a labeled context block.
func BuildWriterPrompt(ctx WriterContext) string {
	var b strings.Builder
	b.WriteString(writerBasePrompt)
	b.WriteString("\n\nPersonality: ")
	b.WriteString(ctx.AgentPersonality)
	b.WriteString("\nContext:\n  ContestDescription: ")
	b.WriteString(ctx.ContestDescription)
	b.WriteString("\n  UserGuidance:\n    Title: ")
	b.WriteString(ctx.GuidanceTitle)
	b.WriteString("\n    Requirements: ")
	b.WriteString(ctx.GuidanceRequirements)
	b.WriteString("\nInstruction: produce exactly \"Title: <title>\\nText: <content>\"")
	return b.String()
}

// WriterResult is the outcome of parsing one writer response.
type WriterResult struct {
	Title           string
	Content         string
	ParsingSuccess  bool // false when level 2 or 3 of the fallback chain had to run
}

const maxTitleLen = 200

// formatKeywordPattern flags format keywords leaking into a parsed title is a sign the strict regex
// matched the wrong boundary (e.g. swallowed a second "Text:" label).
var formatKeywordPattern = regexp.MustCompile(`(?i)^(title|text)\s*:`)

// strictWriterPattern matches the happy path: a line starting "Title:"
// followed (possibly after blank lines) by a line starting "Text:", content
// running to the end of the response.
var strictWriterPattern = regexp.MustCompile(`(?s)^\s*Title:\s*(.+?)\s*\n+\s*Text:\s*(.+?)\s*$`)

// ParseWriterResponse implements the three-level fallback chain of spec §4.4.
func ParseWriterResponse(text, fallbackTitle string) WriterResult {
	text = strings.TrimSpace(text)

	// Level 1: strict regex with validation.
	if m := strictWriterPattern.FindStringSubmatch(text); m != nil {
		title, content := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if isValidTitle(title) && len(content) >= 10 {
			return WriterResult{Title: title, Content: content, ParsingSuccess: true}
		}
	}

	// Level 2: line-splitting heuristic — the first non-decorated line is the
	// title iff it passes the same shape filter as level 1.
	lines := strings.Split(text, "\n")
	var firstContentIdx = -1
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		firstContentIdx = i
		break
	}
	if firstContentIdx >= 0 {
		candidate := strings.TrimPrefix(strings.TrimSpace(lines[firstContentIdx]), "Title:")
		candidate = strings.TrimSpace(candidate)
		rest := strings.TrimSpace(strings.Join(lines[firstContentIdx+1:], "\n"))
		rest = strings.TrimPrefix(rest, "Text:")
		rest = strings.TrimSpace(rest)
		if isValidTitle(candidate) && len(rest) >= 10 {
			return WriterResult{Title: candidate, Content: rest, ParsingSuccess: false}
		}
	}

	// Level 3: synthesize a title from the caller's fallback, or slice the
	// first sentence of whatever content we have.
	content := text
	if content == "" {
		content = "(no content produced)"
	}
	title := strings.TrimSpace(fallbackTitle)
	if title == "" {
		title = firstSentence(content)
	}
	return WriterResult{Title: truncateTitle(title), Content: content, ParsingSuccess: false}
}

func isValidTitle(title string) bool {
	if title == "" || len(title) > maxTitleLen {
		return false
	}
	return !formatKeywordPattern.MatchString(title)
}

func truncateTitle(title string) string {
	if len(title) <= maxTitleLen {
		return title
	}
	return title[:maxTitleLen]
}

// firstSentence slices up to the first ".", "!" or "?" (inclusive), or the
// first 80 runes if no sentence boundary is found within that span.
func firstSentence(s string) string {
	const cap = 80
	runes := []rune(s)
	limit := len(runes)
	if limit > cap {
		limit = cap
	}
	head := string(runes[:limit])
	idx := strings.IndexAny(head, ".!?")
	if idx >= 0 {
		return strings.TrimSpace(head[:idx+1])
	}
	if len(runes) > cap {
		return strings.TrimSpace(head) + "…"
	}
	return strings.TrimSpace(s)
}

// FormatWriterDebug is a small diagnostic helper for logging when a response
// required a fallback level, mirroring the teacher's habit of logging a
// short excerpt rather than the full (potentially huge) response.
func FormatWriterDebug(text string) string {
	const maxLen = 120
	text = strings.TrimSpace(text)
	if len(text) > maxLen {
		return fmt.Sprintf("%s…(%d bytes)", text[:maxLen], len(text))
	}
	return text
}
