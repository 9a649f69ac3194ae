package strategy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const judgeBasePromptFmt = `You are an AI judge evaluating entries in a literary contest. Read every entry below, then rank them.

Personality: %s

Respond with exactly %d ranked entries, most to least, each formatted as:
<rank>. <title>
   Commentary: <your commentary>`

// JudgeText is one submission the judge prompt lists for evaluation.
type JudgeText struct {
	TextID  string
	Title   string
	Content string
}

// BuildJudgePrompt composes the judge prompt structurally (spec §4.5): base
// instructions parameterized by personality and submission count, then one
// labeled block per text.
func BuildJudgePrompt(personality string, texts []JudgeText) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(judgeBasePromptFmt, personality, len(texts)))
	for _, t := range texts {
		b.WriteString("\n\nText: ")
		b.WriteString(t.Title)
		b.WriteString("\nContent:\n")
		b.WriteString(t.Content)
	}
	return b.String()
}

// JudgeVote is one parsed ranking entry, matched back to a TextID by title.
type JudgeVote struct {
	TextID    string
	Title     string
	Place     *int // 1, 2, 3, or nil (rank > 3)
	Comment   string
}

// rankLinePattern finds each "<rank>. <title>" line. RE2 has no lookahead,
// so entry boundaries are found by locating consecutive rank lines rather
// than matching a whole entry with a non-consuming terminator (spec §4.5):
// the block between one rank line and the next (or end of string) is that
// entry's title-plus-commentary body.
var rankLinePattern = regexp.MustCompile(`(?m)^[ \t]*(\d+)\.[ \t]*(.*)$`)

// commentaryPattern pulls the "Commentary: ..." text out of an entry's body.
var commentaryPattern = regexp.MustCompile(`(?s)Commentary:\s*(.*)`)

// ParseJudgeResponse parses a ranked-entries response and matches each entry
// back to the original text by title. Entries whose title doesn't match any
// original text are dropped (spec §4.5).
func ParseJudgeResponse(text string, texts []JudgeText) []JudgeVote {
	byTitle := make(map[string]JudgeText, len(texts))
	for _, t := range texts {
		byTitle[normalizeTitle(t.Title)] = t
	}

	locs := rankLinePattern.FindAllStringSubmatchIndex(text, -1)
	votes := make([]JudgeVote, 0, len(locs))
	for i, loc := range locs {
		rank, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		title := strings.TrimSpace(text[loc[4]:loc[5]])

		bodyStart := loc[1]
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := text[bodyStart:bodyEnd]

		orig, ok := byTitle[normalizeTitle(title)]
		if !ok {
			continue // dropped: no matching original text
		}

		var comment string
		if cm := commentaryPattern.FindStringSubmatch(body); cm != nil {
			comment = strings.TrimSpace(cm[1])
		}

		var place *int
		if rank <= 3 {
			p := rank
			place = &p
		}
		votes = append(votes, JudgeVote{
			TextID:  orig.TextID,
			Title:   orig.Title,
			Place:   place,
			Comment: comment,
		})
	}
	return votes
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
