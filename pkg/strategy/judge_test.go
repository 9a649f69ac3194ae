package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJudgePrompt_ListsAllTexts(t *testing.T) {
	prompt := BuildJudgePrompt("a strict critic", []JudgeText{
		{TextID: "t1", Title: "Dawn", Content: "the sun rose"},
		{TextID: "t2", Title: "Dusk", Content: "the sun set"},
	})
	assert.Contains(t, prompt, "Personality: a strict critic")
	assert.Contains(t, prompt, "exactly 2 ranked entries")
	assert.Contains(t, prompt, "Text: Dawn")
	assert.Contains(t, prompt, "Text: Dusk")
}

func TestParseJudgeResponse_RanksAndComments(t *testing.T) {
	texts := []JudgeText{
		{TextID: "t1", Title: "Dawn", Content: "..."},
		{TextID: "t2", Title: "Dusk", Content: "..."},
		{TextID: "t3", Title: "Noon", Content: "..."},
		{TextID: "t4", Title: "Midnight", Content: "..."},
	}
	resp := `1. Dawn
   Commentary: Vivid imagery.
2. Dusk
   Commentary: Strong closing line.
3. Noon
   Commentary: Solid but unoriginal.
4. Midnight
   Commentary: Didn't land.`

	votes := ParseJudgeResponse(resp, texts)
	require.Len(t, votes, 4)

	assert.Equal(t, "t1", votes[0].TextID)
	require.NotNil(t, votes[0].Place)
	assert.Equal(t, 1, *votes[0].Place)
	assert.Equal(t, "Vivid imagery.", votes[0].Comment)

	assert.Equal(t, "t4", votes[3].TextID)
	assert.Nil(t, votes[3].Place, "rank > 3 carries no place")
	assert.Equal(t, "Didn't land.", votes[3].Comment)
}

func TestParseJudgeResponse_DropsUnmatchedTitles(t *testing.T) {
	texts := []JudgeText{{TextID: "t1", Title: "Dawn", Content: "..."}}
	resp := `1. Dawn
   Commentary: Good.
2. A Title Nobody Submitted
   Commentary: Should be dropped.`

	votes := ParseJudgeResponse(resp, texts)
	require.Len(t, votes, 1)
	assert.Equal(t, "t1", votes[0].TextID)
}

func TestParseJudgeResponse_DuplicateRanksNotPruned(t *testing.T) {
	texts := []JudgeText{
		{TextID: "t1", Title: "Dawn", Content: "..."},
		{TextID: "t2", Title: "Dusk", Content: "..."},
	}
	resp := `1. Dawn
   Commentary: Tied for first.
1. Dusk
   Commentary: Also tied for first.`

	votes := ParseJudgeResponse(resp, texts)
	require.Len(t, votes, 2)
	assert.Equal(t, 1, *votes[0].Place)
	assert.Equal(t, 1, *votes[1].Place)
}
