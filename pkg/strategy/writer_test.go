package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWriterPrompt_IsStructural(t *testing.T) {
	prompt := BuildWriterPrompt(WriterContext{
		AgentPersonality:     "a gloomy poet",
		ContestDescription:   "write about the sea",
		GuidanceTitle:        "Waves",
		GuidanceRequirements: "under 500 words",
	})
	assert.Contains(t, prompt, "Personality: a gloomy poet")
	assert.Contains(t, prompt, "ContestDescription: write about the sea")
	assert.Contains(t, prompt, "Title: Waves")
	assert.Contains(t, prompt, "Requirements: under 500 words")
}

func TestParseWriterResponse_StrictLevel1(t *testing.T) {
	r := ParseWriterResponse("Title: The Long Tide\nText: Waves crashed against the hull all night long.", "")
	assert.True(t, r.ParsingSuccess)
	assert.Equal(t, "The Long Tide", r.Title)
	assert.Equal(t, "Waves crashed against the hull all night long.", r.Content)
}

func TestParseWriterResponse_RejectsOverlongTitle(t *testing.T) {
	longTitle := strings.Repeat("a", 201)
	r := ParseWriterResponse("Title: "+longTitle+"\nText: plenty of content here for validation.", "fallback")
	assert.False(t, r.ParsingSuccess)
	assert.Equal(t, "fallback", r.Title)
}

func TestParseWriterResponse_RejectsShortContent(t *testing.T) {
	r := ParseWriterResponse("Title: Ok\nText: short", "Backup Title")
	assert.False(t, r.ParsingSuccess)
	assert.Equal(t, "Backup Title", r.Title)
}

func TestParseWriterResponse_Level2LineSplitting(t *testing.T) {
	r := ParseWriterResponse("A Quiet Harbor\nThe boats rocked gently as the fog rolled in.", "")
	assert.False(t, r.ParsingSuccess)
	assert.Equal(t, "A Quiet Harbor", r.Title)
	assert.Equal(t, "The boats rocked gently as the fog rolled in.", r.Content)
}

func TestParseWriterResponse_Level3FallbackTitle(t *testing.T) {
	r := ParseWriterResponse("just some unstructured prose with no labels at all", "Caller Supplied Title")
	assert.False(t, r.ParsingSuccess)
	assert.Equal(t, "Caller Supplied Title", r.Title)
	assert.Equal(t, "just some unstructured prose with no labels at all", r.Content)
}

func TestParseWriterResponse_Level3FirstSentence(t *testing.T) {
	r := ParseWriterResponse("This is the opening sentence. More prose follows after it.", "")
	assert.False(t, r.ParsingSuccess)
	assert.Equal(t, "This is the opening sentence.", r.Title)
}

func TestParseWriterResponse_EmptyResponse(t *testing.T) {
	r := ParseWriterResponse("", "")
	assert.False(t, r.ParsingSuccess)
	assert.Equal(t, "(no content produced)", r.Content)
}
