package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/contestcore/pkg/models"
)

func place(p int) *int { return &p }

func TestCalculate_StandardCompetitionRanking(t *testing.T) {
	texts := []TextInput{
		{TextID: "a", SubmissionDate: 1},
		{TextID: "b", SubmissionDate: 2},
		{TextID: "c", SubmissionDate: 3},
		{TextID: "d", SubmissionDate: 4},
	}
	// a: 3 points, b: 2 points, c: 2 points, d: 0 points -> ranks 1,2,2,4(unranked)
	votes := []models.Vote{
		{TextID: "a", TextPlace: place(1)},
		{TextID: "b", TextPlace: place(2)},
		{TextID: "c", TextPlace: place(2)},
	}
	ranked := Calculate(texts, votes)
	require.Len(t, ranked, 4)

	byID := map[string]Ranked{}
	for _, r := range ranked {
		byID[r.TextID] = r
	}

	require.NotNil(t, byID["a"].Rank)
	assert.Equal(t, 1, *byID["a"].Rank)
	require.NotNil(t, byID["b"].Rank)
	assert.Equal(t, 2, *byID["b"].Rank)
	require.NotNil(t, byID["c"].Rank)
	assert.Equal(t, 2, *byID["c"].Rank)
	assert.Nil(t, byID["d"].Rank)
}

func TestCalculate_TiebreakBySubmissionDate(t *testing.T) {
	texts := []TextInput{
		{TextID: "later", SubmissionDate: 100},
		{TextID: "earlier", SubmissionDate: 1},
	}
	votes := []models.Vote{
		{TextID: "later", TextPlace: place(1)},
		{TextID: "earlier", TextPlace: place(1)},
	}
	ranked := Calculate(texts, votes)
	require.Len(t, ranked, 2)
	assert.Equal(t, "earlier", ranked[0].TextID, "equal points tiebreak by earlier submission date")
	assert.Equal(t, "later", ranked[1].TextID)
}

func TestCalculate_JumpsRankByTieCount(t *testing.T) {
	texts := []TextInput{
		{TextID: "a"}, {TextID: "b"}, {TextID: "c"}, {TextID: "d"},
	}
	votes := []models.Vote{
		{TextID: "a", TextPlace: place(1)},
		{TextID: "b", TextPlace: place(1)},
		{TextID: "c", TextPlace: place(1)},
		{TextID: "d", TextPlace: place(2)},
	}
	ranked := Calculate(texts, votes)
	byID := map[string]Ranked{}
	for _, r := range ranked {
		byID[r.TextID] = r
	}
	assert.Equal(t, 1, *byID["a"].Rank)
	assert.Equal(t, 1, *byID["b"].Rank)
	assert.Equal(t, 1, *byID["c"].Rank)
	assert.Equal(t, 4, *byID["d"].Rank, "three-way tie for 1st jumps the next rank to 4")
}
