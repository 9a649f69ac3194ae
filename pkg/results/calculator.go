// Package results implements the Results Calculator (spec §4.10): standard
// competition ranking over (text_id, place) pairs collected from every
// judge of a contest.
package results

import (
	"sort"

	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// placePoints maps a vote's place to its point value (spec §4.10).
func placePoints(place *int) int {
	if place == nil {
		return 0
	}
	switch *place {
	case 1:
		return 3
	case 2:
		return 2
	case 3:
		return 1
	default:
		return 0
	}
}

// Ranked is one text's computed standing.
type Ranked struct {
	TextID         string
	TotalPoints    int
	SubmissionDate int64 // unix nanos, used only to break ties deterministically
	Rank           *int  // nil when TotalPoints == 0
}

// TextInput is the minimal shape Calculate needs per submission.
type TextInput struct {
	TextID         string
	SubmissionDate int64
}

// Calculate implements spec §4.10: sum points per text across all votes,
// sort by (total_points desc, submission_date asc), then assign standard
// competition ranks (ties share a rank; the next distinct value jumps by the
// count of tied entries, e.g. 1, 2, 2, 4). Unranked (0-point) texts get
// Rank == nil and are placed after every ranked entry, matching the
// repository convention spec §4.10 calls out.
func Calculate(texts []TextInput, votes []models.Vote) []Ranked {
	points := make(map[string]int, len(texts))
	for _, t := range texts {
		points[t.TextID] = 0 // every submission appears even with zero votes
	}
	for _, v := range votes {
		points[v.TextID] += placePoints(v.TextPlace)
	}

	ranked := make([]Ranked, 0, len(texts))
	for _, t := range texts {
		ranked = append(ranked, Ranked{TextID: t.TextID, TotalPoints: points[t.TextID], SubmissionDate: t.SubmissionDate})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		return ranked[i].SubmissionDate < ranked[j].SubmissionDate
	})

	pos := 0
	for i := range ranked {
		pos++
		if ranked[i].TotalPoints == 0 {
			continue // unranked entries keep Rank == nil
		}
		if i > 0 && ranked[i].TotalPoints == ranked[i-1].TotalPoints && ranked[i-1].Rank != nil {
			r := *ranked[i-1].Rank
			ranked[i].Rank = &r
			continue
		}
		r := pos
		ranked[i].Rank = &r
	}
	return ranked
}
