package models

import (
	"slices"
	"time"
)

// ArchivedGiveaway is the immutable snapshot written once a giveaway completes.
type ArchivedGiveaway struct {
	Giveaway
	EndedAt time.Time `json:"ended_at"`
	Winners []int64   `json:"winners"`
}

// NewArchivedGiveaway freezes g together with its outcome.
func NewArchivedGiveaway(g *Giveaway, winners []int64, endedAt time.Time) *ArchivedGiveaway {
	snapshot := g.Clone()
	w := slices.Clone(winners)
	if w == nil {
		w = []int64{}
	}
	return &ArchivedGiveaway{
		Giveaway: *snapshot,
		EndedAt:  endedAt,
		Winners:  w,
	}
}

// CompletionResult is returned to whoever triggered a completion.
type CompletionResult struct {
	Giveaway *Giveaway `json:"giveaway"`
	Winners  []int64   `json:"winners"`
	EndedAt  time.Time `json:"ended_at"`
	// Archived is false when the archive write failed; the giveaway is still complete.
	Archived bool `json:"archived"`
}

// HasWinners is false when there were fewer participants than the winners quota.
func (r *CompletionResult) HasWinners() bool {
	return len(r.Winners) > 0
}
