package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterIsIdempotent(t *testing.T) {
	g := &Giveaway{}

	assert.True(t, g.AddParticipant(1))
	assert.False(t, g.AddParticipant(1))
	assert.True(t, g.AddParticipant(2))
	assert.Equal(t, []int64{1, 2}, g.Participants)

	assert.False(t, g.RemoveParticipant(3))
	assert.True(t, g.RemoveParticipant(1))
	assert.False(t, g.RemoveParticipant(1))
	assert.Equal(t, []int64{2}, g.Participants)
}

func TestCloneDoesNotShareRoster(t *testing.T) {
	g := &Giveaway{ID: "a", Participants: []int64{1}}
	c := g.Clone()
	c.AddParticipant(2)

	assert.Equal(t, []int64{1}, g.Participants)
	assert.Equal(t, []int64{1, 2}, c.Participants)
	assert.NotNil(t, (&Giveaway{}).Clone().Participants)
}

func TestExpiredAtDeadline(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	g := &Giveaway{EndsAt: now}

	assert.True(t, g.Expired(now))
	assert.False(t, g.Expired(now.Add(-time.Second)))
	assert.Equal(t, time.Duration(0), g.TimeLeft(now))
	assert.Equal(t, time.Minute, g.TimeLeft(now.Add(-time.Minute)))
}

func TestParseAnnouncementRef(t *testing.T) {
	ref, err := ParseAnnouncementRef("55", -100)
	require.NoError(t, err)
	assert.Equal(t, AnnouncementRef{ChatID: -100, MessageID: 55}, ref)

	ref, err = ParseAnnouncementRef("-1001:77", -100)
	require.NoError(t, err)
	assert.Equal(t, AnnouncementRef{ChatID: -1001, MessageID: 77}, ref)
	assert.Equal(t, "-1001:77", ref.String())

	_, err = ParseAnnouncementRef("abc", 1)
	assert.Error(t, err)
	_, err = ParseAnnouncementRef("x:5", 1)
	assert.Error(t, err)
	_, err = ParseAnnouncementRef("0", 1)
	assert.Error(t, err)
}

func TestNewArchivedGiveawayFreezesSnapshot(t *testing.T) {
	g := &Giveaway{ID: "a", Participants: []int64{1, 2}}
	winners := []int64{2}
	ended := time.Now()

	rec := NewArchivedGiveaway(g, winners, ended)
	g.AddParticipant(3)
	winners[0] = 9

	assert.Equal(t, []int64{1, 2}, rec.Participants)
	assert.Equal(t, []int64{2}, rec.Winners)
	assert.Equal(t, ended, rec.EndedAt)
	assert.Equal(t, []int64{}, NewArchivedGiveaway(g, nil, ended).Winners)
}
