package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
)

func nitro(duration string) StartRequest {
	return StartRequest{
		CommunityID:  42,
		HostID:       7,
		HostName:     "host",
		Prize:        "Nitro",
		WinnersCount: 2,
		Duration:     duration,
	}
}

func TestStartRegistersEmptyGiveaway(t *testing.T) {
	f := newFixture()
	now := f.clock.Now()

	g := f.start(t, nitro("1h30m"))

	got, ok := f.svc.Get(g.ID)
	require.True(t, ok)
	assert.Empty(t, got.Participants)
	assert.Equal(t, now.Add(90*time.Minute), got.EndsAt)
	assert.Equal(t, int64(42), got.Announcement.ChatID, "announcement defaults to the community chat")
	assert.NotZero(t, got.Announcement.MessageID)

	stored, ok := f.active.get(g.ID)
	require.True(t, ok)
	assert.Equal(t, g.Announcement, stored.Announcement)

	f.messenger.AssertCalled(t, "Publish", mock.Anything, int64(42), int64(42), mock.MatchedBy(func(a models.Announcement) bool {
		return a.Title == "Nitro" && a.Reaction == DefaultEntryEmoji && a.Footer == "🏆 Winners: 2"
	}))
}

func TestStartValidatesBeforeSideEffects(t *testing.T) {
	tests := []struct {
		name string
		req  StartRequest
		code apperrors.ErrorCode
	}{
		{"zero quota", StartRequest{CommunityID: 1, Prize: "x", WinnersCount: 0, Duration: "1h"}, apperrors.ErrCodeInvalidQuota},
		{"negative quota", StartRequest{CommunityID: 1, Prize: "x", WinnersCount: -3, Duration: "1h"}, apperrors.ErrCodeInvalidQuota},
		{"garbage duration", StartRequest{CommunityID: 1, Prize: "x", WinnersCount: 1, Duration: "abc"}, apperrors.ErrCodeInvalidDuration},
		{"zero duration", StartRequest{CommunityID: 1, Prize: "x", WinnersCount: 1, Duration: "0h"}, apperrors.ErrCodeInvalidDuration},
		{"blank prize", StartRequest{CommunityID: 1, Prize: "  ", WinnersCount: 1, Duration: "1h"}, apperrors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Start(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, tt.code), "got %v", err)

			f.messenger.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Zero(t, f.active.upsertCount())
			assert.Zero(t, f.svc.Registry().Len())
		})
	}
}

func TestStartPublishFailureLeavesNoState(t *testing.T) {
	active := newFakeActiveRepo()
	m := &mockMessenger{}
	m.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.AnnouncementRef{}, errors.New("chat not found"))
	svc := NewGiveawayService(active, &fakeArchiveRepo{}, m, Options{})

	_, err := svc.Start(context.Background(), nitro("10m"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTransport))
	assert.Zero(t, svc.Registry().Len())
	assert.Zero(t, active.upsertCount())
}

func TestStartKeepsRunningWhenPersistFails(t *testing.T) {
	f := newFixture()
	f.active.upsertErr = errStoreDown

	g := f.start(t, nitro("10m"))

	_, ok := f.svc.Get(g.ID)
	assert.True(t, ok)
}

func TestRosterMembershipIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))
	base := f.active.upsertCount()

	changed, err := f.svc.AddParticipant(ctx, g.ID, 100)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.AddParticipant(ctx, g.ID, 100)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = f.svc.RemoveParticipant(ctx, g.ID, 555)
	require.NoError(t, err)
	assert.False(t, changed)

	got, _ := f.svc.Get(g.ID)
	assert.Equal(t, []int64{100}, got.Participants)
	assert.Equal(t, base+1, f.active.upsertCount(), "only the first add writes")

	stored, _ := f.active.get(g.ID)
	assert.Equal(t, []int64{100}, stored.Participants, "upsert carries the full roster")
}

func TestHostCanEnterOwnGiveaway(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))

	changed, err := f.svc.AddParticipant(ctx, g.ID, g.HostID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = f.svc.AddParticipant(ctx, g.ID, 100)
	require.NoError(t, err)
	assert.True(t, changed)

	res, err := f.svc.Complete(ctx, g.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{g.HostID, 100}, res.Winners)
	assert.ElementsMatch(t, []int64{g.HostID, 100}, res.Giveaway.Participants)
}

func TestRosterEditOnUnknownGiveawayIsNoop(t *testing.T) {
	f := newFixture()

	changed, err := f.svc.AddParticipant(context.Background(), "missing", 1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, f.active.upsertCount())
}

func TestRosterPersistFailureKeepsMemoryAhead(t *testing.T) {
	f := newFixture()
	g := f.start(t, nitro("1h"))
	f.active.upsertErr = errStoreDown

	changed, err := f.svc.AddParticipant(context.Background(), g.ID, 100)
	assert.True(t, changed)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodePersistence))

	got, _ := f.svc.Get(g.ID)
	assert.Equal(t, []int64{100}, got.Participants)
}

func TestHandleMembershipResolvesAnnouncement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))

	changed, err := f.svc.HandleMembership(ctx, g.Announcement, 9, true)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.HandleMembership(ctx, g.Announcement, 9, false)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.HandleMembership(ctx, models.AnnouncementRef{ChatID: 1, MessageID: 999}, 9, true)
	require.NoError(t, err)
	assert.False(t, changed)
}

// Three users join, one leaves, the host ends it early.
func TestManualCompletionDrawsFromRemainingParticipants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))

	for _, u := range []int64{101, 102, 103} {
		_, err := f.svc.AddParticipant(ctx, g.ID, u)
		require.NoError(t, err)
	}
	_, err := f.svc.RemoveParticipant(ctx, g.ID, 102)
	require.NoError(t, err)

	res, err := f.svc.Complete(ctx, g.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{101, 103}, res.Winners)
	assert.True(t, res.Archived)

	_, ok := f.svc.Get(g.ID)
	assert.False(t, ok)
	_, ok = f.active.get(g.ID)
	assert.False(t, ok)

	records := f.archive.all()
	require.Len(t, records, 1)
	assert.Equal(t, g.Announcement, records[0].Announcement)
	assert.ElementsMatch(t, []int64{101, 103}, records[0].Participants)
	assert.ElementsMatch(t, res.Winners, records[0].Winners)

	f.messenger.AssertCalled(t, "UpdateAnnouncement", mock.Anything, g.Announcement, mock.MatchedBy(func(a models.Announcement) bool {
		return a.Color == models.ColorEnded
	}))
	sent := f.messenger.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "🎊 Congratulations")
	assert.Contains(t, sent[0], "Nitro")
}

func TestCompleteUnknownIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Complete(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, f.archive.all())
}

func TestCompleteWithTooFewParticipantsHasNoWinners(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))
	_, err := f.svc.AddParticipant(ctx, g.ID, 101)
	require.NoError(t, err)

	res, err := f.svc.Complete(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, res.HasWinners())
	assert.Empty(t, f.messenger.sent())

	f.messenger.AssertCalled(t, "UpdateAnnouncement", mock.Anything, g.Announcement, mock.MatchedBy(func(a models.Announcement) bool {
		return a.Color == models.ColorEnded && strings.Contains(a.Body, "No valid entries")
	}))
}

func TestArchiveFailureDoesNotResurrect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))
	f.archive.appendErr = errStoreDown

	res, err := f.svc.Complete(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, res.Archived)

	_, err = f.svc.Complete(ctx, g.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGiveawayNotFound))
	assert.Empty(t, f.svc.ListActive(42))
}

func TestCompletionSurvivesMessagingFailures(t *testing.T) {
	active := newFakeActiveRepo()
	archive := &fakeArchiveRepo{}
	m := &mockMessenger{}
	m.expectPublishing()
	m.On("UpdateAnnouncement", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("message to edit not found"))
	m.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bot was kicked"))
	svc := NewGiveawayService(active, archive, m, Options{})
	ctx := context.Background()

	g, err := svc.Start(ctx, StartRequest{CommunityID: 1, HostID: 2, Prize: "x", WinnersCount: 1, Duration: "1h"})
	require.NoError(t, err)
	_, err = svc.AddParticipant(ctx, g.ID, 3)
	require.NoError(t, err)

	res, err := svc.Complete(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, res.Winners)
	assert.Len(t, archive.all(), 1)
}

func TestConcurrentCompletionIsExactlyOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))
	for u := int64(1); u <= 10; u++ {
		_, err := f.svc.AddParticipant(ctx, g.ID, 100+u)
		require.NoError(t, err)
	}

	const callers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		notFound int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Complete(ctx, g.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if apperrors.IsCode(err, apperrors.ErrCodeGiveawayNotFound) {
				notFound++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, notFound)
	assert.Len(t, f.archive.all(), 1)
}

func TestRosterEditsRacingCompletionNeverOutliveIt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))

	var wg sync.WaitGroup
	for u := int64(1); u <= 50; u++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.AddParticipant(ctx, g.ID, 1000+u)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.svc.Complete(ctx, g.ID)
		assert.NoError(t, err)
	}()
	wg.Wait()

	_, stillStored := f.active.get(g.ID)
	assert.False(t, stillStored, "no upsert may land after completion deleted the record")

	records := f.archive.all()
	require.Len(t, records, 1)
	for _, w := range records[0].Winners {
		assert.Contains(t, records[0].Participants, w)
	}
	assert.Zero(t, f.svc.locks.size())
}

func TestCompleteByAnnouncement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))

	res, err := f.svc.CompleteByAnnouncement(ctx, g.Announcement)
	require.NoError(t, err)
	assert.Equal(t, g.ID, res.Giveaway.ID)

	_, err = f.svc.CompleteByAnnouncement(ctx, g.Announcement)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGiveawayNotFound))
}

func TestReroll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	g := f.start(t, nitro("1h"))
	for _, u := range []int64{1, 2, 3, 4, 5} {
		_, err := f.svc.AddParticipant(ctx, g.ID, u)
		require.NoError(t, err)
	}
	res, err := f.svc.Complete(ctx, g.ID)
	require.NoError(t, err)
	original := append([]int64(nil), res.Winners...)

	for i := 0; i < 20; i++ {
		winners, err := f.svc.Reroll(ctx, g.Announcement)
		require.NoError(t, err)
		require.Len(t, winners, 2)
		assert.NotEqual(t, winners[0], winners[1])
		assert.Subset(t, []int64{1, 2, 3, 4, 5}, winners)
	}

	records := f.archive.all()
	require.Len(t, records, 1)
	assert.Equal(t, original, records[0].Winners, "reroll never mutates the archive")

	sent := f.messenger.sent()
	assert.Contains(t, sent[len(sent)-1], "🔄 Congratulations")
}

func TestRerollErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Reroll(ctx, models.AnnouncementRef{ChatID: 1, MessageID: 2})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGiveawayNotFound))

	g := f.start(t, nitro("1h"))
	_, err = f.svc.Complete(ctx, g.ID)
	require.NoError(t, err)

	_, err = f.svc.Reroll(ctx, g.Announcement)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoParticipants))
}

func TestLoadRestoresRegistry(t *testing.T) {
	f := newFixture()
	base := f.clock.Now()
	for i, id := range []string{"b", "a", "c"} {
		require.NoError(t, f.active.UpsertActive(context.Background(), &models.Giveaway{
			ID:           id,
			CommunityID:  42,
			Announcement: models.AnnouncementRef{ChatID: 42, MessageID: int64(i + 1)},
			WinnersCount: 1,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			EndsAt:       base.Add(time.Hour),
			Participants: []int64{int64(i)},
		}))
	}

	n, err := f.svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list := f.svc.ListActive(42)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

	id, ok := f.svc.Registry().FindByAnnouncement(models.AnnouncementRef{ChatID: 42, MessageID: 2})
	require.True(t, ok)
	assert.Equal(t, "a", id)
}

func TestLoadLogsRestoredCountOnce(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "test", false)
	defer logger.InitWithWriter(io.Discard, "test", false)

	f := newFixture()
	require.NoError(t, f.active.UpsertActive(context.Background(), &models.Giveaway{
		ID: "a", CommunityID: 42, WinnersCount: 1, EndsAt: f.clock.Now().Add(time.Hour),
	}))

	_, err := f.svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "Active giveaways restored"))
	assert.Contains(t, buf.String(), "count:1")
}

func TestLoadFailure(t *testing.T) {
	f := newFixture()
	f.active.listErr = errStoreDown

	_, err := f.svc.Load(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodePersistence))
}
