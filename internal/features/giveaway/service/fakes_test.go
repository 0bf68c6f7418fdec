package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/repository"
)

var errStoreDown = errors.New("store down")

type fakeActiveRepo struct {
	mu        sync.Mutex
	items     map[string]*models.Giveaway
	upserts   int
	deletes   int
	upsertErr error
	listErr   error
}

func newFakeActiveRepo() *fakeActiveRepo {
	return &fakeActiveRepo{items: make(map[string]*models.Giveaway)}
}

func (r *fakeActiveRepo) ListActive(ctx context.Context) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*models.Giveaway, 0, len(r.items))
	for _, g := range r.items {
		out = append(out, g.Clone())
	}
	return out, nil
}

func (r *fakeActiveRepo) UpsertActive(ctx context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	r.items[g.ID] = g.Clone()
	return nil
}

func (r *fakeActiveRepo) DeleteActive(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.items, id)
	return nil
}

func (r *fakeActiveRepo) get(id string) (*models.Giveaway, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	return g, ok
}

func (r *fakeActiveRepo) upsertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

type fakeArchiveRepo struct {
	mu        sync.Mutex
	records   []*models.ArchivedGiveaway
	appendErr error
}

func (r *fakeArchiveRepo) AppendArchive(ctx context.Context, rec *models.ArchivedGiveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeArchiveRepo) FindArchiveByAnnouncement(ctx context.Context, ref models.AnnouncementRef) (*models.ArchivedGiveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].Announcement == ref {
			c := *r.records[i]
			return &c, nil
		}
	}
	return nil, repository.ErrArchiveNotFound
}

func (r *fakeArchiveRepo) all() []*models.ArchivedGiveaway {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.ArchivedGiveaway(nil), r.records...)
}

type mockMessenger struct {
	mock.Mock
	nextMessageID atomic.Int64
}

func (m *mockMessenger) Publish(ctx context.Context, communityID, chatID int64, a models.Announcement) (models.AnnouncementRef, error) {
	args := m.Called(ctx, communityID, chatID, a)
	if fn, ok := args.Get(0).(func(context.Context, int64, int64, models.Announcement) models.AnnouncementRef); ok {
		return fn(ctx, communityID, chatID, a), args.Error(1)
	}
	return args.Get(0).(models.AnnouncementRef), args.Error(1)
}

func (m *mockMessenger) UpdateAnnouncement(ctx context.Context, ref models.AnnouncementRef, a models.Announcement) error {
	return m.Called(ctx, ref, a).Error(0)
}

func (m *mockMessenger) Send(ctx context.Context, chatID int64, text string) error {
	return m.Called(ctx, chatID, text).Error(0)
}

// expectPublishing answers every Publish with a fresh message id in the requested chat.
func (m *mockMessenger) expectPublishing() {
	m.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, _ int64, chatID int64, _ models.Announcement) models.AnnouncementRef {
			return models.AnnouncementRef{ChatID: chatID, MessageID: m.nextMessageID.Add(1)}
		}, nil)
}

func (m *mockMessenger) expectUpdatesAndSends() {
	m.On("UpdateAnnouncement", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc       *Service
	active    *fakeActiveRepo
	archive   *fakeArchiveRepo
	messenger *mockMessenger
	clock     *fakeClock
}

func newFixture() *fixture {
	f := &fixture{
		active:    newFakeActiveRepo(),
		archive:   &fakeArchiveRepo{},
		messenger: &mockMessenger{},
		clock:     newFakeClock(),
	}
	f.messenger.expectPublishing()
	f.messenger.expectUpdatesAndSends()
	f.svc = NewGiveawayService(f.active, f.archive, f.messenger, Options{
		GatewayTimeout: time.Second,
		Now:            f.clock.Now,
	})
	return f
}

func (f *fixture) start(t *testing.T, req StartRequest) *models.Giveaway {
	t.Helper()
	g, err := f.svc.Start(context.Background(), req)
	require.NoError(t, err)
	return g
}

// sent returns the texts passed to Send, in call order.
func (m *mockMessenger) sent() []string {
	var out []string
	for _, c := range m.Calls {
		if c.Method == "Send" {
			out = append(out, c.Arguments.String(2))
		}
	}
	return out
}
