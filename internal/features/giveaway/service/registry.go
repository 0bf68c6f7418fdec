package service

import (
	"sort"
	"sync"
	"time"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
)

type registryEntry struct {
	giveaway *models.Giveaway
	seq      uint64
}

// Registry is the in-memory index of active giveaways. It hands out copies,
// so callers never observe a roster while it is being edited.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]*registryEntry
	byRef   map[models.AnnouncementRef]string
	nextSeq uint64
}

func NewRegistry() *Registry {
	return &Registry{
		byID:  make(map[string]*registryEntry),
		byRef: make(map[models.AnnouncementRef]string),
	}
}

// Load replaces the whole index. Records are ordered by creation time so
// listings stay stable across restarts.
func (r *Registry) Load(giveaways []*models.Giveaway) {
	sorted := make([]*models.Giveaway, 0, len(giveaways))
	for _, g := range giveaways {
		if g != nil {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]*registryEntry, len(sorted))
	r.byRef = make(map[models.AnnouncementRef]string, len(sorted))
	r.nextSeq = 0
	for _, g := range sorted {
		r.putLocked(g)
	}
}

// Put adds or replaces a giveaway.
func (r *Registry) Put(g *models.Giveaway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putLocked(g)
}

func (r *Registry) putLocked(g *models.Giveaway) {
	c := g.Clone()
	if prev, ok := r.byID[c.ID]; ok {
		delete(r.byRef, prev.giveaway.Announcement)
		prev.giveaway = c
	} else {
		r.nextSeq++
		r.byID[c.ID] = &registryEntry{giveaway: c, seq: r.nextSeq}
	}
	if !c.Announcement.IsZero() {
		r.byRef[c.Announcement] = c.ID
	}
}

// Get returns a copy of the giveaway.
func (r *Registry) Get(id string) (*models.Giveaway, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return e.giveaway.Clone(), true
}

// Remove deletes the giveaway and returns it. Only one caller can win the
// removal of a given id.
func (r *Registry) Remove(id string) (*models.Giveaway, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	if r.byRef[e.giveaway.Announcement] == id {
		delete(r.byRef, e.giveaway.Announcement)
	}
	return e.giveaway, true
}

// Update applies fn to the stored giveaway. It returns a copy taken after fn
// ran, whether fn reported a change, and whether the id was found.
func (r *Registry) Update(id string, fn func(g *models.Giveaway) bool) (*models.Giveaway, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, false, false
	}
	changed := fn(e.giveaway)
	return e.giveaway.Clone(), changed, true
}

// FindByAnnouncement resolves a chat message to the giveaway it announces.
func (r *Registry) FindByAnnouncement(ref models.AnnouncementRef) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRef[ref]
	return id, ok
}

// ListByCommunity returns copies in insertion order.
func (r *Registry) ListByCommunity(communityID int64) []*models.Giveaway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*registryEntry, 0)
	for _, e := range r.byID {
		if e.giveaway.CommunityID == communityID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]*models.Giveaway, len(entries))
	for i, e := range entries {
		out[i] = e.giveaway.Clone()
	}
	return out
}

// Expired returns the ids whose deadline is at or before now.
func (r *Registry) Expired(now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	type due struct {
		id     string
		endsAt time.Time
	}
	var found []due
	for id, e := range r.byID {
		if e.giveaway.Expired(now) {
			found = append(found, due{id: id, endsAt: e.giveaway.EndsAt})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].endsAt.Before(found[j].endsAt) })
	ids := make([]string, len(found))
	for i, d := range found {
		ids[i] = d.id
	}
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
