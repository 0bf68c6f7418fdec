package service

import (
	"context"

	"github.com/open-builders/giveaway-bot/internal/common/metrics"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
)

// AddParticipant enters userID into the giveaway. It reports whether the
// roster changed. A gone giveaway or a repeat entry is a no-op.
func (s *Service) AddParticipant(ctx context.Context, giveawayID string, userID int64) (bool, error) {
	return s.editRoster(ctx, giveawayID, userID, "add", func(g *models.Giveaway) bool {
		return g.AddParticipant(userID)
	})
}

// RemoveParticipant withdraws userID. Removing a non-member is a no-op.
func (s *Service) RemoveParticipant(ctx context.Context, giveawayID string, userID int64) (bool, error) {
	return s.editRoster(ctx, giveawayID, userID, "remove", func(g *models.Giveaway) bool {
		return g.RemoveParticipant(userID)
	})
}

// HandleMembership applies an entry reaction added or removed on an announcement.
func (s *Service) HandleMembership(ctx context.Context, ref models.AnnouncementRef, userID int64, added bool) (bool, error) {
	id, ok := s.registry.FindByAnnouncement(ref)
	if !ok {
		return false, nil
	}
	if added {
		return s.AddParticipant(ctx, id, userID)
	}
	return s.RemoveParticipant(ctx, id, userID)
}

// editRoster holds the giveaway lock across the upsert, so a write can never
// land after completion has removed the giveaway.
func (s *Service) editRoster(ctx context.Context, giveawayID string, userID int64, op string, fn func(*models.Giveaway) bool) (bool, error) {
	s.locks.Lock(giveawayID)
	defer s.locks.Unlock(giveawayID)

	snapshot, changed, found := s.registry.Update(giveawayID, fn)
	if !found || !changed {
		return false, nil
	}
	metrics.RosterChanges.WithLabelValues(op).Inc()
	s.log.Debug().
		Str("giveaway_id", giveawayID).
		Int64("user_id", userID).
		Str("op", op).
		Int("participants", len(snapshot.Participants)).
		Msg("Roster changed")

	if err := s.persist(ctx, snapshot, op); err != nil {
		return true, err
	}
	return true, nil
}
