package service

import (
	"context"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
)

// GiveawayService is what the chat, HTTP and event surfaces drive.
type GiveawayService interface {
	Start(ctx context.Context, req StartRequest) (*models.Giveaway, error)
	Complete(ctx context.Context, giveawayID string) (*models.CompletionResult, error)
	CompleteByAnnouncement(ctx context.Context, ref models.AnnouncementRef) (*models.CompletionResult, error)
	Reroll(ctx context.Context, ref models.AnnouncementRef) ([]int64, error)
	Get(giveawayID string) (*models.Giveaway, bool)
	ListActive(communityID int64) []*models.Giveaway
	AddParticipant(ctx context.Context, giveawayID string, userID int64) (bool, error)
	RemoveParticipant(ctx context.Context, giveawayID string, userID int64) (bool, error)
	HandleMembership(ctx context.Context, ref models.AnnouncementRef, userID int64, added bool) (bool, error)
}

// Messenger posts and edits giveaway messages on the chat platform.
type Messenger interface {
	Publish(ctx context.Context, communityID, chatID int64, a models.Announcement) (models.AnnouncementRef, error)
	UpdateAnnouncement(ctx context.Context, ref models.AnnouncementRef, a models.Announcement) error
	Send(ctx context.Context, chatID int64, text string) error
}

// ExpirationServiceInterface completes giveaways whose deadline has passed.
type ExpirationServiceInterface interface {
	Start() error
	Stop()
	Sweep(ctx context.Context) int
}
