package repository

import (
	"context"
	"errors"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrArchiveNotFound  = errors.New("archived giveaway not found")
)

// ActiveRepository is the durable copy of running giveaways. It is the source of
// truth on restart; the in-memory registry is rebuilt from ListActive.
type ActiveRepository interface {
	ListActive(ctx context.Context) ([]*models.Giveaway, error)
	// UpsertActive writes the full giveaway, replacing any previous copy by id.
	UpsertActive(ctx context.Context, g *models.Giveaway) error
	DeleteActive(ctx context.Context, id string) error
}

// ArchiveRepository is the append-only store of completed giveaways.
type ArchiveRepository interface {
	AppendArchive(ctx context.Context, rec *models.ArchivedGiveaway) error
	// FindArchiveByAnnouncement returns ErrArchiveNotFound when nothing matches.
	FindArchiveByAnnouncement(ctx context.Context, ref models.AnnouncementRef) (*models.ArchivedGiveaway, error)
}
