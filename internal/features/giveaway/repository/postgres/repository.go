package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/repository"
)

// ArchiveRepository persists completed giveaways into ended_giveaways.
type ArchiveRepository struct {
	db *sql.DB
}

func NewArchiveRepository(db *sql.DB) *ArchiveRepository { return &ArchiveRepository{db: db} }

var _ repository.ArchiveRepository = (*ArchiveRepository)(nil)

// AppendArchive inserts one record. Records are never updated.
func (r *ArchiveRepository) AppendArchive(ctx context.Context, rec *models.ArchivedGiveaway) error {
	const q = `
	INSERT INTO ended_giveaways (giveaway_id, chat_id, message_id, community_id, host_id, host_name, prize, winners_count, ends_at, created_at, participants, winners, ended_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.Announcement.ChatID,
		rec.Announcement.MessageID,
		rec.CommunityID,
		rec.HostID,
		rec.HostName,
		rec.Prize,
		rec.WinnersCount,
		rec.EndsAt,
		rec.CreatedAt,
		pq.Array(rec.Participants),
		pq.Array(rec.Winners),
		rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ended giveaway %s: %w", rec.ID, err)
	}
	return nil
}

// FindArchiveByAnnouncement returns the most recent record for the announcement.
func (r *ArchiveRepository) FindArchiveByAnnouncement(ctx context.Context, ref models.AnnouncementRef) (*models.ArchivedGiveaway, error) {
	const q = `
        SELECT giveaway_id, chat_id, message_id, community_id, host_id, host_name, prize, winners_count, ends_at, created_at, participants, winners, ended_at
        FROM ended_giveaways
        WHERE chat_id=$1 AND message_id=$2
        ORDER BY ended_at DESC
        LIMIT 1`
	var (
		rec          models.ArchivedGiveaway
		participants pq.Int64Array
		winners      pq.Int64Array
	)
	err := r.db.QueryRowContext(ctx, q, ref.ChatID, ref.MessageID).Scan(
		&rec.ID,
		&rec.Announcement.ChatID,
		&rec.Announcement.MessageID,
		&rec.CommunityID,
		&rec.HostID,
		&rec.HostName,
		&rec.Prize,
		&rec.WinnersCount,
		&rec.EndsAt,
		&rec.CreatedAt,
		&participants,
		&winners,
		&rec.EndedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrArchiveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select ended giveaway %s: %w", ref, err)
	}

	rec.Participants = []int64(participants)
	if rec.Participants == nil {
		rec.Participants = []int64{}
	}
	rec.Winners = []int64(winners)
	if rec.Winners == nil {
		rec.Winners = []int64{}
	}
	return &rec, nil
}
