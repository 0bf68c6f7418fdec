package dto

import (
	"time"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/utils/duration"
)

// GiveawayCreateRequest is the body of POST /giveaways.
type GiveawayCreateRequest struct {
	CommunityID  int64  `json:"community_id" binding:"required"`
	ChatID       int64  `json:"chat_id"`
	Prize        string `json:"prize" binding:"required,notblank,max=256" example:"Nitro"`
	WinnersCount int    `json:"winners_count" example:"2"`
	Duration     string `json:"duration" binding:"required" example:"1h30m"`
}

// RerollRequest is the body of POST /giveaways/reroll.
type RerollRequest struct {
	ChatID    int64 `json:"chat_id" binding:"required"`
	MessageID int64 `json:"message_id" binding:"required"`
}

// GiveawayResponse is the API view of an active giveaway.
type GiveawayResponse struct {
	ID                string    `json:"id"`
	CommunityID       int64     `json:"community_id"`
	ChatID            int64     `json:"chat_id"`
	MessageID         int64     `json:"message_id"`
	HostID            int64     `json:"host_id"`
	Prize             string    `json:"prize"`
	WinnersCount      int       `json:"winners_count"`
	EndsAt            time.Time `json:"ends_at"`
	TimeLeft          string    `json:"time_left"`
	ParticipantsCount int       `json:"participants_count"`
}

// CompletionResponse is returned by POST /giveaways/:id/complete.
type CompletionResponse struct {
	ID       string    `json:"id"`
	Prize    string    `json:"prize"`
	Winners  []int64   `json:"winners"`
	EndedAt  time.Time `json:"ended_at"`
	Archived bool      `json:"archived"`
}

// RerollResponse is returned by POST /giveaways/reroll.
type RerollResponse struct {
	Winners []int64 `json:"winners"`
}

func ToGiveawayResponse(g *models.Giveaway, now time.Time) GiveawayResponse {
	return GiveawayResponse{
		ID:                g.ID,
		CommunityID:       g.CommunityID,
		ChatID:            g.Announcement.ChatID,
		MessageID:         g.Announcement.MessageID,
		HostID:            g.HostID,
		Prize:             g.Prize,
		WinnersCount:      g.WinnersCount,
		EndsAt:            g.EndsAt,
		TimeLeft:          duration.Format(g.TimeLeft(now)),
		ParticipantsCount: len(g.Participants),
	}
}

func ToCompletionResponse(r *models.CompletionResult) CompletionResponse {
	winners := r.Winners
	if winners == nil {
		winners = []int64{}
	}
	return CompletionResponse{
		ID:       r.Giveaway.ID,
		Prize:    r.Giveaway.Prize,
		Winners:  winners,
		EndedAt:  r.EndedAt,
		Archived: r.Archived,
	}
}

// MembershipResponse is returned by join and leave.
type MembershipResponse struct {
	GiveawayID string `json:"giveaway_id"`
	Changed    bool   `json:"changed"`
}
