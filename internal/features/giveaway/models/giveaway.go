package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AnnouncementRef identifies the chat message that announces a giveaway.
type AnnouncementRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

func (r AnnouncementRef) String() string {
	return fmt.Sprintf("%d:%d", r.ChatID, r.MessageID)
}

func (r AnnouncementRef) IsZero() bool {
	return r.ChatID == 0 && r.MessageID == 0
}

// ParseAnnouncementRef accepts "<chat_id>:<message_id>" or a bare message id, in
// which case defaultChat is used.
func ParseAnnouncementRef(s string, defaultChat int64) (AnnouncementRef, error) {
	s = strings.TrimSpace(s)
	chatPart, msgPart, found := strings.Cut(s, ":")
	if !found {
		msgPart = chatPart
		chatPart = ""
	}

	ref := AnnouncementRef{ChatID: defaultChat}
	if chatPart != "" {
		chatID, err := strconv.ParseInt(chatPart, 10, 64)
		if err != nil {
			return AnnouncementRef{}, fmt.Errorf("invalid chat id %q: %w", chatPart, err)
		}
		ref.ChatID = chatID
	}
	msgID, err := strconv.ParseInt(msgPart, 10, 64)
	if err != nil || msgID <= 0 {
		return AnnouncementRef{}, fmt.Errorf("invalid message id %q", msgPart)
	}
	ref.MessageID = msgID
	return ref, nil
}

// Giveaway is one active contest. Everything except Participants is fixed at creation.
type Giveaway struct {
	ID           string          `json:"id"`
	Announcement AnnouncementRef `json:"announcement"`
	CommunityID  int64           `json:"community_id"`
	HostID       int64           `json:"host_id"`
	HostName     string          `json:"host_name,omitempty"`
	Prize        string          `json:"prize"`
	WinnersCount int             `json:"winners_count"`
	EndsAt       time.Time       `json:"ends_at"`
	CreatedAt    time.Time       `json:"created_at"`
	Participants []int64         `json:"participants"`
}

// HasParticipant reports roster membership.
func (g *Giveaway) HasParticipant(userID int64) bool {
	return slices.Contains(g.Participants, userID)
}

// AddParticipant inserts userID unless present. It returns whether the roster changed.
func (g *Giveaway) AddParticipant(userID int64) bool {
	if g.HasParticipant(userID) {
		return false
	}
	g.Participants = append(g.Participants, userID)
	return true
}

// RemoveParticipant deletes userID if present. It returns whether the roster changed.
func (g *Giveaway) RemoveParticipant(userID int64) bool {
	i := slices.Index(g.Participants, userID)
	if i < 0 {
		return false
	}
	g.Participants = slices.Delete(g.Participants, i, i+1)
	return true
}

// Expired reports whether the deadline has been reached at now.
func (g *Giveaway) Expired(now time.Time) bool {
	return !now.Before(g.EndsAt)
}

// TimeLeft is zero once the giveaway is expired.
func (g *Giveaway) TimeLeft(now time.Time) time.Duration {
	if g.Expired(now) {
		return 0
	}
	return g.EndsAt.Sub(now)
}

// Clone returns a deep copy so callers never share the participant slice.
func (g *Giveaway) Clone() *Giveaway {
	if g == nil {
		return nil
	}
	c := *g
	c.Participants = slices.Clone(g.Participants)
	if c.Participants == nil {
		c.Participants = []int64{}
	}
	return &c
}
