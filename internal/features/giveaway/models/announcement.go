package models

import "strconv"

// AnnouncementColor mirrors the embed colours of the announcement states.
type AnnouncementColor string

const (
	ColorActive AnnouncementColor = "#FFFF00"
	ColorEnded  AnnouncementColor = "#FF0000"
)

// Announcement is the platform-neutral content of a giveaway message.
// The messaging gateway decides how to render it.
type Announcement struct {
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Footer string            `json:"footer,omitempty"`
	Color  AnnouncementColor `json:"color,omitempty"`
	// Reaction is added by the bot so members can opt in with one tap.
	Reaction string `json:"reaction,omitempty"`
}

// Mention is the platform-neutral user mention embedded in announcement text.
// Gateways replace it with their native mention syntax.
func Mention(userID int64) string {
	return "<@" + strconv.FormatInt(userID, 10) + ">"
}
