package telegram

import (
	"context"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
)

// Messenger adapts Client to the giveaway messaging gateway.
type Messenger struct {
	client *Client
}

func NewMessenger(client *Client) *Messenger {
	return &Messenger{client: client}
}

// Publish posts the announcement to chatID. The community is implied by the chat
// on Telegram, so communityID is only used for logging.
func (m *Messenger) Publish(ctx context.Context, communityID, chatID int64, a models.Announcement) (models.AnnouncementRef, error) {
	msg, err := m.client.SendMessage(ctx, chatID, RenderAnnouncement(a))
	if err != nil {
		return models.AnnouncementRef{}, err
	}
	ref := models.AnnouncementRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	if ref.ChatID == 0 {
		ref.ChatID = chatID
	}

	if a.Reaction != "" {
		if err := m.client.SetMessageReaction(ctx, ref.ChatID, ref.MessageID, a.Reaction); err != nil {
			m.client.log.Warn().Err(err).
				Int64("community_id", communityID).
				Str("announcement", ref.String()).
				Msg("Failed to add entry reaction")
		}
	}
	return ref, nil
}

func (m *Messenger) UpdateAnnouncement(ctx context.Context, ref models.AnnouncementRef, a models.Announcement) error {
	return m.client.EditMessageText(ctx, ref.ChatID, ref.MessageID, RenderAnnouncement(a))
}

func (m *Messenger) Send(ctx context.Context, chatID int64, text string) error {
	_, err := m.client.SendMessage(ctx, chatID, RenderText(text))
	return err
}
