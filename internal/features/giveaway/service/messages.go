package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/utils/duration"
)

const endingLayout = "02 Jan 2006 15:04 UTC"

// Mentions joins winners the way every giveaway message lists them.
func Mentions(userIDs []int64) string {
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = models.Mention(id)
	}
	return strings.Join(parts, ", ")
}

func activeAnnouncement(g *models.Giveaway, emoji string, now time.Time) models.Announcement {
	body := fmt.Sprintf("🔔 React with %s to enter !\n⚙️ Ending: %s (in %s)\n↕️ Hosted by: %s",
		emoji,
		g.EndsAt.UTC().Format(endingLayout),
		duration.Format(g.TimeLeft(now)),
		models.Mention(g.HostID),
	)
	return models.Announcement{
		Title:    g.Prize,
		Body:     body,
		Footer:   fmt.Sprintf("🏆 Winners: %d", g.WinnersCount),
		Color:    models.ColorActive,
		Reaction: emoji,
	}
}

func endedAnnouncement(g *models.Giveaway, winners []int64, endedAt time.Time) models.Announcement {
	title := g.Prize
	result := "No valid entries"
	if len(winners) > 0 {
		result = Mentions(winners)
	} else {
		title = "🎉 " + g.Prize + " 🎉"
	}
	body := fmt.Sprintf("🔔 Winner(s): %s\n⚙️ Ending: Ended\n↕️ Hosted by: %s",
		result, models.Mention(g.HostID))
	return models.Announcement{
		Title:  title,
		Body:   body,
		Footer: "Ended at " + endedAt.UTC().Format(endingLayout),
		Color:  models.ColorEnded,
	}
}

func congratulationsText(prize string, winners []int64) string {
	return fmt.Sprintf("🎊 Congratulations %s! You won %s! 🎉", Mentions(winners), prize)
}

func rerollText(prize string, winners []int64) string {
	return fmt.Sprintf("🔄 Congratulations %s! You are the new winners of %s!", Mentions(winners), prize)
}
