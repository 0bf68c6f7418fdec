package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/service"
	"github.com/open-builders/giveaway-bot/internal/utils/duration"
)

const (
	replyPermission    = "❌ You need Manage permission to use this command"
	replyInvalidTime   = "❌ Invalid time! Use 1h, 30m, 1d"
	replyInvalidQuota  = "❌ Winners count must be > 0"
	replyNoActive      = "❌ No active giveaway found"
	replyEnded         = "✅ Giveaway ended successfully!"
	replyNoneActive    = "📋 No active giveaways currently"
	replyNoEnded       = "❌ No ended giveaway found"
	replyNoReroll      = "❌ No participants to reroll"
	replyTooFewReroll  = "❌ Not enough participants to draw new winners"
	replyPublishFailed = "❌ Could not post the giveaway, check the bot's rights in this chat"
	replyFailed        = "❌ Something went wrong, try again later"
)

// Replier posts plain text back into a chat.
type Replier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Dispatcher runs chat commands against the giveaway service.
type Dispatcher struct {
	svc     service.GiveawayService
	replier Replier
	prefix  string
	now     func() time.Time
	log     zerolog.Logger
}

func NewDispatcher(svc service.GiveawayService, replier Replier, prefix string) *Dispatcher {
	return &Dispatcher{
		svc:     svc,
		replier: replier,
		prefix:  prefix,
		now:     time.Now,
		log:     logger.Component("commands"),
	}
}

// Prefix is the string every command starts with.
func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Handle runs cmd and replies in its chat. Unknown commands are ignored.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) error {
	var reply string
	switch cmd.Name {
	case "gstart":
		reply = d.start(ctx, cmd)
	case "gend":
		reply = d.end(ctx, cmd)
	case "glist":
		reply = d.list(cmd)
	case "greroll":
		reply = d.reroll(ctx, cmd)
	case "help":
		reply = d.help()
	default:
		return nil
	}

	d.log.Debug().
		Str("command", cmd.Name).
		Int64("chat_id", cmd.ChatID).
		Int64("user_id", cmd.CallerID).
		Msg("Command handled")

	if reply == "" {
		return nil
	}
	if err := d.replier.Send(ctx, cmd.ChatID, reply); err != nil {
		return apperrors.NewTransportError("reply", err)
	}
	return nil
}

func (d *Dispatcher) start(ctx context.Context, cmd Command) string {
	if cmd.Permission < PermissionManager {
		return replyPermission
	}
	if len(cmd.Args) < 3 {
		return d.usage("gstart <time> <winners_count> <prize>")
	}
	winners, err := strconv.Atoi(cmd.Args[1])
	if err != nil || winners < 1 {
		return replyInvalidQuota
	}

	_, err = d.svc.Start(ctx, service.StartRequest{
		CommunityID:  cmd.CommunityID,
		ChatID:       cmd.ChatID,
		HostID:       cmd.CallerID,
		HostName:     cmd.CallerName,
		Prize:        strings.Join(cmd.Args[2:], " "),
		WinnersCount: winners,
		Duration:     cmd.Args[0],
	})
	switch {
	case err == nil:
		return ""
	case apperrors.IsCode(err, apperrors.ErrCodeInvalidDuration):
		return replyInvalidTime
	case apperrors.IsCode(err, apperrors.ErrCodeInvalidQuota):
		return replyInvalidQuota
	case apperrors.IsCode(err, apperrors.ErrCodeTransport):
		return replyPublishFailed
	default:
		d.log.Error().Err(err).Int64("chat_id", cmd.ChatID).Msg("Failed to start giveaway")
		return replyFailed
	}
}

func (d *Dispatcher) end(ctx context.Context, cmd Command) string {
	if cmd.Permission < PermissionManager {
		return replyPermission
	}
	if len(cmd.Args) == 0 {
		return d.usage("gend <message_id>")
	}
	ref, err := models.ParseAnnouncementRef(cmd.Args[0], cmd.ChatID)
	if err != nil {
		return replyNoActive
	}

	if _, err := d.svc.CompleteByAnnouncement(ctx, ref); err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeGiveawayNotFound) {
			return replyNoActive
		}
		d.log.Error().Err(err).Str("announcement", ref.String()).Msg("Failed to end giveaway")
		return replyFailed
	}
	return replyEnded
}

func (d *Dispatcher) list(cmd Command) string {
	active := d.svc.ListActive(cmd.CommunityID)
	if len(active) == 0 {
		return replyNoneActive
	}

	now := d.now()
	var b strings.Builder
	b.WriteString("📋 Active Giveaways\n")
	for i, g := range active {
		fmt.Fprintf(&b, "\n%d. %s\nWinners: %d\nTime Left: %s\nID: %d\n",
			i+1, g.Prize, g.WinnersCount, duration.FormatOr(g.TimeLeft(now), "ending"), g.Announcement.MessageID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) reroll(ctx context.Context, cmd Command) string {
	if cmd.Permission < PermissionManager {
		return replyPermission
	}
	if len(cmd.Args) == 0 {
		return d.usage("greroll <message_id>")
	}
	ref, err := models.ParseAnnouncementRef(cmd.Args[0], cmd.ChatID)
	if err != nil {
		return replyNoEnded
	}

	winners, err := d.svc.Reroll(ctx, ref)
	switch {
	case err == nil && len(winners) == 0:
		return replyTooFewReroll
	case err == nil:
		// the service announces the new winners itself
		return ""
	case apperrors.IsCode(err, apperrors.ErrCodeGiveawayNotFound):
		return replyNoEnded
	case apperrors.IsCode(err, apperrors.ErrCodeNoParticipants):
		return replyNoReroll
	default:
		d.log.Error().Err(err).Str("announcement", ref.String()).Msg("Failed to reroll giveaway")
		return replyFailed
	}
}

func (d *Dispatcher) usage(syntax string) string {
	return "❌ Usage: " + d.prefix + syntax
}

func (d *Dispatcher) help() string {
	p := d.prefix
	return strings.Join([]string{
		"🎉 Giveaway Bot - Commands",
		"",
		"🚀 " + p + "gstart <time> <winners_count> <prize>",
		"Start a new giveaway",
		"Example: " + p + "gstart 1h 2 Discord Nitro",
		"Time formats: s=seconds, m=minutes, h=hours, d=days",
		"",
		"🗑️ " + p + "gend <message_id>",
		"End a giveaway manually",
		"",
		"📋 " + p + "glist",
		"Show list of active giveaways in this community",
		"",
		"🔄 " + p + "greroll <message_id>",
		"Reroll winners for an ended giveaway",
	}, "\n")
}
