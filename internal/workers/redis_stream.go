package workers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	go_redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/common/metrics"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/delivery/bot"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/platform/redis"
)

// Event types published on the bot stream by the chat gateway.
const (
	EventReactionAdded   = "reaction_added"
	EventReactionRemoved = "reaction_removed"
	EventCommand         = "command"
)

type MembershipHandler interface {
	HandleMembership(ctx context.Context, ref models.AnnouncementRef, userID int64, added bool) (bool, error)
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd bot.Command) error
}

type StreamConfig struct {
	Stream        string
	Group         string
	Consumer      string
	CommandPrefix string
	EntryEmoji    string
	// Block is how long one XREADGROUP waits for new entries.
	Block time.Duration
}

// RedisStreamWorker consumes chat events from a Redis stream consumer group
// and routes them to the roster and the command dispatcher.
type RedisStreamWorker struct {
	rdb        *redis.Client
	cfg        StreamConfig
	membership MembershipHandler
	commands   CommandHandler
	log        zerolog.Logger
}

func NewRedisStreamWorker(rdb *redis.Client, cfg StreamConfig, membership MembershipHandler, commands CommandHandler) *RedisStreamWorker {
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	return &RedisStreamWorker{
		rdb:        rdb,
		cfg:        cfg,
		membership: membership,
		commands:   commands,
		log:        logger.Component("stream_worker"),
	}
}

// Start begins listening to the Redis stream for events. It returns when ctx is done.
func (w *RedisStreamWorker) Start(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		w.log.Error().Err(err).Str("stream", w.cfg.Stream).Msg("Error creating consumer group")
	}

	w.log.Info().Str("stream", w.cfg.Stream).Str("group", w.cfg.Group).Msg("Starting Redis stream worker")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping Redis stream worker")
			return
		default:
		}

		entries, err := w.rdb.XReadGroup(ctx, &go_redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Streams:  []string{w.cfg.Stream, ">"},
			Count:    10,
			Block:    w.cfg.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, go_redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Error reading from stream")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range entries {
			for _, msg := range stream.Messages {
				w.processMessage(ctx, msg.Values)
				if err := w.rdb.XAck(ctx, w.cfg.Stream, w.cfg.Group, msg.ID).Err(); err != nil {
					w.log.Warn().Err(err).Str("id", msg.ID).Msg("Failed to ack stream entry")
				}
			}
		}
	}
}

func (w *RedisStreamWorker) processMessage(ctx context.Context, values map[string]interface{}) {
	eventType := stringField(values, "type")
	var err error
	switch eventType {
	case EventReactionAdded, EventReactionRemoved:
		err = w.processReaction(ctx, eventType == EventReactionAdded, values)
	case EventCommand:
		err = w.processCommand(ctx, values)
	default:
		metrics.EventsProcessed.WithLabelValues("unknown", "ignored").Inc()
		return
	}

	if err != nil {
		metrics.EventsProcessed.WithLabelValues(eventType, "error").Inc()
		w.log.Error().Err(err).Str("type", eventType).Interface("values", values).Msg("Failed to process event")
		return
	}
	metrics.EventsProcessed.WithLabelValues(eventType, "ok").Inc()
}

func (w *RedisStreamWorker) processReaction(ctx context.Context, added bool, values map[string]interface{}) error {
	if boolField(values, "is_bot") {
		return nil
	}
	if w.cfg.EntryEmoji != "" && stringField(values, "emoji") != w.cfg.EntryEmoji {
		return nil
	}

	chatID, err := intField(values, "chat_id")
	if err != nil {
		return err
	}
	messageID, err := intField(values, "message_id")
	if err != nil {
		return err
	}
	userID, err := intField(values, "user_id")
	if err != nil {
		return err
	}

	ref := models.AnnouncementRef{ChatID: chatID, MessageID: messageID}
	changed, err := w.membership.HandleMembership(ctx, ref, userID, added)
	if changed {
		w.log.Debug().
			Str("announcement", ref.String()).
			Int64("user_id", userID).
			Bool("added", added).
			Msg("Membership updated")
	}
	return err
}

func (w *RedisStreamWorker) processCommand(ctx context.Context, values map[string]interface{}) error {
	if boolField(values, "is_bot") {
		return nil
	}
	name, args, ok := bot.ParseCommand(stringField(values, "text"), w.cfg.CommandPrefix)
	if !ok {
		return nil
	}

	chatID, err := intField(values, "chat_id")
	if err != nil {
		return err
	}
	userID, err := intField(values, "user_id")
	if err != nil {
		return err
	}
	communityID := chatID
	if stringField(values, "community_id") != "" {
		if communityID, err = intField(values, "community_id"); err != nil {
			return err
		}
	}

	return w.commands.Handle(ctx, bot.Command{
		Name:        name,
		Args:        args,
		CallerID:    userID,
		CallerName:  stringField(values, "user_name"),
		CommunityID: communityID,
		ChatID:      chatID,
		Permission:  bot.ParsePermission(stringField(values, "member_status")),
	})
}

func stringField(values map[string]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}

func intField(values map[string]interface{}, key string) (int64, error) {
	raw := stringField(values, key)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func boolField(values map[string]interface{}, key string) bool {
	b, _ := strconv.ParseBool(stringField(values, key))
	return b
}
