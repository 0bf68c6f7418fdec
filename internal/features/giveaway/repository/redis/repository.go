package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/repository"
)

const (
	keyPrefixGiveaway  = "giveaway:"
	keyActiveGiveaways = "giveaways:active"
	listBatchSize      = 100
)

type redisRepository struct {
	client redis.UniversalClient
	log    zerolog.Logger
}

// NewRedisGiveawayRepository stores each active giveaway as a JSON document under
// giveaway:<id> and indexes ids in the giveaways:active set.
func NewRedisGiveawayRepository(client redis.UniversalClient) repository.ActiveRepository {
	return &redisRepository{client: client, log: logger.Component("redis_giveaways")}
}

func makeGiveawayKey(id string) string {
	return keyPrefixGiveaway + id
}

func (r *redisRepository) ListActive(ctx context.Context) ([]*models.Giveaway, error) {
	ids, err := r.client.SMembers(ctx, keyActiveGiveaways).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active ids: %w", err)
	}

	out := make([]*models.Giveaway, 0, len(ids))
	var orphans []interface{}
	for start := 0; start < len(ids); start += listBatchSize {
		end := min(start+listBatchSize, len(ids))
		batch := ids[start:end]

		keys := make([]string, len(batch))
		for i, id := range batch {
			keys[i] = makeGiveawayKey(id)
		}
		values, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load giveaways: %w", err)
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				orphans = append(orphans, batch[i])
				continue
			}
			var g models.Giveaway
			if err := json.Unmarshal([]byte(raw), &g); err != nil {
				r.log.Error().Err(err).Str("giveaway_id", batch[i]).Msg("Skipping undecodable giveaway")
				continue
			}
			if g.Participants == nil {
				g.Participants = []int64{}
			}
			out = append(out, &g)
		}
	}

	// Index entries without a document are left over from interrupted deletes.
	if len(orphans) > 0 {
		if err := r.client.SRem(ctx, keyActiveGiveaways, orphans...).Err(); err != nil {
			r.log.Warn().Err(err).Int("count", len(orphans)).Msg("Failed to clean up orphaned ids")
		} else {
			r.log.Info().Int("count", len(orphans)).Msg("Cleaned up orphaned active ids")
		}
	}

	return out, nil
}

func (r *redisRepository) UpsertActive(ctx context.Context, g *models.Giveaway) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("giveaway without id")
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal giveaway: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, makeGiveawayKey(g.ID), data, 0)
		pipe.SAdd(ctx, keyActiveGiveaways, g.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert giveaway %s: %w", g.ID, err)
	}
	return nil
}

func (r *redisRepository) DeleteActive(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, makeGiveawayKey(id))
		pipe.SRem(ctx, keyActiveGiveaways, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete giveaway %s: %w", id, err)
	}
	return nil
}
