package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS ended_giveaways (
		id            BIGSERIAL PRIMARY KEY,
		giveaway_id   TEXT        NOT NULL,
		chat_id       BIGINT      NOT NULL,
		message_id    BIGINT      NOT NULL,
		community_id  BIGINT      NOT NULL,
		host_id       BIGINT      NOT NULL,
		host_name     TEXT        NOT NULL DEFAULT '',
		prize         TEXT        NOT NULL,
		winners_count INTEGER     NOT NULL CHECK (winners_count > 0),
		ends_at       TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		participants  BIGINT[]    NOT NULL DEFAULT '{}',
		winners       BIGINT[]    NOT NULL DEFAULT '{}',
		ended_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ended_giveaways_announcement ON ended_giveaways (chat_id, message_id, ended_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_ended_giveaways_community ON ended_giveaways (community_id)`,
}

// Migrate applies the archive schema. Every statement is idempotent.
func (c *Client) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
