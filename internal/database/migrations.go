package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on startup. Tables are ordered so foreign keys resolve.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          BIGSERIAL PRIMARY KEY,
    username    VARCHAR(100) NOT NULL,
    phone       VARCHAR(32)  NOT NULL UNIQUE,
    language    VARCHAR(8),
    push_token  TEXT,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users_rel (
    id                  BIGSERIAL PRIMARY KEY,
    owner_id            BIGINT       NOT NULL REFERENCES users(id),
    name                VARCHAR(100) NOT NULL,
    phone               VARCHAR(32)  NOT NULL,
    type                VARCHAR(16)  NOT NULL,
    mutual_relation_id  BIGINT REFERENCES users_rel(id),
    created_at          TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_rel_self ON users_rel(owner_id) WHERE type = 'self';
CREATE INDEX IF NOT EXISTS idx_users_rel_owner_phone ON users_rel(owner_id, phone);
CREATE INDEX IF NOT EXISTS idx_users_rel_phone ON users_rel(phone);

CREATE TABLE IF NOT EXISTS categories (
    id          BIGSERIAL PRIMARY KEY,
    owner_id    BIGINT       NOT NULL REFERENCES users(id),
    title       VARCHAR(100) NOT NULL,
    icon        VARCHAR(100) NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_categories_owner ON categories(owner_id);

CREATE TABLE IF NOT EXISTS joint_accounts (
    id          BIGSERIAL PRIMARY KEY,
    owner_id    BIGINT       NOT NULL REFERENCES users(id),
    name        VARCHAR(100) NOT NULL,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS joint_account_subscriptions (
    id                BIGSERIAL PRIMARY KEY,
    joint_account_id  BIGINT      NOT NULL REFERENCES joint_accounts(id),
    user_id           BIGINT      NOT NULL REFERENCES users(id),
    is_active         BOOLEAN     NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (joint_account_id, user_id)
);

CREATE TABLE IF NOT EXISTS dongs (
    id                 BIGSERIAL PRIMARY KEY,
    owner_id           BIGINT       NOT NULL REFERENCES users(id),
    title              VARCHAR(255) NOT NULL,
    description        TEXT         NOT NULL DEFAULT '',
    category_id        BIGINT       NOT NULL REFERENCES categories(id),
    pong               BIGINT       NOT NULL,
    currency           VARCHAR(8)   NOT NULL,
    joint_account_id   BIGINT REFERENCES joint_accounts(id),
    wallet_id          BIGINT,
    is_income          BOOLEAN      NOT NULL DEFAULT FALSE,
    include_in_budget  BOOLEAN      NOT NULL DEFAULT TRUE,
    receipt_id         BIGINT,
    origin_dong_id     BIGINT REFERENCES dongs(id),
    is_deleted         BOOLEAN      NOT NULL DEFAULT FALSE,
    created_at         TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_dongs_owner ON dongs(owner_id) WHERE is_deleted = FALSE;
CREATE INDEX IF NOT EXISTS idx_dongs_origin ON dongs(origin_dong_id);

CREATE TABLE IF NOT EXISTS bill_list (
    id            BIGSERIAL PRIMARY KEY,
    dong_id       BIGINT       NOT NULL REFERENCES dongs(id),
    relation_id   BIGINT REFERENCES users_rel(id),
    display_name  VARCHAR(100) NOT NULL DEFAULT '',
    amount        BIGINT       NOT NULL,
    category_id   BIGINT       NOT NULL,
    currency      VARCHAR(8)   NOT NULL,
    created_at    TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bill_list_dong ON bill_list(dong_id);

CREATE TABLE IF NOT EXISTS payer_list (
    id            BIGSERIAL PRIMARY KEY,
    dong_id       BIGINT       NOT NULL REFERENCES dongs(id),
    relation_id   BIGINT REFERENCES users_rel(id),
    display_name  VARCHAR(100) NOT NULL DEFAULT '',
    amount        BIGINT       NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payer_list_dong ON payer_list(dong_id);

CREATE TABLE IF NOT EXISTS scores (
    id            BIGSERIAL PRIMARY KEY,
    user_id       BIGINT      NOT NULL REFERENCES users(id),
    dong_id       BIGINT      NOT NULL REFERENCES dongs(id),
    base          BIGINT      NOT NULL,
    bonus         BIGINT      NOT NULL,
    mutual_count  INT         NOT NULL,
    total         BIGINT      NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(user_id);

CREATE TABLE IF NOT EXISTS notifications (
    id                   BIGSERIAL PRIMARY KEY,
    recipient_id         BIGINT      NOT NULL REFERENCES users(id),
    title                TEXT        NOT NULL DEFAULT '',
    message              TEXT        NOT NULL,
    data                 JSONB,
    is_read              BOOLEAN     NOT NULL DEFAULT FALSE,
    related_entity_type  VARCHAR(32),
    related_entity_id    BIGINT,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, is_read);
`

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
