// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Dialect names accepted by CreateSchema and the store.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var ddl string
	switch dialect {
	case Postgres:
		ddl = postgresSchema
	case SQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", dialect)
	}

	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every table. Used by tests.
func DropSchema(db *sql.DB) error {
	for _, table := range []string{"poll_vote", "poll_option", "poll_question", "poll"} {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

const postgresSchema = `
-- Polls (authored externally; this service owns status, active_question_id, state_version)
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT 'general' CHECK (type IN ('general', 'quiz', 'building_selection')),
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published', 'open', 'live', 'leaderboard', 'closed')),
    active_question_id TEXT,
    state_version BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (group_id, slug)
);

CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status);

-- Questions
CREATE TABLE IF NOT EXISTS poll_question (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    order_index INTEGER NOT NULL,
    question_text TEXT NOT NULL,
    media_url TEXT,
    is_revealed BOOLEAN NOT NULL DEFAULT FALSE,
    activated_at TIMESTAMPTZ,
    UNIQUE (poll_id, order_index)
);

CREATE INDEX IF NOT EXISTS idx_poll_question_poll_id ON poll_question(poll_id);

-- Options
CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES poll_question(id) ON DELETE CASCADE,
    option_text TEXT NOT NULL,
    media_url TEXT,
    order_index INTEGER NOT NULL DEFAULT 0,
    is_correct BOOLEAN
);

CREATE INDEX IF NOT EXISTS idx_poll_option_question_id ON poll_option(question_id);

-- Votes: one per participant per question, never updated
CREATE TABLE IF NOT EXISTS poll_vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES poll_question(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    option_id TEXT NOT NULL REFERENCES poll_option(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (question_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_vote_poll_id ON poll_vote(poll_id);
CREATE INDEX IF NOT EXISTS idx_poll_vote_option_id ON poll_vote(option_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT 'general' CHECK (type IN ('general', 'quiz', 'building_selection')),
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published', 'open', 'live', 'leaderboard', 'closed')),
    active_question_id TEXT,
    state_version INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    UNIQUE (group_id, slug)
);

CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status);

CREATE TABLE IF NOT EXISTS poll_question (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    order_index INTEGER NOT NULL,
    question_text TEXT NOT NULL,
    media_url TEXT,
    is_revealed BOOLEAN NOT NULL DEFAULT 0,
    activated_at DATETIME,
    UNIQUE (poll_id, order_index)
);

CREATE INDEX IF NOT EXISTS idx_poll_question_poll_id ON poll_question(poll_id);

CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES poll_question(id) ON DELETE CASCADE,
    option_text TEXT NOT NULL,
    media_url TEXT,
    order_index INTEGER NOT NULL DEFAULT 0,
    is_correct BOOLEAN
);

CREATE INDEX IF NOT EXISTS idx_poll_option_question_id ON poll_option(question_id);

CREATE TABLE IF NOT EXISTS poll_vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES poll_question(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    option_id TEXT NOT NULL REFERENCES poll_option(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL,
    UNIQUE (question_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_vote_poll_id ON poll_vote(poll_id);
CREATE INDEX IF NOT EXISTS idx_poll_vote_option_id ON poll_vote(option_id);
`
