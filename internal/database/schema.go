package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	role       TEXT NOT NULL DEFAULT 'attendee'
);

CREATE TABLE IF NOT EXISTS events (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	start_time    TIMESTAMPTZ NOT NULL,
	end_time      TIMESTAMPTZ NOT NULL,
	organizer_id  TEXT NOT NULL REFERENCES users(id),
	speaker_ids   TEXT[] NOT NULL DEFAULT '{}',
	capacity      INTEGER,
	booked_count  INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL DEFAULT 'upcoming',
	reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_time < end_time),
	CHECK (capacity IS NULL OR capacity > 0)
);
CREATE INDEX IF NOT EXISTS idx_events_status ON events (status);
CREATE INDEX IF NOT EXISTS idx_events_start_time ON events (start_time);

CREATE TABLE IF NOT EXISTS registrations (
	id         TEXT PRIMARY KEY,
	event_id   TEXT NOT NULL REFERENCES events(id),
	user_id    TEXT NOT NULL REFERENCES users(id),
	attended   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (event_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations (event_id);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	event_id   TEXT NOT NULL REFERENCES events(id),
	author_id  TEXT NOT NULL REFERENCES users(id),
	text       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_messages_event_created ON messages (event_id, created_at);

CREATE TABLE IF NOT EXISTS questions (
	id             TEXT PRIMARY KEY,
	event_id       TEXT NOT NULL REFERENCES events(id),
	author_id      TEXT NOT NULL REFERENCES users(id),
	text           TEXT NOT NULL,
	answer         TEXT NOT NULL DEFAULT '',
	answered_by_id TEXT,
	answered       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_questions_event_created ON questions (event_id, created_at DESC);
`

// InitSchema creates all tables and indexes if they do not exist yet.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
