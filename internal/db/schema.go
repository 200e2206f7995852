package db

import (
	"context"
	"fmt"
)

// Relationships to users are kept by convention only; there are no
// foreign key constraints so turns for an unknown user are still recorded.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    age INTEGER,
    emergency_contact TEXT,
    medical_conditions TEXT
);

CREATE TABLE IF NOT EXISTS medications (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    name TEXT NOT NULL,
    dosage TEXT,
    time_of_day TEXT,
    instructions TEXT
);

CREATE TABLE IF NOT EXISTS medical_history (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    event_date DATE,
    event_type TEXT,
    description TEXT
);

CREATE TABLE IF NOT EXISTS conversation_history (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    timestamp TIMESTAMPTZ,
    user_input TEXT,
    response TEXT
);

CREATE INDEX IF NOT EXISTS idx_conversation_history_user_time
    ON conversation_history (user_id, timestamp DESC);
`

// Migrate creates any missing tables. Existing tables are left untouched.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
