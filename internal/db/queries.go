package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
)

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, age, emergency_contact, medical_conditions
		FROM users
		WHERE id = $1
	`

	user := &User{}
	var age sql.NullInt64
	var contact, conditions sql.NullString
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &age, &contact, &conditions,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if age.Valid {
		a := int(age.Int64)
		user.Age = &a
	}
	if contact.Valid {
		user.EmergencyContact = &contact.String
	}
	if conditions.Valid {
		user.MedicalConditions = &conditions.String
	}
	return user, nil
}

// EnsureUser inserts the user if no row with its ID exists and returns the stored row
func (db *DB) EnsureUser(ctx context.Context, user User) (*User, error) {
	query := `
		INSERT INTO users (id, name, age, emergency_contact, medical_conditions)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := db.ExecContext(ctx, query,
		user.ID, user.Name, user.Age, user.EmergencyContact, user.MedicalConditions,
	); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	// An explicit id bypasses users_id_seq; move the sequence past it so
	// rows inserted without an id do not collide.
	syncSeq := `
		SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))
	`
	if _, err := db.ExecContext(ctx, syncSeq); err != nil {
		return nil, fmt.Errorf("failed to sync user id sequence: %w", err)
	}

	return db.GetUserByID(ctx, user.ID)
}

// SaveTurn appends one conversation exchange
func (db *DB) SaveTurn(ctx context.Context, userID int64, at time.Time, input, response string) (*Turn, error) {
	query := `
		INSERT INTO conversation_history (user_id, timestamp, user_input, response)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	turn := &Turn{UserID: userID, Timestamp: at, UserInput: input, Response: response}
	if err := db.QueryRowContext(ctx, query, userID, at, input, response).Scan(&turn.ID); err != nil {
		return nil, fmt.Errorf("failed to save turn: %w", err)
	}

	return turn, nil
}

// RecentTurns retrieves up to limit turns for a user, newest first
func (db *DB) RecentTurns(ctx context.Context, userID int64, limit int) ([]Turn, error) {
	query := `
		SELECT id, user_id, timestamp, user_input, response
		FROM conversation_history
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Timestamp, &t.UserInput, &t.Response); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}
