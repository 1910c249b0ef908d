package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresStore appends events to an outbox table. The table is append-only;
// duplicate ids are ignored so replays stay idempotent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema creates the outbox table if missing.
const Schema = `
CREATE TABLE IF NOT EXISTS governance_events (
	id         UUID PRIMARY KEY,
	action     TEXT NOT NULL,
	principal  TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	height     BIGINT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// Migrate applies the outbox schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate governance_events: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	query := `
		INSERT INTO governance_events (id, action, principal, subject, height, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		event.Principal.String(),
		event.Subject,
		event.Height,
		payload,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert governance event: %w", err)
	}
	return nil
}

// ListByAction returns persisted events matching an action, oldest first.
func (s *PostgresStore) ListByAction(ctx context.Context, action Action) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM governance_events WHERE action = $1 ORDER BY created_at`,
		string(action),
	)
	if err != nil {
		return nil, fmt.Errorf("query governance events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan governance event: %w", err)
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal governance event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
