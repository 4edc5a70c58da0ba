package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AchilleasB/membership-console/internal/config"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
)

// OutboxChannel is the NOTIFY channel the relay listens on.
const OutboxChannel = "outbox_channel"

const schema = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id           UUID PRIMARY KEY,
	event_type   TEXT        NOT NULL,
	payload      JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS outbox_events_unprocessed_idx
	ON outbox_events (created_at) WHERE processed_at IS NULL;`

// ActivityRepository writes activity events to the outbox_events table and
// signals the relay in the same transaction.
type ActivityRepository struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

var _ ports.ActivityRecorder = (*ActivityRepository)(nil)

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db, cb: config.NewCircuitBreaker(config.BreakerPostgres)}
}

// EnsureSchema creates the outbox table when it is missing.
func (r *ActivityRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *ActivityRepository) RecordActivity(ctx context.Context, evt ports.ActivityEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	_, err = r.cb.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx,
			"INSERT INTO outbox_events (id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)",
			evt.ID,
			string(evt.Type),
			payload,
			evt.OccurredAt,
		)
		if isUniqueViolation(err) {
			// Already stored.
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", OutboxChannel, evt.ID); err != nil {
			return nil, err
		}

		return nil, tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("record activity %s: %w", evt.Type, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
