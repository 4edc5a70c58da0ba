package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/AchilleasB/membership-console/internal/adapters/repository"
	"github.com/AchilleasB/membership-console/internal/config"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	// Health check configuration
	healthCheckStaleThreshold = 5 * time.Minute

	// Batch processing limits
	maxEventsPerBatch = 100
)

// Relay listens for PostgreSQL NOTIFY signals on the outbox channel and
// publishes pending activity events.
type Relay struct {
	db            *sql.DB
	publisher     ports.ActivityPublisher
	listener      *pq.Listener
	dbURL         string
	dbCB          *gobreaker.CircuitBreaker
	logger        *slog.Logger
	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.ActivityPublisher, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		dbCB:      config.NewCircuitBreaker(config.BreakerRelayPostgres),
		logger:    logger.With("component", "outbox-relay"),
	}
	r.markProcessed()
	r.healthy.Store(true)
	return r
}

// IsHealthy is the liveness check: the process is alive and responding.
// Circuit breaker state is left to IsReady, an open circuit is degraded but
// recoverable.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady returns true if the relay can process events.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

func (r *Relay) markProcessed() {
	r.lastProcessed.Store(time.Now().UnixNano())
}

// Start blocks, relaying events until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Error("listener error", "error", err)
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(repository.OutboxChannel); err != nil {
		return err
	}

	r.logger.Info("listening for notifications", "channel", repository.OutboxChannel)

	// Catch up on anything stored while the relay was down.
	if err := r.processUnprocessedEvents(ctx); err != nil {
		r.logger.Error("processing startup backlog failed", "error", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				r.logger.Warn("received nil notification, reconnecting")
				r.healthy.Store(false)
				continue
			}

			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				r.logger.Error("processing event failed", "event_id", notification.Extra, "error", err)
			} else {
				r.markProcessed()
				r.healthy.Store(true)
			}

		case <-ticker.C:
			// Keep the connection alive and pick up missed notifications.
			go r.listener.Ping()

			if err := r.processUnprocessedEvents(ctx); err != nil {
				r.logger.Error("periodic processing failed", "error", err)
			} else {
				r.markProcessed()
			}
		}
	}
}

// deliver publishes one stored payload. Undecodable payloads are reported
// as done so they are not retried forever.
func (r *Relay) deliver(ctx context.Context, id string, payload []byte) error {
	var evt ports.ActivityEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		r.logger.Error("invalid payload, skipping", "event_id", id, "error", err)
		return nil
	}
	if evt.ID == "" {
		evt.ID = id
	}
	return r.publisher.PublishActivity(ctx, evt)
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var payload []byte
		err = tx.QueryRowContext(ctx, `
			SELECT payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&payload)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.deliver(ctx, eventID, payload); err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, eventID); err != nil {
			return nil, err
		}

		return nil, tx.Commit()
	})
	return err
}

// processUnprocessedEvents drains the backlog in batches.
func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		type record struct {
			ID      string
			Payload []byte
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.Payload); err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := r.deliver(ctx, rec.ID, rec.Payload); err != nil {
				r.logger.Error("publishing event failed", "event_id", rec.ID, "error", err)
				continue
			}

			if _, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, rec.ID); err != nil {
				return nil, err
			}

			r.logger.Debug("processed event", "event_id", rec.ID)
		}

		return nil, tx.Commit()
	})
	return err
}
