// Package audit records per-request metadata for operational review.
// Entries never contain message content, only lengths and counts.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertTimeout = 2 * time.Second

// Entry is one completed request. Code is empty on success.
type Entry struct {
	RequestID    string
	Endpoint     string
	Agent        string
	Status       int
	Code         string
	MessageCount int
	DurationMs   int64
	ReceivedAt   time.Time
}

// Store persists audit entries to PostgreSQL. A nil pool disables
// auditing; the gateway runs without it.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Record writes the entry asynchronously (fire-and-forget). The request
// path never blocks on the database.
func (s *Store) Record(entry Entry) {
	if s == nil || s.db == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		defer cancel()
		_, err := s.db.Exec(ctx, `
			INSERT INTO request_log
				(request_id, endpoint, agent, status, code, message_count, duration_ms, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, entry.RequestID, entry.Endpoint, entry.Agent, entry.Status, entry.Code,
			entry.MessageCount, entry.DurationMs, entry.ReceivedAt)
		if err != nil {
			slog.Warn("audit insert failed", "request_id", entry.RequestID, "error", err)
		}
	}()
}
