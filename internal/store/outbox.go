package store

import (
	"context"
	"fmt"
)

// Outbox row statuses. This core only writes pending; the external relay
// moves rows to published or failed.
const (
	OutboxPending   = "pending"
	OutboxPublished = "published"
)

// OutboxRow is a durable async job envelope.
type OutboxRow struct {
	Seq     int64
	ID      string
	Kind    string
	Payload []byte
	Status  string
}

// EnqueueJob appends a job envelope to the outbox.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - redelivered messages
// that rebuild the same job id are silently ignored.
func (s *Store) EnqueueJob(ctx context.Context, id, kind string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outbox (id, kind, payload, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, kind, string(payload), OutboxPending)
	if err != nil {
		return fmt.Errorf("enqueue %s job %s: %w", kind, id, err)
	}
	return nil
}

// PendingJobs returns up to limit pending rows in enqueue order.
// Ordering is deterministic: ORDER BY seq ASC.
func (s *Store) PendingJobs(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, kind, payload, status
		FROM outbox
		WHERE status = ?
		ORDER BY seq ASC
		LIMIT ?
	`, OutboxPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []OutboxRow
	for rows.Next() {
		var (
			row     OutboxRow
			payload string
		)
		if err := rows.Scan(&row.Seq, &row.ID, &row.Kind, &payload, &row.Status); err != nil {
			return nil, fmt.Errorf("scan pending job: %w", err)
		}
		row.Payload = []byte(payload)
		jobs = append(jobs, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending jobs: %w", err)
	}

	if jobs == nil {
		jobs = []OutboxRow{}
	}
	return jobs, nil
}

// MarkPublished transitions a job out of pending once the relay has
// handed it to the downstream worker.
func (s *Store) MarkPublished(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE outbox SET status = ? WHERE id = ? AND status = ?
	`, OutboxPublished, id, OutboxPending)
	if err != nil {
		return fmt.Errorf("mark job %s published: %w", id, err)
	}
	return nil
}
