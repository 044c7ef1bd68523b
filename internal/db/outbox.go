package db

import (
	"context"
	"fmt"
	"time"

	"autochase/internal/models"
)

// ReplaceOutbox makes the given events the authoritative unsent outbox for
// the workspace: unsent rows not in the new schedule are removed, and each
// event is upserted by its deterministic id so already-sent rows keep their
// sent_at stamp while pending ones pick up re-rendered content.
func (d *DB) ReplaceOutbox(ctx context.Context, workspace string, events []models.ReminderEvent) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin outbox tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	_, err = tx.Exec(ctx, `
        DELETE FROM ac_outbox
        WHERE workspace_id = $1 AND sent_at IS NULL AND NOT (id = ANY($2))`,
		workspace, ids)
	if err != nil {
		return fmt.Errorf("failed to prune outbox: %w", err)
	}

	for _, ev := range events {
		_, err = tx.Exec(ctx, `
            INSERT INTO ac_outbox (
                id, workspace_id, invoice_id, send_at, kind, recipient, subject, body
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            ON CONFLICT (id) DO UPDATE
            SET send_at = $4, recipient = $6, subject = $7, body = $8`,
			ev.ID, workspace, ev.InvoiceID, ev.When, string(ev.Kind), ev.To, ev.Subject, ev.Body)
		if err != nil {
			return fmt.Errorf("failed to upsert outbox event %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit outbox tx: %w", err)
	}
	return nil
}

func (d *DB) ListOutbox(ctx context.Context, workspace string) ([]models.ReminderEvent, error) {
	return d.queryOutbox(ctx, `
        SELECT id, invoice_id, send_at, kind, recipient, subject, body, sent_at
        FROM ac_outbox
        WHERE workspace_id = $1
        ORDER BY send_at, invoice_id, id`, workspace)
}

// ListDue returns unsent events whose send time has passed.
func (d *DB) ListDue(ctx context.Context, workspace string, now time.Time) ([]models.ReminderEvent, error) {
	return d.queryOutbox(ctx, `
        SELECT id, invoice_id, send_at, kind, recipient, subject, body, sent_at
        FROM ac_outbox
        WHERE workspace_id = $1 AND sent_at IS NULL AND send_at <= $2
        ORDER BY send_at, invoice_id, id`, workspace, now)
}

func (d *DB) queryOutbox(ctx context.Context, query string, args ...interface{}) ([]models.ReminderEvent, error) {
	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var events []models.ReminderEvent
	for rows.Next() {
		var ev models.ReminderEvent
		var kind string
		err := rows.Scan(&ev.ID, &ev.InvoiceID, &ev.When, &kind, &ev.To, &ev.Subject, &ev.Body, &ev.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		ev.Kind = models.ReminderKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (d *DB) MarkSent(ctx context.Context, workspace, id string, at time.Time) error {
	result, err := d.Pool.Exec(ctx, `
        UPDATE ac_outbox SET sent_at = $1
        WHERE workspace_id = $2 AND id = $3 AND sent_at IS NULL`,
		at, workspace, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %s sent: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no unsent outbox event for id %s", id)
	}
	return nil
}
