package db

import (
	"context"
	"encoding/json"
	"fmt"

	"autochase/internal/models"
)

// InsertITNLog records one received payment notification for auditing.
// Every hit is logged, authentic or not.
func (d *DB) InsertITNLog(ctx context.Context, log models.ITNLog) error {
	payload, err := json.Marshal(log.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode ITN payload: %w", err)
	}
	_, err = d.Pool.Exec(ctx, `
        INSERT INTO ac_itn_logs (
            id, received_at, source_ip, signature_ok, ip_ok, postback_ok,
            payment_status, m_payment_id, payload
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		log.ID, log.ReceivedAt, log.SourceIP, log.SignatureOK, log.SourceIPOK,
		log.PostbackOK, log.PaymentStatus, log.Reference, payload)
	if err != nil {
		return fmt.Errorf("failed to insert ITN log: %w", err)
	}
	return nil
}
