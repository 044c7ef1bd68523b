package models

import "time"

// ITNLog is one audit row for a received payment notification. Every webhook
// hit is recorded, authentic or not, so operators can tell a wrong signature
// apart from a postback timeout.
type ITNLog struct {
	ID            string            `json:"id"`
	ReceivedAt    time.Time         `json:"received_at"`
	SourceIP      string            `json:"source_ip"`
	SignatureOK   bool              `json:"signature_ok"`
	SourceIPOK    bool              `json:"ip_ok"`
	PostbackOK    bool              `json:"postback_ok"`
	PaymentStatus string            `json:"payment_status"`
	Reference     string            `json:"m_payment_id"`
	Payload       map[string]string `json:"payload"`
}
