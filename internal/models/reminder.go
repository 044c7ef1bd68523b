package models

import "time"

// ReminderKind says where a reminder sits relative to the invoice due date.
type ReminderKind string

const (
	ReminderBefore ReminderKind = "before"
	ReminderOn     ReminderKind = "on"
	ReminderAfter  ReminderKind = "after"
)

// ReminderEvent is one scheduled outbound message. ID is derived as
// "<invoiceID>-<YYYY-MM-DD>-<kind>" so regenerating the schedule for an
// unchanged invoice/policy pair yields identical ids and the outbox can
// upsert without duplication.
type ReminderEvent struct {
	ID        string       `json:"id"`
	InvoiceID string       `json:"invoice_id"`
	When      time.Time    `json:"when"`
	Kind      ReminderKind `json:"kind"`
	To        string       `json:"to"`
	Subject   string       `json:"subject"`
	Body      string       `json:"body"`
	SentAt    *time.Time   `json:"sent_at,omitempty"`
}
