package models

import "time"

// Invoice is a single receivable owned by the invoice-management layer.
// Amount is always an integer minor-unit count (cents); display formatting
// divides by 100 at render time only.
type Invoice struct {
	ID            string    `json:"id"`
	ClientName    string    `json:"client_name"`
	ClientEmail   string    `json:"client_email"`
	InvoiceNumber string    `json:"invoice_number"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	DueDate       string    `json:"due_date"` // YYYY-MM-DD
	Paid          bool      `json:"paid"`
	PaymentLink   string    `json:"payment_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// InvoiceCreate is the input structure for creating a new invoice.
type InvoiceCreate struct {
	ClientName    string `json:"client_name" binding:"required"`
	ClientEmail   string `json:"client_email" binding:"required,email"`
	InvoiceNumber string `json:"invoice_number" binding:"required"`
	AmountCents   int64  `json:"amount_cents" binding:"required"`
	Currency      string `json:"currency"`
	DueDate       string `json:"due_date" binding:"required"`
	PaymentLink   string `json:"payment_link,omitempty"`
}

// CadencePolicy defines which offsets relative to an invoice's due date
// generate a reminder. Offsets are non-negative day counts; duplicates
// collapse to a single reminder.
type CadencePolicy struct {
	BeforeDays   []int `json:"before_days"`
	OnDue        bool  `json:"on_due"`
	AfterDays    []int `json:"after_days"`
	WeekdaysOnly bool  `json:"weekdays_only"`
}

// MessageTemplate holds the subject/body templates and the substitution
// context a workspace configures. Recognized placeholders: {{clientName}},
// {{invoiceNumber}}, {{amount}}, {{when}}, {{paymentLink}}, {{yourName}}.
type MessageTemplate struct {
	Subject             string `json:"subject"`
	Body                string `json:"body"`
	BusinessName        string `json:"business_name,omitempty"`
	PaymentLinkTemplate string `json:"payment_link_template,omitempty"`
}

// Settings is the full per-workspace configuration row: sender identity,
// message template, cadence rules and the active subscription plan.
type Settings struct {
	Sender   string          `json:"sender"`
	Template MessageTemplate `json:"template"`
	Rules    CadencePolicy   `json:"rules"`
	Plan     PlanTier        `json:"plan,omitempty"`
}

// DefaultSettings is what a workspace gets before it saves anything.
func DefaultSettings() Settings {
	return Settings{
		Template: MessageTemplate{
			Subject: "Reminder: invoice {{invoiceNumber}} ({{when}})",
			Body: "Hi {{clientName}},\n\n" +
				"Just a nudge about invoice {{invoiceNumber}} for {{amount}}, {{when}}.\n" +
				"You can pay here: {{paymentLink}}\n\n" +
				"Thanks,\n{{yourName}}",
		},
		Rules: CadencePolicy{
			BeforeDays:   []int{3},
			OnDue:        true,
			AfterDays:    []int{7},
			WeekdaysOnly: true,
		},
	}
}
