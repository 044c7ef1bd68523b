package payfast

import (
	"fmt"
	"time"

	"autochase/internal/models"
)

// Gateway protocol constants. The wire format is string-typed throughout.
const (
	subscriptionTypeRecurring = "1"
	frequencyMonthly          = "3"
	cyclesIndefinite          = "0"
)

// CallbackURLs are the redirect and webhook URLs registered with a
// subscription request.
type CallbackURLs struct {
	ReturnURL string
	CancelURL string
	NotifyURL string
}

// Subscription is a ready-to-post form: the gateway endpoint and the signed
// field set. Callers must post the fields unmodified; the signature covers
// the exact values produced here.
type Subscription struct {
	Endpoint string            `json:"action"`
	Fields   map[string]string `json:"fields"`
}

// BuildSubscription assembles and signs the outbound field set for a plan
// subscription. When reference is empty a "<plan>-<timestamp>" token is
// generated; the webhook later carries only this opaque reference, so it is
// the sole channel recovering the intended plan.
func BuildSubscription(cfg Config, plan models.PlanTier, buyerEmail string, urls CallbackURLs, reference string) (Subscription, error) {
	if err := cfg.validate(); err != nil {
		return Subscription{}, err
	}
	amount, ok := plan.RecurringAmount()
	if !ok {
		return Subscription{}, fmt.Errorf("unknown plan tier %q", plan)
	}
	if reference == "" {
		reference = fmt.Sprintf("%s-%d", plan, time.Now().UnixMilli())
	}

	fields := map[string]string{
		"merchant_id":        cfg.MerchantID,
		"merchant_key":       cfg.MerchantKey,
		"return_url":         urls.ReturnURL,
		"cancel_url":         urls.CancelURL,
		"notify_url":         urls.NotifyURL,
		"email_address":      buyerEmail,
		"m_payment_id":       reference,
		"email_confirmation": "1",
		"subscription_type":  subscriptionTypeRecurring,
		"recurring_amount":   amount,
		"frequency":          frequencyMonthly,
		"cycles":             cyclesIndefinite,
		"item_name":          fmt.Sprintf("AutoChase %s plan", plan),
	}
	fields["signature"] = Sign(fields, cfg.Passphrase)

	return Subscription{Endpoint: ProcessEndpoint(cfg.Sandbox), Fields: fields}, nil
}
