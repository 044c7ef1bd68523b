package payfast

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Verdict is the outcome of verifying an inbound notification. All three
// checks are reported separately: operators respond differently to a wrong
// signature than to a postback timeout, even though both fail the verdict.
type Verdict struct {
	SignatureOK   bool   `json:"signature_ok"`
	SourceIPOK    bool   `json:"ip_ok"`
	PostbackOK    bool   `json:"postback_ok"`
	PaymentStatus string `json:"payment_status"`
	Reference     string `json:"m_payment_id"`
}

// Authentic reports whether all three checks passed.
func (v Verdict) Authentic() bool {
	return v.SignatureOK && v.SourceIPOK && v.PostbackOK
}

// Complete reports whether the notification is authentic and confirms a
// completed payment. Only then may the caller activate the referenced plan.
func (v Verdict) Complete() bool {
	return v.Authentic() && strings.EqualFold(v.PaymentStatus, "COMPLETE")
}

// PostbackFunc confirms a notification server-to-server with the gateway.
type PostbackFunc func(ctx context.Context, fields map[string]string) (bool, error)

// Verifier checks inbound ITN payloads. Each check degrades to false on
// failure rather than returning an error: the verdict fails closed without
// breaking the caller's request path.
type Verifier struct {
	cfg      Config
	postback PostbackFunc
}

// NewVerifier builds a Verifier whose postback confirmation posts to the
// gateway's validate endpoint with the given client. The verifier imposes no
// timeout of its own; callers bound the postback via the client or context.
func NewVerifier(cfg Config, client *http.Client) *Verifier {
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := ValidateEndpoint(cfg.Sandbox)
	return &Verifier{
		cfg: cfg,
		postback: func(ctx context.Context, fields map[string]string) (bool, error) {
			return ValidateITN(ctx, client, endpoint, fields)
		},
	}
}

// NewVerifierWithPostback builds a Verifier with a custom postback check.
func NewVerifierWithPostback(cfg Config, postback PostbackFunc) *Verifier {
	return &Verifier{cfg: cfg, postback: postback}
}

// Verify runs the three independent checks on a received payload. The
// payload must be the raw posted field set, byte-for-byte, including the
// gateway's signature field.
func (v *Verifier) Verify(ctx context.Context, payload map[string]string, sourceIP string) Verdict {
	unsigned := make(map[string]string, len(payload))
	for k, val := range payload {
		if k != "signature" {
			unsigned[k] = val
		}
	}

	verdict := Verdict{
		PaymentStatus: payload["payment_status"],
		Reference:     payload["m_payment_id"],
	}

	if received := payload["signature"]; received != "" {
		verdict.SignatureOK = strings.EqualFold(received, Sign(unsigned, v.cfg.Passphrase))
	}

	verdict.SourceIPOK = sourceAllowed(v.cfg.AllowedIPs, sourceIP)

	if v.postback != nil {
		ok, err := v.postback(ctx, unsigned)
		verdict.PostbackOK = err == nil && ok
	}

	return verdict
}

// sourceAllowed is true when the allowlist is empty (feature disabled) or
// the observed source matches at least one entry.
func sourceAllowed(allowed []string, sourceIP string) bool {
	active := false
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		active = true
		if strings.Contains(sourceIP, a) {
			return true
		}
	}
	return !active
}

// ValidateITN posts the received fields (minus signature), re-encoded with
// the same canonical convention, to the gateway validation endpoint. The
// gateway answers with a literal "VALID" body when the notification is
// genuinely its own.
func ValidateITN(ctx context.Context, client *http.Client, endpoint string, fields map[string]string) (bool, error) {
	body := Canonicalize(fields, "")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	return ok && strings.TrimSpace(string(text)) == "VALID", nil
}
