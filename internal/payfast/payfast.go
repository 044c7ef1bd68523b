// Package payfast implements the PayFast signing protocol: canonical
// parameter signing for outbound subscription requests and verification of
// inbound ITN (instant transaction notification) webhooks.
package payfast

import (
	"fmt"
	"strings"
)

const (
	liveProcessURL     = "https://www.payfast.co.za/eng/process"
	sandboxProcessURL  = "https://sandbox.payfast.co.za/eng/process"
	liveValidateURL    = "https://www.payfast.co.za/eng/query/validate"
	sandboxValidateURL = "https://sandbox.payfast.co.za/eng/query/validate"
)

// Config holds the merchant credentials and verification settings.
type Config struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	Sandbox     bool
	AllowedIPs  []string
}

// Configured reports whether the required merchant credentials are present.
func (c Config) Configured() bool {
	return c.MerchantID != "" && c.MerchantKey != ""
}

// ConfigError reports missing gateway credentials.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("payfast not configured: missing %s", strings.Join(e.Missing, ", "))
}

func (c Config) validate() error {
	var missing []string
	if c.MerchantID == "" {
		missing = append(missing, "merchant_id")
	}
	if c.MerchantKey == "" {
		missing = append(missing, "merchant_key")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// ProcessEndpoint returns the form-post URL for outbound requests.
func ProcessEndpoint(sandbox bool) string {
	if sandbox {
		return sandboxProcessURL
	}
	return liveProcessURL
}

// ValidateEndpoint returns the server-to-server postback confirmation URL.
func ValidateEndpoint(sandbox bool) string {
	if sandbox {
		return sandboxValidateURL
	}
	return liveValidateURL
}
