package schedule

import (
	"strings"
	"testing"

	"autochase/internal/models"
)

func TestRenderSubstitutesKnownTokens(t *testing.T) {
	inv := models.Invoice{
		ClientName:    "Acme Ltd",
		InvoiceNumber: "INV-001",
		AmountCents:   1234,
		Currency:      "ZZZ", // unresolvable on purpose: exercises the plain fallback
		PaymentLink:   "https://pay.example/INV-001",
	}
	tmpl := models.MessageTemplate{BusinessName: "Studio North"}

	out := Render("Dear {{clientName}}, {{invoiceNumber}} for {{amount}} is due {{when}}. {{paymentLink}} — {{yourName}}", inv, tmpl, "on the due date")
	want := "Dear Acme Ltd, INV-001 for ZZZ 12.34 is due on the due date. https://pay.example/INV-001 — Studio North"
	if out != want {
		t.Errorf("render mismatch:\n got %q\nwant %q", out, want)
	}
}

func TestRenderLeavesUnknownTokensUntouched(t *testing.T) {
	out := Render("Hello {{clientName}}, ref {{notAToken}}", models.Invoice{ClientName: "Acme"}, models.MessageTemplate{}, "")
	if out != "Hello Acme, ref {{notAToken}}" {
		t.Errorf("unknown token was not preserved: %q", out)
	}
}

func TestRenderDoesNotReexpandSubstitutedValues(t *testing.T) {
	inv := models.Invoice{ClientName: "{{invoiceNumber}}", InvoiceNumber: "INV-9"}
	out := Render("{{clientName}}", inv, models.MessageTemplate{}, "")
	if out != "{{invoiceNumber}}" {
		t.Errorf("substituted value was re-expanded: %q", out)
	}
}

func TestRenderYourNameDefault(t *testing.T) {
	out := Render("{{yourName}}", models.Invoice{}, models.MessageTemplate{}, "")
	if out != "Accounts" {
		t.Errorf("default business name = %q, want Accounts", out)
	}
}

func TestPaymentLinkFromTemplate(t *testing.T) {
	inv := models.Invoice{InvoiceNumber: "INV-7", AmountCents: 5000, Currency: "ZZZ"}
	tmpl := models.MessageTemplate{PaymentLinkTemplate: "https://pay.example/{{invoiceNumber}}?amt={{amount}}"}

	if got := PaymentLink(tmpl, inv); got != "https://pay.example/INV-7?amt=ZZZ 50.00" {
		t.Errorf("payment link = %q", got)
	}
}

func TestPaymentLinkFallsBackToInvoiceLink(t *testing.T) {
	inv := models.Invoice{PaymentLink: "https://pay.example/direct"}
	if got := PaymentLink(models.MessageTemplate{}, inv); got != "https://pay.example/direct" {
		t.Errorf("payment link = %q", got)
	}
}

func TestFormatMoneyFallback(t *testing.T) {
	if got := FormatMoney(1234, "ZZZ"); got != "ZZZ 12.34" {
		t.Errorf("fallback format = %q, want \"ZZZ 12.34\"", got)
	}
}

func TestFormatMoneyLocaleAware(t *testing.T) {
	got := FormatMoney(2498, "USD")
	if !strings.Contains(got, "24.98") {
		t.Errorf("formatted amount %q does not contain 24.98", got)
	}
}
