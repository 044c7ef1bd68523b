package schedule

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"autochase/internal/models"
)

const defaultCurrency = "ZAR"

// Render substitutes the recognized placeholders in text. Substitution is
// literal, single-pass and non-recursive: a placeholder inside a substituted
// value is never re-expanded, and unknown placeholders pass through untouched
// so a malformed custom template degrades instead of failing.
func Render(text string, inv models.Invoice, tmpl models.MessageTemplate, whenLabel string) string {
	business := tmpl.BusinessName
	if business == "" {
		business = "Accounts"
	}
	r := strings.NewReplacer(
		"{{clientName}}", inv.ClientName,
		"{{invoiceNumber}}", inv.InvoiceNumber,
		"{{amount}}", FormatMoney(inv.AmountCents, inv.Currency),
		"{{when}}", whenLabel,
		"{{paymentLink}}", PaymentLink(tmpl, inv),
		"{{yourName}}", business,
	)
	return r.Replace(text)
}

// PaymentLink derives the payment URL for an invoice: the workspace link
// template with invoice fields substituted, or the invoice's own link when
// no template is configured.
func PaymentLink(tmpl models.MessageTemplate, inv models.Invoice) string {
	if tmpl.PaymentLinkTemplate == "" {
		return inv.PaymentLink
	}
	r := strings.NewReplacer(
		"{{invoiceNumber}}", inv.InvoiceNumber,
		"{{amount}}", FormatMoney(inv.AmountCents, inv.Currency),
	)
	return r.Replace(tmpl.PaymentLinkTemplate)
}

// FormatMoney renders a minor-unit amount with locale-aware currency
// formatting, falling back to "<code> X.XX" when the currency code cannot
// be resolved.
func FormatMoney(cents int64, code string) string {
	if code == "" {
		code = defaultCurrency
	}
	value := float64(cents) / 100
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %.2f", strings.ToUpper(code), value)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(value)))
}
