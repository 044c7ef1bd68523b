package schedule

import (
	"errors"
	"testing"
	"time"

	"autochase/internal/models"
)

var testTemplate = models.MessageTemplate{
	Subject: "Invoice {{invoiceNumber}} — {{when}}",
	Body:    "Hi {{clientName}}, {{amount}} is due. Pay here: {{paymentLink}}\n{{yourName}}",
}

func testInvoice() models.Invoice {
	return models.Invoice{
		ID:            "inv-1",
		ClientName:    "Acme Ltd",
		ClientEmail:   "billing@acme.test",
		InvoiceNumber: "INV-001",
		AmountCents:   123450,
		Currency:      "ZAR",
		DueDate:       "2025-01-10", // a Friday
		PaymentLink:   "https://pay.example/INV-001",
	}
}

func mustSchedule(t *testing.T, invoices []models.Invoice, policy models.CadencePolicy, now time.Time) []models.ReminderEvent {
	t.Helper()
	events, err := Schedule(invoices, policy, testTemplate, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return events
}

func TestSchedulePaidInvoiceProducesNothing(t *testing.T) {
	inv := testInvoice()
	inv.Paid = true
	policy := models.CadencePolicy{BeforeDays: []int{3}, OnDue: true, AfterDays: []int{7}}

	events := mustSchedule(t, []models.Invoice{inv}, policy, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	if len(events) != 0 {
		t.Fatalf("expected no events for a paid invoice, got %d", len(events))
	}
}

func TestScheduleCadenceExpansion(t *testing.T) {
	now := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	policy := models.CadencePolicy{BeforeDays: []int{3}, OnDue: true, AfterDays: []int{7}}

	events := mustSchedule(t, []models.Invoice{testInvoice()}, policy, now)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	want := []struct {
		date string
		kind models.ReminderKind
	}{
		{"2025-01-07", models.ReminderBefore},
		{"2025-01-10", models.ReminderOn},
		{"2025-01-17", models.ReminderAfter},
	}
	for i, w := range want {
		if got := events[i].When.Format("2006-01-02"); got != w.date {
			t.Errorf("event %d: when = %s, want %s", i, got, w.date)
		}
		if events[i].Kind != w.kind {
			t.Errorf("event %d: kind = %s, want %s", i, events[i].Kind, w.kind)
		}
		if h := events[i].When.Hour(); h != DueAnchorHour {
			t.Errorf("event %d: anchor hour = %d, want %d", i, h, DueAnchorHour)
		}
		if events[i].To != "billing@acme.test" {
			t.Errorf("event %d: recipient = %q", i, events[i].To)
		}
	}
}

func TestScheduleWeekdaysOnlyShiftsForward(t *testing.T) {
	now := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	// Due 2025-01-10 is a Friday: before-3 lands on Tuesday and stays,
	// on-due stays, after-8 lands on Saturday 2025-01-18 and shifts to
	// Monday 2025-01-20.
	policy := models.CadencePolicy{BeforeDays: []int{3}, OnDue: true, AfterDays: []int{8}, WeekdaysOnly: true}

	events := mustSchedule(t, []models.Invoice{testInvoice()}, policy, now)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	want := []string{"2025-01-07", "2025-01-10", "2025-01-20"}
	for i, w := range want {
		if got := events[i].When.Format("2006-01-02"); got != w {
			t.Errorf("event %d: when = %s, want %s", i, got, w)
		}
	}
	for _, ev := range events {
		if wd := ev.When.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("event %s falls on %s", ev.ID, wd)
		}
	}
}

func TestScheduleWeekendDueDateShiftsToMonday(t *testing.T) {
	inv := testInvoice()
	inv.DueDate = "2025-01-11" // Saturday
	policy := models.CadencePolicy{OnDue: true, WeekdaysOnly: true}

	events := mustSchedule(t, []models.Invoice{inv}, policy, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if got := events[0].When.Format("2006-01-02"); got != "2025-01-13" {
		t.Errorf("when = %s, want 2025-01-13 (next Monday)", got)
	}
	if events[0].Kind != models.ReminderOn {
		t.Errorf("kind = %s, want on", events[0].Kind)
	}
}

func TestScheduleDropsPastCandidates(t *testing.T) {
	// now sits between the before-due point and the due date
	now := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	policy := models.CadencePolicy{BeforeDays: []int{3}, OnDue: true, AfterDays: []int{7}}

	events := mustSchedule(t, []models.Invoice{testInvoice()}, policy, now)
	if len(events) != 2 {
		t.Fatalf("expected 2 future events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.When.Before(now) {
			t.Errorf("event %s scheduled in the past: %s", ev.ID, ev.When)
		}
	}
}

func TestScheduleIdempotentIDs(t *testing.T) {
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	policy := models.CadencePolicy{BeforeDays: []int{3, 1}, OnDue: true, AfterDays: []int{7}}
	invoices := []models.Invoice{testInvoice()}

	first := mustSchedule(t, invoices, policy, now)
	second := mustSchedule(t, invoices, policy, now)

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("event %d: id %q != %q", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID != "inv-1-2025-01-07-before" {
		t.Errorf("unexpected id derivation: %q", first[0].ID)
	}
}

func TestScheduleDuplicateOffsetsCollapse(t *testing.T) {
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	policy := models.CadencePolicy{BeforeDays: []int{3, 3, 3}}

	events := mustSchedule(t, []models.Invoice{testInvoice()}, policy, now)
	if len(events) != 1 {
		t.Fatalf("expected duplicate offsets to collapse to 1 event, got %d", len(events))
	}
}

func TestScheduleSortedByWhenThenInvoice(t *testing.T) {
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	a := testInvoice()
	b := testInvoice()
	b.ID = "inv-0"
	b.InvoiceNumber = "INV-000"
	policy := models.CadencePolicy{BeforeDays: []int{5, 1}, OnDue: true}

	events := mustSchedule(t, []models.Invoice{a, b}, policy, now)
	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		if cur.When.Before(prev.When) {
			t.Fatalf("events out of order at %d: %s before %s", i, cur.When, prev.When)
		}
		if cur.When.Equal(prev.When) && cur.InvoiceID < prev.InvoiceID {
			t.Fatalf("tie at %d not ordered by invoice id: %s after %s", i, cur.InvoiceID, prev.InvoiceID)
		}
	}
}

func TestScheduleMalformedDueDate(t *testing.T) {
	inv := testInvoice()
	inv.DueDate = "10/01/2025"

	_, err := Schedule([]models.Invoice{inv}, models.CadencePolicy{OnDue: true}, testTemplate, time.Now())
	var mde *MalformedDateError
	if !errors.As(err, &mde) {
		t.Fatalf("expected MalformedDateError, got %v", err)
	}
	if mde.InvoiceID != "inv-1" {
		t.Errorf("error names invoice %q", mde.InvoiceID)
	}
}

func TestNextReminder(t *testing.T) {
	now := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	policy := models.CadencePolicy{BeforeDays: []int{3}, OnDue: true, AfterDays: []int{7}}

	next, err := NextReminder(testInvoice(), policy, testTemplate, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next == nil {
		t.Fatal("expected a next reminder")
	}
	if got := next.When.Format("2006-01-02"); got != "2025-01-10" {
		t.Errorf("next reminder = %s, want 2025-01-10", got)
	}

	paid := testInvoice()
	paid.Paid = true
	next, err = NextReminder(paid, policy, testTemplate, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != nil {
		t.Errorf("expected nil for a paid invoice, got %+v", next)
	}
}
