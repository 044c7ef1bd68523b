package schedule

import (
	"fmt"
	"sort"
	"time"

	"autochase/internal/models"
)

// DueAnchorHour fixes the time-of-day for every cadence point. Due dates are
// calendar dates; anchoring them at a constant UTC hour keeps same-day
// comparisons and weekday shifting stable regardless of caller time zone.
const DueAnchorHour = 9

// MalformedDateError reports an invoice whose due date could not be parsed.
type MalformedDateError struct {
	InvoiceID string
	Value     string
	Err       error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("invoice %s has malformed due date %q: %v", e.InvoiceID, e.Value, e.Err)
}

func (e *MalformedDateError) Unwrap() error { return e.Err }

type candidate struct {
	when  time.Time
	kind  models.ReminderKind
	label string
}

// Schedule computes the full set of future reminder events for the given
// unpaid invoices under the cadence policy. It is a pure function of its
// inputs: no I/O, no stored state, and identical inputs produce identical
// event ids, so a persistence layer can upsert the result by id.
func Schedule(invoices []models.Invoice, policy models.CadencePolicy, tmpl models.MessageTemplate, now time.Time) ([]models.ReminderEvent, error) {
	events := make([]models.ReminderEvent, 0, len(invoices)*(len(policy.BeforeDays)+len(policy.AfterDays)+1))
	seen := make(map[string]bool)

	for _, inv := range invoices {
		if inv.Paid {
			continue
		}

		due, err := parseDue(inv)
		if err != nil {
			return nil, err
		}

		candidates := expand(due, policy)
		for _, c := range candidates {
			if policy.WeekdaysOnly {
				c.when = nextWeekday(c.when)
			}
			if c.when.Before(now) {
				// only future reminders: the schedule is a snapshot of
				// what remains to be sent, not a journal of past sends
				continue
			}
			id := eventID(inv.ID, c.when, c.kind)
			if seen[id] {
				continue
			}
			seen[id] = true
			events = append(events, models.ReminderEvent{
				ID:        id,
				InvoiceID: inv.ID,
				When:      c.when,
				Kind:      c.kind,
				To:        inv.ClientEmail,
				Subject:   Render(tmpl.Subject, inv, tmpl, c.label),
				Body:      Render(tmpl.Body, inv, tmpl, c.label),
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].When.Equal(events[j].When) {
			return events[i].When.Before(events[j].When)
		}
		if events[i].InvoiceID != events[j].InvoiceID {
			return events[i].InvoiceID < events[j].InvoiceID
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// NextReminder returns the earliest future reminder for a single invoice,
// or nil if the invoice is paid or no cadence point remains.
func NextReminder(inv models.Invoice, policy models.CadencePolicy, tmpl models.MessageTemplate, now time.Time) (*models.ReminderEvent, error) {
	events, err := Schedule([]models.Invoice{inv}, policy, tmpl, now)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func parseDue(inv models.Invoice) (time.Time, error) {
	d, err := time.Parse("2006-01-02", inv.DueDate)
	if err != nil {
		return time.Time{}, &MalformedDateError{InvoiceID: inv.ID, Value: inv.DueDate, Err: err}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), DueAnchorHour, 0, 0, 0, time.UTC), nil
}

func expand(due time.Time, policy models.CadencePolicy) []candidate {
	var out []candidate
	for _, d := range policy.BeforeDays {
		if d < 0 {
			continue
		}
		out = append(out, candidate{
			when:  due.AddDate(0, 0, -d),
			kind:  models.ReminderBefore,
			label: fmt.Sprintf("%d day(s) before due date", d),
		})
	}
	if policy.OnDue {
		out = append(out, candidate{when: due, kind: models.ReminderOn, label: "on the due date"})
	}
	for _, d := range policy.AfterDays {
		if d < 0 {
			continue
		}
		out = append(out, candidate{
			when:  due.AddDate(0, 0, d),
			kind:  models.ReminderAfter,
			label: fmt.Sprintf("%d day(s) after due date", d),
		})
	}
	return out
}

// nextWeekday shifts forward, never backward, so a reminder is never sent
// before its intended window.
func nextWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func eventID(invoiceID string, when time.Time, kind models.ReminderKind) string {
	return fmt.Sprintf("%s-%s-%s", invoiceID, when.UTC().Format("2006-01-02"), kind)
}
