package models

import "testing"

func TestPlanFromReference(t *testing.T) {
	cases := []struct {
		ref  string
		plan PlanTier
		ok   bool
	}{
		{"starter-1700000000000", PlanStarter, true},
		{"pro-abc", PlanPro, true},
		{"business-1-2-3", PlanBusiness, true},
		{"platinum-17", "", false},
		{"", "", false},
		{"pro", PlanPro, true},
	}
	for _, c := range cases {
		plan, ok := PlanFromReference(c.ref)
		if ok != c.ok || plan != c.plan {
			t.Errorf("PlanFromReference(%q) = %v, %v; want %v, %v", c.ref, plan, ok, c.plan, c.ok)
		}
	}
}

func TestReminderLimits(t *testing.T) {
	if got := PlanStarter.ReminderLimit(); got != 50 {
		t.Errorf("starter limit = %d", got)
	}
	if got := PlanPro.ReminderLimit(); got != 250 {
		t.Errorf("pro limit = %d", got)
	}
	if got := PlanBusiness.ReminderLimit(); got != UnlimitedReminders {
		t.Errorf("business limit = %d", got)
	}
	// unknown and unset tiers fall back to the starter ceiling
	if got := PlanTier("").ReminderLimit(); got != 50 {
		t.Errorf("empty tier limit = %d", got)
	}
}

func TestRecurringAmounts(t *testing.T) {
	if amount, ok := PlanBusiness.RecurringAmount(); !ok || amount != "400.00" {
		t.Errorf("business amount = %q, %v", amount, ok)
	}
	if _, ok := PlanTier("platinum").RecurringAmount(); ok {
		t.Error("unknown tier has an amount")
	}
}
