package models

import "strings"

// PlanTier is one of the fixed subscription levels.
type PlanTier string

const (
	PlanStarter  PlanTier = "starter"
	PlanPro      PlanTier = "pro"
	PlanBusiness PlanTier = "business"
)

// UnlimitedReminders marks a plan with no reminder-volume ceiling.
const UnlimitedReminders = -1

var planLimits = map[PlanTier]int{
	PlanStarter:  50,
	PlanPro:      250,
	PlanBusiness: UnlimitedReminders,
}

// recurringAmounts are the fixed monthly charges per tier, as the
// decimal strings the gateway protocol expects.
var recurringAmounts = map[PlanTier]string{
	PlanStarter:  "100.00",
	PlanPro:      "200.00",
	PlanBusiness: "400.00",
}

// Valid reports whether p names a known tier.
func (p PlanTier) Valid() bool {
	_, ok := planLimits[p]
	return ok
}

// ReminderLimit returns the monthly reminder ceiling for the tier, or
// UnlimitedReminders. Unknown or empty tiers fall back to the starter limit.
func (p PlanTier) ReminderLimit() int {
	if limit, ok := planLimits[p]; ok {
		return limit
	}
	return planLimits[PlanStarter]
}

// RecurringAmount returns the tier's monthly charge as a two-decimal string.
func (p PlanTier) RecurringAmount() (string, bool) {
	amount, ok := recurringAmounts[p]
	return amount, ok
}

// PlanFromReference recovers the plan tier from a payment reference of the
// form "<plan>-<suffix>". The reference token is the only channel carrying
// plan intent back from the gateway, so the plan name never contains "-".
func PlanFromReference(ref string) (PlanTier, bool) {
	name, _, found := strings.Cut(ref, "-")
	if !found && name == "" {
		return "", false
	}
	p := PlanTier(name)
	if !p.Valid() {
		return "", false
	}
	return p, true
}
