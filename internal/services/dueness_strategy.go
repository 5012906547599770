// Strategy pattern for recurring-transaction dueness. Each interval has its
// own checker deciding whether a template should materialize again, given
// its last run and the template's anchor date.

package services

import (
	"fmt"
	"time"

	"budgap/internal/core"
)

// DuenessChecker decides whether a recurring template is due.
type DuenessChecker interface {
	// IsDue reports whether the template should be materialized now, based
	// on the last materialization time and the template's original date.
	IsDue(lastRun, now time.Time, anchor core.Date) bool
}

// DailyChecker fires once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastRun, now time.Time, _ core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.Format("2006-01-02") != now.Format("2006-01-02")
}

// WeeklyChecker fires when 7 or more days have passed since the last run.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastRun, now time.Time, _ core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	return now.Sub(lastRun).Hours()/24 >= 7
}

// MonthlyChecker fires once per month, on or after the anchor's day of
// month. Anchor days past the month's end clamp to the last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastRun, now time.Time, anchor core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	if lastRun.Year() == now.Year() && lastRun.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(anchor.Day(), now)
}

// YearlyChecker fires once per year, on or after the anchor's month and day.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastRun, now time.Time, anchor core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	if lastRun.Year() == now.Year() {
		return false
	}
	if int(now.Month()) < anchor.Month() {
		return false
	}
	if int(now.Month()) == anchor.Month() {
		return now.Day() >= clampDay(anchor.Day(), now)
	}
	return true
}

func clampDay(day int, now time.Time) int {
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDayOfMonth {
		return lastDayOfMonth
	}
	return day
}

var duenessStrategies = map[core.RecurringInterval]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for an interval.
func GetDuenessChecker(interval core.RecurringInterval) (DuenessChecker, error) {
	checker, ok := duenessStrategies[interval]
	if !ok {
		return nil, fmt.Errorf("unknown recurring interval: %s", interval)
	}
	return checker, nil
}
