package expiry

import "time"

// Status buckets a purchased course by its remaining time.
type Status string

const (
	Expired  Status = "expired"
	Pending  Status = "pending"
	Notified Status = "notified"
)

// renewalWindowDays is the window flagged for admin follow-up.
const renewalWindowDays = 7

const dateLayout = "02/01/2006"

// AddMonths adds n calendar months. When the source day does not exist in
// the target month the day is clamped to the month's last valid day, so
// Jan 31 + 1 month is Feb 29 on leap years and Feb 28 otherwise.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	// Normalize to the first of the target month before reattaching the day
	// so the clamp is against the right month length.
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := lastDay(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDay(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysRemaining returns the whole days left until expiry, rounded up.
// Negative means the course already expired.
func DaysRemaining(expiry, now time.Time) int {
	diff := expiry.Sub(now)
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}

// Classify buckets remaining days. A notified purchase stays notified no
// matter how much time is left.
func Classify(daysRemaining int, notified bool) Status {
	switch {
	case notified:
		return Notified
	case daysRemaining < 0:
		return Expired
	default:
		return Pending
	}
}

// RenewalDue flags purchases expiring within the follow-up window.
func RenewalDue(daysRemaining int) bool {
	return daysRemaining >= 0 && daysRemaining <= renewalWindowDays
}

// FormatDate renders a date for display. Zero times come from absent or
// unparseable inputs and must not break the view.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Invalid Date"
	}
	return t.Format(dateLayout)
}
