package expiry

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsDayOverflow(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"plain", date(2024, time.March, 15), 3, date(2024, time.June, 15)},
		{"year rollover", date(2024, time.November, 10), 3, date(2025, time.February, 10)},
		{"jan 31 into leap february", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 into regular february", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"may 31 into june", date(2024, time.May, 31), 1, date(2024, time.June, 30)},
		{"twelve months", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.start, tt.months); !got.Equal(tt.want) {
				t.Fatalf("AddMonths(%v, %d) = %v, want %v", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	now := date(2024, time.June, 15)

	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"expired yesterday", now.Add(-24 * time.Hour), -1},
		{"three days left", now.Add(3 * 24 * time.Hour), 3},
		{"partial day rounds up", now.Add(2 * time.Hour), 1},
		{"expires right now", now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysRemaining(tt.expiry, now); got != tt.want {
				t.Fatalf("DaysRemaining = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(-1, false); got != Expired {
		t.Fatalf("negative days should classify as expired, got %s", got)
	}
	if got := Classify(3, false); got != Pending {
		t.Fatalf("3 days and not notified should classify as pending, got %s", got)
	}
	if got := Classify(-10, true); got != Notified {
		t.Fatalf("notified wins regardless of remaining days, got %s", got)
	}
}

func TestRenewalDue(t *testing.T) {
	tests := []struct {
		days int
		want bool
	}{
		{-1, false},
		{0, true},
		{3, true},
		{7, true},
		{8, false},
	}

	for _, tt := range tests {
		if got := RenewalDue(tt.days); got != tt.want {
			t.Fatalf("RenewalDue(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "Invalid Date" {
		t.Fatalf("zero time should render the invalid display value, got %q", got)
	}
	if got := FormatDate(date(2024, time.January, 5)); got != "05/01/2024" {
		t.Fatalf("unexpected date rendering %q", got)
	}
}
