package course

import (
	"sort"
	"strings"
	"time"

	"github.com/scriptindia/course-gateway/core/expiry"
)

// Course is a purchasable catalog entry. The gateway never mutates courses;
// they are created and edited through the platform's admin tooling.
type Course struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// Purchased is a purchase record as the platform returns it. Dates stay
// strings on the wire: records with broken dates must still render.
type Purchased struct {
	Course
	UserID       string `json:"user_id,omitempty"`
	UserName     string `json:"user_name,omitempty"`
	PurchaseDate string `json:"purchase_date"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	Notified     bool   `json:"notified,omitempty"`
}

// View is a purchase record with the derived display fields the admin and
// member tables need.
type View struct {
	Purchased
	PurchaseDateDisplay string        `json:"purchase_date_display"`
	ExpiryDateDisplay   string        `json:"expiry_date_display"`
	DaysRemaining       *int          `json:"days_remaining"`
	Status              expiry.Status `json:"status"`
	RenewalDue          bool          `json:"renewal_due"`
}

// CreatorSummary aggregates purchases per creating account.
type CreatorSummary struct {
	CreatedByName string  `json:"created_by_name"`
	TotalCourses  int     `json:"total_courses"`
	TotalPrice    float64 `json:"total_price"`
}

// CreatorRow is one upstream row feeding the summary.
type CreatorRow struct {
	CreatedByName string  `json:"created_by_name"`
	TotalCourses  int     `json:"total_courses"`
	TotalPrice    float64 `json:"total_price"`
}

// Filter returns the courses whose title or description contains the query,
// case-insensitively. An empty query keeps everything.
func Filter(courses []Course, query string) []Course {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return courses
	}

	matched := make([]Course, 0, len(courses))
	for _, c := range courses {
		if strings.Contains(strings.ToLower(c.Title), query) ||
			strings.Contains(strings.ToLower(c.Description), query) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Enrich derives the display fields of one purchase. A missing expiry date
// falls back to purchase date plus the course duration in calendar months.
// Unparseable dates yield the invalid-date display value and no remaining
// days rather than an error.
func Enrich(p Purchased, now time.Time) View {
	v := View{Purchased: p}

	purchased := parseDate(p.PurchaseDate)
	v.PurchaseDateDisplay = expiry.FormatDate(purchased)

	exp := parseDate(p.ExpiryDate)
	if exp.IsZero() && !purchased.IsZero() {
		exp = expiry.AddMonths(purchased, p.Duration)
	}
	v.ExpiryDateDisplay = expiry.FormatDate(exp)

	if exp.IsZero() {
		v.Status = expiry.Classify(0, p.Notified)
		return v
	}

	days := expiry.DaysRemaining(exp, now)
	v.DaysRemaining = &days
	v.Status = expiry.Classify(days, p.Notified)
	v.RenewalDue = expiry.RenewalDue(days)
	return v
}

// EnrichAll derives the display fields of a whole record set at one instant.
func EnrichAll(records []Purchased, now time.Time) []View {
	views := make([]View, 0, len(records))
	for _, p := range records {
		views = append(views, Enrich(p, now))
	}
	return views
}

// GroupByUser buckets enriched purchases by purchaser display name.
func GroupByUser(views []View) map[string][]View {
	grouped := make(map[string][]View)
	for _, v := range views {
		name := v.UserName
		if name == "" {
			name = "Unknown User"
		}
		grouped[name] = append(grouped[name], v)
	}
	return grouped
}

// Summarize folds upstream per-creator rows into one total per creator,
// ordered by name.
func Summarize(rows []CreatorRow) []CreatorSummary {
	totals := make(map[string]*CreatorSummary)
	for _, row := range rows {
		name := row.CreatedByName
		if name == "" {
			name = "Unknown"
		}

		s, ok := totals[name]
		if !ok {
			s = &CreatorSummary{CreatedByName: name}
			totals[name] = s
		}
		s.TotalCourses += row.TotalCourses
		s.TotalPrice += row.TotalPrice
	}

	out := make([]CreatorSummary, 0, len(totals))
	for _, s := range totals {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedByName < out[j].CreatedByName })
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
