package dataset

import (
	"strings"
	"time"

	"sales-dashboard/internal/models"
)

// Layouts carrying their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// Layouts read as local wall-clock time.
var localLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseInvoiceDate parses an invoice date in any of the accepted layouts.
func ParseInvoiceDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GetDateRange returns the earliest and latest parseable invoice dates.
// Without any, it falls back to the year leading up to now.
func GetDateRange(records []models.SalesRecord) models.DateRange {
	return dateRangeAt(records, time.Now())
}

func dateRangeAt(records []models.SalesRecord, now time.Time) models.DateRange {
	var (
		rng   models.DateRange
		found bool
	)

	for _, r := range records {
		d, ok := ParseInvoiceDate(r.InvoiceDate)
		if !ok {
			continue
		}
		if !found {
			rng = models.DateRange{MinDate: d, MaxDate: d}
			found = true
			continue
		}
		if d.Before(rng.MinDate) {
			rng.MinDate = d
		}
		if d.After(rng.MaxDate) {
			rng.MaxDate = d
		}
	}

	if !found {
		return models.DateRange{MinDate: now.AddDate(-1, 0, 0), MaxDate: now}
	}
	return rng
}

// IsDateInRange reports whether date falls within [start, end], both bounds
// inclusive of their whole day. Nil bounds are open. A date that cannot be
// parsed never matches an active bound.
func IsDateInRange(date string, start, end *time.Time) bool {
	if start == nil && end == nil {
		return true
	}

	d, ok := ParseInvoiceDate(date)
	if !ok {
		return false
	}

	if start != nil && d.Before(StartOfDay(*start)) {
		return false
	}
	if end != nil && d.After(EndOfDay(*end)) {
		return false
	}
	return true
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// monthKey buckets t by its local calendar month, whatever zone it was
// parsed in.
func monthKey(t time.Time) string {
	return t.In(time.Local).Format("2006-01")
}
