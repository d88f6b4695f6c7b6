// Package usage holds the per-user download counters and their calendar-day
// arithmetic. Everything here is pure; persistence lives behind Store.
package usage

import (
	"slices"
	"time"
)

// DateLayout is the calendar-day key stored in LastResetDate.
const DateLayout = "2006-01-02"

// Record counts a user's downloads. DailyDownloads resets when the calendar
// day changes; TotalDownloads only resets explicitly.
type Record struct {
	DailyDownloads   int      `json:"dailyDownloads"`
	TotalDownloads   int      `json:"totalDownloads"`
	LastResetDate    string   `json:"lastResetDate"`
	ProductsAccessed []string `json:"productsAccessed"`
}

// DateKey returns the calendar day of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// New returns a zero record dated today.
func New(today string) Record {
	return Record{
		LastResetDate:    today,
		ProductsAccessed: []string{},
	}
}

// Rollover zeroes the daily counter when the record is not dated today.
// It reports whether anything changed.
func (r Record) Rollover(today string) (Record, bool) {
	if r.LastResetDate == today {
		return r, false
	}
	next := r.Clone()
	next.DailyDownloads = 0
	next.LastResetDate = today
	return next, true
}

// WithDownload counts one download of productID.
func (r Record) WithDownload(productID string) Record {
	next, _ := r.WithAccess(productID)
	next.DailyDownloads++
	next.TotalDownloads++
	return next
}

// WithAccess adds productID to the accessed set. It reports whether the
// product was new.
func (r Record) WithAccess(productID string) (Record, bool) {
	next := r.Clone()
	if productID == "" || r.HasAccessed(productID) {
		return next, false
	}
	next.ProductsAccessed = append(next.ProductsAccessed, productID)
	return next, true
}

func (r Record) HasAccessed(productID string) bool {
	return slices.Contains(r.ProductsAccessed, productID)
}

// DistinctProducts is the number of distinct products accessed.
func (r Record) DistinctProducts() int { return len(r.ProductsAccessed) }

func (r Record) Clone() Record {
	cp := r
	cp.ProductsAccessed = append(make([]string, 0, len(r.ProductsAccessed)), r.ProductsAccessed...)
	return cp
}
