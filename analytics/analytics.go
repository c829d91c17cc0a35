// Package analytics summarizes the booking ledger for the admin dashboard.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/soundstage-events/backoffice/models"
)

const (
	unspecified  = "Unspecified"
	topVenueSize = 5
)

// MonthStat is revenue and volume for one calendar month (YYYY-MM).
type MonthStat struct {
	Month    string  `json:"month"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// GroupStat is revenue and volume for one event type or package.
type GroupStat struct {
	Name     string  `json:"name"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// VenueStat counts bookings at one venue.
type VenueStat struct {
	Venue    string `json:"venue"`
	Bookings int    `json:"bookings"`
}

// Report is the dashboard summary. Revenue figures only include counted bookings,
// i.e. neither cancelled nor still an inquiry.
type Report struct {
	Year                int            `json:"year,omitempty"`
	TotalBookings       int            `json:"total_bookings"`
	CountedBookings     int            `json:"counted_bookings"`
	TotalRevenue        float64        `json:"total_revenue"`
	Collected           float64        `json:"collected"`
	Outstanding         float64        `json:"outstanding"`
	AverageBookingValue float64        `json:"average_booking_value"`
	Upcoming            int            `json:"upcoming"`
	ByStatus            map[string]int `json:"by_status"`
	ByMonth             []MonthStat    `json:"by_month"`
	ByEventType         []GroupStat    `json:"by_event_type"`
	ByPackage           []GroupStat    `json:"by_package"`
	TopVenues           []VenueStat    `json:"top_venues"`
}

// Build aggregates bookings in one pass. A non-zero year keeps only bookings whose
// event date falls in that year; now decides which bookings are upcoming.
func Build(bookings []models.EventBooking, now time.Time, year int) Report {
	report := Report{
		Year:        year,
		ByStatus:    map[string]int{},
		ByMonth:     []MonthStat{},
		ByEventType: []GroupStat{},
		ByPackage:   []GroupStat{},
		TopVenues:   []VenueStat{},
	}
	// event dates are stored as UTC midnight
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	months := map[string]*MonthStat{}
	eventTypes := map[string]*GroupStat{}
	packages := map[string]*GroupStat{}
	venues := map[string]*VenueStat{}

	for i := range bookings {
		b := &bookings[i]
		if year != 0 && b.EventDate.Year() != year {
			continue
		}
		report.TotalBookings++
		status := b.Status
		if status == "" {
			status = models.StatusPending
		}
		report.ByStatus[status]++

		if !b.Counted() {
			continue
		}
		report.CountedBookings++
		report.TotalRevenue += b.Amount
		report.Collected += b.DownPayment
		report.Outstanding += b.BalanceDue()
		if !b.EventDate.Before(today) {
			report.Upcoming++
		}

		month := b.EventDate.Format("2006-01")
		m, ok := months[month]
		if !ok {
			m = &MonthStat{Month: month}
			months[month] = m
		}
		m.Bookings++
		m.Revenue += b.Amount

		addGroup(eventTypes, b.EventType, b.Amount)
		addGroup(packages, b.PackageName, b.Amount)

		if venue := strings.TrimSpace(b.Venue); venue != "" {
			key := strings.ToLower(venue)
			v, ok := venues[key]
			if !ok {
				v = &VenueStat{Venue: venue}
				venues[key] = v
			}
			v.Bookings++
		}
	}

	if report.CountedBookings > 0 {
		report.AverageBookingValue = report.TotalRevenue / float64(report.CountedBookings)
	}

	for _, m := range months {
		report.ByMonth = append(report.ByMonth, *m)
	}
	sort.Slice(report.ByMonth, func(i, j int) bool { return report.ByMonth[i].Month < report.ByMonth[j].Month })

	report.ByEventType = sortedGroups(eventTypes)
	report.ByPackage = sortedGroups(packages)

	for _, v := range venues {
		report.TopVenues = append(report.TopVenues, *v)
	}
	sort.Slice(report.TopVenues, func(i, j int) bool {
		a, b := report.TopVenues[i], report.TopVenues[j]
		if a.Bookings != b.Bookings {
			return a.Bookings > b.Bookings
		}
		return a.Venue < b.Venue
	})
	if len(report.TopVenues) > topVenueSize {
		report.TopVenues = report.TopVenues[:topVenueSize]
	}

	return report
}

func addGroup(groups map[string]*GroupStat, name string, amount float64) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = unspecified
	}
	key := strings.ToLower(name)
	g, ok := groups[key]
	if !ok {
		g = &GroupStat{Name: name}
		groups[key] = g
	}
	g.Bookings++
	g.Revenue += amount
}

func sortedGroups(groups map[string]*GroupStat) []GroupStat {
	out := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	return out
}
