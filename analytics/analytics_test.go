package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/soundstage-events/backoffice/models"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func booking(client string, date time.Time, status string, amount, dp float64, eventType, pkg, venue string) models.EventBooking {
	b := models.EventBooking{
		ClientName:  client,
		EventDate:   date,
		Status:      status,
		Amount:      amount,
		DownPayment: dp,
		EventType:   eventType,
		PackageName: pkg,
		Venue:       venue,
	}
	b.Normalize()
	return b
}

func ledger() []models.EventBooking {
	return []models.EventBooking{
		booking("Ana", day(2024, 1, 20), models.StatusCompleted, 15000, 15000, "Wedding", "Gold", "Grand Ballroom"),
		booking("Ben", day(2024, 1, 27), models.StatusCompleted, 8000, 4000, "Debut", "Silver", "grand ballroom"),
		booking("Cris", day(2024, 3, 2), models.StatusConfirmed, 20000, 5000, "Wedding", "Platinum", "Garden Pavilion"),
		booking("Dina", day(2024, 3, 9), models.StatusCancelled, 12000, 0, "Birthday", "Silver", "Clubhouse"),
		booking("Eli", day(2024, 5, 1), models.StatusInquiry, 9000, 0, "Corporate", "", ""),
		booking("Fe", day(2023, 12, 31), models.StatusCompleted, 5000, 5000, "", "", "Chapel"),
	}
}

func TestBuild_AllYears(t *testing.T) {
	now := day(2024, 3, 2).Add(15 * time.Hour)
	got := Build(ledger(), now, 0)

	want := Report{
		TotalBookings:       6,
		CountedBookings:     4,
		TotalRevenue:        48000,
		Collected:           29000,
		Outstanding:         19000,
		AverageBookingValue: 12000,
		Upcoming:            1, // Cris, on "today"
		ByStatus: map[string]int{
			models.StatusCompleted: 3,
			models.StatusConfirmed: 1,
			models.StatusCancelled: 1,
			models.StatusInquiry:   1,
		},
		ByMonth: []MonthStat{
			{Month: "2023-12", Bookings: 1, Revenue: 5000},
			{Month: "2024-01", Bookings: 2, Revenue: 23000},
			{Month: "2024-03", Bookings: 1, Revenue: 20000},
		},
		ByEventType: []GroupStat{
			{Name: "Wedding", Bookings: 2, Revenue: 35000},
			{Name: "Debut", Bookings: 1, Revenue: 8000},
			{Name: "Unspecified", Bookings: 1, Revenue: 5000},
		},
		ByPackage: []GroupStat{
			{Name: "Platinum", Bookings: 1, Revenue: 20000},
			{Name: "Gold", Bookings: 1, Revenue: 15000},
			{Name: "Silver", Bookings: 1, Revenue: 8000},
			{Name: "Unspecified", Bookings: 1, Revenue: 5000},
		},
		TopVenues: []VenueStat{
			{Venue: "Grand Ballroom", Bookings: 2},
			{Venue: "Chapel", Bookings: 1},
			{Venue: "Garden Pavilion", Bookings: 1},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_YearFilter(t *testing.T) {
	got := Build(ledger(), day(2025, 1, 1), 2023)

	assert.Equal(t, 2023, got.Year)
	assert.Equal(t, 1, got.TotalBookings)
	assert.Equal(t, 5000.0, got.TotalRevenue)
	assert.Equal(t, 0, got.Upcoming)
	assert.Equal(t, []MonthStat{{Month: "2023-12", Bookings: 1, Revenue: 5000}}, got.ByMonth)
}

func TestBuild_UpcomingUsesUTCDay(t *testing.T) {
	west := time.FixedZone("PST", -8*60*60)
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "Testcase #1: event day, afternoon west of UTC", now: day(2024, 3, 2).Add(18 * time.Hour).In(west), want: 1},
		{name: "Testcase #2: event day, last UTC hour", now: day(2024, 3, 2).Add(23 * time.Hour).In(west), want: 1},
		{name: "Testcase #3: next UTC day", now: day(2024, 3, 3).In(west), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(ledger(), tt.now, 0).Upcoming)
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil, time.Now(), 0)

	assert.Zero(t, got.TotalBookings)
	assert.Zero(t, got.AverageBookingValue)
	assert.NotNil(t, got.ByMonth)
	assert.NotNil(t, got.ByEventType)
	assert.NotNil(t, got.TopVenues)
	assert.Empty(t, got.ByStatus)
}

func TestBuild_TopVenuesCapped(t *testing.T) {
	var bookings []models.EventBooking
	for i, venue := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		for n := 0; n <= i; n++ {
			bookings = append(bookings, booking("x", day(2024, 2, 1), models.StatusConfirmed, 100, 0, "", "", venue))
		}
	}

	got := Build(bookings, day(2024, 1, 1), 0)
	assert.Len(t, got.TopVenues, 5)
	assert.Equal(t, VenueStat{Venue: "G", Bookings: 7}, got.TopVenues[0])
	assert.Equal(t, VenueStat{Venue: "C", Bookings: 3}, got.TopVenues[4])
}
