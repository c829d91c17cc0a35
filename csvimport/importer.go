package csvimport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
)

// Duplicate describes a row skipped because the booking is already in the ledger
// or earlier in the same file.
type Duplicate struct {
	Row        int    `json:"row"`
	ClientName string `json:"client_name"`
	EventDate  string `json:"event_date"`
}

// Result summarizes one import run.
type Result struct {
	TotalRows  int         `json:"total_rows"`
	Imported   int         `json:"imported"`
	Duplicates []Duplicate `json:"duplicates"`
	Errors     []RowError  `json:"errors"`
	DryRun     bool        `json:"dry_run"`
}

// Ledger is the part of the booking store the importer needs.
type Ledger interface {
	Search(ctx context.Context, f store.BookingFilter) ([]models.EventBooking, error)
	InsertMany(ctx context.Context, bookings []models.EventBooking) error
}

// Importer parses CSV exports and appends new bookings to the ledger.
type Importer struct {
	Ledger Ledger
	Now    func() time.Time
}

// Import parses r, drops duplicates and, unless dryRun, inserts the remaining bookings.
func (im *Importer) Import(ctx context.Context, r io.Reader, dryRun bool) (*Result, error) {
	now := time.Now()
	if im.Now != nil {
		now = im.Now()
	}

	rows, rowErrs, err := Parse(r, now)
	if err != nil {
		return nil, err
	}

	existing, err := im.Ledger.Search(ctx, store.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("load existing bookings: %w", err)
	}

	accepted, dups := Dedupe(rows, existing)

	result := &Result{
		TotalRows:  len(rows) + len(rowErrs),
		Duplicates: dups,
		Errors:     rowErrs,
		DryRun:     dryRun,
	}
	if result.Duplicates == nil {
		result.Duplicates = []Duplicate{}
	}
	if result.Errors == nil {
		result.Errors = []RowError{}
	}

	if !dryRun && len(accepted) > 0 {
		if err := im.Ledger.InsertMany(ctx, accepted); err != nil {
			return nil, err
		}
	}
	result.Imported = len(accepted)
	return result, nil
}

// index of known bookings: name|day -> venues seen for that pair ("" when unknown).
type bookingIndex map[string][]string

func dedupeKey(b *models.EventBooking) string {
	name := strings.ToLower(collapseSpaces(b.ClientName))
	return name + "|" + b.EventDate.UTC().Format("2006-01-02")
}

func (idx bookingIndex) add(b *models.EventBooking) {
	key := dedupeKey(b)
	idx[key] = append(idx[key], strings.ToLower(collapseSpaces(b.Venue)))
}

// contains reports whether b matches a known booking. Venues only tell bookings apart
// when both sides have one.
func (idx bookingIndex) contains(b *models.EventBooking) bool {
	venue := strings.ToLower(collapseSpaces(b.Venue))
	for _, known := range idx[dedupeKey(b)] {
		if known == "" || venue == "" || known == venue {
			return true
		}
	}
	return false
}

// Dedupe splits parsed rows into new bookings and duplicates of existing or earlier rows.
func Dedupe(rows []Row, existing []models.EventBooking) ([]models.EventBooking, []Duplicate) {
	idx := bookingIndex{}
	for i := range existing {
		idx.add(&existing[i])
	}

	var accepted []models.EventBooking
	var dups []Duplicate
	for i := range rows {
		b := &rows[i].Booking
		if idx.contains(b) {
			dups = append(dups, Duplicate{
				Row:        rows[i].Number,
				ClientName: b.ClientName,
				EventDate:  b.EventDate.Format("2006-01-02"),
			})
			continue
		}
		idx.add(b)
		accepted = append(accepted, *b)
	}
	return accepted, dups
}
