// Package csvimport loads a booking ledger exported from a spreadsheet.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soundstage-events/backoffice/models"
)

// Column names a booking field can be imported from, after header normalization.
var columnAliases = map[string][]string{
	"client_name":    {"client name", "client", "name", "customer", "customer name"},
	"event_date":     {"event date", "date", "date of event"},
	"contact_number": {"contact", "contact number", "contact no", "phone", "phone number", "mobile", "mobile number"},
	"email":          {"email", "email address", "e mail"},
	"event_type":     {"event type", "event", "occasion", "type"},
	"venue":          {"venue", "location", "place"},
	"package_name":   {"package", "package name"},
	"amount":         {"amount", "total", "total amount", "price", "rate"},
	"down_payment":   {"down payment", "downpayment", "deposit", "dp", "reservation fee"},
	"balance":        {"balance", "remaining balance"},
	"status":         {"status"},
	"notes":          {"notes", "note", "remarks"},
}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
}

var statusAliases = map[string]string{
	"inquiry":   models.StatusInquiry,
	"inquire":   models.StatusInquiry,
	"pending":   models.StatusPending,
	"confirmed": models.StatusConfirmed,
	"reserved":  models.StatusConfirmed,
	"booked":    models.StatusConfirmed,
	"completed": models.StatusCompleted,
	"complete":  models.StatusCompleted,
	"done":      models.StatusCompleted,
	"paid":      models.StatusCompleted,
	"finished":  models.StatusCompleted,
	"cancelled": models.StatusCancelled,
	"canceled":  models.StatusCancelled,
}

// Errors returned when the input as a whole cannot be imported.
var (
	ErrEmptyFile     = errors.New("empty file")
	ErrBadHeader     = errors.New("unreadable header row")
	ErrMissingColumn = errors.New("missing required column")
)

// Row is one successfully parsed data row.
type Row struct {
	Number  int
	Booking models.EventBooking
}

// RowError explains why a data row was rejected.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ", ".", " ", "#", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

func mapColumns(header []string) (map[string]int, error) {
	lookup := map[string]string{}
	for field, aliases := range columnAliases {
		lookup[normalizeHeader(field)] = field
		for _, a := range aliases {
			lookup[a] = field
		}
	}

	cols := map[string]int{}
	for i, h := range header {
		field, ok := lookup[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, taken := cols[field]; !taken {
			cols[field] = i
		}
	}

	for _, required := range []string{"client_name", "event_date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	return cols, nil
}

// stripBOM skips a leading UTF-8 byte order mark, which spreadsheet exports like to add.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		br.Discard(3)
	}
	return br
}

// Parse reads CSV text into bookings. Fields may be quoted, contain commas, doubled
// quotes and line breaks. Rows that cannot be parsed are reported in the returned
// RowErrors; a malformed header or unreadable input is returned as error.
func Parse(r io.Reader, now time.Time) ([]Row, []RowError, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyFile
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadHeader, parseErr.Err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	var rows []Row
	var rowErrs []RowError
	for number := 1; ; number++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrs = append(rowErrs, RowError{Row: number, Message: parseErr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("read row %d: %w", number, err)
		}
		if isBlank(record) {
			continue
		}

		booking, err := parseRecord(record, cols, now)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: number, Message: err.Error()})
			continue
		}
		rows = append(rows, Row{Number: number, Booking: booking})
	}
	return rows, rowErrs, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRecord(record []string, cols map[string]int, now time.Time) (models.EventBooking, error) {
	b := models.EventBooking{
		ClientName:    collapseSpaces(field(record, cols, "client_name")),
		ContactNumber: field(record, cols, "contact_number"),
		Email:         strings.ToLower(field(record, cols, "email")),
		EventType:     field(record, cols, "event_type"),
		Venue:         field(record, cols, "venue"),
		PackageName:   field(record, cols, "package_name"),
		Notes:         field(record, cols, "notes"),
		Source:        models.SourceImport,
	}
	if b.ClientName == "" {
		return b, fmt.Errorf("client name is empty")
	}

	date, err := ParseDate(field(record, cols, "event_date"))
	if err != nil {
		return b, err
	}
	b.EventDate = date

	if b.Amount, err = ParseAmount(field(record, cols, "amount")); err != nil {
		return b, fmt.Errorf("amount: %w", err)
	}
	if b.DownPayment, err = ParseAmount(field(record, cols, "down_payment")); err != nil {
		return b, fmt.Errorf("down payment: %w", err)
	}
	if raw := field(record, cols, "balance"); raw != "" {
		bal, err := ParseAmount(raw)
		if err != nil {
			return b, fmt.Errorf("balance: %w", err)
		}
		b.Balance = &bal
	}

	if b.Status, err = ParseStatus(field(record, cols, "status"), b.EventDate, now); err != nil {
		return b, err
	}

	b.Normalize()
	return b, nil
}

// ParseDate accepts the date formats people type into spreadsheets and returns UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	s := collapseSpaces(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("event date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// ParseAmount parses a peso/dollar amount such as "₱12,500.00" or "PHP 8000". Empty is zero.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0, nil
	}
	upper := strings.ToUpper(s)
	for _, prefix := range []string{"PHP", "₱", "$", "P"} {
		if strings.HasPrefix(upper, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", raw)
	}
	return v, nil
}

// ParseStatus maps free-form status text to a booking status. An empty status means the
// row came from the ledger of booked jobs: completed when the date has passed, confirmed otherwise.
func ParseStatus(raw string, eventDate, now time.Time) (string, error) {
	s := strings.ToLower(collapseSpaces(raw))
	if s == "" {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if eventDate.Before(today) {
			return models.StatusCompleted, nil
		}
		return models.StatusConfirmed, nil
	}
	if status, ok := statusAliases[s]; ok {
		return status, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
