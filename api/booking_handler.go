package api

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/soundstage-events/backoffice/analytics"
	"github.com/soundstage-events/backoffice/csvimport"
	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
)

// InquiryRequest is the booking form on the public site.
type InquiryRequest struct {
	ClientName    string `json:"client_name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	EventType     string `json:"event_type"`
	EventDate     string `json:"event_date"`
	Venue         string `json:"venue"`
	PackageName   string `json:"package_name"`
	Notes         string `json:"notes"`
}

func parseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
		return t.UTC(), nil
	}
	return csvimport.ParseDate(raw)
}

// InquiryHandler records a booking inquiry from the public site and notifies the company.
func (s *Server) InquiryHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Inquiry API]")

	var req InquiryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}

	booking := models.EventBooking{
		ClientName:    strings.TrimSpace(req.ClientName),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		EventType:     strings.TrimSpace(req.EventType),
		Venue:         strings.TrimSpace(req.Venue),
		PackageName:   strings.TrimSpace(req.PackageName),
		Notes:         strings.TrimSpace(req.Notes),
		Status:        models.StatusInquiry,
		Source:        models.SourceWebsite,
	}

	fields := map[string]string{}
	if req.EventDate != "" {
		date, err := parseEventDate(req.EventDate)
		if err != nil {
			fields["event_date"] = "must be a date such as 2006-01-02"
		}
		booking.EventDate = date
	}
	booking.Normalize()

	if err := utils.ValidateStruct(&booking); err != nil {
		var ve *utils.ValidationError
		if !errors.As(err, &ve) {
			utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
			return
		}
		for k, v := range ve.Fields {
			if _, ok := fields[k]; !ok {
				fields[k] = v
			}
		}
	}
	if booking.ContactNumber == "" && booking.Email == "" {
		fields["contact_number"] = "contact number or email is required"
	}
	if len(fields) > 0 {
		utils.RespondValidationError(w, &logMessageBuilder, &utils.ValidationError{Fields: fields})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.Store.Bookings.Create(ctx, &booking); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Create failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Error saving inquiry", http.StatusInternalServerError)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, "Saved inquiry "+booking.ID.Hex())

	date := booking.EventDate.Format("January 2, 2006")
	contact := strings.TrimSpace(booking.ContactNumber + " " + booking.Email)
	s.notify(&logMessageBuilder,
		fmt.Sprintf("New inquiry: %s on %s", booking.ClientName, date),
		fmt.Sprintf("Client: %s\nContact: %s\nEvent: %s\nDate: %s\nVenue: %s\nPackage: %s\n\n%s",
			booking.ClientName, contact, booking.EventType, date, booking.Venue, booking.PackageName, booking.Notes),
		fmt.Sprintf("<p><strong>%s</strong> (%s)</p><p>%s on %s at %s</p><p>Package: %s</p><p>%s</p>",
			html.EscapeString(booking.ClientName), html.EscapeString(contact), html.EscapeString(booking.EventType),
			date, html.EscapeString(booking.Venue), html.EscapeString(booking.PackageName), html.EscapeString(booking.Notes)),
	)

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Thank you! We will get back to you shortly.",
		"data":    booking,
	})
}

func parseBookingFilter(r *http.Request) (store.BookingFilter, error) {
	q := r.URL.Query()
	f := store.BookingFilter{
		Status: strings.ToLower(strings.TrimSpace(q.Get("status"))),
		Query:  strings.TrimSpace(q.Get("q")),
	}
	if f.Status != "" {
		valid := false
		for _, st := range models.BookingStatuses {
			valid = valid || st == f.Status
		}
		if !valid {
			return f, fmt.Errorf("status must be one of: %s", strings.Join(models.BookingStatuses, ", "))
		}
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1900 || year > 9999 {
			return f, fmt.Errorf("invalid year")
		}
		f.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return f, fmt.Errorf("invalid month")
		}
		if f.Year == 0 {
			return f, fmt.Errorf("month requires year")
		}
		f.Month = month
	}
	return f, nil
}

// SearchBookingsHandler lists the ledger with filters, latest event first.
func (s *Server) SearchBookingsHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Search Bookings API]")

	filter, err := parseBookingFilter(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}
	page, limit := parsePagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bookings, err := s.Store.Bookings.Search(ctx, filter)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Search failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	total := int64(len(bookings))
	start := (page - 1) * limit
	if start < 0 || start > len(bookings) {
		start = len(bookings)
	}
	end := start + limit
	if end > len(bookings) {
		end = len(bookings)
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Matched %d bookings", total))
	utils.RespondJSON(w, http.StatusOK, ListResponse{
		Data: bookings[start:end],
		Meta: newPageMeta(page, limit, total),
	})
}

// AnalyticsHandler summarizes the ledger, optionally for one year.
func (s *Server) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Booking Analytics API]")

	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			utils.RespondError(w, &logMessageBuilder, "invalid year", http.StatusBadRequest)
			return
		}
		year = y
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bookings, err := s.Store.Bookings.Search(ctx, store.BookingFilter{})
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Search failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	report := analytics.Build(bookings, s.now(), year)
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Report over %d bookings", report.TotalBookings))
	utils.RespondJSON(w, http.StatusOK, report)
}

// importSource returns the CSV body of an import request: the multipart "file" field
// or the raw request body.
func importSource(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return http.MaxBytesReader(w, r.Body, maxUploadBytes), nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("error parsing form data")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file is required")
	}
	return file, nil
}

// ImportBookingsHandler loads a CSV ledger export. With dry_run=true nothing is written.
func (s *Server) ImportBookingsHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Import Bookings API]")

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	src, err := importSource(w, r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 2*requestTimeout)
	defer cancel()

	importer := &csvimport.Importer{Ledger: s.Store.Bookings, Now: s.now}
	result, err := importer.Import(ctx, src, dryRun)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			utils.RespondError(w, &logMessageBuilder, "File too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, csvimport.ErrEmptyFile), errors.Is(err, csvimport.ErrBadHeader), errors.Is(err, csvimport.ErrMissingColumn):
			utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		default:
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Import failed: %v", err))
			utils.RespondError(w, &logMessageBuilder, "Import failed", http.StatusInternalServerError)
		}
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Imported %d of %d rows (dry run %t), %d duplicates, %d errors",
		result.Imported, result.TotalRows, dryRun, len(result.Duplicates), len(result.Errors)))
	utils.RespondJSON(w, http.StatusOK, result)
}
