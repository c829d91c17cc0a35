package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/soundstage-events/backoffice/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingFilter narrows the booking ledger. Zero values mean "any".
type BookingFilter struct {
	Status string
	Year   int
	Month  int // 1-12, only honoured together with Year
	Query  string
}

// DateRange returns the half-open event_date window implied by Year/Month.
func (f BookingFilter) DateRange() (from, to time.Time, ok bool) {
	if f.Year == 0 {
		return time.Time{}, time.Time{}, false
	}
	if f.Month >= 1 && f.Month <= 12 {
		from = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), true
	}
	from = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0), true
}

// Matches applies the filter in memory, mirroring the Mongo query.
func (f BookingFilter) Matches(b *models.EventBooking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if from, to, ok := f.DateRange(); ok {
		if b.EventDate.Before(from) || !b.EventDate.Before(to) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(b.ClientName + "\n" + b.Venue + "\n" + b.EventType)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// BookingRepository is the booking ledger.
type BookingRepository interface {
	Repository[models.EventBooking]
	// Search returns every booking matching f, latest event first.
	Search(ctx context.Context, f BookingFilter) ([]models.EventBooking, error)
	// InsertMany stores a batch of new bookings.
	InsertMany(ctx context.Context, bookings []models.EventBooking) error
}

// BookingCollection is the MongoDB BookingRepository.
type BookingCollection struct {
	*Collection[models.EventBooking, *models.EventBooking]
}

// NewBookingCollection returns the ledger over the "bookings" collection.
func NewBookingCollection(db *mongo.Database) *BookingCollection {
	return &BookingCollection{NewCollection[models.EventBooking](db, "bookings")}
}

func bookingQuery(f BookingFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if from, to, ok := f.DateRange(); ok {
		filter["event_date"] = bson.M{"$gte": from, "$lt": to}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"client_name": re},
			bson.M{"venue": re},
			bson.M{"event_type": re},
		}
	}
	return filter
}

// Search returns every booking matching f sorted by event_date descending.
func (c *BookingCollection) Search(ctx context.Context, f BookingFilter) ([]models.EventBooking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "event_date", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := c.coll.Find(ctx, bookingQuery(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.EventBooking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// InsertMany stamps ids and timestamps on each booking and inserts them in one call.
func (c *BookingCollection) InsertMany(ctx context.Context, bookings []models.EventBooking) error {
	if len(bookings) == 0 {
		return nil
	}
	now := c.now().UTC()
	docs := make([]interface{}, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		b.CreatedAt = now
		b.UpdatedAt = now
		docs = append(docs, b)
	}
	if _, err := c.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert bookings: %w", err)
	}
	return nil
}
