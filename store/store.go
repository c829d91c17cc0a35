// Package store persists site content and the booking ledger in MongoDB.
package store

import (
	"context"
	"errors"
	"math"

	"github.com/soundstage-events/backoffice/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("document not found")

// SortField orders list results.
type SortField struct {
	Key  string
	Desc bool
}

// ListOptions narrows and pages a List call. Filter holds equality matches on bson field names.
type ListOptions struct {
	Filter map[string]interface{}
	Sort   []SortField
	Page   int
	Limit  int
}

// Skip returns the number of documents before the requested page.
func (o ListOptions) Skip() int {
	if o.Page < 1 || o.Limit < 1 {
		return 0
	}
	if o.Page-1 > math.MaxInt32/o.Limit {
		return math.MaxInt32
	}
	return (o.Page - 1) * o.Limit
}

// Repository is the CRUD surface shared by every content collection.
type Repository[T any] interface {
	List(ctx context.Context, opts ListOptions) ([]T, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Store groups every repository the application uses.
type Store struct {
	About           Repository[models.About]
	Company         Repository[models.Company]
	Packages        Repository[models.Package]
	Equipment       Repository[models.Equipment]
	Events          Repository[models.Event]
	Gallery         Repository[models.Gallery]
	Testimonials    Repository[models.Testimonial]
	FAQs            Repository[models.FAQ]
	FeedbackReviews Repository[models.FeedbackReview]
	Vlogs           Repository[models.Vlog]
	Bookings        BookingRepository
	Admins          AdminRepository

	// Ping checks database reachability; nil means always healthy.
	Ping func(ctx context.Context) error
}

// NewMongoStore wires every repository to its collection in db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		About:           NewCollection[models.About](db, "about"),
		Company:         NewCollection[models.Company](db, "company"),
		Packages:        NewCollection[models.Package](db, "packages"),
		Equipment:       NewCollection[models.Equipment](db, "equipment"),
		Events:          NewCollection[models.Event](db, "events"),
		Gallery:         NewCollection[models.Gallery](db, "gallery"),
		Testimonials:    NewCollection[models.Testimonial](db, "testimonials"),
		FAQs:            NewCollection[models.FAQ](db, "faqs"),
		FeedbackReviews: NewCollection[models.FeedbackReview](db, "feedback_reviews"),
		Vlogs:           NewCollection[models.Vlog](db, "vlogs"),
		Bookings:        NewBookingCollection(db),
		Admins:          NewAdminCollection(db),
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}
