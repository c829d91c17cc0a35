package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bookings is an in-memory store.BookingRepository.
type Bookings struct {
	*Memory[models.EventBooking, *models.EventBooking]
}

func NewBookings() *Bookings {
	return &Bookings{NewMemory[models.EventBooking]()}
}

func (b *Bookings) Search(ctx context.Context, f store.BookingFilter) ([]models.EventBooking, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	out := []models.EventBooking{}
	for _, booking := range b.All() {
		if f.Matches(&booking) {
			out = append(out, booking)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.After(out[j].EventDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (b *Bookings) InsertMany(ctx context.Context, bookings []models.EventBooking) error {
	for i := range bookings {
		if err := b.Create(ctx, &bookings[i]); err != nil {
			return err
		}
	}
	return nil
}

// Admins is an in-memory store.AdminRepository.
type Admins struct {
	mu     sync.Mutex
	admins map[primitive.ObjectID]*models.Admin
}

func NewAdmins() *Admins {
	return &Admins{admins: map[primitive.ObjectID]*models.Admin{}}
}

func (a *Admins) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	email = store.NormalizeEmail(email)
	for _, admin := range a.admins {
		if admin.Email == email {
			cp := *admin
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (a *Admins) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	admin, ok := a.admins[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *admin
	return &cp, nil
}

func (a *Admins) Create(ctx context.Context, admin *models.Admin) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	admin.Email = store.NormalizeEmail(admin.Email)
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	cp := *admin
	a.admins[admin.ID] = &cp
	return nil
}

func (a *Admins) modify(id primitive.ObjectID, fn func(*models.Admin)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	admin, ok := a.admins[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(admin)
	admin.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Admins) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiresAt time.Time) error {
	return a.modify(id, func(admin *models.Admin) {
		admin.OTP = otp
		admin.OTPExpires = &expiresAt
		admin.OTPAttempts = 0
	})
}

func (a *Admins) RecordOTPFailure(ctx context.Context, id primitive.ObjectID) (int, error) {
	var attempts int
	err := a.modify(id, func(admin *models.Admin) {
		admin.OTPAttempts++
		attempts = admin.OTPAttempts
	})
	return attempts, err
}

func (a *Admins) ClearOTP(ctx context.Context, id primitive.ObjectID) error {
	return a.modify(id, clearOTP)
}

func (a *Admins) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return a.modify(id, func(admin *models.Admin) {
		admin.Password = hash
		clearOTP(admin)
	})
}

func clearOTP(admin *models.Admin) {
	admin.OTP = ""
	admin.OTPExpires = nil
	admin.OTPAttempts = 0
}

func (a *Admins) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return a.modify(id, func(admin *models.Admin) { admin.LastLoginAt = &at })
}

// Store is a store.Store backed by memory, with typed access to each repository.
type Store struct {
	*store.Store

	About           *Memory[models.About, *models.About]
	Company         *Memory[models.Company, *models.Company]
	Packages        *Memory[models.Package, *models.Package]
	Equipment       *Memory[models.Equipment, *models.Equipment]
	Events          *Memory[models.Event, *models.Event]
	Gallery         *Memory[models.Gallery, *models.Gallery]
	Testimonials    *Memory[models.Testimonial, *models.Testimonial]
	FAQs            *Memory[models.FAQ, *models.FAQ]
	FeedbackReviews *Memory[models.FeedbackReview, *models.FeedbackReview]
	Vlogs           *Memory[models.Vlog, *models.Vlog]
	Bookings        *Bookings
	Admins          *Admins
}

// New returns an empty in-memory store.
func New() *Store {
	s := &Store{
		About:           NewMemory[models.About](),
		Company:         NewMemory[models.Company](),
		Packages:        NewMemory[models.Package](),
		Equipment:       NewMemory[models.Equipment](),
		Events:          NewMemory[models.Event](),
		Gallery:         NewMemory[models.Gallery](),
		Testimonials:    NewMemory[models.Testimonial](),
		FAQs:            NewMemory[models.FAQ](),
		FeedbackReviews: NewMemory[models.FeedbackReview](),
		Vlogs:           NewMemory[models.Vlog](),
		Bookings:        NewBookings(),
		Admins:          NewAdmins(),
	}
	s.Store = &store.Store{
		About:           s.About,
		Company:         s.Company,
		Packages:        s.Packages,
		Equipment:       s.Equipment,
		Events:          s.Events,
		Gallery:         s.Gallery,
		Testimonials:    s.Testimonials,
		FAQs:            s.FAQs,
		FeedbackReviews: s.FeedbackReviews,
		Vlogs:           s.Vlogs,
		Bookings:        s.Bookings,
		Admins:          s.Admins,
	}
	return s
}
