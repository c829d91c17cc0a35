package models

import (
	"time"
)

// Booking statuses.
const (
	StatusInquiry   = "inquiry"
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Booking sources.
const (
	SourceAdmin   = "admin"
	SourceWebsite = "website"
	SourceImport  = "import"
)

// BookingStatuses lists every valid status in lifecycle order.
var BookingStatuses = []string{StatusInquiry, StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// EventBooking is one entry in the booking ledger.
type EventBooking struct {
	Base          `bson:",inline"`
	ClientName    string    `bson:"client_name" json:"client_name" validate:"required,max=200"`
	ContactNumber string    `bson:"contact_number,omitempty" json:"contact_number,omitempty"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	EventType     string    `bson:"event_type,omitempty" json:"event_type,omitempty"`
	EventDate     time.Time `bson:"event_date" json:"event_date" validate:"required"`
	Venue         string    `bson:"venue,omitempty" json:"venue,omitempty"`
	PackageName   string    `bson:"package_name,omitempty" json:"package_name,omitempty"`
	Amount        float64   `bson:"amount" json:"amount" validate:"gte=0"`
	DownPayment   float64   `bson:"down_payment" json:"down_payment" validate:"gte=0"`
	Balance       *float64  `bson:"balance" json:"balance"`
	Status        string    `bson:"status" json:"status" validate:"oneof=inquiry pending confirmed completed cancelled"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Source        string    `bson:"source" json:"source" validate:"oneof=admin website import"`
}

// Normalize fills the balance from amount and down payment when it was not given,
// and defaults status and source.
func (b *EventBooking) Normalize() {
	if b.Balance == nil {
		bal := b.Amount - b.DownPayment
		if bal < 0 {
			bal = 0
		}
		b.Balance = &bal
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.Source == "" {
		b.Source = SourceAdmin
	}
}

// BalanceDue returns the outstanding balance, zero when unknown.
func (b *EventBooking) BalanceDue() float64 {
	if b.Balance == nil {
		return 0
	}
	return *b.Balance
}

// Counted reports whether the booking is a real, non-cancelled engagement.
func (b *EventBooking) Counted() bool {
	return b.Status != StatusCancelled && b.Status != StatusInquiry
}
