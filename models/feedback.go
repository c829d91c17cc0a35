package models

import (
	"time"
)

// FeedbackReview is a review submitted by a client through the public form.
// Reviews stay hidden until an admin approves them.
type FeedbackReview struct {
	Base      `bson:",inline"`
	Name      string     `bson:"name" json:"name" validate:"required,max=120"`
	Email     string     `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Rating    int        `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment   string     `bson:"comment" json:"comment" validate:"required,max=5000"`
	EventType string     `bson:"event_type,omitempty" json:"event_type,omitempty"`
	EventDate *time.Time `bson:"event_date,omitempty" json:"event_date,omitempty"`
	Approved  bool       `bson:"approved" json:"approved"`
}
