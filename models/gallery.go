package models

import "time"

// Gallery is a single photo in the public gallery.
type Gallery struct {
	Base        `bson:",inline"`
	Title       string     `bson:"title" json:"title" validate:"required,max=200"`
	Image       string     `bson:"image" json:"image" validate:"required"`
	Category    string     `bson:"category,omitempty" json:"category,omitempty"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	EventDate   *time.Time `bson:"event_date,omitempty" json:"event_date,omitempty"`
}

func (g *Gallery) ImageRefs() []*string { return []*string{&g.Image} }
