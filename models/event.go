package models

import "time"

// Event is a past or upcoming event showcased on the site.
type Event struct {
	Base        `bson:",inline"`
	Title       string     `bson:"title" json:"title" validate:"required,max=200"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	EventType   string     `bson:"event_type,omitempty" json:"event_type,omitempty"`
	Venue       string     `bson:"venue,omitempty" json:"venue,omitempty"`
	EventDate   *time.Time `bson:"event_date,omitempty" json:"event_date,omitempty"`
	Images      []string   `bson:"images" json:"images"`
	Featured    bool       `bson:"featured" json:"featured"`
}

func (e *Event) ImageRefs() []*string { return stringRefs(nil, e.Images) }
