package models

// About is the "who we are" section of the site.
type About struct {
	Base            `bson:",inline"`
	Title           string   `bson:"title" json:"title" validate:"required,max=200"`
	Description     string   `bson:"description" json:"description" validate:"required"`
	Mission         string   `bson:"mission,omitempty" json:"mission,omitempty"`
	Vision          string   `bson:"vision,omitempty" json:"vision,omitempty"`
	Image           string   `bson:"image,omitempty" json:"image,omitempty"`
	YearsExperience int      `bson:"years_experience" json:"years_experience" validate:"gte=0"`
	EventsServed    int      `bson:"events_served" json:"events_served" validate:"gte=0"`
	Highlights      []string `bson:"highlights" json:"highlights"`
}

func (a *About) ImageRefs() []*string { return []*string{&a.Image} }
