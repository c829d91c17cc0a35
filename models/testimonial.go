package models

// Testimonial is a curated client quote.
type Testimonial struct {
	Base      `bson:",inline"`
	Name      string `bson:"name" json:"name" validate:"required,max=120"`
	Role      string `bson:"role,omitempty" json:"role,omitempty"`
	Message   string `bson:"message" json:"message" validate:"required"`
	Rating    int    `bson:"rating" json:"rating" validate:"omitempty,min=1,max=5"`
	Image     string `bson:"image,omitempty" json:"image,omitempty"`
	Published bool   `bson:"published" json:"published"`
}

func (t *Testimonial) ImageRefs() []*string { return []*string{&t.Image} }
