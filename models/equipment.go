package models

// Equipment is an item in the rental inventory.
type Equipment struct {
	Base        `bson:",inline"`
	Name        string   `bson:"name" json:"name" validate:"required,max=200"`
	Category    string   `bson:"category" json:"category" validate:"required"`
	Brand       string   `bson:"brand,omitempty" json:"brand,omitempty"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Specs       []string `bson:"specs" json:"specs"`
	Image       string   `bson:"image,omitempty" json:"image,omitempty"`
	Quantity    int      `bson:"quantity" json:"quantity" validate:"gte=0"`
	Available   bool     `bson:"available" json:"available"`
}

func (e *Equipment) ImageRefs() []*string { return []*string{&e.Image} }
