package models

// Package is a priced sound and lighting bundle offered to clients.
type Package struct {
	Base         `bson:",inline"`
	Name         string   `bson:"name" json:"name" validate:"required,max=200"`
	Description  string   `bson:"description,omitempty" json:"description,omitempty"`
	Price        float64  `bson:"price" json:"price" validate:"gte=0"`
	Category     string   `bson:"category,omitempty" json:"category,omitempty"`
	Inclusions   []string `bson:"inclusions" json:"inclusions"`
	Image        string   `bson:"image,omitempty" json:"image,omitempty"`
	Popular      bool     `bson:"popular" json:"popular"`
	DisplayOrder int      `bson:"display_order" json:"display_order"`
}

func (p *Package) ImageRefs() []*string { return []*string{&p.Image} }
