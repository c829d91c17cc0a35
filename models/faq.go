package models

type FAQ struct {
	Base         `bson:",inline"`
	Question     string `bson:"question" json:"question" validate:"required"`
	Answer       string `bson:"answer" json:"answer" validate:"required"`
	Category     string `bson:"category,omitempty" json:"category,omitempty"`
	DisplayOrder int    `bson:"display_order" json:"display_order"`
}
