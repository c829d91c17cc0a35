package models

// Socials lists the company's social media pages.
type Socials struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty" validate:"omitempty,url"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty" validate:"omitempty,url"`
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty" validate:"omitempty,url"`
	TikTok    string `bson:"tiktok,omitempty" json:"tiktok,omitempty" validate:"omitempty,url"`
}

// Company holds contact details shown in the header, footer and contact page.
type Company struct {
	Base          `bson:",inline"`
	Name          string  `bson:"name" json:"name" validate:"required,max=200"`
	Tagline       string  `bson:"tagline,omitempty" json:"tagline,omitempty"`
	Email         string  `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Phone         string  `bson:"phone,omitempty" json:"phone,omitempty"`
	Address       string  `bson:"address,omitempty" json:"address,omitempty"`
	Logo          string  `bson:"logo,omitempty" json:"logo,omitempty"`
	BusinessHours string  `bson:"business_hours,omitempty" json:"business_hours,omitempty"`
	Socials       Socials `bson:"socials" json:"socials"`
	MapURL        string  `bson:"map_url,omitempty" json:"map_url,omitempty" validate:"omitempty,url"`
}

func (c *Company) ImageRefs() []*string { return []*string{&c.Logo} }
