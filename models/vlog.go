package models

import (
	"time"

	"github.com/soundstage-events/backoffice/content"
)

const excerptLength = 160

// Vlog is a video post with an optional rich-text body.
type Vlog struct {
	Base        `bson:",inline"`
	Title       string     `bson:"title" json:"title" validate:"required,max=200"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL    string     `bson:"video_url" json:"video_url" validate:"required,url"`
	Thumbnail   string     `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Content     string     `bson:"content,omitempty" json:"content,omitempty"`
	Excerpt     string     `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	Featured    bool       `bson:"featured" json:"featured"`
}

func (v *Vlog) ImageRefs() []*string { return []*string{&v.Thumbnail} }

// Normalize derives the excerpt from the HTML body and borrows its first image
// as thumbnail when none was uploaded.
func (v *Vlog) Normalize() {
	if v.Content == "" {
		v.Excerpt = ""
		return
	}
	v.Excerpt = content.Excerpt(v.Content, excerptLength)
	if v.Thumbnail == "" {
		v.Thumbnail = content.FirstImage(v.Content)
	}
}
