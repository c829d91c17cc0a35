package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base holds the fields every stored document carries.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Meta exposes the embedded Base so generic code can stamp ids and timestamps.
func (b *Base) Meta() *Base { return b }

// Document is implemented by pointers to every content type.
type Document interface {
	Meta() *Base
}

// Doc constrains a type parameter to a pointer to T that is a Document.
type Doc[T any] interface {
	*T
	Document
}

// ImageHolder is implemented by documents that reference uploaded media.
// The returned pointers are rewritten in place when object keys are resolved to URLs.
type ImageHolder interface {
	ImageRefs() []*string
}

// Normalizer is implemented by documents with derived fields, computed before validation.
type Normalizer interface {
	Normalize()
}

func stringRefs(single []*string, many []string) []*string {
	refs := single
	for i := range many {
		refs = append(refs, &many[i])
	}
	return refs
}
