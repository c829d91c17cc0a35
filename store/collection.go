package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soundstage-events/backoffice/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB Repository for one document type.
type Collection[T any, PT models.Doc[T]] struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewCollection returns a repository over the named collection.
func NewCollection[T any, PT models.Doc[T]](db *mongo.Database, name string) *Collection[T, PT] {
	return &Collection[T, PT]{coll: db.Collection(name), now: time.Now}
}

func findOptions(opts ListOptions) *options.FindOptions {
	findOptions := options.Find()
	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, s := range opts.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Key, Value: dir})
		}
		findOptions.SetSort(sort)
	}
	if opts.Limit > 0 {
		findOptions.SetSkip(int64(opts.Skip()))
		findOptions.SetLimit(int64(opts.Limit))
	}
	return findOptions
}

func toFilter(m map[string]interface{}) bson.M {
	filter := bson.M{}
	for k, v := range m {
		filter[k] = v
	}
	return filter
}

// List returns one page of documents and the total number matching the filter.
func (c *Collection[T, PT]) List(ctx context.Context, opts ListOptions) ([]T, int64, error) {
	filter := toFilter(opts.Filter)

	total, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}

	cursor, err := c.coll.Find(ctx, filter, findOptions(opts))
	if err != nil {
		return nil, 0, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return docs, total, nil
}

// Get returns the document with the given id or ErrNotFound.
func (c *Collection[T, PT]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c.coll.Name(), id.Hex(), err)
	}
	return &doc, nil
}

// Create inserts doc, assigning its id and timestamps.
func (c *Collection[T, PT]) Create(ctx context.Context, doc *T) error {
	meta := PT(doc).Meta()
	now := c.now().UTC()
	if meta.ID.IsZero() {
		meta.ID = primitive.NewObjectID()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s: %w", c.coll.Name(), err)
	}
	return nil
}

// Update replaces the stored document with doc. The caller carries created_at over.
func (c *Collection[T, PT]) Update(ctx context.Context, id primitive.ObjectID, doc *T) error {
	meta := PT(doc).Meta()
	meta.ID = id
	meta.UpdatedAt = c.now().UTC()

	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s %s: %w", c.coll.Name(), id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document with the given id.
func (c *Collection[T, PT]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.coll.Name(), id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
