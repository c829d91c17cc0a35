// Package storetest provides in-memory implementations of the store repositories for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-memory store.Repository. Documents are copied through bson on every
// read and write, so callers see the same field names, precision and aliasing rules
// as with the Mongo collection.
type Memory[T any, PT models.Doc[T]] struct {
	mu   sync.Mutex
	docs []T

	// Err, when set, is returned by every call.
	Err error
	Now func() time.Time
}

// NewMemory returns an empty repository.
func NewMemory[T any, PT models.Doc[T]]() *Memory[T, PT] {
	return &Memory[T, PT]{Now: time.Now}
}

func (m *Memory[T, PT]) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

func (m *Memory[T, PT]) index(id primitive.ObjectID) int {
	for i := range m.docs {
		if PT(&m.docs[i]).Meta().ID == id {
			return i
		}
	}
	return -1
}

// All returns a copy of every stored document in insertion order.
func (m *Memory[T, PT]) All() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.docs))
	for i := range m.docs {
		out = append(out, clone(&m.docs[i]))
	}
	return out
}

func clone[T any](doc *T) T {
	var out T
	data, err := bson.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("storetest: marshal %T: %v", doc, err))
	}
	if err := bson.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("storetest: unmarshal %T: %v", doc, err))
	}
	return out
}

func (m *Memory[T, PT]) List(ctx context.Context, opts store.ListOptions) ([]T, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}

	type row struct {
		doc T
		raw bson.M
	}
	var rows []row
	for _, d := range m.docs {
		raw, err := toBSON(&d)
		if err != nil {
			return nil, 0, err
		}
		if matches(raw, opts.Filter) {
			rows = append(rows, row{doc: clone(&d), raw: raw})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range opts.Sort {
			c := compare(rows[i].raw[s.Key], rows[j].raw[s.Key])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	total := int64(len(rows))
	if opts.Limit > 0 {
		skip := opts.Skip()
		if skip > len(rows) {
			skip = len(rows)
		}
		end := skip + opts.Limit
		if end > len(rows) {
			end = len(rows)
		}
		rows = rows[skip:end]
	}

	docs := make([]T, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.doc)
	}
	return docs, total, nil
}

func (m *Memory[T, PT]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i := m.index(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	doc := clone(&m.docs[i])
	return &doc, nil
}

func (m *Memory[T, PT]) Create(ctx context.Context, doc *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	meta := PT(doc).Meta()
	now := m.now()
	if meta.ID.IsZero() {
		meta.ID = primitive.NewObjectID()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	m.docs = append(m.docs, clone(doc))
	return nil
}

func (m *Memory[T, PT]) Update(ctx context.Context, id primitive.ObjectID, doc *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	i := m.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	meta := PT(doc).Meta()
	meta.ID = id
	meta.UpdatedAt = m.now()
	m.docs[i] = clone(doc)
	return nil
}

func (m *Memory[T, PT]) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	i := m.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return nil
}

func toBSON(doc interface{}) (bson.M, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	raw := bson.M{}
	if err := bson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return raw, nil
}

func matches(raw bson.M, filter map[string]interface{}) bool {
	for k, want := range filter {
		if compare(raw[k], normalize(want)) != 0 {
			return false
		}
	}
	return true
}

// normalize converts a filter value to the type bson.Unmarshal produces for it.
func normalize(v interface{}) interface{} {
	raw, err := toBSON(bson.M{"v": v})
	if err != nil {
		return v
	}
	return raw["v"]
}

// compare orders two bson values; values of different kinds compare by kind name.
func compare(a, b interface{}) int {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(av.Hex(), bv.Hex())
		}
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	if b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
