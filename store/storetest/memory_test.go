package storetest

import (
	"context"
	"testing"

	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemory_ListFilterSortPage(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory[models.Package]()
	for _, p := range []models.Package{
		{Name: "Gold", DisplayOrder: 2, Category: "wedding"},
		{Name: "Silver", DisplayOrder: 1, Category: "wedding"},
		{Name: "Party", DisplayOrder: 3, Category: "party"},
	} {
		p := p
		require.NoError(t, repo.Create(ctx, &p))
	}

	docs, total, err := repo.List(ctx, store.ListOptions{
		Filter: map[string]interface{}{"category": "wedding"},
		Sort:   []store.SortField{{Key: "display_order"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, docs, 2)
	assert.Equal(t, "Silver", docs[0].Name)
	assert.Equal(t, "Gold", docs[1].Name)

	docs, total, err = repo.List(ctx, store.ListOptions{
		Sort:  []store.SortField{{Key: "display_order", Desc: true}},
		Page:  2,
		Limit: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "Silver", docs[0].Name)
}

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory[models.FAQ]()

	faq := models.FAQ{Question: "Do you travel?", Answer: "Yes"}
	require.NoError(t, repo.Create(ctx, &faq))
	require.False(t, faq.ID.IsZero())
	assert.False(t, faq.CreatedAt.IsZero())

	faq.Answer = "Anywhere in Luzon"
	require.NoError(t, repo.Update(ctx, faq.ID, &faq))

	got, err := repo.Get(ctx, faq.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anywhere in Luzon", got.Answer)

	require.NoError(t, repo.Delete(ctx, faq.ID))
	_, err = repo.Get(ctx, faq.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, faq.ID), store.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, primitive.NewObjectID(), &faq), store.ErrNotFound)
}

func TestMemory_FilterBool(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory[models.Testimonial]()
	require.NoError(t, repo.Create(ctx, &models.Testimonial{Name: "A", Message: "m", Published: true}))
	require.NoError(t, repo.Create(ctx, &models.Testimonial{Name: "B", Message: "m"}))

	docs, total, err := repo.List(ctx, store.ListOptions{Filter: map[string]interface{}{"published": true}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "A", docs[0].Name)
}
