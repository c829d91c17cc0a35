package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/soundstage-events/backoffice/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPublicList_PaginationAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, p := range []models.Package{
		{Name: "Premium", DisplayOrder: 3},
		{Name: "Basic", DisplayOrder: 1},
		{Name: "Standard", DisplayOrder: 2},
	} {
		p := p
		require.NoError(t, env.store.Packages.Create(ctx, &p))
	}

	tests := []struct {
		path      string
		wantNames []string
		wantMeta  PageMeta
	}{
		{
			path:      "/api/packages",
			wantNames: []string{"Basic", "Standard", "Premium"},
			wantMeta:  PageMeta{Page: 1, Limit: 20, TotalRecords: 3, TotalPages: 1},
		},
		{
			path:      "/api/packages?limit=2",
			wantNames: []string{"Basic", "Standard"},
			wantMeta:  PageMeta{Page: 1, Limit: 2, TotalRecords: 3, TotalPages: 2},
		},
		{
			path:      "/api/packages?limit=2&page=2",
			wantNames: []string{"Premium"},
			wantMeta:  PageMeta{Page: 2, Limit: 2, TotalRecords: 3, TotalPages: 2},
		},
		{
			path:      "/api/packages?limit=500&page=-1",
			wantNames: []string{"Basic", "Standard", "Premium"},
			wantMeta:  PageMeta{Page: 1, Limit: 100, TotalRecords: 3, TotalPages: 1},
		},
		{
			path:      "/api/packages?page=9",
			wantNames: []string{},
			wantMeta:  PageMeta{Page: 9, Limit: 20, TotalRecords: 3, TotalPages: 1},
		},
		{
			path:      "/api/packages?page=100000000000000000&limit=100",
			wantNames: []string{},
			wantMeta:  PageMeta{Page: maxPage, Limit: 100, TotalRecords: 3, TotalPages: 1},
		},
	}
	for i, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, "Testcase #%d", i)

			body := decodeBody[listBody[models.Package]](t, rec)
			names := []string{}
			for _, p := range body.Data {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names, "Testcase #%d", i)
			assert.Equal(t, tt.wantMeta, body.Meta, "Testcase #%d", i)
		})
	}
}

func TestPublicList_EmptyDataIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/faqs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"page":1,"limit":20,"total_records":0,"total_pages":0}}`, rec.Body.String())
}

func TestPublic_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.adminToken(t)

	shown := models.Testimonial{Name: "Ana", Message: "Great sound!", Published: true}
	hidden := models.Testimonial{Name: "Ben", Message: "Draft"}
	require.NoError(t, env.store.Testimonials.Create(ctx, &shown))
	require.NoError(t, env.store.Testimonials.Create(ctx, &hidden))

	rec := env.do(t, http.MethodGet, "/api/testimonials", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[listBody[models.Testimonial]](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Ana", body.Data[0].Name)

	rec = env.do(t, http.MethodGet, "/api/testimonials/"+hidden.ID.Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/testimonials/"+shown.ID.Hex(), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/testimonials", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[listBody[models.Testimonial]](t, rec).Data, 2)

	rec = env.do(t, http.MethodGet, "/api/admin/testimonials/"+hidden.ID.Hex(), nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicList_QueryFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Equipment.Create(ctx, &models.Equipment{Name: "Line array", Category: "speakers"}))
	require.NoError(t, env.store.Equipment.Create(ctx, &models.Equipment{Name: "Moving head", Category: "lights"}))
	require.NoError(t, env.store.Events.Create(ctx, &models.Event{Title: "Wedding", Featured: true}))
	require.NoError(t, env.store.Events.Create(ctx, &models.Event{Title: "Debut"}))

	rec := env.do(t, http.MethodGet, "/api/equipment?category=lights", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	equipment := decodeBody[listBody[models.Equipment]](t, rec).Data
	require.Len(t, equipment, 1)
	assert.Equal(t, "Moving head", equipment[0].Name)

	rec = env.do(t, http.MethodGet, "/api/events?featured=true", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeBody[listBody[models.Event]](t, rec).Data
	require.Len(t, events, 1)
	assert.Equal(t, "Wedding", events[0].Title)

	rec = env.do(t, http.MethodGet, "/api/events", nil, "")
	assert.Len(t, decodeBody[listBody[models.Event]](t, rec).Data, 2)
}

func TestPublicGet_BadAndMissingID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/packages/not-an-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/packages/"+primitive.NewObjectID().Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestPublic_ResolvesImageKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := models.Event{Title: "Concert", Images: []string{"uploads/events/a.jpg", "https://img.example.com/b.jpg"}}
	require.NoError(t, env.store.Events.Create(ctx, &event))

	rec := env.do(t, http.MethodGet, "/api/events/"+event.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[itemBody[models.Event]](t, rec).Data
	assert.Equal(t, []string{"https://cdn.test/uploads/events/a.jpg", "https://img.example.com/b.jpg"}, got.Images)

	stored := env.store.Events.All()[0]
	assert.Equal(t, "uploads/events/a.jpg", stored.Images[0])
}

func TestPublicList_CacheAndInvalidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	require.NoError(t, env.store.FAQs.Create(context.Background(), &models.FAQ{Question: "Q1?", Answer: "A1"}))

	rec := env.do(t, http.MethodGet, "/api/faqs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = env.do(t, http.MethodGet, "/api/faqs", nil, "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Len(t, decodeBody[listBody[models.FAQ]](t, rec).Data, 1)

	rec = env.do(t, http.MethodPost, "/api/admin/faqs", map[string]interface{}{"question": "Q2?", "answer": "A2"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, env.cache.len())

	rec = env.do(t, http.MethodGet, "/api/faqs", nil, "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Len(t, decodeBody[listBody[models.FAQ]](t, rec).Data, 2)
}

func TestAdmin_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing"},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage", header: "Bearer abc.def.ghi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(http.MethodGet, "/api/admin/packages", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(env.handler, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdmin_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/admin/packages", map[string]interface{}{"price": -5}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, map[string]string{
		"name":  "is required",
		"price": "must be greater than or equal to 0",
	}, body.Fields)

	rec = env.do(t, http.MethodPost, "/api/admin/packages", "{not json", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.store.Packages.All())
}

func TestAdmin_CRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/admin/packages", map[string]interface{}{
		"id":         primitive.NewObjectID().Hex(),
		"name":       "Wedding Package",
		"price":      35000,
		"inclusions": []string{"Sound", "Lights"},
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[itemBody[models.Package]](t, rec).Data
	require.False(t, created.ID.IsZero())
	stored := env.store.Packages.All()
	require.Len(t, stored, 1)
	assert.Equal(t, created.ID, stored[0].ID)

	path := "/api/admin/packages/" + created.ID.Hex()
	rec = env.do(t, http.MethodPut, path, map[string]interface{}{
		"name":       "Wedding Package Plus",
		"price":      40000,
		"created_at": "2001-01-01T00:00:00Z",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[itemBody[models.Package]](t, rec).Data
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Wedding Package Plus", updated.Name)
	assert.True(t, updated.CreatedAt.Equal(stored[0].CreatedAt), "created_at must survive updates")
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	rec = env.do(t, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40000.0, decodeBody[itemBody[models.Package]](t, rec).Data.Price)

	rec = env.do(t, http.MethodPut, "/api/admin/packages/"+primitive.NewObjectID().Hex(), map[string]interface{}{"name": "X"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/admin/packages/zzz", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_VlogExcerptDerived(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/admin/vlogs", map[string]interface{}{
		"title":     "Behind the scenes",
		"video_url": "https://youtube.com/watch?v=abc",
		"content":   `<p>Setting up <b>line arrays</b> at dawn.</p><img src="https://img.example.com/setup.jpg">`,
		"excerpt":   "ignored",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vlog := decodeBody[itemBody[models.Vlog]](t, rec).Data
	assert.Equal(t, "Setting up line arrays at dawn.", vlog.Excerpt)
	assert.Equal(t, "https://img.example.com/setup.jpg", vlog.Thumbnail)
}

func TestAdmin_BookingCreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/admin/bookings", map[string]interface{}{
		"client_name":  "Maria Santos",
		"event_date":   "2024-09-14T00:00:00Z",
		"amount":       30000,
		"down_payment": 10000,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decodeBody[itemBody[models.EventBooking]](t, rec).Data
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, models.SourceAdmin, booking.Source)
	require.NotNil(t, booking.Balance)
	assert.Equal(t, 20000.0, *booking.Balance)

	rec = env.do(t, http.MethodPost, "/api/admin/bookings", map[string]interface{}{
		"client_name": "Bad Status",
		"event_date":  "2024-09-14T00:00:00Z",
		"status":      "maybe",
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "status")

	rec = env.do(t, http.MethodGet, "/api/bookings", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())

	env.store.Ping = func(ctx context.Context) error { return assert.AnError }
	rec = env.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
