package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/soundstage-events/backoffice/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubmitFeedback(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/feedback-reviews", map[string]interface{}{
		"name":     "  Carla  ",
		"email":    "Carla@Example.com",
		"rating":   5,
		"comment":  "The <lights> were amazing",
		"approved": true,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored := env.store.FeedbackReviews.All()
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Approved)
	assert.Equal(t, "Carla", stored[0].Name)
	assert.Equal(t, "carla@example.com", stored[0].Email)

	sent := env.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "bookings@soundstage.test", sent[0].ToEmail)
	assert.Contains(t, sent[0].Subject, "5-star")
	assert.Contains(t, sent[0].HTML, "&lt;lights&gt;")

	rec = env.do(t, http.MethodGet, "/api/feedback-reviews", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[listBody[models.FeedbackReview]](t, rec).Data)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		body       map[string]interface{}
		wantFields []string
	}{
		{body: map[string]interface{}{}, wantFields: []string{"name", "rating", "comment"}},
		{body: map[string]interface{}{"name": "A", "rating": 6, "comment": "x"}, wantFields: []string{"rating"}},
		{body: map[string]interface{}{"name": "A", "rating": 4, "comment": "x", "email": "nope"}, wantFields: []string{"email"}},
	}
	for i, tt := range tests {
		rec := env.do(t, http.MethodPost, "/api/feedback-reviews", tt.body, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, "Testcase #%d", i)
		body := decodeBody[struct {
			Fields map[string]string `json:"fields"`
		}](t, rec)
		for _, f := range tt.wantFields {
			assert.Contains(t, body.Fields, f, "Testcase #%d", i)
		}
	}
	assert.Empty(t, env.store.FeedbackReviews.All())
}

func TestSubmitFeedback_MailFailureStillSaves(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errors.New("sendgrid down")

	rec := env.do(t, http.MethodPost, "/api/feedback-reviews", map[string]interface{}{
		"name": "Dan", "rating": 4, "comment": "Solid",
	}, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, env.store.FeedbackReviews.All(), 1)
}

func TestApproveFeedback(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/feedback-reviews", map[string]interface{}{
		"name": "Eli", "rating": 5, "comment": "Perfect",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := env.store.FeedbackReviews.All()[0].ID.Hex()

	// prime the public cache with the empty list
	rec = env.do(t, http.MethodGet, "/api/feedback-reviews", nil, "")
	require.Empty(t, decodeBody[listBody[models.FeedbackReview]](t, rec).Data)

	rec = env.do(t, http.MethodPatch, "/api/admin/feedback-reviews/"+id+"/approve", map[string]bool{"approved": true}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[itemBody[models.FeedbackReview]](t, rec).Data.Approved)

	rec = env.do(t, http.MethodGet, "/api/feedback-reviews", nil, "")
	require.Len(t, decodeBody[listBody[models.FeedbackReview]](t, rec).Data, 1)
	rec = env.do(t, http.MethodGet, "/api/feedback-reviews/"+id, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/feedback-reviews/"+id+"/approve", map[string]bool{"approved": false}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/feedback-reviews/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveFeedback_Errors(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	missing := primitive.NewObjectID().Hex()

	rec := env.do(t, http.MethodPatch, "/api/admin/feedback-reviews/"+missing+"/approve", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/feedback-reviews/"+missing+"/approve", map[string]bool{"approved": true}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/feedback-reviews/bad/approve", map[string]bool{"approved": true}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/feedback-reviews/"+missing+"/approve", map[string]bool{"approved": true}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
