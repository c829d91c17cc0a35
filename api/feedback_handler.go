package api

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/soundstage-events/backoffice/cache"
	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
)

// SubmitFeedbackHandler stores a review from the public site. Reviews start unapproved.
func (s *Server) SubmitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Submit Feedback API]")

	var review models.FeedbackReview
	if err := decodeJSON(w, r, &review); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	review.Base = models.Base{}
	review.Approved = false
	review.Name = strings.TrimSpace(review.Name)
	review.Email = strings.ToLower(strings.TrimSpace(review.Email))
	review.Comment = strings.TrimSpace(review.Comment)

	if err := utils.ValidateStruct(&review); err != nil {
		var ve *utils.ValidationError
		if errors.As(err, &ve) {
			utils.RespondValidationError(w, &logMessageBuilder, ve)
			return
		}
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.Store.FeedbackReviews.Create(ctx, &review); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Create failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Error saving feedback", http.StatusInternalServerError)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, "Saved review "+review.ID.Hex())

	s.notify(&logMessageBuilder,
		fmt.Sprintf("New %d-star review from %s", review.Rating, review.Name),
		fmt.Sprintf("%s (%d/5):\n\n%s\n\nApprove it in the admin panel to publish it.", review.Name, review.Rating, review.Comment),
		fmt.Sprintf("<p><strong>%s</strong> (%d/5)</p><blockquote>%s</blockquote><p>Approve it in the admin panel to publish it.</p>",
			html.EscapeString(review.Name), review.Rating, html.EscapeString(review.Comment)),
	)

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Thank you! Your review will appear once approved.",
		"data":    review,
	})
}

type approveRequest struct {
	Approved *bool `json:"approved"`
}

// ApproveFeedbackHandler publishes or hides a review.
func (s *Server) ApproveFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Approve Feedback API]")

	id, err := pathID(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid id", http.StatusBadRequest)
		return
	}

	var req approveRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Approved == nil {
		utils.RespondError(w, &logMessageBuilder, "Request body must contain \"approved\"", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	review, err := s.Store.FeedbackReviews.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, &logMessageBuilder, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Get failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	review.Approved = *req.Approved
	if err := s.Store.FeedbackReviews.Update(ctx, id, review); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Update failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to save data", http.StatusInternalServerError)
		return
	}
	if err := s.cache().InvalidatePrefix(ctx, cache.ResourcePrefix("feedback-reviews")); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Cache invalidation failed: %v", err))
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Review %s approved=%t", id.Hex(), review.Approved))
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"data": review})
}
