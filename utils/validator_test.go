package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Status string `json:"status" validate:"oneof=draft live"`
	Count  int    `json:"count" validate:"gte=0,lte=10"`
	Links  struct {
		Site string `json:"site" validate:"omitempty,url"`
	} `json:"links"`
}

func TestValidateStruct(t *testing.T) {
	ok := sampleForm{Name: "Stage", Status: "live", Count: 3}
	require.NoError(t, ValidateStruct(&ok))

	bad := sampleForm{Email: "nope", Status: "gone", Count: 11}
	bad.Links.Site = "not a url"

	err := ValidateStruct(&bad)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, map[string]string{
		"name":       "is required",
		"email":      "must be a valid email address",
		"status":     "must be one of: draft live",
		"count":      "must be less than or equal to 10",
		"links.site": "must be a valid URL",
	}, ve.Fields)
	assert.True(t, strings.HasPrefix(ve.Error(), "validation failed: count: "))

	assert.Error(t, ValidateStruct("not a struct"))
}

func TestRespondValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	var log strings.Builder
	RespondValidationError(rec, &log, &ValidationError{Fields: map[string]string{"name": "is required"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"validation failed","fields":{"name":"is required"}}`, rec.Body.String())
	assert.Contains(t, log.String(), "name: is required")
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(LatencyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
