package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/soundstage-events/backoffice/cache"
	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
	"golang.org/x/oauth2"
)

const (
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

// Server holds the dependencies shared by every handler.
type Server struct {
	Store   *store.Store
	Cache   cache.Cache
	Storage utils.ObjectStorage
	Mailer  utils.Mailer

	// NotifyEmail receives new inquiries and reviews; empty disables notifications.
	NotifyEmail string

	// GoogleOAuth is nil when Google sign-in is not configured.
	GoogleOAuth *oauth2.Config
	UserInfoURL string

	Now func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Server) cache() cache.Cache {
	if s.Cache == nil {
		return cache.Noop{}
	}
	return s.Cache
}

// Router builds the HTTP routes under /api.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", s.LoginHandler).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", s.ForgotPasswordHandler).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", s.ResetPasswordHandler).Methods(http.MethodPost)
	auth.HandleFunc("/google/login", s.GoogleLoginHandler).Methods(http.MethodGet)
	auth.HandleFunc("/google/callback", s.GoogleCallbackHandler).Methods(http.MethodGet)
	auth.Handle("/me", s.RequireAdmin(http.HandlerFunc(s.MeHandler))).Methods(http.MethodGet)

	api.HandleFunc("/feedback-reviews", s.SubmitFeedbackHandler).Methods(http.MethodPost)
	api.HandleFunc("/inquiries", s.InquiryHandler).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.RequireAdmin)
	admin.HandleFunc("/bookings", s.SearchBookingsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/analytics", s.AnalyticsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/import", s.ImportBookingsHandler).Methods(http.MethodPost)
	admin.HandleFunc("/feedback-reviews/{id}/approve", s.ApproveFeedbackHandler).Methods(http.MethodPatch)
	admin.HandleFunc("/uploads", s.UploadHandler).Methods(http.MethodPost)
	admin.HandleFunc("/uploads/remote", s.RemoteUploadHandler).Methods(http.MethodPost)

	st := s.Store
	mount(s, api, admin, &resource[models.About, *models.About]{name: "about", repo: st.About, public: true})
	mount(s, api, admin, &resource[models.Company, *models.Company]{name: "company", repo: st.Company, public: true})
	mount(s, api, admin, &resource[models.Package, *models.Package]{
		name: "packages", repo: st.Packages, public: true, sort: byDisplayOrder,
		filter: queryFilter("category"),
	})
	mount(s, api, admin, &resource[models.Equipment, *models.Equipment]{
		name: "equipment", repo: st.Equipment, public: true,
		filter: queryFilter("category"),
	})
	mount(s, api, admin, &resource[models.Event, *models.Event]{
		name: "events", repo: st.Events, public: true,
		filter: boolQueryFilter("featured"),
	})
	mount(s, api, admin, &resource[models.Gallery, *models.Gallery]{
		name: "gallery", repo: st.Gallery, public: true,
		filter: queryFilter("category"),
	})
	mount(s, api, admin, &resource[models.Testimonial, *models.Testimonial]{
		name: "testimonials", repo: st.Testimonials, public: true,
		filter:  fixedFilter("published", true),
		visible: func(t *models.Testimonial) bool { return t.Published },
	})
	mount(s, api, admin, &resource[models.FAQ, *models.FAQ]{
		name: "faqs", repo: st.FAQs, public: true, sort: byDisplayOrder,
		filter: queryFilter("category"),
	})
	mount(s, api, admin, &resource[models.Vlog, *models.Vlog]{
		name: "vlogs", repo: st.Vlogs, public: true,
		filter: boolQueryFilter("featured"),
	})
	mount(s, api, admin, &resource[models.FeedbackReview, *models.FeedbackReview]{
		name: "feedback-reviews", repo: st.FeedbackReviews, public: true,
		filter:  fixedFilter("approved", true),
		visible: func(f *models.FeedbackReview) bool { return f.Approved },
	})
	mount(s, api, admin, &resource[models.EventBooking, *models.EventBooking]{
		name: "bookings", repo: st.Bookings, customAdminList: true,
	})

	return r
}

// HealthHandler reports whether the API and its database are reachable.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if s.Store.Ping == nil {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// notify emails the company inbox; failures are only logged.
func (s *Server) notify(logMessageBuilder *strings.Builder, subject, text, html string) {
	if s.Mailer == nil || s.NotifyEmail == "" {
		return
	}
	if err := s.Mailer.SendEmail("", s.NotifyEmail, subject, text, html); err != nil {
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Failed to send notification: %v", err))
		return
	}
	utils.AddToLogMessage(logMessageBuilder, "Notification sent")
}
