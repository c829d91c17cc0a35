package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/soundstage-events/backoffice/config"
	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "oauth_state"
	googleUserInfo   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleOAuthConfig builds the OAuth2 client from configuration. It returns nil when
// Google sign-in is not configured.
func GoogleOAuthConfig() *oauth2.Config {
	if config.GoogleClientID == "" || config.GoogleClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		RedirectURL:  config.GoogleRedirectURL,
		ClientID:     config.GoogleClientID,
		ClientSecret: config.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

type googleUser struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// GoogleLoginHandler handles the login request by redirecting to Google
func (s *Server) GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Google Login API]")

	if s.GoogleOAuth == nil {
		utils.RespondError(w, &logMessageBuilder, "Google sign-in is not configured", http.StatusServiceUnavailable)
		return
	}

	state, err := utils.RandomState()
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, err.Error())
		utils.RespondError(w, &logMessageBuilder, "Failed to start sign-in", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	utils.AddToLogMessage(&logMessageBuilder, "Redirecting to Google Auth")
	http.Redirect(w, r, s.GoogleOAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallbackHandler handles the callback from Google. Only emails registered as
// admins, or listed in ADMIN_EMAILS, may sign in.
func (s *Server) GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Google Callback API]")

	if s.GoogleOAuth == nil {
		utils.RespondError(w, &logMessageBuilder, "Google sign-in is not configured", http.StatusServiceUnavailable)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || r.FormValue("state") != cookie.Value {
		utils.RespondError(w, &logMessageBuilder, "State invalid", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/api/auth/google", MaxAge: -1})

	code := r.FormValue("code")
	if code == "" {
		utils.RespondError(w, &logMessageBuilder, "Code not found", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	token, err := s.GoogleOAuth.Exchange(ctx, code)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to exchange token: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to exchange token", http.StatusBadGateway)
		return
	}

	user, err := s.fetchGoogleUser(ctx, token)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to get user info: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to get user info", http.StatusBadGateway)
		return
	}
	if user.Email == "" || !user.VerifiedEmail {
		utils.RespondError(w, &logMessageBuilder, "Google account email is not verified", http.StatusForbidden)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, "Successfully retrieved user info from Google")

	admin, err := s.Store.Admins.FindByEmail(ctx, user.Email)
	switch {
	case errors.Is(err, store.ErrNotFound) && config.IsAdminEmail(user.Email):
		admin = &models.Admin{Email: user.Email, Name: user.Name}
		if err := s.Store.Admins.Create(ctx, admin); err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to create admin: %v", err))
			utils.RespondError(w, &logMessageBuilder, "Database error", http.StatusInternalServerError)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, "Created admin from allowlist: "+admin.Email)
	case errors.Is(err, store.ErrNotFound):
		utils.AddToLogMessage(&logMessageBuilder, "Not an admin: "+user.Email)
		utils.RespondError(w, &logMessageBuilder, "This Google account is not an admin", http.StatusForbidden)
		return
	case err != nil:
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Database error: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Database error", http.StatusInternalServerError)
		return
	}

	resp, err := s.issueToken(ctx, &logMessageBuilder, admin)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to generate token: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (s *Server) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	userInfoURL := s.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfo
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.GoogleOAuth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %s", resp.Status)
	}
	var user googleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &user, nil
}
