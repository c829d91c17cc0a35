package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const adminIDKey contextKey = "admin_id"

// RequireAdmin rejects requests without a valid admin bearer token and stores the
// admin id in the request context.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			utils.RespondError(w, nil, "Authorization token is required", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			utils.RespondError(w, nil, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		id, err := primitive.ObjectIDFromHex(claims.AdminID)
		if err != nil {
			utils.RespondError(w, nil, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		if _, err := s.Store.Admins.FindByID(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, nil, "Admin account no longer exists", http.StatusUnauthorized)
				return
			}
			utils.RespondError(w, nil, "Database error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), adminIDKey, claims.AdminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// GetAdminIDFromContext returns the id stored by RequireAdmin.
func GetAdminIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(adminIDKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("admin id not found in context")
	}
	return id, nil
}
