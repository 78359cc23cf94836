package utils

import (
	"net/http"

	"github.com/imjustneko/Travel-web/globals"
	"github.com/imjustneko/Travel-web/models"
)

func GetUserIDFromRequest(r *http.Request) string {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// IsAdminFromRequest reports the admin claim of the authenticated caller.
func IsAdminFromRequest(r *http.Request) bool {
	admin, _ := r.Context().Value(globals.IsAdminKey).(bool)
	return admin
}

// ActorFromRequest returns the caller identity attached by the auth
// middleware.
func ActorFromRequest(r *http.Request) models.Actor {
	return models.Actor{
		UserID:  GetUserIDFromRequest(r),
		IsAdmin: IsAdminFromRequest(r),
	}
}
