// Package controllers holds the HTTP handlers. Every handler answers with the helpers.APIResponse
// envelope and maps service errors through helpers.WriteServiceError.
package controllers

import (
	"net/http"

	"campusengage/internal/delivery/http/helpers"
	"campusengage/internal/delivery/http/middleware"
)

// currentUser returns the authenticated user ID or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
