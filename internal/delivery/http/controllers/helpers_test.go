package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campusengage/internal/delivery/http/helpers"
	"campusengage/internal/delivery/http/middleware"

	"github.com/stretchr/testify/require"
)

const (
	testEventID        = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testNotificationID = "0b6f3c52-2d0e-4f7b-9d25-5a1e6f2b9c10"
	testRegistrationID = "e3b0c442-98fc-4c14-9afb-f4c8996fb924"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// serve routes a single request through a ServeMux so that path values are populated. An empty
// userID sends the request unauthenticated.
func serve(pattern string, handler http.HandlerFunc, method, target, body, userID string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and returns its data re-decoded into dest (when non-nil).
func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if dest != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return raw.Error
}
