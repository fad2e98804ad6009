package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campusengage/internal/delivery/http/controllers"
	"campusengage/internal/delivery/http/helpers"
	"campusengage/internal/delivery/http/middleware"
	"campusengage/internal/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Recommendations *controllers.RecommendationController
	Notifications   *controllers.NotificationController
	Attendees       *controllers.AttendeeController
	Feedback        *controllers.FeedbackController
	Events          *controllers.EventController
}

// RouterConfig carries the cross-cutting dependencies of the router.
type RouterConfig struct {
	Verifier    domain.TokenVerifier
	Logger      *slog.Logger
	CORSOrigins []string
	// Health reports readiness; nil means always healthy.
	Health func(ctx context.Context) error
}

// HealthData is the data of GET /health.
type HealthData struct {
	Status string `json:"status"`
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	// Recommendations
	mux.HandleFunc("GET /recommendations/me", auth(c.Recommendations.GetMyRecommendations))

	// Notifications
	mux.HandleFunc("GET /notifications/me", auth(c.Notifications.ListMine))
	mux.HandleFunc("GET /notifications/me/unread-count", auth(c.Notifications.UnreadCount))
	mux.HandleFunc("PATCH /notifications/me/read-all", auth(c.Notifications.MarkAllRead))
	mux.HandleFunc("DELETE /notifications/me/all", auth(c.Notifications.DeleteAll))
	mux.HandleFunc("PATCH /notifications/{id}/read", auth(c.Notifications.MarkRead))
	mux.HandleFunc("DELETE /notifications/{id}", auth(c.Notifications.Delete))

	// Attendee
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(c.Attendees.RegisterForEvent))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(c.Attendees.UnregisterFromEvent))
	mux.HandleFunc("POST /events/{eventID}/favorite", auth(c.Attendees.ToggleFavorite))
	mux.HandleFunc("POST /events/{eventID}/feedback", auth(c.Feedback.GiveFeedback))
	mux.HandleFunc("GET /registrations/me", auth(c.Attendees.ListMyRegistrations))
	mux.HandleFunc("GET /feedback/me", auth(c.Feedback.ListMyFeedback))

	// Organizer
	mux.HandleFunc("GET /events/{eventID}/feedback", auth(c.Feedback.ListEventFeedback))
	mux.HandleFunc("GET /events/{eventID}/feedback/stats", auth(c.Feedback.GetEventSummary))
	mux.HandleFunc("PATCH /events/{eventID}/capacity", auth(c.Events.UpdateCapacity))
	mux.HandleFunc("POST /registrations/{registrationID}/check-in", auth(c.Attendees.CheckIn))

	// Ops
	mux.HandleFunc("GET /health", healthHandler(cfg.Health))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.Recover(cfg.Logger, handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	handler = middleware.CORS(cfg.CORSOrigins, handler)
	return handler
}

// healthHandler godoc
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse "error.code: internal_error"
// @Router /health [get]
func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "unhealthy")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, &HealthData{Status: "ok"})
	}
}
