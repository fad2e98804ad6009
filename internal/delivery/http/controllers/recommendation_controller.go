package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"campusengage/internal/delivery/http/helpers"
	"campusengage/internal/domain"
)

type RecommendationController struct {
	Logger  *slog.Logger
	Service domain.RecommendationService
	now     func() time.Time
}

func NewRecommendationController(logger *slog.Logger, svc domain.RecommendationService) *RecommendationController {
	return &RecommendationController{
		Logger:  logger,
		Service: svc,
		now:     time.Now,
	}
}

// RecommendationsSuccessResponse is the success envelope for GET /recommendations/me.
type RecommendationsSuccessResponse struct {
	Data  []*domain.ScoredEvent `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// GetMyRecommendations godoc
// @Summary Recommended events for the current user
// @Description Ranks upcoming open events by the user's category and unit preferences. Events recommended for the first time also produce an EVENT_RECOMMENDED notification.
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RecommendationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /recommendations/me [get]
func (c *RecommendationController) GetMyRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	recs, err := c.Service.GetRecommendations(r.Context(), userID, c.now())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if recs == nil {
		recs = []*domain.ScoredEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, recs)
}
