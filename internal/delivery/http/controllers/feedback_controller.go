package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"campusengage/internal/delivery/http/helpers"
	"campusengage/internal/domain"
)

const maxCommentLength = 2000

type FeedbackController struct {
	Logger  *slog.Logger
	Service domain.FeedbackService
}

func NewFeedbackController(logger *slog.Logger, svc domain.FeedbackService) *FeedbackController {
	return &FeedbackController{
		Logger:  logger,
		Service: svc,
	}
}

// GiveFeedbackRequest is the request body for POST /events/{eventID}/feedback.
type GiveFeedbackRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// Validate implements helpers.Validator.
func (g *GiveFeedbackRequest) Validate() []string {
	var errs []string
	if g.Rating < 1 || g.Rating > 5 {
		errs = append(errs, "rating must be between 1 and 5")
	}
	if g.Comment != nil {
		trimmed := strings.TrimSpace(*g.Comment)
		switch {
		case trimmed == "":
			g.Comment = nil
		case len(trimmed) > maxCommentLength:
			errs = append(errs, fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
		default:
			g.Comment = &trimmed
		}
	}
	return errs
}

// FeedbackSuccessResponse is the success envelope for POST /events/{eventID}/feedback.
type FeedbackSuccessResponse struct {
	Data  *domain.Feedback  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// FeedbackSummarySuccessResponse is the success envelope for GET /events/{eventID}/feedback/stats.
type FeedbackSummarySuccessResponse struct {
	Data  *domain.FeedbackSummary `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// FeedbackListSuccessResponse is the success envelope for feedback lists.
type FeedbackListSuccessResponse struct {
	Data  []*domain.Feedback `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GiveFeedback godoc
// @Summary Rate an event
// @Description Registered attendees can rate an event once it has started. One rating per user and event.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.GiveFeedbackRequest true "Rating 1-5 and optional comment"
// @Success 201 {object} controllers.FeedbackSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/feedback [post]
func (c *FeedbackController) GiveFeedback(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req GiveFeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	fb, err := c.Service.GiveFeedback(r.Context(), eventID, userID, req.Rating, req.Comment)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, fb)
}

// GetEventSummary godoc
// @Summary Feedback statistics of an event
// @Description Organizer only. Count, average, rating distribution and engagement rate.
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.FeedbackSummarySuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/feedback/stats [get]
func (c *FeedbackController) GetEventSummary(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	organizerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.GetEventSummary(r.Context(), eventID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// ListMyFeedback godoc
// @Summary List the ratings the current user gave
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.FeedbackListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /feedback/me [get]
func (c *FeedbackController) ListMyFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := c.Service.ListMyFeedback(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// ListEventFeedback godoc
// @Summary List every rating of an event
// @Description Organizer only. Newest first.
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.FeedbackListSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/feedback [get]
func (c *FeedbackController) ListEventFeedback(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	organizerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := c.Service.ListEventFeedback(r.Context(), eventID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}
