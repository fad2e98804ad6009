package controllers

import (
	"log/slog"
	"net/http"

	"campusengage/internal/delivery/http/helpers"
	"campusengage/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// UpdateCapacityRequest is the request body for PATCH /events/{eventID}/capacity. A null
// capacity removes the limit.
type UpdateCapacityRequest struct {
	Capacity *int `json:"capacity"`
}

// Validate implements helpers.Validator.
func (u UpdateCapacityRequest) Validate() []string {
	if u.Capacity != nil && *u.Capacity < 0 {
		return []string{"capacity must not be negative"}
	}
	return nil
}

// EventSuccessResponse is the success envelope for PATCH /events/{eventID}/capacity.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateCapacity godoc
// @Summary Change an event's capacity
// @Description Organizer only. The new capacity cannot be below the current registration count.
// @Tags organizer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateCapacityRequest true "New capacity (null for unlimited)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/capacity [patch]
func (c *EventController) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	organizerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateCapacityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ev, err := c.Service.UpdateCapacity(r.Context(), eventID, organizerID, req.Capacity)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ev)
}
