package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"campusengage/internal/delivery/http/helpers"
	"campusengage/internal/domain"
)

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// RegistrationReceiptSuccessResponse is the success envelope for POST /events/{eventID}/registrations.
type RegistrationReceiptSuccessResponse struct {
	Data  *domain.RegistrationReceipt `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// RegistrationSuccessResponse is the success envelope for check-in.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// FavoriteData is the state of a favorite after a toggle.
type FavoriteData struct {
	EventID   string `json:"event_id"`
	Favorited bool   `json:"favorited"`
}

// RegisterForEvent godoc
// @Summary Register the current user for an event
// @Description Fails with 409 when the user is already registered or the event is full. The check_in_token in the response is shown only once.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegistrationReceiptSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *AttendeeController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	receipt, err := c.Service.RegisterForEvent(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, receipt)
}

// UnregisterFromEvent godoc
// @Summary Withdraw the current user's registration
// @Tags attendee
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/registrations [delete]
func (c *AttendeeController) UnregisterFromEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.UnregisterFromEvent(r.Context(), eventID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisteredEventListSuccessResponse is the success envelope for GET /registrations/me.
type RegisteredEventListSuccessResponse struct {
	Data  []*domain.RegisteredEvent `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ListMyRegistrations godoc
// @Summary List the current user's registrations
// @Description Each registration with its event, most recent registration first.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RegisteredEventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /registrations/me [get]
func (c *AttendeeController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	regs, err := c.Service.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// ToggleFavorite godoc
// @Summary Toggle an event in the current user's favorites
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=controllers.FavoriteData}
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/favorite [post]
func (c *AttendeeController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	favorited, err := c.Service.ToggleFavorite(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &FavoriteData{EventID: eventID, Favorited: favorited})
}

// CheckInRequest is the request body for POST /registrations/{registrationID}/check-in.
type CheckInRequest struct {
	Token string `json:"token"`
}

// Validate implements helpers.Validator.
func (c *CheckInRequest) Validate() []string {
	c.Token = strings.TrimSpace(c.Token)
	if c.Token == "" {
		return []string{"token is required"}
	}
	return nil
}

// CheckIn godoc
// @Summary Check an attendee in
// @Description The organizer of the event presents the attendee's registration ID and check-in token.
// @Tags organizer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Param body body controllers.CheckInRequest true "Check-in token"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /registrations/{registrationID}/check-in [post]
func (c *AttendeeController) CheckIn(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := helpers.PathUUID(w, r, "registrationID")
	if !ok {
		return
	}
	organizerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.CheckIn(r.Context(), registrationID, organizerID, req.Token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
