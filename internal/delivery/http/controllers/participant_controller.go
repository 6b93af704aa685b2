package controllers

import (
	"log/slog"
	"net/http"

	"eventteams/internal/delivery/http/helpers"
	"eventteams/internal/domain"
)

// JoinEventRequest is the optional request body for POST /events/{eventID}/participants.
// Only admins may name another user; doing so ignores the registration window.
type JoinEventRequest struct {
	UserID string `json:"user_id"`
}

// ParticipantSuccessResponse is the success response envelope for POST /events/{eventID}/participants (201).
type ParticipantSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListParticipantsSuccessResponse is the success response envelope for GET /events/{eventID}/participants (200).
type ListParticipantsSuccessResponse struct {
	Data  []*domain.Participant `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type ParticipantController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
	access  access
}

func NewParticipantController(logger *slog.Logger, svc domain.RegistrationService, users domain.UserDirectory) *ParticipantController {
	return &ParticipantController{
		Logger:  logger,
		Service: svc,
		access:  access{logger: logger, users: users},
	}
}

// target resolves whose participation the request acts on. Acting for someone else requires admin.
func (c *ParticipantController) target(w http.ResponseWriter, r *http.Request, requested string) (userID string, onBehalf, ok bool) {
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return "", false, false
	}
	if requested == "" || requested == callerID {
		return callerID, false, true
	}
	admin, ok := c.access.isAdmin(w, r, callerID)
	if !ok {
		return "", false, false
	}
	if !admin {
		forbidden(w, "only admins may act for another user")
		return "", false, false
	}
	return requested, true, true
}

// JoinEvent godoc
// @Summary Register for an event without a team
// @Description Registers the caller, or with admin rights the given user_id regardless of the registration window.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body JoinEventRequest false "Target user (admin only)"
// @Success 201 {object} controllers.ParticipantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event uses teams)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full, closed or already registered)"
// @Router /events/{eventID}/participants [post]
func (c *ParticipantController) JoinEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var req JoinEventRequest
	if r.ContentLength != 0 && !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, onBehalf, ok := c.target(w, r, req.UserID)
	if !ok {
		return
	}
	p, err := c.Service.JoinSolo(r.Context(), eventID, userID, onBehalf)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, p)
}

// LeaveEvent godoc
// @Summary Withdraw a solo registration
// @Description Removes the caller, or with admin rights the user given by the user_id query parameter.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param user_id query string false "Target user (admin only)"
// @Success 200 {object} controllers.StatusResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event uses teams)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants [delete]
func (c *ParticipantController) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	userID, _, ok := c.target(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	if err := c.Service.LeaveSolo(r.Context(), eventID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "left"})
}

// ListParticipants godoc
// @Summary List an event's participants
// @Description Admin only.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListParticipantsSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participants [get]
func (c *ParticipantController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	if _, ok := c.access.requireAdmin(w, r); !ok {
		return
	}
	participants, err := c.Service.ListParticipants(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participants)
}
