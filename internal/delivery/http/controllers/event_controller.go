package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventteams/internal/delivery/http/helpers"
	"eventteams/internal/domain"
)

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
// PUT replaces every field; omitted optional fields are cleared.
type EventRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	DescriptionSummary *string    `json:"description_summary"`
	Location           *string    `json:"location"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	RegistrationStart  *time.Time `json:"registration_start"`
	RegistrationEnd    *time.Time `json:"registration_end"`
	MaxParticipants    *int       `json:"max_participants"`
	AllowTeams         bool       `json:"allow_teams"`
	MaxTeamSize        *int       `json:"max_team_size"`
	ExternalLink       *string    `json:"external_link"`
}

// Validate implements Validator. Date ordering and caps are checked by the service.
func (e EventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, "title is required")
	}
	if !e.AllowTeams && e.MaxTeamSize != nil {
		errs = append(errs, "max_team_size requires allow_teams")
	}
	return errs
}

func (e EventRequest) toEvent(id string) *domain.Event {
	return &domain.Event{
		ID:                 id,
		Title:              strings.TrimSpace(e.Title),
		Description:        e.Description,
		DescriptionSummary: e.DescriptionSummary,
		Location:           e.Location,
		StartDate:          e.StartDate,
		EndDate:            e.EndDate,
		RegistrationStart:  e.RegistrationStart,
		RegistrationEnd:    e.RegistrationEnd,
		MaxParticipants:    e.MaxParticipants,
		AllowTeams:         e.AllowTeams,
		MaxTeamSize:        e.MaxTeamSize,
		ExternalLink:       e.ExternalLink,
	}
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.EventDetails `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	access  access
}

func NewEventController(logger *slog.Logger, svc domain.EventService, users domain.UserDirectory) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		access:  access{logger: logger, users: users},
	}
}

// ListEvents godoc
// @Summary List events
// @Description Returns every event with its current participant count, oldest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Admin only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.access.requireAdmin(w, r); !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := req.toEvent("")
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, &domain.EventDetails{Event: *event})
}

// UpdateEvent godoc
// @Summary Replace an event's details
// @Description Admin only. Caps may not drop below what the event already holds (409).
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body EventRequest true "Event data"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	if _, ok := c.access.requireAdmin(w, r); !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	details, err := c.Service.UpdateEvent(r.Context(), req.toEvent(eventID))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Admin only. Removes the event's teams, participants and invitations.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.StatusResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	if _, ok := c.access.requireAdmin(w, r); !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}
