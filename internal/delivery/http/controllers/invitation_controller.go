package controllers

import (
	"log/slog"
	"net/http"

	"eventteams/internal/delivery/http/helpers"
	"eventteams/internal/domain"
)

// RespondInvitationRequest is the request body for POST /invitations/{invitationID}/respond.
type RespondInvitationRequest struct {
	Accept *bool `json:"accept"`
}

func (r RespondInvitationRequest) Validate() []string {
	if r.Accept == nil {
		return []string{"accept is required"}
	}
	return nil
}

// InvitationSuccessResponse is the success response envelope for single-invitation endpoints.
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListInvitationsSuccessResponse is the success response envelope for invitation lists.
type ListInvitationsSuccessResponse struct {
	Data  []*domain.Invitation `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RespondInvitationResponse is the data payload for POST /invitations/{invitationID}/respond (200).
// Participant is set only when the invitation was accepted.
type RespondInvitationResponse struct {
	Accepted    bool                `json:"accepted"`
	Participant *domain.Participant `json:"participant,omitempty"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
	Teams   domain.TeamService
	access  access
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, teams domain.TeamService, users domain.UserDirectory) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
		Teams:   teams,
		access:  access{logger: logger, users: users},
	}
}

// Invite godoc
// @Summary Invite a user to a team
// @Description Team members and admins may invite. The invitee receives a TEAM_INVITATION notification.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param body body UserRequest true "Invitee"
// @Success 201 {object} controllers.InvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (already a member, unknown user)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already invited)"
// @Router /teams/{teamID}/invitations [post]
func (c *InvitationController) Invite(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathParam(w, r, "teamID")
	if !ok {
		return
	}
	var req UserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return
	}
	team, role, ok := c.access.team(w, r, c.Teams, teamID, callerID)
	if !ok {
		return
	}
	if !role.member && !role.admin {
		forbidden(w, "only team members may invite")
		return
	}
	if hasMember(team, req.UserID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "user is already a member of this team")
		return
	}
	inv, err := c.Service.Invite(r.Context(), team.ID, req.UserID, callerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// GetInvitation godoc
// @Summary Get an invitation
// @Description Visible to the invitee, the team's members and admins.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /invitations/{invitationID} [get]
func (c *InvitationController) GetInvitation(w http.ResponseWriter, r *http.Request) {
	inv, callerID, ok := c.load(w, r)
	if !ok {
		return
	}
	if inv.InvitedID != callerID {
		_, role, ok := c.access.team(w, r, c.Teams, inv.TeamID, callerID)
		if !ok {
			return
		}
		if !role.member && !role.admin {
			forbidden(w, "not allowed to view this invitation")
			return
		}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Respond godoc
// @Summary Accept or decline an invitation
// @Description Invitee or admin. Accepting joins the team; the inviter is notified either way.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Param body body RespondInvitationRequest true "Decision"
// @Success 200 {object} controllers.RespondInvitationResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full or closed)"
// @Router /invitations/{invitationID}/respond [post]
func (c *InvitationController) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, callerID, ok := c.load(w, r)
	if !ok {
		return
	}
	if inv.InvitedID != callerID {
		admin, ok := c.access.isAdmin(w, r, callerID)
		if !ok {
			return
		}
		if !admin {
			forbidden(w, "only the invitee may respond")
			return
		}
	}
	p, err := c.Service.Respond(r.Context(), inv.ID, *req.Accept)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RespondInvitationResponse{Accepted: *req.Accept, Participant: p})
}

// Withdraw godoc
// @Summary Withdraw a pending invitation
// @Description Team members and admins. Nobody is notified.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Success 200 {object} controllers.StatusResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /invitations/{invitationID} [delete]
func (c *InvitationController) Withdraw(w http.ResponseWriter, r *http.Request) {
	inv, callerID, ok := c.load(w, r)
	if !ok {
		return
	}
	_, role, ok := c.access.team(w, r, c.Teams, inv.TeamID, callerID)
	if !ok {
		return
	}
	if !role.member && !role.admin {
		forbidden(w, "only team members may withdraw invitations")
		return
	}
	if err := c.Service.Withdraw(r.Context(), inv.ID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "withdrawn"})
}

// ListMyInvitations godoc
// @Summary List the caller's pending invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListInvitationsSuccessResponse
// @Router /me/invitations [get]
func (c *InvitationController) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return
	}
	invitations, err := c.Service.ListForUser(r.Context(), callerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invitations)
}

// load resolves the caller and the invitation named by the path.
func (c *InvitationController) load(w http.ResponseWriter, r *http.Request) (*domain.Invitation, string, bool) {
	invitationID, ok := pathParam(w, r, "invitationID")
	if !ok {
		return nil, "", false
	}
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return nil, "", false
	}
	inv, err := c.Service.Get(r.Context(), invitationID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return nil, "", false
	}
	return inv, callerID, true
}
