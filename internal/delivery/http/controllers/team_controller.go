package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventteams/internal/delivery/http/helpers"
	"eventteams/internal/domain"
)

// CreateTeamRequest is the request body for POST /events/{eventID}/teams.
// LeaderID defaults to the caller; naming another leader requires admin.
type CreateTeamRequest struct {
	Name     string `json:"name"`
	LeaderID string `json:"leader_id"`
}

func (c CreateTeamRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// RenameTeamRequest is the request body for PUT /teams/{teamID}/name.
type RenameTeamRequest struct {
	Name string `json:"name"`
}

func (c RenameTeamRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// UserRequest is the request body for endpoints that name a single user.
type UserRequest struct {
	UserID string `json:"user_id"`
}

func (u UserRequest) Validate() []string {
	if strings.TrimSpace(u.UserID) == "" {
		return []string{"user_id is required"}
	}
	return nil
}

// TeamSuccessResponse is the success response envelope for endpoints returning a team with members.
type TeamSuccessResponse struct {
	Data  *domain.TeamDetails `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListTeamsSuccessResponse is the success response envelope for GET /events/{eventID}/teams (200).
type ListTeamsSuccessResponse struct {
	Data  []*domain.TeamDetails `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type TeamController struct {
	Logger  *slog.Logger
	Service domain.TeamService
	access  access
}

func NewTeamController(logger *slog.Logger, svc domain.TeamService, users domain.UserDirectory) *TeamController {
	return &TeamController{
		Logger:  logger,
		Service: svc,
		access:  access{logger: logger, users: users},
	}
}

// leaderOrAdmin loads the team and writes 403 unless the caller leads it or is an admin.
func (c *TeamController) leaderOrAdmin(w http.ResponseWriter, r *http.Request) (*domain.TeamDetails, bool) {
	teamID, ok := pathParam(w, r, "teamID")
	if !ok {
		return nil, false
	}
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return nil, false
	}
	team, role, ok := c.access.team(w, r, c.Service, teamID, callerID)
	if !ok {
		return nil, false
	}
	if !role.leader && !role.admin {
		forbidden(w, "only the team leader may do this")
		return nil, false
	}
	return team, true
}

// ListTeams godoc
// @Summary List an event's teams
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListTeamsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event does not allow teams)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/teams [get]
func (c *TeamController) ListTeams(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	teams, err := c.Service.ListTeamsByEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, teams)
}

// CreateTeam godoc
// @Summary Create a team
// @Description The caller (or, for admins, leader_id) becomes leader and first member.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body CreateTeamRequest true "Team name"
// @Success 201 {object} controllers.TeamSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/teams [post]
func (c *TeamController) CreateTeam(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateTeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return
	}
	leaderID := callerID
	if req.LeaderID != "" && req.LeaderID != callerID {
		admin, ok := c.access.isAdmin(w, r, callerID)
		if !ok {
			return
		}
		if !admin {
			forbidden(w, "only admins may create a team for another user")
			return
		}
		leaderID = req.LeaderID
	}
	team, err := c.Service.CreateTeam(r.Context(), eventID, leaderID, req.Name)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, team)
}

// GetTeam godoc
// @Summary Get a team with its members and pending invitations
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Success 200 {object} controllers.TeamSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /teams/{teamID} [get]
func (c *TeamController) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathParam(w, r, "teamID")
	if !ok {
		return
	}
	team, err := c.Service.GetTeam(r.Context(), teamID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, team)
}

// DeleteTeam godoc
// @Summary Disband a team
// @Description Leader or admin. Members return to unregistered; pending invitations are dropped.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Success 200 {object} controllers.StatusResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /teams/{teamID} [delete]
func (c *TeamController) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	team, ok := c.leaderOrAdmin(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteTeam(r.Context(), team.ID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// RenameTeam godoc
// @Summary Rename a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param body body RenameTeamRequest true "New name"
// @Success 200 {object} domain.Team
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name taken)"
// @Router /teams/{teamID}/name [put]
func (c *TeamController) RenameTeam(w http.ResponseWriter, r *http.Request) {
	var req RenameTeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	team, ok := c.leaderOrAdmin(w, r)
	if !ok {
		return
	}
	renamed, err := c.Service.RenameTeam(r.Context(), team.ID, req.Name)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, renamed)
}

// ChangeLeader godoc
// @Summary Hand team leadership to another member
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param body body UserRequest true "New leader"
// @Success 200 {object} domain.Team
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not a member)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /teams/{teamID}/leader [put]
func (c *TeamController) ChangeLeader(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	team, ok := c.leaderOrAdmin(w, r)
	if !ok {
		return
	}
	if !hasMember(team, req.UserID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "new leader must be a member of the team")
		return
	}
	updated, err := c.Service.ChangeLeader(r.Context(), team.ID, req.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// AddMember godoc
// @Summary Add a user to a team directly
// @Description Admin only. Clears any pending invitation of the user to this team.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param body body UserRequest true "User to add"
// @Success 201 {object} controllers.ParticipantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /teams/{teamID}/members [post]
func (c *TeamController) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathParam(w, r, "teamID")
	if !ok {
		return
	}
	if _, ok := c.access.requireAdmin(w, r); !ok {
		return
	}
	var req UserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.AddMember(r.Context(), teamID, req.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, p)
}

// RemoveMember godoc
// @Summary Remove a member or leave a team
// @Description Members may remove themselves; the leader or an admin may remove others. A leader removing someone notifies them.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.StatusResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not a member, or the leader)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /teams/{teamID}/members/{userID} [delete]
func (c *TeamController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathParam(w, r, "teamID")
	if !ok {
		return
	}
	userID, ok := pathParam(w, r, "userID")
	if !ok {
		return
	}
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return
	}
	var removedBy *string
	if userID != callerID {
		_, role, ok := c.access.team(w, r, c.Service, teamID, callerID)
		if !ok {
			return
		}
		if !role.leader && !role.admin {
			forbidden(w, "only the team leader may remove other members")
			return
		}
		if role.leader {
			removedBy = &callerID
		}
	}
	if err := c.Service.RemoveMember(r.Context(), teamID, userID, removedBy); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "removed"})
}

// ListTeamInvitations godoc
// @Summary List a team's pending invitations
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID"
// @Success 200 {object} controllers.ListInvitationsSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /teams/{teamID}/invitations [get]
func (c *TeamController) ListTeamInvitations(w http.ResponseWriter, r *http.Request) {
	team, ok := c.leaderOrAdmin(w, r)
	if !ok {
		return
	}
	invitations, err := c.Service.ListInvitations(r.Context(), team.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invitations)
}
