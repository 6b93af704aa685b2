package controllers

import (
	"log/slog"
	"net/http"

	"eventteams/internal/delivery/http/helpers"
	"eventteams/internal/delivery/http/middleware"
	"eventteams/internal/domain"
)

// access makes the authorization decisions the engines leave to the transport.
type access struct {
	logger *slog.Logger
	users  domain.UserDirectory
}

// caller returns the authenticated user or writes 401.
func (a access) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// isAdmin writes a 500 and returns ok=false when the directory cannot answer.
func (a access) isAdmin(w http.ResponseWriter, r *http.Request, userID string) (admin, ok bool) {
	admin, err := a.users.IsAdmin(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, a.logger, err)
		return false, false
	}
	return admin, true
}

// requireAdmin resolves the caller and writes 401/403 unless they are an admin.
func (a access) requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := a.caller(w, r)
	if !ok {
		return "", false
	}
	admin, ok := a.isAdmin(w, r, userID)
	if !ok {
		return "", false
	}
	if !admin {
		forbidden(w, "admin role required")
		return "", false
	}
	return userID, true
}

func forbidden(w http.ResponseWriter, message string) {
	helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, message)
}

// pathParam reads a path value or writes 400 when it is empty.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	return v, true
}

// StatusResponse is the data payload for operations that return no entity.
type StatusResponse struct {
	Status string `json:"status"`
}

// teamRole is the caller's standing towards one team.
type teamRole struct {
	admin  bool
	leader bool
	member bool
}

func hasMember(team *domain.TeamDetails, userID string) bool {
	for _, m := range team.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// team loads the team and the caller's role in it. A missing team is written as 404.
func (a access) team(w http.ResponseWriter, r *http.Request, teams domain.TeamService, teamID, callerID string) (*domain.TeamDetails, teamRole, bool) {
	team, err := teams.GetTeam(r.Context(), teamID)
	if err != nil {
		helpers.WriteServiceError(w, r, a.logger, err)
		return nil, teamRole{}, false
	}
	admin, ok := a.isAdmin(w, r, callerID)
	if !ok {
		return nil, teamRole{}, false
	}
	return team, teamRole{
		admin:  admin,
		leader: team.LeaderID == callerID,
		member: hasMember(team, callerID),
	}, true
}
