package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventteams/internal/delivery/http/controllers"
	"eventteams/internal/delivery/http/middleware"
	"eventteams/internal/domain"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Events        *controllers.EventController
	Participants  *controllers.ParticipantController
	Teams         *controllers.TeamController
	Invitations   *controllers.InvitationController
	Notifications *controllers.NotificationController
}

// NewRouter initializes the HTTP router with all application routes. Every API route requires a bearer token.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("GET /events", auth(c.Events.ListEvents))
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))

	// Solo participation
	mux.HandleFunc("GET /events/{eventID}/participants", auth(c.Participants.ListParticipants))
	mux.HandleFunc("POST /events/{eventID}/participants", auth(c.Participants.JoinEvent))
	mux.HandleFunc("DELETE /events/{eventID}/participants", auth(c.Participants.LeaveEvent))

	// Teams
	mux.HandleFunc("GET /events/{eventID}/teams", auth(c.Teams.ListTeams))
	mux.HandleFunc("POST /events/{eventID}/teams", auth(c.Teams.CreateTeam))
	mux.HandleFunc("GET /teams/{teamID}", auth(c.Teams.GetTeam))
	mux.HandleFunc("DELETE /teams/{teamID}", auth(c.Teams.DeleteTeam))
	mux.HandleFunc("PUT /teams/{teamID}/name", auth(c.Teams.RenameTeam))
	mux.HandleFunc("PUT /teams/{teamID}/leader", auth(c.Teams.ChangeLeader))
	mux.HandleFunc("POST /teams/{teamID}/members", auth(c.Teams.AddMember))
	mux.HandleFunc("DELETE /teams/{teamID}/members/{userID}", auth(c.Teams.RemoveMember))
	mux.HandleFunc("GET /teams/{teamID}/invitations", auth(c.Teams.ListTeamInvitations))

	// Invitations
	mux.HandleFunc("POST /teams/{teamID}/invitations", auth(c.Invitations.Invite))
	mux.HandleFunc("GET /invitations/{invitationID}", auth(c.Invitations.GetInvitation))
	mux.HandleFunc("POST /invitations/{invitationID}/respond", auth(c.Invitations.Respond))
	mux.HandleFunc("DELETE /invitations/{invitationID}", auth(c.Invitations.Withdraw))
	mux.HandleFunc("GET /me/invitations", auth(c.Invitations.ListMyInvitations))

	// Notifications
	mux.HandleFunc("GET /me/notifications", auth(c.Notifications.ListMyNotifications))
	mux.HandleFunc("POST /notifications", auth(c.Notifications.Broadcast))
	mux.HandleFunc("GET /notifications/{notificationID}", auth(c.Notifications.GetNotification))
	mux.HandleFunc("PUT /notifications/{notificationID}/read", auth(c.Notifications.MarkRead))
	mux.HandleFunc("DELETE /notifications/{notificationID}", auth(c.Notifications.DeleteNotification))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
