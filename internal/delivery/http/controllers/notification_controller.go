package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"eventteams/internal/delivery/http/helpers"
	"eventteams/internal/domain"
)

// BroadcastRequest is the request body for POST /notifications.
type BroadcastRequest struct {
	UserIDs []string `json:"user_ids"`
	Message string   `json:"message"`
	Link    *string  `json:"link"`
}

func (b BroadcastRequest) Validate() []string {
	var errs []string
	if len(b.UserIDs) == 0 {
		errs = append(errs, "user_ids must not be empty")
	}
	if strings.TrimSpace(b.Message) == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// BroadcastResponse is the data payload for POST /notifications (202).
type BroadcastResponse struct {
	Queued int `json:"queued"`
}

// NotificationSuccessResponse is the success response envelope for single-notification endpoints.
type NotificationSuccessResponse struct {
	Data  *domain.Notification `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListNotificationsSuccessResponse is the success response envelope for GET /me/notifications (200).
type ListNotificationsSuccessResponse struct {
	Data  []*domain.Notification `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
	access  access
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService, users domain.UserDirectory) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
		access:  access{logger: logger, users: users},
	}
}

// ListMyNotifications godoc
// @Summary List the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} controllers.ListNotificationsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /me/notifications [get]
func (c *NotificationController) ListMyNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return
	}
	unreadOnly := false
	if s := r.URL.Query().Get("unread"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unread must be a boolean")
			return
		}
		unreadOnly = v
	}
	notifications, err := c.Service.ListForUser(r.Context(), callerID, unreadOnly)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, notifications)
}

// owned loads the notification and writes 403 unless the caller owns it or is an admin.
func (c *NotificationController) owned(w http.ResponseWriter, r *http.Request) (*domain.Notification, bool) {
	id, ok := pathParam(w, r, "notificationID")
	if !ok {
		return nil, false
	}
	callerID, ok := c.access.caller(w, r)
	if !ok {
		return nil, false
	}
	n, err := c.Service.Get(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return nil, false
	}
	if n.UserID != callerID {
		admin, ok := c.access.isAdmin(w, r, callerID)
		if !ok {
			return nil, false
		}
		if !admin {
			forbidden(w, "not your notification")
			return nil, false
		}
	}
	return n, true
}

// GetNotification godoc
// @Summary Get a notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.NotificationSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID} [get]
func (c *NotificationController) GetNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := c.owned(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.NotificationSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID}/read [put]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, ok := c.owned(w, r)
	if !ok {
		return
	}
	read, err := c.Service.MarkRead(r.Context(), n.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, read)
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.StatusResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID} [delete]
func (c *NotificationController) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := c.owned(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), n.ID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// Broadcast godoc
// @Summary Send a GENERAL notification to users
// @Description Admin only. Delivery is asynchronous; queued counts distinct recipients.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BroadcastRequest true "Recipients and message"
// @Success 202 {object} controllers.BroadcastResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /notifications [post]
func (c *NotificationController) Broadcast(w http.ResponseWriter, r *http.Request) {
	adminID, ok := c.access.requireAdmin(w, r)
	if !ok {
		return
	}
	var req BroadcastRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	queued, err := c.Service.Broadcast(r.Context(), req.UserIDs, &adminID, req.Message, req.Link)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusAccepted, BroadcastResponse{Queued: queued})
}
