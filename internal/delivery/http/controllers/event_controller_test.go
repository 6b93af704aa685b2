package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventteams/internal/delivery/http/helpers"
	"eventteams/internal/delivery/http/middleware"
	"eventteams/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err             error
	lastCreateEvent *domain.Event
	lastUpdateEvent *domain.Event
	lastDeleteID    string
	events          []*domain.EventDetails
}

func (f *fakeEventService) CreateEvent(_ context.Context, e *domain.Event) error {
	f.lastCreateEvent = e
	if f.err != nil {
		return f.err
	}
	e.ID = "event-1"
	return nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, e *domain.Event) (*domain.EventDetails, error) {
	f.lastUpdateEvent = e
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EventDetails{Event: *e, CurrentParticipants: 3}, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id string) error {
	f.lastDeleteID = id
	return f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.EventDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EventDetails{Event: domain.Event{ID: id, Title: "Jam"}}, nil
}

func (f *fakeEventService) ListEvents(context.Context) ([]*domain.EventDetails, error) {
	return f.events, f.err
}

// fakeUserDirectory implements domain.UserDirectory for handler tests.
type fakeUserDirectory struct {
	admins map[string]bool
	err    error
}

func (f *fakeUserDirectory) Exists(_ context.Context, userID string) (bool, error) {
	return userID != "", f.err
}

func (f *fakeUserDirectory) IsAdmin(_ context.Context, userID string) (bool, error) {
	return f.admins[userID], f.err
}

func newRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	return envelope
}

func TestEventController_CreateEvent(t *testing.T) {
	users := &fakeUserDirectory{admins: map[string]bool{"admin": true}}

	tests := []struct {
		name       string
		userID     string
		body       string
		svcErr     error
		usersErr   error
		wantStatus int
		wantCode   string
	}{
		{"created", "admin", `{"title":"Jam","max_participants":10}`, nil, nil, http.StatusCreated, ""},
		{"no caller", "", `{"title":"Jam"}`, nil, nil, http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"not admin", "u1", `{"title":"Jam"}`, nil, nil, http.StatusForbidden, helpers.ErrCodeForbidden},
		{"directory down", "admin", `{"title":"Jam"}`, nil, errors.New("db down"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
		{"missing title", "admin", `{"title":" "}`, nil, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"team size without teams", "admin", `{"title":"Jam","max_team_size":3}`, nil, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"unknown field", "admin", `{"title":"Jam","owner":"x"}`, nil, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"service rejects", "admin", `{"title":"Jam"}`, fmt.Errorf("%w: end_date must not be before start_date", domain.ErrBadRequest), nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"service fails", "admin", `{"title":"Jam"}`, errors.New("insert failed"), nil, http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{err: tt.svcErr}
			users.err = tt.usersErr
			c := NewEventController(testLogger, svc, users)
			rr := httptest.NewRecorder()

			c.CreateEvent(rr, newRequest(http.MethodPost, "/events", tt.body, tt.userID))

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decode(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			require.NotNil(t, svc.lastCreateEvent)
			assert.Equal(t, "Jam", svc.lastCreateEvent.Title)
			require.NotNil(t, svc.lastCreateEvent.MaxParticipants)
			assert.Equal(t, 10, *svc.lastCreateEvent.MaxParticipants)
		})
	}
}

func TestEventController_UpdateEventUsesPathID(t *testing.T) {
	svc := &fakeEventService{}
	c := NewEventController(testLogger, svc, &fakeUserDirectory{admins: map[string]bool{"admin": true}})
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	body := `{"id":"ignored","title":"Jam"}`

	rr := httptest.NewRecorder()
	req := newRequest(http.MethodPut, "/events/event-9", body, "admin")
	req.SetPathValue("eventID", "event-9")
	c.UpdateEvent(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code, "id is not an accepted field")

	body = `{"title":"Jam","registration_start":"` + start.Format(time.RFC3339) + `"}`
	rr = httptest.NewRecorder()
	req = newRequest(http.MethodPut, "/events/event-9", body, "admin")
	req.SetPathValue("eventID", "event-9")
	c.UpdateEvent(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, svc.lastUpdateEvent)
	assert.Equal(t, "event-9", svc.lastUpdateEvent.ID)
	require.NotNil(t, svc.lastUpdateEvent.RegistrationStart)
	assert.True(t, start.Equal(*svc.lastUpdateEvent.RegistrationStart))
}

func TestEventController_ErrorMapping(t *testing.T) {
	users := &fakeUserDirectory{admins: map[string]bool{"admin": true}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: event x does not exist", domain.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: event already has 4 participants", domain.ErrConflict), http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEventController(testLogger, &fakeEventService{err: tt.err}, users)

			rr := httptest.NewRecorder()
			req := newRequest(http.MethodDelete, "/events/e1", "", "admin")
			req.SetPathValue("eventID", "e1")
			c.DeleteEvent(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)

			rr = httptest.NewRecorder()
			req = newRequest(http.MethodGet, "/events/e1", "", "u1")
			req.SetPathValue("eventID", "e1")
			c.GetEvent(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestEventController_MissingPathValue(t *testing.T) {
	c := NewEventController(testLogger, &fakeEventService{}, &fakeUserDirectory{})
	rr := httptest.NewRecorder()

	c.GetEvent(rr, newRequest(http.MethodGet, "/events/", "", "u1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
