package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Validate(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   Event
		wantErr string
	}{
		{name: "valid minimal", event: Event{Title: "Hackathon"}},
		{name: "missing title", event: Event{Title: "  "}, wantErr: "title is required"},
		{
			name:    "end before start",
			event:   Event{Title: "x", StartDate: timePtr(now), EndDate: timePtr(now.Add(-time.Hour))},
			wantErr: "end_date must not be before start_date",
		},
		{
			name:    "registration end before start",
			event:   Event{Title: "x", RegistrationStart: timePtr(now), RegistrationEnd: timePtr(now.Add(-time.Hour))},
			wantErr: "registration_end must not be before registration_start",
		},
		{name: "zero participant cap", event: Event{Title: "x", MaxParticipants: intPtr(0)}, wantErr: "max_participants"},
		{name: "zero team size", event: Event{Title: "x", AllowTeams: true, MaxTeamSize: intPtr(0)}, wantErr: "max_team_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrBadRequest)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNotificationType_Valid(t *testing.T) {
	assert.True(t, NotificationTeamKick.Valid())
	assert.True(t, NotificationGeneral.Valid())
	assert.False(t, NotificationType("SOMETHING").Valid())
}
