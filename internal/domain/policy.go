package domain

import "time"

// Capacity and registration-window predicates. They are pure and must be evaluated
// against state read inside the same atomic unit as the mutation they guard.

// EventIsFull reports whether the event has reached its participant cap.
// An event without a cap is never full.
func EventIsFull(event *Event, currentParticipants int) bool {
	return event.MaxParticipants != nil && currentParticipants >= *event.MaxParticipants
}

// InRegistrationWindow reports whether now lies within [RegistrationStart, RegistrationEnd].
// It is false when either bound is absent.
func InRegistrationWindow(event *Event, now time.Time) bool {
	if event.RegistrationStart == nil || event.RegistrationEnd == nil {
		return false
	}
	return !now.Before(*event.RegistrationStart) && !now.After(*event.RegistrationEnd)
}

// TeamIsFull reports whether a team of the given event has reached the event's team size cap.
func TeamIsFull(event *Event, currentMembers int) bool {
	return event.MaxTeamSize != nil && currentMembers >= *event.MaxTeamSize
}

// EventAllowsTeams mirrors Event.AllowTeams.
func EventAllowsTeams(event *Event) bool {
	return event.AllowTeams
}
