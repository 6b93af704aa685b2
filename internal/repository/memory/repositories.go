package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"eventteams/internal/domain"
)

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func copyTeam(t *domain.Team) *domain.Team {
	c := *t
	return &c
}

func copyParticipant(p *domain.Participant) *domain.Participant {
	c := *p
	if p.TeamID != nil {
		id := *p.TeamID
		c.TeamID = &id
	}
	return &c
}

func copyInvitation(inv *domain.Invitation) *domain.Invitation {
	c := *inv
	return &c
}

func copyNotification(n *domain.Notification) *domain.Notification {
	c := *n
	return &c
}

type eventRepository struct {
	s *Store
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	defer r.s.lock()()
	e.ID = uuid.NewString()
	r.s.data.events[e.ID] = copyEvent(e)
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	defer r.s.lock()()
	e, ok := r.s.data.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

// Lock is GetByID: the store mutex already serializes atomic units.
func (r *eventRepository) Lock(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	defer r.s.lock()()
	events := make([]*domain.Event, 0, len(r.s.data.events))
	for _, e := range r.s.data.events {
		events = append(events, copyEvent(e))
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	defer r.s.lock()()
	if _, ok := r.s.data.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.events[e.ID] = copyEvent(e)
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.data.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.events, id)
	for tid, t := range r.s.data.teams {
		if t.EventID == id {
			delete(r.s.data.teams, tid)
		}
	}
	for k := range r.s.data.participants {
		if k.eventID == id {
			delete(r.s.data.participants, k)
		}
	}
	for iid, inv := range r.s.data.invitations {
		if inv.EventID == id {
			delete(r.s.data.invitations, iid)
		}
	}
	return nil
}

type teamRepository struct {
	s *Store
}

func (r *teamRepository) nameTaken(eventID, name, exceptID string) bool {
	for _, t := range r.s.data.teams {
		if t.EventID == eventID && t.Name == name && t.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *teamRepository) Create(ctx context.Context, t *domain.Team) error {
	defer r.s.lock()()
	if _, ok := r.s.data.events[t.EventID]; !ok {
		return domain.ErrNotFound
	}
	if r.nameTaken(t.EventID, t.Name, "") {
		return domain.ErrConflict
	}
	t.ID = uuid.NewString()
	r.s.data.teams[t.ID] = copyTeam(t)
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	defer r.s.lock()()
	t, ok := r.s.data.teams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyTeam(t), nil
}

func (r *teamRepository) GetByEventAndName(ctx context.Context, eventID, name string) (*domain.Team, error) {
	defer r.s.lock()()
	for _, t := range r.s.data.teams {
		if t.EventID == eventID && t.Name == name {
			return copyTeam(t), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *teamRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Team, error) {
	defer r.s.lock()()
	teams := make([]*domain.Team, 0)
	for _, t := range r.s.data.teams {
		if t.EventID == eventID {
			teams = append(teams, copyTeam(t))
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].CreatedAt.Before(teams[j].CreatedAt) })
	return teams, nil
}

func (r *teamRepository) UpdateName(ctx context.Context, id, name string) error {
	defer r.s.lock()()
	t, ok := r.s.data.teams[id]
	if !ok {
		return domain.ErrNotFound
	}
	if r.nameTaken(t.EventID, name, id) {
		return domain.ErrConflict
	}
	c := copyTeam(t)
	c.Name = name
	r.s.data.teams[id] = c
	return nil
}

func (r *teamRepository) UpdateLeader(ctx context.Context, id, leaderID string) error {
	defer r.s.lock()()
	t, ok := r.s.data.teams[id]
	if !ok {
		return domain.ErrNotFound
	}
	c := copyTeam(t)
	c.LeaderID = leaderID
	r.s.data.teams[id] = c
	return nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.data.teams[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.teams, id)
	for k, p := range r.s.data.participants {
		if p.TeamID != nil && *p.TeamID == id {
			delete(r.s.data.participants, k)
		}
	}
	for iid, inv := range r.s.data.invitations {
		if inv.TeamID == id {
			delete(r.s.data.invitations, iid)
		}
	}
	return nil
}

type participantRepository struct {
	s *Store
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	defer r.s.lock()()
	if _, ok := r.s.data.events[p.EventID]; !ok {
		return domain.ErrNotFound
	}
	if p.TeamID != nil {
		t, ok := r.s.data.teams[*p.TeamID]
		if !ok || t.EventID != p.EventID {
			return domain.ErrNotFound
		}
	}
	key := participantKey{eventID: p.EventID, userID: p.UserID}
	if _, ok := r.s.data.participants[key]; ok {
		return domain.ErrConflict
	}
	r.s.data.participants[key] = copyParticipant(p)
	return nil
}

func (r *participantRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	defer r.s.lock()()
	p, ok := r.s.data.participants[participantKey{eventID: eventID, userID: userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyParticipant(p), nil
}

func (r *participantRepository) GetByTeamAndUser(ctx context.Context, teamID, userID string) (*domain.Participant, error) {
	defer r.s.lock()()
	for _, p := range r.s.data.participants {
		if p.UserID == userID && p.TeamID != nil && *p.TeamID == teamID {
			return copyParticipant(p), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *participantRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	defer r.s.lock()()
	n := 0
	for k := range r.s.data.participants {
		if k.eventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *participantRepository) CountByTeamID(ctx context.Context, teamID string) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, p := range r.s.data.participants {
		if p.TeamID != nil && *p.TeamID == teamID {
			n++
		}
	}
	return n, nil
}

func sortParticipants(ps []*domain.Participant) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].UserID < ps[j].UserID
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	defer r.s.lock()()
	ps := make([]*domain.Participant, 0)
	for k, p := range r.s.data.participants {
		if k.eventID == eventID {
			ps = append(ps, copyParticipant(p))
		}
	}
	sortParticipants(ps)
	return ps, nil
}

func (r *participantRepository) ListByTeamID(ctx context.Context, teamID string) ([]*domain.Participant, error) {
	defer r.s.lock()()
	ps := make([]*domain.Participant, 0)
	for _, p := range r.s.data.participants {
		if p.TeamID != nil && *p.TeamID == teamID {
			ps = append(ps, copyParticipant(p))
		}
	}
	sortParticipants(ps)
	return ps, nil
}

func (r *participantRepository) Delete(ctx context.Context, eventID, userID string) error {
	defer r.s.lock()()
	key := participantKey{eventID: eventID, userID: userID}
	if _, ok := r.s.data.participants[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.participants, key)
	return nil
}

func (r *participantRepository) DeleteByTeamID(ctx context.Context, teamID string) (int, error) {
	defer r.s.lock()()
	n := 0
	for k, p := range r.s.data.participants {
		if p.TeamID != nil && *p.TeamID == teamID {
			delete(r.s.data.participants, k)
			n++
		}
	}
	return n, nil
}

type invitationRepository struct {
	s *Store
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	defer r.s.lock()()
	if _, ok := r.s.data.teams[inv.TeamID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.data.invitations {
		if existing.TeamID == inv.TeamID && existing.InvitedID == inv.InvitedID {
			return domain.ErrConflict
		}
	}
	inv.ID = uuid.NewString()
	r.s.data.invitations[inv.ID] = copyInvitation(inv)
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	defer r.s.lock()()
	inv, ok := r.s.data.invitations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyInvitation(inv), nil
}

func (r *invitationRepository) GetByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (*domain.Invitation, error) {
	defer r.s.lock()()
	for _, inv := range r.s.data.invitations {
		if inv.TeamID == teamID && inv.InvitedID == invitedID {
			return copyInvitation(inv), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *invitationRepository) list(match func(*domain.Invitation) bool) []*domain.Invitation {
	invs := make([]*domain.Invitation, 0)
	for _, inv := range r.s.data.invitations {
		if match(inv) {
			invs = append(invs, copyInvitation(inv))
		}
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].CreatedAt.After(invs[j].CreatedAt) })
	return invs
}

func (r *invitationRepository) ListByTeamID(ctx context.Context, teamID string) ([]*domain.Invitation, error) {
	defer r.s.lock()()
	return r.list(func(inv *domain.Invitation) bool { return inv.TeamID == teamID }), nil
}

func (r *invitationRepository) ListByInvitedID(ctx context.Context, invitedID string) ([]*domain.Invitation, error) {
	defer r.s.lock()()
	return r.list(func(inv *domain.Invitation) bool { return inv.InvitedID == invitedID }), nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.data.invitations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.invitations, id)
	return nil
}

func (r *invitationRepository) DeleteByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (bool, error) {
	defer r.s.lock()()
	for id, inv := range r.s.data.invitations {
		if inv.TeamID == teamID && inv.InvitedID == invitedID {
			delete(r.s.data.invitations, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *invitationRepository) DeleteByTeamID(ctx context.Context, teamID string) (int, error) {
	defer r.s.lock()()
	n := 0
	for id, inv := range r.s.data.invitations {
		if inv.TeamID == teamID {
			delete(r.s.data.invitations, id)
			n++
		}
	}
	return n, nil
}

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	defer r.s.lock()()
	n.ID = uuid.NewString()
	r.s.data.notifications[n.ID] = copyNotification(n)
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	defer r.s.lock()()
	n, ok := r.s.data.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyNotification(n), nil
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	defer r.s.lock()()
	ns := make([]*domain.Notification, 0)
	for _, n := range r.s.data.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		ns = append(ns, copyNotification(n))
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i].CreatedAt.After(ns[j].CreatedAt) })
	return ns, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	defer r.s.lock()()
	n, ok := r.s.data.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := copyNotification(n)
	c.IsRead = true
	r.s.data.notifications[id] = c
	return copyNotification(c), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.data.notifications[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.notifications, id)
	return nil
}
