package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventteams/internal/domain"
)

type notificationService struct {
	repo           domain.NotificationRepository
	sink           domain.NotificationSink
	contextTimeout time.Duration
}

func NewNotificationService(repo domain.NotificationRepository, sink domain.NotificationSink, timeout time.Duration) domain.NotificationService {
	return &notificationService{
		repo:           repo,
		sink:           sink,
		contextTimeout: timeout,
	}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	notifications, err := s.repo.ListByUserID(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) Get(ctx context.Context, id string) (*domain.Notification, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: notification %s does not exist", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: notification %s does not exist", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: notification %s does not exist", domain.ErrNotFound, id)
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// Broadcast hands one GENERAL notification per distinct recipient to the sink. Delivery is best effort.
func (s *notificationService) Broadcast(ctx context.Context, userIDs []string, fromUserID *string, message string, link *string) (int, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return 0, fmt.Errorf("%w: message is required", domain.ErrBadRequest)
	}
	if len(userIDs) == 0 {
		return 0, fmt.Errorf("%w: at least one recipient is required", domain.ErrBadRequest)
	}

	seen := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		s.sink.Notify(ctx, domain.NotificationInput{
			UserID:     userID,
			FromUserID: fromUserID,
			Type:       domain.NotificationGeneral,
			Message:    message,
			Link:       link,
		})
	}
	return len(seen), nil
}
