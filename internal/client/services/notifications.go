package services

import (
	"context"
	"fmt"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/client/paging"
	"github.com/itd-social/itd-client/internal/logging"
)

// NotificationService exposes the notification list and read marks.
type NotificationService struct {
	api   api.NotificationAPI
	log   logging.Logger
	limit int
}

func NewNotificationService(notifAPI api.NotificationAPI, log logging.Logger, limit int) *NotificationService {
	if log == nil {
		log = logging.NewDiscard()
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &NotificationService{api: notifAPI, log: log, limit: limit}
}

// List returns a paginator over notifications of the given type; "" means
// all types.
func (s *NotificationService) List(typ string) *paging.Paginator[models.Notification] {
	return paging.New(func(ctx context.Context, cursor string, limit int) ([]models.Notification, string, error) {
		return s.api.Notifications(ctx, typ, cursor, limit)
	}, func(n models.Notification) string { return n.ID }, s.limit)
}

// UnreadCount asks the server for the current unread total.
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	n, err := s.api.NotificationCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("notification count: %w", err)
	}
	return n, nil
}

// MarkAllRead clears the unread state server-side.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// MarkRead marks the given notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.api.MarkNotificationsRead(ctx, ids); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
