package notification

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
	ErrPersistFailed        = errors.New("failed to persist notifications")
)

// Inbox is the read side of a user's notifications
type Inbox struct {
	repo *Repository
}

// NewInbox creates a new notification inbox
func NewInbox(repo *Repository) *Inbox {
	return &Inbox{repo: repo}
}

// List returns a page of userID's notifications, newest first
func (s *Inbox) List(ctx context.Context, userID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	return s.repo.ListByRecipientID(ctx, userID, perPage, (page-1)*perPage, unreadOnly)
}

// UnreadCount returns how many of userID's notifications are unread
func (s *Inbox) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkRead marks one notification read; only its recipient may do so
func (s *Inbox) MarkRead(ctx context.Context, userID, id int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientID != userID {
		return ErrNotRecipient
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllRead marks every notification of userID read
func (s *Inbox) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
