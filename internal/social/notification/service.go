// Copyright (c) 2026 ComicZone. All rights reserved.

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/comiczone/comiczone/pkg/pagination"
	"github.com/comiczone/comiczone/pkg/uuid"
)

const (
	// unreadCountTTL bounds staleness of the unread badge between mutations.
	unreadCountTTL = 60 * time.Second

	// dispatchTimeout caps background delivery so leaked contexts can't pile up.
	dispatchTimeout = 5 * time.Second
)

// # Service Layer

// Service orchestrates the notification feed and its unread badge cache.
type Service struct {
	repository Repository
	unread     UnreadCache
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, unread UnreadCache, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		unread:     unread,
		logger:     logger,
	}
}

// # Feed Access

/*
List returns a page of the user's notification feed, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - page: pagination.Params

Returns:
  - []Notification: Feed page
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, userID string, page pagination.Params) ([]Notification, pagination.Meta, error) {
	notifications, total, err := service.repository.ListForUser(context, userID, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("notification_service_list_failed: %w", err)
	}

	return notifications, pagination.NewMeta(page.Page, page.Limit, total), nil
}

/*
UnreadCount returns the user's unread badge count.

Description: Read-through cached in Redis with a short TTL. A cache failure
falls back to the database rather than surfacing an error.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Unread count
  - error: Database retrieval failures
*/
func (service *Service) UnreadCount(context context.Context, userID string) (int, error) {
	if count, hit, err := service.unread.Get(context, userID); err == nil && hit {
		return count, nil
	}

	count, err := service.repository.CountUnread(context, userID)
	if err != nil {
		return 0, fmt.Errorf("notification_service_unread_count_failed: %w", err)
	}

	if err := service.unread.Set(context, userID, count, unreadCountTTL); err != nil {
		service.logger.Warn("notification_unread_cache_set_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return count, nil
}

// # Feed Mutations

/*
MarkRead flags one of the user's notifications as read.

Parameters:
  - context: context.Context
  - userID: string
  - id: string

Returns:
  - error: apperr.NotFound (missing or foreign entry) or storage failures
*/
func (service *Service) MarkRead(context context.Context, userID, id string) error {
	if err := service.repository.MarkRead(context, userID, id); err != nil {
		return err
	}

	service.invalidateUnread(context, userID)
	return nil
}

/*
MarkAllRead flags the user's whole feed as read.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (service *Service) MarkAllRead(context context.Context, userID string) error {
	if err := service.repository.MarkAllRead(context, userID); err != nil {
		return fmt.Errorf("notification_service_mark_all_read_failed: %w", err)
	}

	service.invalidateUnread(context, userID)
	return nil
}

/*
Delete removes one of the user's notifications.

Parameters:
  - context: context.Context
  - userID: string
  - id: string

Returns:
  - error: apperr.NotFound (missing or foreign entry) or storage failures
*/
func (service *Service) Delete(context context.Context, userID, id string) error {
	if err := service.repository.Delete(context, userID, id); err != nil {
		return err
	}

	service.invalidateUnread(context, userID)
	return nil
}

/*
DeleteAll clears the user's whole feed.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (service *Service) DeleteAll(context context.Context, userID string) error {
	if err := service.repository.DeleteAll(context, userID); err != nil {
		return fmt.Errorf("notification_service_delete_all_failed: %w", err)
	}

	service.invalidateUnread(context, userID)
	return nil
}

// # Delivery

/*
Create persists a notification synchronously.

Description: Backing operation for the administrative create endpoint; the
domain-triggered path is [Service.Notify].

Parameters:
  - context: context.Context
  - userID: string
  - message: string

Returns:
  - *Notification: The persisted entry
  - error: Storage failures
*/
func (service *Service) Create(context context.Context, userID, message string) (*Notification, error) {
	entry := &Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Message: message,
	}

	if err := service.repository.Create(context, entry); err != nil {
		return nil, fmt.Errorf("notification_service_create_failed: %w", err)
	}

	service.invalidateUnread(context, userID)
	return entry, nil
}

// Notify delivers a notification in the background.
//
// Delivery is best-effort: it runs on its own timeout detached from the
// request context, and failures are logged rather than propagated. This is
// the method the comment and comic domains depend on.
func (service *Service) Notify(_ context.Context, userID, message string) {
	go func() {
		dispatchContext, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if _, err := service.Create(dispatchContext, userID, message); err != nil {
			service.logger.Error("notification_dispatch_failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// invalidateUnread drops the cached badge count, logging on failure.
func (service *Service) invalidateUnread(context context.Context, userID string) {
	if err := service.unread.Invalidate(context, userID); err != nil {
		service.logger.Warn("notification_unread_cache_invalidate_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
