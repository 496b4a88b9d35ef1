// Copyright (c) 2026 ComicZone. All rights reserved.

/*
Package notification implements the user notification feed.

Notifications are short user-facing messages produced by social activity
(replies, likes) and moderation decisions (comic approvals). The feed is
owner-scoped: a user can only ever see or mutate their own entries.

# Architecture

  - Repository: Postgres persistence for the feed itself.
  - UnreadCache: Redis-backed read-through cache for the unread badge count,
    invalidated on every mutation.
  - Service: Owner scoping plus the asynchronous dispatch path used by the
    comment and comic domains.
*/
package notification

import (
	"context"
	"time"

	"github.com/comiczone/comiczone/pkg/pagination"
)

// # Domain Entities

// Notification is one entry in a user's feed.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// # Repository Contract

// Repository defines the persistence contract for the notification feed.
type Repository interface {

	/*
		ListForUser returns a page of the user's notifications, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - page: pagination.Params

		Returns:
		  - []Notification: Feed page
		  - int: Total feed size for the user
		  - error: Database retrieval failures
	*/
	ListForUser(context context.Context, userID string, page pagination.Params) ([]Notification, int, error)

	/*
		Create persists a new notification.

		Parameters:
		  - context: context.Context
		  - notification: *Notification

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, notification *Notification) error

	/*
		MarkRead flags one of the user's notifications as read.

		Parameters:
		  - context: context.Context
		  - userID: string (Owner scope)
		  - id: string

		Returns:
		  - error: apperr.NotFound if the entry is missing or owned by
		    someone else, or persistence failures
	*/
	MarkRead(context context.Context, userID, id string) error

	/*
		MarkAllRead flags every unread notification of the user as read.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkAllRead(context context.Context, userID string) error

	/*
		Delete removes one of the user's notifications.

		Parameters:
		  - context: context.Context
		  - userID: string (Owner scope)
		  - id: string

		Returns:
		  - error: apperr.NotFound if the entry is missing or owned by
		    someone else, or persistence failures
	*/
	Delete(context context.Context, userID, id string) error

	/*
		DeleteAll clears the user's whole feed.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteAll(context context.Context, userID string) error

	/*
		CountUnread returns the user's unread notification count.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int: Unread count
		  - error: Retrieval failures
	*/
	CountUnread(context context.Context, userID string) (int, error)
}

// # Cache Contract

// UnreadCache holds the unread badge count per user with a short TTL.
type UnreadCache interface {
	// Get returns the cached count. The second result is false on a miss.
	Get(context context.Context, userID string) (int, bool, error)

	// Set stores the count for the given TTL.
	Set(context context.Context, userID string, count int, ttl time.Duration) error

	// Invalidate drops the cached count after a feed mutation.
	Invalidate(context context.Context, userID string) error
}
