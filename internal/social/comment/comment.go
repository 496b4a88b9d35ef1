// Copyright (c) 2026 ComicZone. All rights reserved.

/*
Package comment implements the discussion threads attached to comics.

Threads are one level deep: a top-level comment may carry replies, and replies
cannot be replied to. Likes are toggled per user, and both replies and likes
emit best-effort notifications to the affected comment's author.

# Architecture

  - Entity: Comment is hydrated with its author profile and the IDs of the
    users who liked it. Top-level comments also carry their replies.
  - Repository: Abstracted persistence contract implemented by Postgres.
  - Service: Thread rules (nesting depth, ownership, notification fan-out).
*/
package comment

import (
	"context"
	"time"

	"github.com/comiczone/comiczone/internal/core/comic"
	"github.com/comiczone/comiczone/internal/users/auth"
	"github.com/comiczone/comiczone/pkg/pagination"
)

// MaxContentLength bounds a comment body after trimming.
const MaxContentLength = 1000

// # Domain Entities

// AuthorProfile is the public slice of a user shown next to their comments.
type AuthorProfile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Comment represents a single discussion entry on a comic.
type Comment struct {
	ID        string        `json:"id"`
	ComicID   string        `json:"comic_id"`
	ParentID  *string       `json:"parent_id,omitempty"`
	Author    AuthorProfile `json:"author"`
	Content   string        `json:"content"`
	IsEdited  bool          `json:"is_edited"`
	Likes     []string      `json:"likes"`
	LikeCount int           `json:"like_count"`
	Replies   []Comment     `json:"replies,omitempty"`

	// ComicTitle and ParentAuthor are populated for the moderation view only.
	ComicTitle   string `json:"comic_title,omitempty"`
	ParentAuthor string `json:"parent_author,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LikeResult reports the outcome of a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// # Repository Contract

// Repository defines the persistence contract for comments and likes.
type Repository interface {

	/*
		ListForComic returns a page of top-level comments for a comic, newest
		first, each hydrated with its author, likes, and replies.

		Parameters:
		  - context: context.Context
		  - comicID: string
		  - page: pagination.Params

		Returns:
		  - []Comment: Hydrated thread page
		  - int: Total top-level comment count for the comic
		  - error: Database retrieval failures
	*/
	ListForComic(context context.Context, comicID string, page pagination.Params) ([]Comment, int, error)

	/*
		ListReplies returns a page of replies to a comment, oldest first.

		Parameters:
		  - context: context.Context
		  - parentID: string
		  - page: pagination.Params

		Returns:
		  - []Comment: Hydrated replies
		  - int: Total reply count for the parent
		  - error: Database retrieval failures
	*/
	ListReplies(context context.Context, parentID string, page pagination.Params) ([]Comment, int, error)

	/*
		ListAll returns a page across every comment for the moderation view,
		newest first, optionally filtered by a search term matching the
		content, the author's username, or the comic's title.

		Parameters:
		  - context: context.Context
		  - search: string
		  - page: pagination.Params

		Returns:
		  - []Comment: Hydrated entities carrying the comic title and, for
		    replies, the parent author username
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	ListAll(context context.Context, search string, page pagination.Params) ([]Comment, int, error)

	/*
		FindByID returns a single comment hydrated with author and likes.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Comment: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*Comment, error)

	/*
		Create persists a new comment or reply.

		Parameters:
		  - context: context.Context
		  - comment: *Comment

		Returns:
		  - error: Constraint violations or persistence failures
	*/
	Create(context context.Context, comment *Comment) error

	/*
		UpdateContent replaces a comment's body and marks it edited.

		Parameters:
		  - context: context.Context
		  - id: string
		  - content: string

		Returns:
		  - time.Time: The refreshed update timestamp
		  - error: Persistence failures
	*/
	UpdateContent(context context.Context, id, content string) (time.Time, error)

	/*
		DeleteCascade removes a comment together with all of its replies.
		Like rows are removed by the database cascade.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - int: Number of comments removed (parent plus replies)
		  - error: Persistence failures
	*/
	DeleteCascade(context context.Context, id string) (int, error)

	/*
		AddLike records that userID liked commentID.

		Parameters:
		  - context: context.Context
		  - commentID: string
		  - userID: string

		Returns:
		  - bool: false if the like already existed
		  - error: Persistence failures
	*/
	AddLike(context context.Context, commentID, userID string) (bool, error)

	/*
		RemoveLike withdraws userID's like from commentID.

		Parameters:
		  - context: context.Context
		  - commentID: string
		  - userID: string

		Returns:
		  - bool: false if no like existed
		  - error: Persistence failures
	*/
	RemoveLike(context context.Context, commentID, userID string) (bool, error)

	/*
		CountLikes returns the current like total for a comment.

		Parameters:
		  - context: context.Context
		  - commentID: string

		Returns:
		  - int: Like count
		  - error: Retrieval failures
	*/
	CountLikes(context context.Context, commentID string) (int, error)
}

// # Collaborators

// UserDirectory resolves the acting user for hydration and notification text.
// Satisfied by the auth package's user repository.
type UserDirectory interface {
	FindByID(context context.Context, id string) (*auth.User, error)
}

// ComicDirectory verifies that a discussion target exists.
// Satisfied by the comic package's repository.
type ComicDirectory interface {
	FindByID(context context.Context, id string) (*comic.Comic, error)
}

// Notifier delivers user-facing notifications for replies and likes.
// Delivery is best-effort and must never block or fail the calling operation.
type Notifier interface {
	Notify(context context.Context, userID, message string)
}

// # Field Identifiers

const (
	FieldContent = "content"
)
