// Copyright (c) 2026 ComicZone. All rights reserved.

package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/sec"
	"github.com/comiczone/comiczone/internal/platform/validate"
	"github.com/comiczone/comiczone/pkg/pagination"
	"github.com/comiczone/comiczone/pkg/uuid"
)

// # Service Layer

// Service orchestrates the discussion thread rules.
type Service struct {
	repository Repository
	users      UserDirectory
	comics     ComicDirectory
	notifier   Notifier
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, users UserDirectory, comics ComicDirectory, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		users:      users,
		comics:     comics,
		notifier:   notifier,
		logger:     logger,
	}
}

// # Thread Browsing

/*
ListForComic returns a page of a comic's top-level comments, newest first,
with replies hydrated oldest first.

Parameters:
  - context: context.Context
  - comicID: string
  - page: pagination.Params

Returns:
  - []Comment: Thread page
  - pagination.Meta: Page metadata
  - error: apperr.NotFound (unknown comic) or retrieval failures
*/
func (service *Service) ListForComic(context context.Context, comicID string, page pagination.Params) ([]Comment, pagination.Meta, error) {
	if _, err := service.comics.FindByID(context, comicID); err != nil {
		return nil, pagination.Meta{}, err
	}

	comments, total, err := service.repository.ListForComic(context, comicID, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comment_service_list_failed: %w", err)
	}

	return comments, pagination.NewMeta(page.Page, page.Limit, total), nil
}

/*
ListReplies returns a page of replies to a comment, oldest first.

Parameters:
  - context: context.Context
  - commentID: string
  - page: pagination.Params

Returns:
  - []Comment: Replies page
  - pagination.Meta: Page metadata
  - error: apperr.NotFound (unknown comment) or retrieval failures
*/
func (service *Service) ListReplies(context context.Context, commentID string, page pagination.Params) ([]Comment, pagination.Meta, error) {
	if _, err := service.repository.FindByID(context, commentID); err != nil {
		return nil, pagination.Meta{}, err
	}

	replies, total, err := service.repository.ListReplies(context, commentID, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comment_service_list_replies_failed: %w", err)
	}

	return replies, pagination.NewMeta(page.Page, page.Limit, total), nil
}

/*
ListAll returns a page across every comment for the moderation dashboard.

Description: Rows carry the comic title and, for replies, the parent
comment's author username. The optional search term matches the comment
content, the author's username, or the comic's title.

Parameters:
  - context: context.Context
  - search: string
  - page: pagination.Params

Returns:
  - []Comment: Moderation page carrying comic titles
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) ListAll(context context.Context, search string, page pagination.Params) ([]Comment, pagination.Meta, error) {
	comments, total, err := service.repository.ListAll(context, search, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comment_service_list_all_failed: %w", err)
	}

	return comments, pagination.NewMeta(page.Page, page.Limit, total), nil
}

// # Posting

// CreateInput holds the data for a new comment or reply.
type CreateInput struct {
	ComicID  string
	ParentID *string
	AuthorID string
	Content  string
}

/*
Create posts a comment or a reply on a comic.

Description: Content is trimmed and bounded. Replies must target an existing
top-level comment on the same comic; replying to a reply is rejected. When
someone replies to another user's comment, the parent's author is notified.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Comment: The persisted entry hydrated with its author profile
  - error: Validation, nesting, or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Comment, error) {

	content := strings.TrimSpace(input.Content)

	validator := &validate.Validator{}
	validator.Required(FieldContent, content).
		MaxLen(FieldContent, content, MaxContentLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	author, err := service.users.FindByID(context, input.AuthorID)
	if err != nil {
		return nil, err
	}

	if _, err := service.comics.FindByID(context, input.ComicID); err != nil {
		return nil, err
	}

	var parent *Comment
	if input.ParentID != nil {
		parent, err = service.repository.FindByID(context, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, apperr.Unprocessable("Replies cannot be nested further")
		}
		if parent.ComicID != input.ComicID {
			return nil, apperr.Unprocessable("Parent comment belongs to a different comic")
		}
	}

	entry := &Comment{
		ID:       uuid.New(),
		ComicID:  input.ComicID,
		ParentID: input.ParentID,
		Content:  content,
		Likes:    []string{},
		Author: AuthorProfile{
			ID:           author.ID,
			Username:     author.Username,
			ProfileImage: author.ProfileImage,
		},
	}

	if err := service.repository.Create(context, entry); err != nil {
		return nil, fmt.Errorf("comment_service_create_failed: %w", err)
	}

	if parent != nil && parent.Author.ID != author.ID {
		service.notifier.Notify(context, parent.Author.ID,
			fmt.Sprintf("%s replied to your comment", author.Username))
	}

	service.logger.Info("comment_created",
		slog.String("comment_id", entry.ID),
		slog.String("comic_id", entry.ComicID),
		slog.Bool("is_reply", entry.ParentID != nil),
	)

	return entry, nil
}

/*
Edit replaces the content of the requester's own comment.

Description: Only the author may edit. The edit marker is set permanently.

Parameters:
  - context: context.Context
  - requesterID: string
  - commentID: string
  - content: string

Returns:
  - *Comment: The updated entry
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) Edit(context context.Context, requesterID, commentID, content string) (*Comment, error) {

	content = strings.TrimSpace(content)

	validator := &validate.Validator{}
	validator.Required(FieldContent, content).
		MaxLen(FieldContent, content, MaxContentLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry, err := service.repository.FindByID(context, commentID)
	if err != nil {
		return nil, err
	}

	if entry.Author.ID != requesterID {
		return nil, apperr.Forbidden("You can only edit your own comments")
	}

	updatedAt, err := service.repository.UpdateContent(context, commentID, content)
	if err != nil {
		return nil, fmt.Errorf("comment_service_edit_failed: %w", err)
	}

	entry.Content = content
	entry.IsEdited = true
	entry.UpdatedAt = updatedAt
	return entry, nil
}

/*
Delete removes a comment and its whole reply thread.

Description: The author may delete their own comment; moderators may delete
any comment.

Parameters:
  - context: context.Context
  - requesterID: string
  - requesterRole: sec.UserRole
  - commentID: string

Returns:
  - int: Number of comments removed (parent plus replies)
  - error: Forbidden or storage failures
*/
func (service *Service) Delete(context context.Context, requesterID string, requesterRole sec.UserRole, commentID string) (int, error) {

	entry, err := service.repository.FindByID(context, commentID)
	if err != nil {
		return 0, err
	}

	if entry.Author.ID != requesterID && !requesterRole.AtLeast(sec.RoleModerator) {
		return 0, apperr.Forbidden("You can only delete your own comments")
	}

	removed, err := service.repository.DeleteCascade(context, commentID)
	if err != nil {
		return 0, fmt.Errorf("comment_service_delete_failed: %w", err)
	}

	service.logger.Info("comment_deleted",
		slog.String("comment_id", commentID),
		slog.String("requested_by", requesterID),
		slog.Int("removed", removed),
	)

	return removed, nil
}

// # Likes

/*
ToggleLike flips the requester's like on a comment.

Description: Liking another user's comment notifies its author; withdrawing
a like never does. The toggle is idempotent per user.

Parameters:
  - context: context.Context
  - requesterID: string
  - commentID: string

Returns:
  - *LikeResult: Final like state and count
  - error: apperr.NotFound or storage failures
*/
func (service *Service) ToggleLike(context context.Context, requesterID, commentID string) (*LikeResult, error) {

	requester, err := service.users.FindByID(context, requesterID)
	if err != nil {
		return nil, err
	}

	entry, err := service.repository.FindByID(context, commentID)
	if err != nil {
		return nil, err
	}

	liked := false
	for _, userID := range entry.Likes {
		if userID == requesterID {
			liked = true
			break
		}
	}

	if liked {
		if _, err := service.repository.RemoveLike(context, commentID, requesterID); err != nil {
			return nil, fmt.Errorf("comment_service_unlike_failed: %w", err)
		}
	} else {
		added, err := service.repository.AddLike(context, commentID, requesterID)
		if err != nil {
			return nil, fmt.Errorf("comment_service_like_failed: %w", err)
		}
		if added && entry.Author.ID != requesterID {
			service.notifier.Notify(context, entry.Author.ID,
				fmt.Sprintf("%s liked your comment", requester.Username))
		}
	}

	count, err := service.repository.CountLikes(context, commentID)
	if err != nil {
		return nil, fmt.Errorf("comment_service_like_count_failed: %w", err)
	}

	return &LikeResult{Liked: !liked, LikeCount: count}, nil
}

// Get resolves a single comment by ID.
func (service *Service) Get(context context.Context, commentID string) (*Comment, error) {
	return service.repository.FindByID(context, commentID)
}
