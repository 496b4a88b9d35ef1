// Copyright (c) 2026 ComicZone. All rights reserved.

package account

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/comiczone/comiczone/internal/platform/objectstore"
	"github.com/comiczone/comiczone/internal/users/auth"
	"github.com/comiczone/comiczone/pkg/uuid"
)

// # Service Layer

// Service orchestrates business logic for user accounts.
//
// It ensures that profile updates, avatar replacement, and session
// security cleanup follow established business constraints.
type Service struct {
	accountRepository AccountRepository
	sessionRepository SessionRepository
	media             objectstore.Store
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRepo SessionRepository,
	media objectstore.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		media:             media,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

/*
GetPublicProfile resolves a username into the publicly visible profile view.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *PublicProfile: Transport-safe profile subset
  - error: Not found or execution failures
*/
func (service *Service) GetPublicProfile(context context.Context, username string) (*PublicProfile, error) {
	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{
		ID:           user.ID,
		Username:     user.Username,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
	}, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
type UpdateProfileInput struct {
	Username     *string
	ProfileImage *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	// Apply delta updates
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.ProfileImage != nil {
		user.ProfileImage = *input.ProfileImage
	}

	// Persist changes
	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
UpdateAvatar streams a new profile image into blob storage and links it to the account.

Description: The object key is namespaced under avatars/ with a fresh UUID so that
stale CDN caches never serve a replaced image.

Parameters:
  - context: context.Context
  - userID: string
  - filename: string (Original upload name, used for the extension)
  - contentType: string
  - reader: io.Reader (Upload payload)
  - size: int64

Returns:
  - *auth.User: The profile carrying the new image URL
  - error: Storage or persistence failures
*/
func (service *Service) UpdateAvatar(context context.Context, userID, filename, contentType string, reader io.Reader, size int64) (*auth.User, error) {

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_avatar_lookup_failed: %w", err)
	}

	key := "avatars/" + uuid.New() + path.Ext(filename)
	url, err := service.media.Put(context, key, contentType, reader, size)
	if err != nil {
		return nil, fmt.Errorf("account_service_avatar_upload_failed: %w", err)
	}

	user.ProfileImage = url
	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_avatar_update_failed: %w", err)
	}

	service.logger.Info("user_avatar_updated",
		slog.String("user_id", userID),
		slog.String("object_key", key),
	)

	return user, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of a user account.

Description: Flags the account as deleted and immediately terminates all active
security sessions to force a global sign-out.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {

	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	// Force global revocation of sessions for the deleted account
	_ = service.sessionRepository.RevokeAll(context, userID)

	service.logger.Warn("user_account_deleted", slog.String("user_id", userID))

	return nil
}

// # Session Security

/*
ListSessions provides a list of all active device sessions for the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []SessionInfo: List of active devices
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, userID string) ([]SessionInfo, error) {

	sessions, err := service.sessionRepository.FindActiveByUserID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}

	return sessions, nil
}

/*
RevokeSession terminates a specific user session by its ID.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	if err := service.sessionRepository.Revoke(context, userID, sessionID); err != nil {
		return fmt.Errorf("account_service_revoke_session_failed: %w", err)
	}

	service.logger.Info("user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	return nil
}

/*
RevokeOtherSessions terminates all sessions except for the current active one.

Parameters:
  - context: context.Context
  - userID: string
  - currentSessionID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeOtherSessions(context context.Context, userID, currentSessionID string) error {
	if err := service.sessionRepository.RevokeOthers(context, userID, currentSessionID); err != nil {
		return fmt.Errorf("account_service_revoke_others_failed: %w", err)
	}

	service.logger.Info("user_other_sessions_revoked", slog.String("user_id", userID))

	return nil
}
