// Copyright (c) 2026 ComicZone. All rights reserved.

package comic

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/objectstore"
	"github.com/comiczone/comiczone/internal/platform/sec"
	"github.com/comiczone/comiczone/internal/platform/validate"
	"github.com/comiczone/comiczone/pkg/pagination"
	"github.com/comiczone/comiczone/pkg/slug"
	"github.com/comiczone/comiczone/pkg/uuid"
)

// # Service Layer

// Service orchestrates the comic publication lifecycle.
type Service struct {
	repository Repository
	media      objectstore.Store
	notifier   Notifier
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, media objectstore.Store, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		media:      media,
		notifier:   notifier,
		logger:     logger,
	}
}

// # Catalog Browsing

/*
ListApproved returns the public catalog: approved titles only, newest first.

Parameters:
  - context: context.Context
  - genre: string (Optional genre filter)
  - search: string (Optional title/author search)
  - page: pagination.Params

Returns:
  - []Comic: Catalog page
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) ListApproved(context context.Context, genre, search string, page pagination.Params) ([]Comic, pagination.Meta, error) {
	comics, total, err := service.repository.List(context, ListFilter{
		ApprovedOnly: true,
		Genre:        genre,
		Search:       search,
	}, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comic_service_list_approved_failed: %w", err)
	}

	return comics, pagination.NewMeta(page.Page, page.Limit, total), nil
}

/*
ListAll returns every comic regardless of approval state.

Description: Backing query for the moderation dashboard.

Parameters:
  - context: context.Context
  - search: string
  - page: pagination.Params

Returns:
  - []Comic: Moderation queue page
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) ListAll(context context.Context, search string, page pagination.Params) ([]Comic, pagination.Meta, error) {
	comics, total, err := service.repository.List(context, ListFilter{Search: search}, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comic_service_list_all_failed: %w", err)
	}

	return comics, pagination.NewMeta(page.Page, page.Limit, total), nil
}

/*
ListByUploader returns every comic uploaded by a specific user.

Parameters:
  - context: context.Context
  - uploaderID: string
  - page: pagination.Params

Returns:
  - []Comic: Uploader dashboard page
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) ListByUploader(context context.Context, uploaderID string, page pagination.Params) ([]Comic, pagination.Meta, error) {
	comics, total, err := service.repository.List(context, ListFilter{UploadedBy: uploaderID}, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comic_service_list_by_uploader_failed: %w", err)
	}

	return comics, pagination.NewMeta(page.Page, page.Limit, total), nil
}

// Get resolves a comic by its ID.
func (service *Service) Get(context context.Context, id string) (*Comic, error) {
	return service.repository.FindByID(context, id)
}

// GetBySlug resolves a comic by its URL slug.
func (service *Service) GetBySlug(context context.Context, comicSlug string) (*Comic, error) {
	return service.repository.FindBySlug(context, comicSlug)
}

// # Publication

// CreateInput holds the metadata and media for a new comic upload.
type CreateInput struct {
	Title      string
	Author     string
	Status     string
	Summary    string
	Genres     []string
	UploadedBy string
	Cover      *FileUpload
	Chapters   []FileUpload
}

/*
Create validates, stores media, and persists a new comic title.

Description: The cover and chapter pages are streamed into blob storage first.
Uploads from admins go live immediately; everyone else enters the moderation
queue unapproved.

Parameters:
  - context: context.Context
  - input: CreateInput
  - uploaderRole: sec.UserRole

Returns:
  - *Comic: The persisted entity
  - error: Validation, media, or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput, uploaderRole sec.UserRole) (*Comic, error) {

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 200).
		Required(FieldAuthor, input.Author).
		OneOf(FieldStatus, input.Status, StatusOngoing, StatusCompleted, StatusHiatus).
		MaxLen(FieldSummary, input.Summary, 2000).
		Custom(FieldCover, input.Cover == nil, "A cover image is required")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	comic := &Comic{
		ID:         uuid.New(),
		Title:      input.Title,
		Slug:       slug.From(input.Title),
		Author:     input.Author,
		Status:     input.Status,
		Summary:    input.Summary,
		Genres:     input.Genres,
		UploadedBy: input.UploadedBy,
		IsApproved: uploaderRole.AtLeast(sec.RoleAdmin),
	}

	// Slug collisions get a stable unique suffix derived from the new ID.
	if _, err := service.repository.FindBySlug(context, comic.Slug); err == nil {
		comic.Slug = comic.Slug + "-" + comic.ID[len(comic.ID)-8:]
	}

	coverURL, err := service.storeMedia(context, "covers", comic.ID, *input.Cover)
	if err != nil {
		return nil, fmt.Errorf("comic_service_cover_upload_failed: %w", err)
	}
	comic.CoverURL = coverURL

	for _, chapter := range input.Chapters {
		url, err := service.storeMedia(context, "chapters", comic.ID, chapter)
		if err != nil {
			return nil, fmt.Errorf("comic_service_chapter_upload_failed: %w", err)
		}
		comic.Chapters = append(comic.Chapters, url)
	}

	if err := service.repository.Create(context, comic); err != nil {
		return nil, fmt.Errorf("comic_service_create_failed: %w", err)
	}

	service.logger.Info("comic_uploaded",
		slog.String("comic_id", comic.ID),
		slog.String("uploaded_by", comic.UploadedBy),
		slog.Bool("is_approved", comic.IsApproved),
	)

	return comic, nil
}

// storeMedia streams one upload into blob storage under a collision-free key.
func (service *Service) storeMedia(context context.Context, folder, comicID string, file FileUpload) (string, error) {
	key := folder + "/" + comicID + "/" + uuid.New() + path.Ext(file.Filename)
	return service.media.Put(context, key, file.ContentType, file.Reader, file.Size)
}

// UpdateInput defines the mutable subset of comic metadata.
type UpdateInput struct {
	Title   *string
	Author  *string
	Status  *string
	Summary *string
	Genres  []string
}

/*
Update applies partial metadata changes to an existing comic.

Description: Only the uploader or a moderator may modify a comic. The slug is
intentionally left stable so existing links keep working.

Parameters:
  - context: context.Context
  - requesterID: string
  - requesterRole: sec.UserRole
  - id: string
  - input: UpdateInput

Returns:
  - *Comic: The updated entity
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) Update(context context.Context, requesterID string, requesterRole sec.UserRole, id string, input UpdateInput) (*Comic, error) {

	comic, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if comic.UploadedBy != requesterID && !requesterRole.AtLeast(sec.RoleModerator) {
		return nil, apperr.Forbidden("You can only modify your own comics")
	}

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 200)
	}
	if input.Status != nil {
		validator.OneOf(FieldStatus, *input.Status, StatusOngoing, StatusCompleted, StatusHiatus)
	}
	if input.Summary != nil {
		validator.MaxLen(FieldSummary, *input.Summary, 2000)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.Title != nil {
		comic.Title = *input.Title
	}
	if input.Author != nil {
		comic.Author = *input.Author
	}
	if input.Status != nil {
		comic.Status = *input.Status
	}
	if input.Summary != nil {
		comic.Summary = *input.Summary
	}
	if input.Genres != nil {
		comic.Genres = input.Genres
	}

	if err := service.repository.Update(context, comic); err != nil {
		return nil, fmt.Errorf("comic_service_update_failed: %w", err)
	}

	return comic, nil
}

/*
AddChapters streams additional chapter pages into storage and appends them.

Parameters:
  - context: context.Context
  - requesterID: string
  - requesterRole: sec.UserRole
  - id: string
  - chapters: []FileUpload

Returns:
  - *Comic: The entity with the extended chapter list
  - error: Forbidden, media, or storage failures
*/
func (service *Service) AddChapters(context context.Context, requesterID string, requesterRole sec.UserRole, id string, chapters []FileUpload) (*Comic, error) {

	comic, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if comic.UploadedBy != requesterID && !requesterRole.AtLeast(sec.RoleModerator) {
		return nil, apperr.Forbidden("You can only modify your own comics")
	}

	if len(chapters) == 0 {
		return nil, apperr.ValidationError("At least one chapter page is required")
	}

	var pages []string
	for _, chapter := range chapters {
		url, err := service.storeMedia(context, "chapters", comic.ID, chapter)
		if err != nil {
			return nil, fmt.Errorf("comic_service_chapter_upload_failed: %w", err)
		}
		pages = append(pages, url)
	}

	if err := service.repository.AddChapters(context, comic.ID, pages); err != nil {
		return nil, fmt.Errorf("comic_service_add_chapters_failed: %w", err)
	}

	comic.Chapters = append(comic.Chapters, pages...)
	return comic, nil
}

/*
Delete removes a comic from all listings.

Parameters:
  - context: context.Context
  - requesterID: string
  - requesterRole: sec.UserRole
  - id: string

Returns:
  - error: Forbidden or storage failures
*/
func (service *Service) Delete(context context.Context, requesterID string, requesterRole sec.UserRole, id string) error {

	comic, err := service.repository.FindByID(context, id)
	if err != nil {
		return err
	}

	if comic.UploadedBy != requesterID && !requesterRole.AtLeast(sec.RoleModerator) {
		return apperr.Forbidden("You can only delete your own comics")
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return fmt.Errorf("comic_service_delete_failed: %w", err)
	}

	service.logger.Info("comic_deleted",
		slog.String("comic_id", id),
		slog.String("requested_by", requesterID),
	)

	return nil
}

// # Moderation

/*
Approve publishes a pending comic to the public catalog.

Description: Flips the approval flag and notifies the uploader that their
title went live.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comic: The approved entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Approve(context context.Context, id string) (*Comic, error) {

	comic, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.repository.SetApproval(context, id, true); err != nil {
		return nil, fmt.Errorf("comic_service_approve_failed: %w", err)
	}
	comic.IsApproved = true

	service.notifier.Notify(context, comic.UploadedBy,
		fmt.Sprintf("Your comic %q has been approved and is now live on ComicZone!", comic.Title))

	service.logger.Info("comic_approved", slog.String("comic_id", id))

	return comic, nil
}

/*
Reject pulls a comic out of the public catalog.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comic: The rejected entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Reject(context context.Context, id string) (*Comic, error) {

	comic, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.repository.SetApproval(context, id, false); err != nil {
		return nil, fmt.Errorf("comic_service_reject_failed: %w", err)
	}
	comic.IsApproved = false

	service.logger.Info("comic_rejected", slog.String("comic_id", id))

	return comic, nil
}
