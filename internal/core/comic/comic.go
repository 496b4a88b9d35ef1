// Copyright (c) 2026 ComicZone. All rights reserved.

/*
Package comic implements the comic publication domain.

It covers the full publication lifecycle: upload of cover and chapter images,
catalog browsing, uploader dashboards, and the moderation approval queue that
gates which titles appear in the public catalog.

# Architecture

  - Entity: Comic is the aggregate root. Chapter pages are stored as an
    ordered list of image URLs on the comic itself.
  - Repository: Abstracted persistence contract implemented by Postgres.
  - Service: Business rules (ownership, approval gating, media upload).
*/
package comic

import (
	"context"
	"io"
	"time"

	"github.com/comiczone/comiczone/pkg/pagination"
)

// # Publication Status

const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusHiatus    = "hiatus"
)

// # Domain Entities

// Comic represents a published (or pending) comic title.
type Comic struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Author     string    `json:"author"`
	Status     string    `json:"status"`
	Summary    string    `json:"summary,omitempty"`
	Genres     []string  `json:"genres"`
	CoverURL   string    `json:"cover_url,omitempty"`
	Chapters   []string  `json:"chapters"`
	UploadedBy string    `json:"uploaded_by"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FileUpload carries a streamed multipart file part into the service layer.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ListFilter narrows catalog queries.
type ListFilter struct {
	ApprovedOnly bool
	Genre        string
	Search       string // Matches title or author, case-insensitive
	UploadedBy   string
}

// # Repository Contract

// Repository defines the persistence contract for comics.
type Repository interface {

	/*
		List returns a page of comics matching the filter, newest first.

		Parameters:
		  - context: context.Context
		  - filter: ListFilter
		  - page: pagination.Params

		Returns:
		  - []Comic: Hydrated entities
		  - int: Total row count matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter ListFilter, page pagination.Params) ([]Comic, int, error)

	/*
		FindByID returns the comic with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Comic: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*Comic, error)

	/*
		FindBySlug returns the comic with the given URL slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Comic: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindBySlug(context context.Context, slug string) (*Comic, error)

	/*
		Create persists a brand-new comic.

		Parameters:
		  - context: context.Context
		  - comic: *Comic

		Returns:
		  - error: Constraint violations or persistence failures
	*/
	Create(context context.Context, comic *Comic) error

	/*
		Update persists changes to mutable metadata fields.

		Parameters:
		  - context: context.Context
		  - comic: *Comic

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, comic *Comic) error

	/*
		AddChapters appends page URLs to the comic's chapter list.

		Parameters:
		  - context: context.Context
		  - id: string
		  - pages: []string

		Returns:
		  - error: Persistence failures
	*/
	AddChapters(context context.Context, id string, pages []string) error

	/*
		SetApproval flips the moderation flag for a comic.

		Parameters:
		  - context: context.Context
		  - id: string
		  - approved: bool

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	SetApproval(context context.Context, id string, approved bool) error

	/*
		SoftDelete removes the comic from all listings without dropping the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error
}

// # Collaborators

// Notifier delivers user-facing notifications emitted by moderation decisions.
// Delivery is best-effort and must never block or fail the calling operation.
type Notifier interface {
	Notify(context context.Context, userID, message string)
}

// # Field Identifiers

const (
	FieldTitle   = "title"
	FieldAuthor  = "author"
	FieldStatus  = "status"
	FieldSummary = "summary"
	FieldGenres  = "genres"
	FieldCover   = "cover_image"
)
