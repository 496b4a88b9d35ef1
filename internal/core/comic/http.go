// Copyright (c) 2026 ComicZone. All rights reserved.

/*
Package comic provides the HTTP delivery layer for the comic catalog.

# Endpoints

Public browsing is unauthenticated. Publishing requires an authenticated
session and moderation actions require the moderator role or above.
*/
package comic

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/middleware"
	requestutil "github.com/comiczone/comiczone/internal/platform/request"
	"github.com/comiczone/comiczone/internal/platform/respond"
	"github.com/comiczone/comiczone/internal/platform/sec"
	"github.com/comiczone/comiczone/internal/platform/validate"
	"github.com/comiczone/comiczone/pkg/pagination"
	"github.com/comiczone/comiczone/pkg/query"
	"github.com/comiczone/comiczone/pkg/slice"
)

// maxUploadBytes caps a full comic upload (cover plus chapter pages) at 128 MiB.
const maxUploadBytes = 128 << 20

// Handler implements the HTTP layer for the comic domain.
type Handler struct {
	comicService *Service
}

// NewHandler constructs a new comic [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{comicService: service}
}

// Routes returns a [chi.Router] configured with the comic domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public catalog
	router.Get("/", handler.listApproved)
	router.Get("/slug/{slug}", handler.getBySlug)
	router.Get("/user/{userID}", handler.listByUploader)
	router.Get("/{id}", handler.getByID)

	// Publishing
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Get("/mine", handler.listMine)
		r.Patch("/{id}", handler.update)
		r.Post("/{id}/chapters", handler.addChapters)
		r.Delete("/{id}", handler.delete)
	})

	// Moderation
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleModerator))
		r.Get("/all", handler.listAll)
		r.Patch("/{id}/approve", handler.approve)
		r.Patch("/{id}/reject", handler.reject)
	})

	return router
}

// # Catalog Endpoints

/*
GET /api/v1/comics.

Description: Lists the approved public catalog, newest first.

Request:
  - query: page, limit, genre, q (title/author search)

Response:
  - 200: []Comic with pagination meta
*/
func (handler *Handler) listApproved(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)

	comics, meta, err := handler.comicService.ListApproved(
		request.Context(),
		request.URL.Query().Get("genre"),
		request.URL.Query().Get("q"),
		page,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, meta)
}

/*
GET /api/v1/comics/all.

Description: Lists every comic, including unapproved submissions, for the
moderation dashboard.

Request:
  - query: page, limit, q

Response:
  - 200: []Comic with pagination meta
  - 403: ErrForbidden: Moderator role required
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)

	comics, meta, err := handler.comicService.ListAll(request.Context(), request.URL.Query().Get("q"), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, meta)
}

/*
GET /api/v1/comics/mine.

Description: Lists the authenticated user's own uploads regardless of
approval state.

Response:
  - 200: []Comic with pagination meta
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	comics, meta, err := handler.comicService.ListByUploader(request.Context(), userID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, meta)
}

/*
GET /api/v1/comics/user/{userID}.

Description: Lists comics uploaded by a specific user.

Response:
  - 200: []Comic with pagination meta
*/
func (handler *Handler) listByUploader(writer http.ResponseWriter, request *http.Request) {
	uploaderID := chi.URLParam(request, "userID")

	page := pagination.FromRequest(request)
	comics, meta, err := handler.comicService.ListByUploader(request.Context(), uploaderID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, meta)
}

/*
GET /api/v1/comics/{id}.

Response:
  - 200: Comic
  - 404: ErrNotFound: Unknown comic
*/
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	comic, err := handler.comicService.Get(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
GET /api/v1/comics/slug/{slug}.

Response:
  - 200: Comic
  - 404: ErrNotFound: Unknown slug
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	comic, err := handler.comicService.GetBySlug(request.Context(), chi.URLParam(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

// # Publishing Endpoints

/*
POST /api/v1/comics.

Description: Uploads a new comic. Accepts a multipart form carrying metadata
fields plus a "cover_image" file part and zero or more "chapters" file parts.
Non-admin uploads enter the moderation queue unapproved.

Request:
  - multipart/form-data: title, author, status, summary, genres,
    cover_image (file), chapters (files)

Response:
  - 201: Comic: The persisted submission
  - 400: ErrValidation: Missing metadata or cover image
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxUploadBytes)
	if err := request.ParseMultipartForm(32 << 20); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart payload"))
		return
	}

	input := CreateInput{
		Title:      request.FormValue(FieldTitle),
		Author:     request.FormValue(FieldAuthor),
		Status:     request.FormValue(FieldStatus),
		Summary:    request.FormValue(FieldSummary),
		Genres:     formGenres(request),
		UploadedBy: claims.UserID,
	}

	cover, coverHeader, err := request.FormFile(FieldCover)
	if err == nil {
		defer cover.Close()
		input.Cover = &FileUpload{
			Filename:    coverHeader.Filename,
			ContentType: coverHeader.Header.Get("Content-Type"),
			Size:        coverHeader.Size,
			Reader:      cover,
		}
	}

	for _, chapterHeader := range request.MultipartForm.File["chapters"] {
		chapter, err := chapterHeader.Open()
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Unreadable chapter file"))
			return
		}
		defer chapter.Close()

		input.Chapters = append(input.Chapters, FileUpload{
			Filename:    chapterHeader.Filename,
			ContentType: chapterHeader.Header.Get("Content-Type"),
			Size:        chapterHeader.Size,
			Reader:      chapter,
		})
	}

	comic, err := handler.comicService.Create(request.Context(), input, sec.UserRole(claims.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comic)
}

// formGenres collects genre values, accepting both repeated fields and a
// single comma-separated value.
func formGenres(request *http.Request) []string {
	values := request.MultipartForm.Value[FieldGenres]
	if len(values) == 1 {
		return query.StringSlice(values[0])
	}
	trimmed := slice.Map(values, strings.TrimSpace)
	return slice.Filter(trimmed, func(genre string) bool { return genre != "" })
}

// updateRequest defines the JSON payload for metadata updates.
type updateRequest struct {
	Title   *string  `json:"title"`
	Author  *string  `json:"author"`
	Status  *string  `json:"status"`
	Summary *string  `json:"summary"`
	Genres  []string `json:"genres"`
}

/*
PATCH /api/v1/comics/{id}.

Description: Applies partial metadata updates. Restricted to the uploader
or a moderator.

Request:
  - body: updateRequest (Partial JSON)

Response:
  - 200: Comic: The updated entity
  - 403: ErrForbidden: Not the uploader
  - 404: ErrNotFound: Unknown comic
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	comic, err := handler.comicService.Update(
		request.Context(),
		claims.UserID,
		sec.UserRole(claims.Role),
		chi.URLParam(request, "id"),
		UpdateInput{
			Title:   input.Title,
			Author:  input.Author,
			Status:  input.Status,
			Summary: input.Summary,
			Genres:  input.Genres,
		},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
POST /api/v1/comics/{id}/chapters.

Description: Appends chapter pages to an existing comic. Accepts a multipart
form with one or more "chapters" file parts.

Response:
  - 200: Comic: Entity with the extended chapter list
  - 400: ErrValidation: No chapter files provided
  - 403: ErrForbidden: Not the uploader
*/
func (handler *Handler) addChapters(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxUploadBytes)
	if err := request.ParseMultipartForm(32 << 20); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart payload"))
		return
	}

	var chapters []FileUpload
	for _, chapterHeader := range request.MultipartForm.File["chapters"] {
		chapter, err := chapterHeader.Open()
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Unreadable chapter file"))
			return
		}
		defer chapter.Close()

		chapters = append(chapters, FileUpload{
			Filename:    chapterHeader.Filename,
			ContentType: chapterHeader.Header.Get("Content-Type"),
			Size:        chapterHeader.Size,
			Reader:      chapter,
		})
	}

	comic, err := handler.comicService.AddChapters(
		request.Context(),
		claims.UserID,
		sec.UserRole(claims.Role),
		chi.URLParam(request, "id"),
		chapters,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
DELETE /api/v1/comics/{id}.

Description: Removes a comic from all listings. Restricted to the uploader
or a moderator.

Response:
  - 204: No Content: Comic removed
  - 403: ErrForbidden: Not the uploader
  - 404: ErrNotFound: Unknown comic
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.comicService.Delete(
		request.Context(),
		claims.UserID,
		sec.UserRole(claims.Role),
		chi.URLParam(request, "id"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Moderation Endpoints

/*
PATCH /api/v1/comics/{id}/approve.

Description: Publishes a pending comic and notifies its uploader.

Response:
  - 200: Comic: The approved entity
  - 403: ErrForbidden: Moderator role required
  - 404: ErrNotFound: Unknown comic
*/
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	comic, err := handler.comicService.Approve(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
PATCH /api/v1/comics/{id}/reject.

Description: Pulls a comic out of the public catalog.

Response:
  - 200: Comic: The rejected entity
  - 403: ErrForbidden: Moderator role required
  - 404: ErrNotFound: Unknown comic
*/
func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	comic, err := handler.comicService.Reject(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}
