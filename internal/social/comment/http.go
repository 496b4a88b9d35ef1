// Copyright (c) 2026 ComicZone. All rights reserved.

/*
Package comment provides the HTTP delivery layer for discussion threads.

# Endpoints

Reading threads is public. Posting, editing, and liking require an
authenticated session. The cross-comic moderation view requires the
moderator role.
*/
package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comiczone/comiczone/internal/platform/middleware"
	requestutil "github.com/comiczone/comiczone/internal/platform/request"
	"github.com/comiczone/comiczone/internal/platform/respond"
	"github.com/comiczone/comiczone/internal/platform/sec"
	"github.com/comiczone/comiczone/internal/platform/validate"
	"github.com/comiczone/comiczone/pkg/pagination"
)

// defaultThreadPageSize is the page size for thread reads when the client
// does not ask for a specific limit.
const defaultThreadPageSize = 10

// Handler implements the HTTP layer for the comment domain.
type Handler struct {
	commentService *Service
}

// NewHandler constructs a new comment [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{commentService: service}
}

// Routes returns a [chi.Router] configured with the comment domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public thread reading
	router.Get("/comic/{comicID}", handler.listForComic)
	router.Get("/{commentID}/replies", handler.listReplies)

	// Participation
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/comic/{comicID}", handler.create)
		r.Patch("/{commentID}", handler.update)
		r.Delete("/{commentID}", handler.delete)
		r.Post("/{commentID}/like", handler.toggleLike)
	})

	// Moderation
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleModerator))
		r.Get("/all", handler.listAll)
		// Moderator removal path kept for dashboard clients; the role makes
		// the ownership check in the shared handler a no-op.
		r.Delete("/admin/{commentID}", handler.delete)
	})

	return router
}

// threadPage parses pagination, substituting the thread default page size
// when no limit is given.
func threadPage(request *http.Request) pagination.Params {
	page := pagination.FromRequest(request)
	if request.URL.Query().Get("limit") == "" {
		page.Limit = defaultThreadPageSize
	}
	return page
}

// # Thread Endpoints

/*
GET /api/v1/comments/comic/{comicID}.

Description: Lists a comic's top-level comments, newest first, each carrying
its author, likes, and replies.

Request:
  - query: page, limit

Response:
  - 200: []Comment with pagination meta
  - 404: ErrNotFound: Unknown comic
*/
func (handler *Handler) listForComic(writer http.ResponseWriter, request *http.Request) {
	page := threadPage(request)

	comments, meta, err := handler.commentService.ListForComic(
		request.Context(),
		chi.URLParam(request, "comicID"),
		page,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, meta)
}

/*
GET /api/v1/comments/{commentID}/replies.

Description: Lists the replies to a comment, oldest first.

Request:
  - query: page, limit

Response:
  - 200: []Comment with pagination meta
  - 404: ErrNotFound: Unknown comment
*/
func (handler *Handler) listReplies(writer http.ResponseWriter, request *http.Request) {
	page := threadPage(request)

	replies, meta, err := handler.commentService.ListReplies(
		request.Context(),
		chi.URLParam(request, "commentID"),
		page,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, replies, meta)
}

/*
GET /api/v1/comments/all.

Description: Lists every comment across all comics for the moderation
dashboard, optionally filtered by a search term matching content, author
username, or comic title. Rows carry the comic title and, for replies, the
parent comment's author username.

Request:
  - query: page, limit, search

Response:
  - 200: []Comment with pagination meta
  - 403: ErrForbidden: Moderator role required
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)

	comments, meta, err := handler.commentService.ListAll(
		request.Context(),
		request.URL.Query().Get("search"),
		page,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, meta)
}

// # Participation Endpoints

// createRequest defines the JSON payload for posting a comment or reply.
type createRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

/*
POST /api/v1/comments/comic/{comicID}.

Description: Posts a comment on a comic, or a reply when parent_id is set.
Replying to another user's comment notifies them.

Request:
  - body: createRequest (Content, optional ParentID)

Response:
  - 201: Comment: The persisted entry
  - 400: ErrValidation: Empty or oversized content
  - 404: ErrNotFound: Unknown comic or parent comment
  - 422: ErrUnprocessable: Reply to a reply, or parent on another comic
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	entry, err := handler.commentService.Create(request.Context(), CreateInput{
		ComicID:  chi.URLParam(request, "comicID"),
		ParentID: input.ParentID,
		AuthorID: userID,
		Content:  input.Content,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

// updateRequest defines the JSON payload for editing a comment.
type updateRequest struct {
	Content string `json:"content"`
}

/*
PATCH /api/v1/comments/{commentID}.

Description: Replaces the content of the requester's own comment and marks
it edited.

Request:
  - body: updateRequest (Content)

Response:
  - 200: Comment: The updated entry
  - 403: ErrForbidden: Not the author
  - 404: ErrNotFound: Unknown comment
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	entry, err := handler.commentService.Edit(
		request.Context(),
		userID,
		chi.URLParam(request, "commentID"),
		input.Content,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
DELETE /api/v1/comments/{commentID}.

Description: Removes a comment and its whole reply thread. Authors may
delete their own comments; moderators may delete any.

Response:
  - 200: {removed}: Number of comments removed
  - 403: ErrForbidden: Not the author nor a moderator
  - 404: ErrNotFound: Unknown comment
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.commentService.Delete(
		request.Context(),
		claims.UserID,
		sec.UserRole(claims.Role),
		chi.URLParam(request, "commentID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{"removed": removed})
}

/*
POST /api/v1/comments/{commentID}/like.

Description: Toggles the requester's like on a comment. Liking another
user's comment notifies them.

Response:
  - 200: likeResponse: Final like state and count
  - 404: ErrNotFound: Unknown comment
*/
func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.commentService.ToggleLike(
		request.Context(),
		userID,
		chi.URLParam(request, "commentID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := "Comment liked"
	if !result.Liked {
		message = "Comment unliked"
	}

	respond.OK(writer, likeResponse{
		Message: message,
		Liked:   result.Liked,
		Likes:   result.LikeCount,
	})
}

// likeResponse is the wire shape for a like toggle.
type likeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
	Likes   int    `json:"likes"`
}
