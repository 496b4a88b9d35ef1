// Copyright (c) 2026 ComicZone. All rights reserved.

/*
Package notification provides the HTTP delivery layer for the user feed.

# Security

Every endpoint requires an authenticated session; each user can only read
and mutate their own feed. Direct creation is reserved for administrators.
*/
package notification

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

// Handler implements the HTTP layer for the notification domain.
type Handler struct {
	notificationService *Service
}

// NewHandler constructs a new notification [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{notificationService: service}
}

// Routes returns a [chi.Router] configured with the notification endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.list)
		r.Get("/unread/count", handler.unreadCount)
		r.Patch("/read-all", handler.markAllRead)
		r.Patch("/{id}/read", handler.markRead)
		r.Delete("/", handler.deleteAll)
		r.Delete("/{id}", handler.delete)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Post("/", handler.create)
	})

	return router
}

/*
GET /api/v1/notifications.

Description: Lists the authenticated user's feed, newest first.

Request:
  - query: page, limit

Response:
  - 200: []Notification with pagination meta
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	notifications, meta, err := handler.notificationService.List(request.Context(), userID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, notifications, meta)
}

/*
GET /api/v1/notifications/unread/count.

Description: Returns the unread badge count, served from the Redis cache
when fresh.

Response:
  - 200: {count}
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) unreadCount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.notificationService.UnreadCount(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{"count": count})
}

/*
PATCH /api/v1/notifications/{id}/read.

Description: Marks one of the user's notifications as read.

Response:
  - 204: No Content: Entry marked read
  - 404: ErrNotFound: Missing or foreign entry
*/
func (handler *Handler) markRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.notificationService.MarkRead(request.Context(), userID, chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/notifications/read-all.

Description: Marks the user's whole feed as read.

Response:
  - 204: No Content: Feed marked read
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) markAllRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.notificationService.MarkAllRead(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/notifications/{id}.

Description: Removes one of the user's notifications.

Response:
  - 204: No Content: Entry removed
  - 404: ErrNotFound: Missing or foreign entry
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.notificationService.Delete(request.Context(), userID, chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/notifications.

Description: Clears the user's whole feed.

Response:
  - 204: No Content: Feed cleared
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteAll(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.notificationService.DeleteAll(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// createRequest defines the administrative JSON payload for direct creation.
type createRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

/*
POST /api/v1/notifications.

Description: Creates a notification for an arbitrary user. Administrative
escape hatch for announcements.

Request:
  - body: createRequest (UserID, Message)

Response:
  - 201: Notification: The persisted entry
  - 403: ErrForbidden: Admin role required
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("user_id", input.UserID).
		UUID("user_id", input.UserID).
		Required("message", input.Message).
		MaxLen("message", input.Message, 500)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.notificationService.Create(request.Context(), input.UserID, input.Message)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}
