// Copyright (c) 2026 ComicZone. All rights reserved.

package comment_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comiczone/comiczone/internal/core/comic"
	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/sec"
	"github.com/comiczone/comiczone/internal/social/comment"
	"github.com/comiczone/comiczone/internal/users/auth"
	"github.com/comiczone/comiczone/pkg/pagination"
	"github.com/comiczone/comiczone/pkg/pointer"
)

// # Test Doubles

// fakeRepository keeps comments and likes in memory, mimicking the ordering
// the Postgres store produces (top level newest first, replies oldest first).
type fakeRepository struct {
	comments map[string]*comment.Comment
	order    []string // insertion order of IDs
	likes    map[string]map[string]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		comments: make(map[string]*comment.Comment),
		likes:    make(map[string]map[string]bool),
	}
}

func (f *fakeRepository) ListForComic(_ context.Context, comicID string, page pagination.Params) ([]comment.Comment, int, error) {
	var topLevel []comment.Comment
	for i := len(f.order) - 1; i >= 0; i-- {
		entry := f.comments[f.order[i]]
		if entry.ComicID == comicID && entry.ParentID == nil {
			hydrated := *entry
			hydrated.Likes = f.likeList(entry.ID)
			hydrated.LikeCount = len(hydrated.Likes)
			hydrated.Replies = f.repliesOf(entry.ID)
			topLevel = append(topLevel, hydrated)
		}
	}

	total := len(topLevel)
	offset := page.Offset()
	if offset > total {
		return []comment.Comment{}, total, nil
	}
	end := offset + page.Limit
	if end > total {
		end = total
	}
	return topLevel[offset:end], total, nil
}

func (f *fakeRepository) ListReplies(_ context.Context, parentID string, page pagination.Params) ([]comment.Comment, int, error) {
	replies := f.repliesOf(parentID)
	total := len(replies)
	offset := page.Offset()
	if offset > total {
		return []comment.Comment{}, total, nil
	}
	end := offset + page.Limit
	if end > total {
		end = total
	}
	return replies[offset:end], total, nil
}

func (f *fakeRepository) ListAll(_ context.Context, search string, page pagination.Params) ([]comment.Comment, int, error) {
	var all []comment.Comment
	for i := len(f.order) - 1; i >= 0; i-- {
		entry := *f.comments[f.order[i]]
		if search != "" && !strings.Contains(entry.Content, search) {
			continue
		}
		if entry.ParentID != nil {
			if parent, ok := f.comments[*entry.ParentID]; ok {
				entry.ParentAuthor = parent.Author.Username
			}
		}
		all = append(all, entry)
	}
	return all, len(all), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*comment.Comment, error) {
	entry, ok := f.comments[id]
	if !ok {
		return nil, apperr.NotFound("Comment")
	}
	hydrated := *entry
	hydrated.Likes = f.likeList(id)
	hydrated.LikeCount = len(hydrated.Likes)
	return &hydrated, nil
}

func (f *fakeRepository) Create(_ context.Context, entry *comment.Comment) error {
	stored := *entry
	f.comments[entry.ID] = &stored
	f.order = append(f.order, entry.ID)
	return nil
}

func (f *fakeRepository) UpdateContent(_ context.Context, id, content string) (time.Time, error) {
	entry, ok := f.comments[id]
	if !ok {
		return time.Time{}, apperr.NotFound("Comment")
	}
	entry.Content = content
	entry.IsEdited = true
	entry.UpdatedAt = time.Now()
	return entry.UpdatedAt, nil
}

func (f *fakeRepository) DeleteCascade(_ context.Context, id string) (int, error) {
	if _, ok := f.comments[id]; !ok {
		return 0, apperr.NotFound("Comment")
	}
	removed := 0
	for storedID, entry := range f.comments {
		if storedID == id || (entry.ParentID != nil && *entry.ParentID == id) {
			delete(f.comments, storedID)
			delete(f.likes, storedID)
			removed++
		}
	}
	remaining := f.order[:0]
	for _, storedID := range f.order {
		if _, ok := f.comments[storedID]; ok {
			remaining = append(remaining, storedID)
		}
	}
	f.order = remaining
	return removed, nil
}

func (f *fakeRepository) AddLike(_ context.Context, commentID, userID string) (bool, error) {
	if f.likes[commentID] == nil {
		f.likes[commentID] = make(map[string]bool)
	}
	if f.likes[commentID][userID] {
		return false, nil
	}
	f.likes[commentID][userID] = true
	return true, nil
}

func (f *fakeRepository) RemoveLike(_ context.Context, commentID, userID string) (bool, error) {
	if !f.likes[commentID][userID] {
		return false, nil
	}
	delete(f.likes[commentID], userID)
	return true, nil
}

func (f *fakeRepository) CountLikes(_ context.Context, commentID string) (int, error) {
	return len(f.likes[commentID]), nil
}

func (f *fakeRepository) likeList(commentID string) []string {
	list := []string{}
	for userID := range f.likes[commentID] {
		list = append(list, userID)
	}
	return list
}

func (f *fakeRepository) repliesOf(parentID string) []comment.Comment {
	var replies []comment.Comment
	for _, storedID := range f.order {
		entry := f.comments[storedID]
		if entry.ParentID != nil && *entry.ParentID == parentID {
			hydrated := *entry
			hydrated.Likes = f.likeList(entry.ID)
			hydrated.LikeCount = len(hydrated.Likes)
			replies = append(replies, hydrated)
		}
	}
	return replies
}

type fakeUsers struct {
	users map[string]*auth.User
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

type fakeComics struct {
	comics map[string]*comic.Comic
}

func (f *fakeComics) FindByID(_ context.Context, id string) (*comic.Comic, error) {
	entry, ok := f.comics[id]
	if !ok {
		return nil, apperr.NotFound("Comic")
	}
	return entry, nil
}

// recordingNotifier captures dispatched notifications for assertions.
type recordingNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	userID  string
	message string
}

func (r *recordingNotifier) Notify(_ context.Context, userID, message string) {
	r.sent = append(r.sent, sentNotification{userID: userID, message: message})
}

// # Fixture

func newTestService(t *testing.T) (*comment.Service, *fakeRepository, *recordingNotifier) {
	t.Helper()

	repo := newFakeRepository()
	users := &fakeUsers{users: map[string]*auth.User{
		"user-alice": {ID: "user-alice", Username: "alice"},
		"user-bob":   {ID: "user-bob", Username: "bob"},
		"user-carol": {ID: "user-carol", Username: "carol"},
	}}
	comics := &fakeComics{comics: map[string]*comic.Comic{
		"comic-1": {ID: "comic-1", Title: "Solar Drift"},
	}}
	notifier := &recordingNotifier{}

	logger := slog.New(slog.DiscardHandler)
	return comment.NewService(repo, users, comics, notifier, logger), repo, notifier
}

func mustCreate(t *testing.T, service *comment.Service, input comment.CreateInput) *comment.Comment {
	t.Helper()
	entry, err := service.Create(context.Background(), input)
	require.NoError(t, err)
	return entry
}

// # Posting

func TestService_Create(t *testing.T) {
	tests := []struct {
		name     string
		input    comment.CreateInput
		wantCode string
	}{
		{
			name:  "valid_comment",
			input: comment.CreateInput{ComicID: "comic-1", AuthorID: "user-alice", Content: "Great chapter!"},
		},
		{
			name:     "empty_content",
			input:    comment.CreateInput{ComicID: "comic-1", AuthorID: "user-alice", Content: "   "},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "content_too_long",
			input:    comment.CreateInput{ComicID: "comic-1", AuthorID: "user-alice", Content: strings.Repeat("x", comment.MaxContentLength+1)},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "unknown_comic",
			input:    comment.CreateInput{ComicID: "comic-missing", AuthorID: "user-alice", Content: "hello"},
			wantCode: "NOT_FOUND",
		},
		{
			name:     "unknown_author",
			input:    comment.CreateInput{ComicID: "comic-1", AuthorID: "user-missing", Content: "hello"},
			wantCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestService(t)

			entry, err := service.Create(context.Background(), tt.input)

			if tt.wantCode != "" {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, tt.wantCode, ae.Code)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, entry.ID)
			assert.Equal(t, "alice", entry.Author.Username)
			assert.Empty(t, entry.Likes)
		})
	}
}

func TestService_Create_TrimsContent(t *testing.T) {
	service, _, _ := newTestService(t)

	entry := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "  spaced out  ",
	})

	assert.Equal(t, "spaced out", entry.Content)
}

func TestService_Create_ReplyNotifiesParentAuthor(t *testing.T) {
	service, _, notifier := newTestService(t)

	parent := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "First!",
	})

	mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-bob", Content: "Welcome",
	})

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "user-alice", notifier.sent[0].userID)
	assert.Equal(t, "bob replied to your comment", notifier.sent[0].message)
}

func TestService_Create_SelfReplyIsSilent(t *testing.T) {
	service, _, notifier := newTestService(t)

	parent := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "First!",
	})

	mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-alice", Content: "Adding context",
	})

	assert.Empty(t, notifier.sent)
}

func TestService_Create_RejectsNestedReply(t *testing.T) {
	service, _, _ := newTestService(t)

	parent := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "Top level",
	})
	reply := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-bob", Content: "A reply",
	})

	_, err := service.Create(context.Background(), comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(reply.ID), AuthorID: "user-carol", Content: "Reply to a reply",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNPROCESSABLE", ae.Code)
}

func TestService_Create_RejectsCrossComicParent(t *testing.T) {
	service, repo, _ := newTestService(t)

	parent := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "On comic one",
	})
	// Reparent the stored row onto another comic to simulate a stale client.
	repo.comments[parent.ID].ComicID = "comic-other"

	_, err := service.Create(context.Background(), comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-bob", Content: "Mismatched",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNPROCESSABLE", ae.Code)
}

// # Browsing

func TestService_ListForComic_Pagination(t *testing.T) {
	service, _, _ := newTestService(t)

	for i := 0; i < 5; i++ {
		mustCreate(t, service, comment.CreateInput{
			ComicID: "comic-1", AuthorID: "user-alice", Content: "entry " + strings.Repeat("i", i+1),
		})
	}

	firstPage, meta, err := service.ListForComic(context.Background(), "comic-1", pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, firstPage, 2)
	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	// Newest first: the last entry posted leads the first page.
	assert.Equal(t, "entry iiiii", firstPage[0].Content)

	lastPage, _, err := service.ListForComic(context.Background(), "comic-1", pagination.Params{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, lastPage, 1)
	assert.Equal(t, "entry i", lastPage[0].Content)
}

func TestService_ListForComic_UnknownComic(t *testing.T) {
	service, _, _ := newTestService(t)

	_, _, err := service.ListForComic(context.Background(), "comic-missing", pagination.Params{Page: 1, Limit: 20})

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_ListReplies_OldestFirst(t *testing.T) {
	service, _, _ := newTestService(t)

	parent := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "Thread start",
	})
	mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-bob", Content: "first reply",
	})
	mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-carol", Content: "second reply",
	})

	replies, meta, err := service.ListReplies(context.Background(), parent.ID, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, "first reply", replies[0].Content)
	assert.Equal(t, "second reply", replies[1].Content)
}

func TestService_ListAll_RepliesCarryParentAuthor(t *testing.T) {
	service, _, _ := newTestService(t)

	parent := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "Thread start",
	})
	mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-bob", Content: "a reply",
	})

	entries, _, err := service.ListAll(context.Background(), "", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: the reply leads, carrying its parent's author.
	assert.Equal(t, "a reply", entries[0].Content)
	assert.Equal(t, "alice", entries[0].ParentAuthor)
	assert.Empty(t, entries[1].ParentAuthor)
}

// # Editing

func TestService_Edit(t *testing.T) {
	service, repo, _ := newTestService(t)

	entry := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "original",
	})

	t.Run("author_can_edit", func(t *testing.T) {
		updated, err := service.Edit(context.Background(), "user-alice", entry.ID, "revised")
		require.NoError(t, err)
		assert.Equal(t, "revised", updated.Content)
		assert.True(t, updated.IsEdited)
	})

	t.Run("edit_refreshes_timestamp", func(t *testing.T) {
		stale := time.Now().Add(-time.Hour)
		repo.comments[entry.ID].UpdatedAt = stale

		updated, err := service.Edit(context.Background(), "user-alice", entry.ID, "revised again")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), updated.UpdatedAt, time.Second)
		assert.True(t, updated.UpdatedAt.After(stale))
	})

	t.Run("stranger_is_forbidden", func(t *testing.T) {
		_, err := service.Edit(context.Background(), "user-bob", entry.ID, "hijacked")
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "FORBIDDEN", ae.Code)
	})

	t.Run("unknown_comment", func(t *testing.T) {
		_, err := service.Edit(context.Background(), "user-alice", "comment-missing", "anything")
		require.Error(t, err)
		assert.True(t, apperr.IsNotFound(err))
	})
}

// # Deletion

func TestService_Delete_CascadesReplies(t *testing.T) {
	service, repo, _ := newTestService(t)

	parent := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "Thread start",
	})
	mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-bob", Content: "reply one",
	})
	mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", ParentID: pointer.To(parent.ID), AuthorID: "user-carol", Content: "reply two",
	})

	removed, err := service.Delete(context.Background(), "user-alice", sec.RoleMember, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Empty(t, repo.comments)
}

func TestService_Delete_Authorization(t *testing.T) {
	tests := []struct {
		name        string
		requesterID string
		role        sec.UserRole
		wantErr     bool
	}{
		{"author_may_delete", "user-alice", sec.RoleMember, false},
		{"moderator_may_delete", "user-bob", sec.RoleModerator, false},
		{"admin_may_delete", "user-bob", sec.RoleAdmin, false},
		{"stranger_forbidden", "user-bob", sec.RoleMember, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestService(t)
			entry := mustCreate(t, service, comment.CreateInput{
				ComicID: "comic-1", AuthorID: "user-alice", Content: "delete me",
			})

			removed, err := service.Delete(context.Background(), tt.requesterID, tt.role, entry.ID)

			if tt.wantErr {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "FORBIDDEN", ae.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, removed)
		})
	}
}

// # Likes

func TestService_ToggleLike_PairIsIdempotent(t *testing.T) {
	service, _, _ := newTestService(t)

	entry := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "likeable",
	})

	liked, err := service.ToggleLike(context.Background(), "user-bob", entry.ID)
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.LikeCount)

	unliked, err := service.ToggleLike(context.Background(), "user-bob", entry.ID)
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, 0, unliked.LikeCount)
}

func TestService_ToggleLike_Notifications(t *testing.T) {
	service, _, notifier := newTestService(t)

	entry := mustCreate(t, service, comment.CreateInput{
		ComicID: "comic-1", AuthorID: "user-alice", Content: "likeable",
	})

	// A like from another user notifies the comment's author.
	_, err := service.ToggleLike(context.Background(), "user-bob", entry.ID)
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "user-alice", notifier.sent[0].userID)
	assert.Equal(t, "bob liked your comment", notifier.sent[0].message)

	// Withdrawing the like is silent.
	_, err = service.ToggleLike(context.Background(), "user-bob", entry.ID)
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)

	// A self-like is silent too.
	_, err = service.ToggleLike(context.Background(), "user-alice", entry.ID)
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)
}

func TestService_ToggleLike_UnknownComment(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.ToggleLike(context.Background(), "user-bob", "comment-missing")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
