// Copyright (c) 2026 ComicZone. All rights reserved.

package comic_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comiczone/comiczone/internal/core/comic"
	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/sec"
	"github.com/comiczone/comiczone/pkg/pagination"
	"github.com/comiczone/comiczone/pkg/pointer"
)

// # Test Doubles

type fakeRepository struct {
	comics map[string]*comic.Comic
	order  []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{comics: make(map[string]*comic.Comic)}
}

func (f *fakeRepository) List(_ context.Context, filter comic.ListFilter, page pagination.Params) ([]comic.Comic, int, error) {
	var matches []comic.Comic
	for i := len(f.order) - 1; i >= 0; i-- {
		entry := f.comics[f.order[i]]
		if filter.ApprovedOnly && !entry.IsApproved {
			continue
		}
		if filter.UploadedBy != "" && entry.UploadedBy != filter.UploadedBy {
			continue
		}
		if filter.Genre != "" {
			found := false
			for _, genre := range entry.Genres {
				if genre == filter.Genre {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(entry.Title), strings.ToLower(filter.Search)) {
			continue
		}
		matches = append(matches, *entry)
	}

	total := len(matches)
	offset := page.Offset()
	if offset > total {
		return []comic.Comic{}, total, nil
	}
	end := offset + page.Limit
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*comic.Comic, error) {
	entry, ok := f.comics[id]
	if !ok {
		return nil, apperr.NotFound("Comic")
	}
	clone := *entry
	return &clone, nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, comicSlug string) (*comic.Comic, error) {
	for _, entry := range f.comics {
		if entry.Slug == comicSlug {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Comic")
}

func (f *fakeRepository) Create(_ context.Context, entry *comic.Comic) error {
	stored := *entry
	f.comics[entry.ID] = &stored
	f.order = append(f.order, entry.ID)
	return nil
}

func (f *fakeRepository) Update(_ context.Context, entry *comic.Comic) error {
	if _, ok := f.comics[entry.ID]; !ok {
		return apperr.NotFound("Comic")
	}
	stored := *entry
	f.comics[entry.ID] = &stored
	return nil
}

func (f *fakeRepository) AddChapters(_ context.Context, id string, pages []string) error {
	entry, ok := f.comics[id]
	if !ok {
		return apperr.NotFound("Comic")
	}
	entry.Chapters = append(entry.Chapters, pages...)
	return nil
}

func (f *fakeRepository) SetApproval(_ context.Context, id string, approved bool) error {
	entry, ok := f.comics[id]
	if !ok {
		return apperr.NotFound("Comic")
	}
	entry.IsApproved = approved
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.comics[id]; !ok {
		return apperr.NotFound("Comic")
	}
	delete(f.comics, id)
	return nil
}

// fakeStore records uploads and returns deterministic URLs.
type fakeStore struct {
	keys []string
}

func (f *fakeStore) Put(_ context.Context, key, _ string, _ io.Reader, _ int64) (string, error) {
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

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

func newTestService(t *testing.T) (*comic.Service, *fakeRepository, *fakeStore, *recordingNotifier) {
	t.Helper()

	repo := newFakeRepository()
	store := &fakeStore{}
	notifier := &recordingNotifier{}
	logger := slog.New(slog.DiscardHandler)
	return comic.NewService(repo, store, notifier, logger), repo, store, notifier
}

func coverUpload() *comic.FileUpload {
	return &comic.FileUpload{
		Filename:    "cover.png",
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("PNG!"),
	}
}

func validInput(uploadedBy string) comic.CreateInput {
	return comic.CreateInput{
		Title:      "Solar Drift",
		Author:     "R. Vance",
		Status:     comic.StatusOngoing,
		Summary:    "A courier crew surfs the solar wind.",
		Genres:     []string{"sci-fi", "adventure"},
		UploadedBy: uploadedBy,
		Cover:      coverUpload(),
	}
}

// # Publication

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*comic.CreateInput)
	}{
		{"missing_title", func(input *comic.CreateInput) { input.Title = "" }},
		{"title_too_long", func(input *comic.CreateInput) { input.Title = strings.Repeat("t", 201) }},
		{"missing_author", func(input *comic.CreateInput) { input.Author = "" }},
		{"bad_status", func(input *comic.CreateInput) { input.Status = "Paused" }},
		{"summary_too_long", func(input *comic.CreateInput) { input.Summary = strings.Repeat("s", 2001) }},
		{"missing_cover", func(input *comic.CreateInput) { input.Cover = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, _ := newTestService(t)

			input := validInput("user-1")
			tt.mutate(&input)

			_, err := service.Create(context.Background(), input, sec.RoleMember)

			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		})
	}
}

func TestService_Create_ApprovalByRole(t *testing.T) {
	tests := []struct {
		name         string
		role         sec.UserRole
		wantApproved bool
	}{
		{"member_enters_moderation_queue", sec.RoleMember, false},
		{"author_enters_moderation_queue", sec.RoleAuthor, false},
		{"moderator_enters_moderation_queue", sec.RoleModerator, false},
		{"admin_goes_live_immediately", sec.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, _ := newTestService(t)

			created, err := service.Create(context.Background(), validInput("user-1"), tt.role)

			require.NoError(t, err)
			assert.Equal(t, tt.wantApproved, created.IsApproved)
		})
	}
}

func TestService_Create_StoresMedia(t *testing.T) {
	service, _, store, _ := newTestService(t)

	input := validInput("user-1")
	input.Chapters = []comic.FileUpload{
		{Filename: "page1.jpg", ContentType: "image/jpeg", Size: 3, Reader: strings.NewReader("one")},
		{Filename: "page2.jpg", ContentType: "image/jpeg", Size: 3, Reader: strings.NewReader("two")},
	}

	created, err := service.Create(context.Background(), input, sec.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, "solar-drift", created.Slug)
	assert.True(t, strings.HasPrefix(created.CoverURL, "https://cdn.test/covers/"+created.ID+"/"))
	require.Len(t, created.Chapters, 2)
	assert.True(t, strings.HasPrefix(created.Chapters[0], "https://cdn.test/chapters/"+created.ID+"/"))
	assert.Len(t, store.keys, 3)
}

func TestService_Create_SlugCollisionGetsSuffix(t *testing.T) {
	service, _, _, _ := newTestService(t)

	first, err := service.Create(context.Background(), validInput("user-1"), sec.RoleMember)
	require.NoError(t, err)

	second, err := service.Create(context.Background(), validInput("user-2"), sec.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, "solar-drift", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "solar-drift-"))
}

// # Catalog Browsing

func TestService_ListApproved_HidesModerationQueue(t *testing.T) {
	service, _, _, _ := newTestService(t)

	pending, err := service.Create(context.Background(), validInput("user-1"), sec.RoleMember)
	require.NoError(t, err)

	live := validInput("user-2")
	live.Title = "Iron Orchard"
	_, err = service.Create(context.Background(), live, sec.RoleAdmin)
	require.NoError(t, err)

	catalog, meta, err := service.ListApproved(context.Background(), "", "", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Iron Orchard", catalog[0].Title)
	assert.Equal(t, 1, meta.Total)

	// The moderation view still sees both.
	queue, _, err := service.ListAll(context.Background(), "", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	_ = pending
}

// # Ownership

func TestService_Update_Authorization(t *testing.T) {
	tests := []struct {
		name        string
		requesterID string
		role        sec.UserRole
		wantErr     bool
	}{
		{"uploader_may_edit", "user-1", sec.RoleMember, false},
		{"moderator_may_edit", "user-2", sec.RoleModerator, false},
		{"stranger_forbidden", "user-2", sec.RoleMember, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, _ := newTestService(t)

			created, err := service.Create(context.Background(), validInput("user-1"), sec.RoleMember)
			require.NoError(t, err)

			newTitle := "Solar Drift: Redux"
			updated, err := service.Update(context.Background(), tt.requesterID, tt.role, created.ID, comic.UpdateInput{
				Title: pointer.To(newTitle),
			})

			if tt.wantErr {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "FORBIDDEN", ae.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, newTitle, updated.Title)
			// Existing links keep working.
			assert.Equal(t, created.Slug, updated.Slug)
		})
	}
}

func TestService_AddChapters(t *testing.T) {
	service, _, _, _ := newTestService(t)

	created, err := service.Create(context.Background(), validInput("user-1"), sec.RoleMember)
	require.NoError(t, err)

	t.Run("empty_batch_rejected", func(t *testing.T) {
		_, err := service.AddChapters(context.Background(), "user-1", sec.RoleMember, created.ID, nil)
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("appends_pages", func(t *testing.T) {
		updated, err := service.AddChapters(context.Background(), "user-1", sec.RoleMember, created.ID, []comic.FileUpload{
			{Filename: "page3.jpg", ContentType: "image/jpeg", Size: 5, Reader: strings.NewReader("three")},
		})
		require.NoError(t, err)
		assert.Len(t, updated.Chapters, 1)
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		_, err := service.AddChapters(context.Background(), "user-2", sec.RoleMember, created.ID, []comic.FileUpload{
			{Filename: "page4.jpg", ContentType: "image/jpeg", Size: 4, Reader: strings.NewReader("four")},
		})
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "FORBIDDEN", ae.Code)
	})
}

// # Moderation

func TestService_Approve_NotifiesUploader(t *testing.T) {
	service, _, _, notifier := newTestService(t)

	created, err := service.Create(context.Background(), validInput("user-1"), sec.RoleMember)
	require.NoError(t, err)
	require.False(t, created.IsApproved)

	approved, err := service.Approve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "user-1", notifier.sent[0].userID)
	assert.Equal(t, `Your comic "Solar Drift" has been approved and is now live on ComicZone!`, notifier.sent[0].message)
}

func TestService_Reject_IsSilent(t *testing.T) {
	service, _, _, notifier := newTestService(t)

	created, err := service.Create(context.Background(), validInput("user-1"), sec.RoleAdmin)
	require.NoError(t, err)
	require.True(t, created.IsApproved)

	rejected, err := service.Reject(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)
	assert.Empty(t, notifier.sent)
}

func TestService_Approve_UnknownComic(t *testing.T) {
	service, _, _, _ := newTestService(t)

	_, err := service.Approve(context.Background(), "comic-missing")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_Delete(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	created, err := service.Create(context.Background(), validInput("user-1"), sec.RoleMember)
	require.NoError(t, err)

	t.Run("stranger_forbidden", func(t *testing.T) {
		err := service.Delete(context.Background(), "user-2", sec.RoleMember, created.ID)
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "FORBIDDEN", ae.Code)
	})

	t.Run("uploader_may_delete", func(t *testing.T) {
		require.NoError(t, service.Delete(context.Background(), "user-1", sec.RoleMember, created.ID))
		assert.Empty(t, repo.comics)
	})
}
