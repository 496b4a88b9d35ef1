// Copyright (c) 2026 ComicZone. All rights reserved.

package notification_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/social/notification"
	"github.com/comiczone/comiczone/pkg/pagination"
)

// # Test Doubles

// fakeRepository keeps the feed in memory ordered newest first. Create is
// guarded because the background dispatch path writes from its own goroutine.
type fakeRepository struct {
	mu             sync.Mutex
	entries        []notification.Notification
	countCalls     int
	createAttempts int
	failUnread     bool
	failCreate     bool
}

func (f *fakeRepository) ListForUser(_ context.Context, userID string, page pagination.Params) ([]notification.Notification, int, error) {
	var feed []notification.Notification
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].UserID == userID {
			feed = append(feed, f.entries[i])
		}
	}
	total := len(feed)
	offset := page.Offset()
	if offset > total {
		return []notification.Notification{}, total, nil
	}
	end := offset + page.Limit
	if end > total {
		end = total
	}
	return feed[offset:end], total, nil
}

func (f *fakeRepository) Create(_ context.Context, entry *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createAttempts++
	if f.failCreate {
		return assert.AnError
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeRepository) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeRepository) createAttemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createAttempts
}

func (f *fakeRepository) MarkRead(_ context.Context, userID, id string) error {
	for i := range f.entries {
		if f.entries[i].ID == id && f.entries[i].UserID == userID {
			f.entries[i].Read = true
			return nil
		}
	}
	return apperr.NotFound("Notification")
}

func (f *fakeRepository) MarkAllRead(_ context.Context, userID string) error {
	for i := range f.entries {
		if f.entries[i].UserID == userID {
			f.entries[i].Read = true
		}
	}
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, userID, id string) error {
	for i := range f.entries {
		if f.entries[i].ID == id && f.entries[i].UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Notification")
}

func (f *fakeRepository) DeleteAll(_ context.Context, userID string) error {
	remaining := f.entries[:0]
	for _, entry := range f.entries {
		if entry.UserID != userID {
			remaining = append(remaining, entry)
		}
	}
	f.entries = remaining
	return nil
}

func (f *fakeRepository) CountUnread(_ context.Context, userID string) (int, error) {
	f.countCalls++
	if f.failUnread {
		return 0, assert.AnError
	}
	count := 0
	for _, entry := range f.entries {
		if entry.UserID == userID && !entry.Read {
			count++
		}
	}
	return count, nil
}

// fakeUnreadCache is an in-memory stand-in for the Redis badge cache. Guarded
// for the same reason as the repository's Create path.
type fakeUnreadCache struct {
	mu      sync.Mutex
	values  map[string]int
	failGet bool
	sets    int
	drops   int
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{values: make(map[string]int)}
}

func (f *fakeUnreadCache) Get(_ context.Context, userID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGet {
		return 0, false, assert.AnError
	}
	count, ok := f.values[userID]
	return count, ok, nil
}

func (f *fakeUnreadCache) Set(_ context.Context, userID string, count int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets++
	f.values[userID] = count
	return nil
}

func (f *fakeUnreadCache) Invalidate(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.drops++
	delete(f.values, userID)
	return nil
}

// # Fixture

func newTestService(t *testing.T) (*notification.Service, *fakeRepository, *fakeUnreadCache) {
	t.Helper()

	repo := &fakeRepository{}
	cache := newFakeUnreadCache()
	logger := slog.New(slog.DiscardHandler)
	return notification.NewService(repo, cache, logger), repo, cache
}

func seedFeed(t *testing.T, service *notification.Service, userID string, messages ...string) []notification.Notification {
	t.Helper()

	entries := make([]notification.Notification, 0, len(messages))
	for _, message := range messages {
		entry, err := service.Create(context.Background(), userID, message)
		require.NoError(t, err)
		entries = append(entries, *entry)
	}
	return entries
}

// # Feed Access

func TestService_List_NewestFirst(t *testing.T) {
	service, _, _ := newTestService(t)

	seedFeed(t, service, "user-1", "first", "second", "third")
	seedFeed(t, service, "user-2", "other feed")

	feed, meta, err := service.List(context.Background(), "user-1", pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
	assert.Equal(t, "third", feed[0].Message)
	assert.Equal(t, "second", feed[1].Message)
}

func TestService_UnreadCount_CacheReadThrough(t *testing.T) {
	service, repo, cache := newTestService(t)

	seedFeed(t, service, "user-1", "one", "two")
	repo.countCalls = 0

	// Miss: hits the database and primes the cache.
	count, err := service.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, repo.countCalls)
	assert.Equal(t, 1, cache.sets)

	// Hit: served from cache, no extra database call.
	count, err = service.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, repo.countCalls)
}

func TestService_UnreadCount_CacheFailureFallsBack(t *testing.T) {
	service, repo, cache := newTestService(t)

	seedFeed(t, service, "user-1", "one")
	cache.failGet = true
	repo.countCalls = 0

	count, err := service.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, repo.countCalls)
}

// # Feed Mutations

func TestService_MarkRead(t *testing.T) {
	service, _, cache := newTestService(t)

	entries := seedFeed(t, service, "user-1", "unread one", "unread two")
	drops := cache.drops

	require.NoError(t, service.MarkRead(context.Background(), "user-1", entries[0].ID))
	assert.Greater(t, cache.drops, drops)

	count, err := service.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_MarkRead_ForeignEntry(t *testing.T) {
	service, _, _ := newTestService(t)

	entries := seedFeed(t, service, "user-1", "mine")

	err := service.MarkRead(context.Background(), "user-2", entries[0].ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_MarkAllRead(t *testing.T) {
	service, _, _ := newTestService(t)

	seedFeed(t, service, "user-1", "one", "two", "three")

	require.NoError(t, service.MarkAllRead(context.Background(), "user-1"))

	count, err := service.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_Delete_OwnerScoped(t *testing.T) {
	service, repo, _ := newTestService(t)

	entries := seedFeed(t, service, "user-1", "keep", "remove")

	t.Run("foreign_entry_is_not_found", func(t *testing.T) {
		err := service.Delete(context.Background(), "user-2", entries[1].ID)
		require.Error(t, err)
		assert.True(t, apperr.IsNotFound(err))
		assert.Len(t, repo.entries, 2)
	})

	t.Run("owner_may_delete", func(t *testing.T) {
		require.NoError(t, service.Delete(context.Background(), "user-1", entries[1].ID))
		assert.Len(t, repo.entries, 1)
		assert.Equal(t, "keep", repo.entries[0].Message)
	})
}

func TestService_DeleteAll(t *testing.T) {
	service, repo, _ := newTestService(t)

	seedFeed(t, service, "user-1", "one", "two")
	seedFeed(t, service, "user-2", "untouched")

	require.NoError(t, service.DeleteAll(context.Background(), "user-1"))

	require.Len(t, repo.entries, 1)
	assert.Equal(t, "user-2", repo.entries[0].UserID)
}

// # Delivery

func TestService_Create_InvalidatesBadge(t *testing.T) {
	service, _, cache := newTestService(t)

	// Prime the cache, then deliver; the stale badge must be dropped.
	seedFeed(t, service, "user-1", "first")
	_, err := service.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	require.Contains(t, cache.values, "user-1")

	_, err = service.Create(context.Background(), "user-1", "second")
	require.NoError(t, err)
	assert.NotContains(t, cache.values, "user-1")
}

// # Background Dispatch

func TestService_Notify_PersistsInBackground(t *testing.T) {
	service, repo, _ := newTestService(t)

	service.Notify(context.Background(), "user-1", "bob replied to your comment")

	require.Eventually(t, func() bool {
		return repo.createdCount() == 1
	}, time.Second, 10*time.Millisecond)

	feed, _, err := service.List(context.Background(), "user-1", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "bob replied to your comment", feed[0].Message)
}

func TestService_Notify_SwallowsDeliveryFailure(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.failCreate = true

	// Notify neither blocks nor reports the failure; the entry is dropped.
	service.Notify(context.Background(), "user-1", "bob liked your comment")

	require.Eventually(t, func() bool {
		return repo.createAttemptCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, repo.createdCount())
}
