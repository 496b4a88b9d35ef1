// Copyright (c) 2026 ComicZone. All rights reserved.

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/database/schema"
	"github.com/comiczone/comiczone/pkg/pagination"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the notification Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
ListForUser returns a page of the user's feed, newest first, with the total.

Parameters:
  - context: context.Context
  - userID: string
  - page: pagination.Params

Returns:
  - []Notification: Feed page
  - int: Total feed size
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListForUser(context context.Context, userID string, page pagination.Params) ([]Notification, int, error) {
	t := schema.SocialNotification
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, COUNT(*) OVER() AS total
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT $2 OFFSET $3`,
		t.ID, t.UserID, t.Message, t.Read, t.CreatedAt,
		t.Table, t.UserID, t.CreatedAt, t.ID,
	)

	rows, err := repository.pool.Query(context, query, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_notification_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	var total int
	for rows.Next() {
		entry := Notification{}
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Message, &entry.Read, &entry.CreatedAt, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_notification_repo_scan_failed: %w", err)
		}
		notifications = append(notifications, entry)
	}

	return notifications, total, rows.Err()
}

/*
Create persists a new notification row.

Parameters:
  - context: context.Context
  - notification: *Notification

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, notification *Notification) error {
	t := schema.SocialNotification
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)`,
		t.Table, t.ID, t.UserID, t.Message, t.Read, t.CreatedAt,
	)

	notification.CreatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		notification.ID,
		notification.UserID,
		notification.Message,
		notification.Read,
		notification.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_notification_repo_create_failed: %w", err)
	}

	return nil
}

/*
MarkRead flags one owner-scoped notification as read.

Parameters:
  - context: context.Context
  - userID: string
  - id: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) MarkRead(context context.Context, userID, id string) error {
	t := schema.SocialNotification
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2`,
		t.Table, t.Read, t.ID, t.UserID,
	)

	tag, err := repository.pool.Exec(context, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_notification_repo_mark_read_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Notification not found")
	}

	return nil
}

/*
MarkAllRead flags every unread notification of the user as read.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) MarkAllRead(context context.Context, userID string) error {
	t := schema.SocialNotification
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE`,
		t.Table, t.Read, t.UserID, t.Read,
	)

	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_notification_repo_mark_all_read_failed: %w", err)
	}

	return nil
}

/*
Delete removes one owner-scoped notification.

Parameters:
  - context: context.Context
  - userID: string
  - id: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	t := schema.SocialNotification
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		t.Table, t.ID, t.UserID,
	)

	tag, err := repository.pool.Exec(context, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_notification_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Notification not found")
	}

	return nil
}

/*
DeleteAll clears the user's whole feed.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) DeleteAll(context context.Context, userID string) error {
	t := schema.SocialNotification
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.UserID)

	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_notification_repo_delete_all_failed: %w", err)
	}

	return nil
}

/*
CountUnread returns the user's unread total.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Unread count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) CountUnread(context context.Context, userID string) (int, error) {
	t := schema.SocialNotification
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s = FALSE`,
		t.Table, t.UserID, t.Read,
	)

	var count int
	if err := repository.pool.QueryRow(context, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_notification_repo_count_unread_failed: %w", err)
	}

	return count, nil
}
