// Copyright (c) 2026 ComicZone. All rights reserved.

package comment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/database/schema"
	"github.com/comiczone/comiczone/pkg/pagination"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the comment Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// baseSelect joins each comment with its author profile and aggregates the
// IDs of the users who liked it. The aliases c, u, and l are stable across
// every query in this file.
func baseSelect(extraColumns, extraJoins string) string {
	c := schema.SocialComment
	u := schema.UserAccount
	cl := schema.SocialCommentLike

	return fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
		       u.%s, u.%s, u.%s,
		       COALESCE(l.userids, '{}')%s
		FROM %s c
		JOIN %s u ON u.%s = c.%s
		LEFT JOIN LATERAL (
			SELECT array_agg(cl.%s ORDER BY cl.%s) AS userids
			FROM %s cl
			WHERE cl.%s = c.%s
		) l ON TRUE%s`,
		c.ID, c.ComicID, c.ParentID, c.Content, c.IsEdited, c.CreatedAt, c.UpdatedAt,
		u.ID, u.Username, u.ProfileImage,
		extraColumns,
		c.Table,
		u.Table, u.ID, c.UserID,
		cl.UserID, cl.CreatedAt,
		cl.Table,
		cl.CommentID, c.ID,
		extraJoins,
	)
}

// scanInto hydrates one comment plus any trailing destinations (for totals
// or extra joined columns).
func scanInto(row pgx.Row, entry *Comment, extra ...any) error {
	dest := []any{
		&entry.ID,
		&entry.ComicID,
		&entry.ParentID,
		&entry.Content,
		&entry.IsEdited,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.Author.ID,
		&entry.Author.Username,
		&entry.Author.ProfileImage,
		&entry.Likes,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return err
	}

	if entry.Likes == nil {
		entry.Likes = []string{}
	}
	entry.LikeCount = len(entry.Likes)
	return nil
}

/*
ListForComic returns a page of a comic's top-level comments, newest first,
with each comment's replies attached oldest first.

Description: The page and its unpaged total arrive in one round trip via
COUNT(*) OVER(). Replies for the whole page are fetched in a single second
query and stitched in memory.

Parameters:
  - context: context.Context
  - comicID: string
  - page: pagination.Params

Returns:
  - []Comment: Hydrated thread page
  - int: Total top-level comment count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListForComic(context context.Context, comicID string, page pagination.Params) ([]Comment, int, error) {
	c := schema.SocialComment
	query := baseSelect(", COUNT(*) OVER() AS total", "") + fmt.Sprintf(`
		WHERE c.%s = $1 AND c.%s IS NULL
		ORDER BY c.%s DESC, c.%s DESC
		LIMIT $2 OFFSET $3`,
		c.ComicID, c.ParentID, c.CreatedAt, c.ID,
	)

	rows, err := repository.pool.Query(context, query, comicID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_comment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	var total int
	var parentIDs []string
	for rows.Next() {
		entry := Comment{}
		if err := scanInto(rows, &entry, &total); err != nil {
			return nil, 0, fmt.Errorf("postgres_comment_repo_scan_failed: %w", err)
		}
		comments = append(comments, entry)
		parentIDs = append(parentIDs, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(parentIDs) > 0 {
		if err := repository.attachReplies(context, comments, parentIDs); err != nil {
			return nil, 0, err
		}
	}

	return comments, total, nil
}

// attachReplies hydrates the replies for a page of top-level comments.
func (repository *PostgresRepository) attachReplies(context context.Context, comments []Comment, parentIDs []string) error {
	c := schema.SocialComment
	query := baseSelect("", "") + fmt.Sprintf(`
		WHERE c.%s = ANY($1)
		ORDER BY c.%s ASC, c.%s ASC`,
		c.ParentID, c.CreatedAt, c.ID,
	)

	rows, err := repository.pool.Query(context, query, parentIDs)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_replies_failed: %w", err)
	}
	defer rows.Close()

	byParent := make(map[string][]Comment, len(parentIDs))
	for rows.Next() {
		reply := Comment{}
		if err := scanInto(rows, &reply); err != nil {
			return fmt.Errorf("postgres_comment_repo_reply_scan_failed: %w", err)
		}
		byParent[*reply.ParentID] = append(byParent[*reply.ParentID], reply)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range comments {
		comments[i].Replies = byParent[comments[i].ID]
	}
	return nil
}

/*
ListReplies returns a page of replies to a comment, oldest first.

Parameters:
  - context: context.Context
  - parentID: string
  - page: pagination.Params

Returns:
  - []Comment: Hydrated replies
  - int: Total reply count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListReplies(context context.Context, parentID string, page pagination.Params) ([]Comment, int, error) {
	c := schema.SocialComment
	query := baseSelect(", COUNT(*) OVER() AS total", "") + fmt.Sprintf(`
		WHERE c.%s = $1
		ORDER BY c.%s ASC, c.%s ASC
		LIMIT $2 OFFSET $3`,
		c.ParentID, c.CreatedAt, c.ID,
	)

	rows, err := repository.pool.Query(context, query, parentID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_comment_repo_list_replies_failed: %w", err)
	}
	defer rows.Close()

	var replies []Comment
	var total int
	for rows.Next() {
		reply := Comment{}
		if err := scanInto(rows, &reply, &total); err != nil {
			return nil, 0, fmt.Errorf("postgres_comment_repo_scan_failed: %w", err)
		}
		replies = append(replies, reply)
	}

	return replies, total, rows.Err()
}

/*
ListAll returns a moderation page across every comment, newest first.

Description: Joins the comic table so each row carries its comic title, and
self-joins the comment table so replies carry the parent comment's author
username. The search term matches the content, the author's username, or the
comic title.

Parameters:
  - context: context.Context
  - search: string
  - page: pagination.Params

Returns:
  - []Comment: Hydrated entities with comic titles
  - int: Total matching count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListAll(context context.Context, search string, page pagination.Params) ([]Comment, int, error) {
	c := schema.SocialComment
	m := schema.CoreComic
	u := schema.UserAccount

	extraJoins := fmt.Sprintf("\n\t\tJOIN %s m ON m.%s = c.%s", m.Table, m.ID, c.ComicID) +
		fmt.Sprintf("\n\t\tLEFT JOIN %s pc ON pc.%s = c.%s", c.Table, c.ID, c.ParentID) +
		fmt.Sprintf("\n\t\tLEFT JOIN %s pu ON pu.%s = pc.%s", u.Table, u.ID, c.UserID)
	extraColumns := fmt.Sprintf(", m.%s, COALESCE(pu.%s, '') AS parentauthor, COUNT(*) OVER() AS total",
		m.Title, u.Username,
	)
	query := baseSelect(extraColumns, extraJoins)

	args := []any{page.Limit, page.Offset()}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(`
		WHERE c.%s ILIKE $3 OR u.%s ILIKE $3 OR m.%s ILIKE $3`,
			c.Content, u.Username, m.Title,
		)
	}
	query += fmt.Sprintf(`
		ORDER BY c.%s DESC, c.%s DESC
		LIMIT $1 OFFSET $2`,
		c.CreatedAt, c.ID,
	)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_comment_repo_list_all_failed: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	var total int
	for rows.Next() {
		entry := Comment{}
		if err := scanInto(rows, &entry, &entry.ComicTitle, &entry.ParentAuthor, &total); err != nil {
			return nil, 0, fmt.Errorf("postgres_comment_repo_scan_failed: %w", err)
		}
		comments = append(comments, entry)
	}

	return comments, total, rows.Err()
}

/*
FindByID returns a single hydrated comment.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comment: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comment, error) {
	c := schema.SocialComment
	query := baseSelect("", "") + fmt.Sprintf(`
		WHERE c.%s = $1`, c.ID)

	entry := &Comment{}
	err := scanInto(repository.pool.QueryRow(context, query, id), entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, fmt.Errorf("postgres_comment_repo_find_failed: %w", err)
	}

	return entry, nil
}

/*
Create persists a new comment row.

Parameters:
  - context: context.Context
  - comment: *Comment

Returns:
  - error: Constraint violations or persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, comment *Comment) error {
	c := schema.SocialComment
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.Table,
		c.ID, c.UserID, c.ComicID, c.ParentID, c.Content, c.IsEdited, c.CreatedAt, c.UpdatedAt,
	)

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		comment.ID,
		comment.Author.ID,
		comment.ComicID,
		comment.ParentID,
		comment.Content,
		comment.IsEdited,
		comment.CreatedAt,
		comment.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_comment_repo_create_failed: %w", err)
	}

	return nil
}

/*
UpdateContent replaces the body and permanently marks the comment edited.

Parameters:
  - context: context.Context
  - id: string
  - content: string

Returns:
  - time.Time: The refreshed update timestamp
  - error: Persistence failures
*/
func (repository *PostgresRepository) UpdateContent(context context.Context, id, content string) (time.Time, error) {
	c := schema.SocialComment
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = TRUE, %s = $3
		WHERE %s = $1`,
		c.Table, c.Content, c.IsEdited, c.UpdatedAt, c.ID,
	)

	now := time.Now()
	_, err := repository.pool.Exec(context, query, id, content, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("postgres_comment_repo_update_failed: %w", err)
	}

	return now, nil
}

/*
DeleteCascade removes a comment and every reply pointing at it in one
statement. Like rows vanish through the foreign key cascade.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - int: Number of comments removed
  - error: Persistence failures
*/
func (repository *PostgresRepository) DeleteCascade(context context.Context, id string) (int, error) {
	c := schema.SocialComment
	query := fmt.Sprintf(`
		WITH removed AS (
			DELETE FROM %s
			WHERE %s = $1 OR %s = $1
			RETURNING %s
		)
		SELECT COUNT(*) FROM removed`,
		c.Table, c.ID, c.ParentID, c.ID,
	)

	var removed int
	if err := repository.pool.QueryRow(context, query, id).Scan(&removed); err != nil {
		return 0, fmt.Errorf("postgres_comment_repo_delete_failed: %w", err)
	}

	return removed, nil
}

/*
AddLike records a like, idempotently per user.

Description: The composite primary key on (commentid, userid) makes duplicate
likes a silent no-op.

Parameters:
  - context: context.Context
  - commentID: string
  - userID: string

Returns:
  - bool: false if the like already existed
  - error: Persistence failures
*/
func (repository *PostgresRepository) AddLike(context context.Context, commentID, userID string) (bool, error) {
	cl := schema.SocialCommentLike
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING`,
		cl.Table, cl.CommentID, cl.UserID, cl.CreatedAt,
		cl.CommentID, cl.UserID,
	)

	tag, err := repository.pool.Exec(context, query, commentID, userID, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_comment_repo_add_like_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
RemoveLike withdraws a user's like.

Parameters:
  - context: context.Context
  - commentID: string
  - userID: string

Returns:
  - bool: false if no like existed
  - error: Persistence failures
*/
func (repository *PostgresRepository) RemoveLike(context context.Context, commentID, userID string) (bool, error) {
	cl := schema.SocialCommentLike
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		cl.Table, cl.CommentID, cl.UserID,
	)

	tag, err := repository.pool.Exec(context, query, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("postgres_comment_repo_remove_like_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
CountLikes returns the like total for a comment.

Parameters:
  - context: context.Context
  - commentID: string

Returns:
  - int: Like count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) CountLikes(context context.Context, commentID string) (int, error) {
	cl := schema.SocialCommentLike
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, cl.Table, cl.CommentID)

	var count int
	if err := repository.pool.QueryRow(context, query, commentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_comment_repo_count_likes_failed: %w", err)
	}

	return count, nil
}
