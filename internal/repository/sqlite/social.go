package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

var (
	_ repository.TweetRepository   = (*TweetDB)(nil)
	_ repository.CommentRepository = (*CommentDB)(nil)
)

// =========================================================================
// TWEETS
// =========================================================================

type TweetDB struct {
	conn *sql.DB
}

const tweetSelect = `SELECT t.id, t.owner_id, t.content, t.created_at, t.updated_at,
       u.user_name, u.full_name, u.avatar
FROM tweets t
JOIN users u ON u.id = t.owner_id`

func scanTweet(s scanner) (*model.Tweet, error) {
	var (
		t     model.Tweet
		owner model.UserSummary
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt,
		&owner.UserName, &owner.FullName, &owner.Avatar); err != nil {
		return nil, err
	}
	owner.ID = t.OwnerID
	t.Owner = &owner
	return &t, nil
}

func (d *TweetDB) Create(ctx context.Context, t *model.Tweet) error {
	now := time.Now().UTC()
	t.ID = xid.New().String()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := d.conn.ExecContext(ctx,
		`INSERT INTO tweets (id, owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Content, t.CreatedAt, t.UpdatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: creating tweet: %w", err)
	}
	return nil
}

func (d *TweetDB) GetByID(ctx context.Context, id string) (*model.Tweet, error) {
	t, err := scanTweet(d.conn.QueryRowContext(ctx, tweetSelect+` WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("tweet", id)
		}
		return nil, fmt.Errorf("sqlite: getting tweet %s: %w", id, err)
	}
	return t, nil
}

func (d *TweetDB) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Tweet, error) {
	limit, offset := clamp(opts)
	rows, err := d.conn.QueryContext(ctx,
		tweetSelect+` WHERE t.owner_id = ? ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tweets: %w", err)
	}
	defer rows.Close()

	tweets := make([]model.Tweet, 0, limit)
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning tweet: %w", err)
		}
		tweets = append(tweets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tweets: %w", err)
	}
	return tweets, nil
}

func (d *TweetDB) UpdateContent(ctx context.Context, id, content string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE tweets SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating tweet %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("tweet", id))
}

// Delete removes the tweet and its likes.
func (d *TweetDB) Delete(ctx context.Context, id string) error {
	return deleteWithLikes(ctx, d.conn, `tweets`, model.KindTweetLike, "tweet", id)
}

func (d *TweetDB) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := d.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tweets WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: checking tweet %s: %w", id, err)
	}
	return exists, nil
}

// =========================================================================
// COMMENTS
// =========================================================================

type CommentDB struct {
	conn *sql.DB
}

const commentSelect = `SELECT c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at,
       u.user_name, u.full_name, u.avatar
FROM comments c
JOIN users u ON u.id = c.owner_id`

func scanComment(s scanner) (*model.Comment, error) {
	var (
		c     model.Comment
		owner model.UserSummary
	)
	if err := s.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&owner.UserName, &owner.FullName, &owner.Avatar); err != nil {
		return nil, err
	}
	owner.ID = c.OwnerID
	c.Owner = &owner
	return &c, nil
}

func (d *CommentDB) Create(ctx context.Context, c *model.Comment) error {
	now := time.Now().UTC()
	c.ID = xid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := d.conn.ExecContext(ctx,
		`INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.VideoID, c.OwnerID, c.Content, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

func (d *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(d.conn.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return c, nil
}

// ListByVideo returns the newest comments first plus the total count.
func (d *CommentDB) ListByVideo(ctx context.Context, videoID string, opts repository.ListOptions) ([]model.Comment, int64, error) {
	limit, offset := clamp(opts)

	var total int64
	if err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE video_id = ?`, videoID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting comments: %w", err)
	}

	rows, err := d.conn.QueryContext(ctx,
		commentSelect+` WHERE c.video_id = ? ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		videoID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, total, nil
}

func (d *CommentDB) UpdateContent(ctx context.Context, id, content string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("comment", id))
}

func (d *CommentDB) Delete(ctx context.Context, id string) error {
	return deleteWithLikes(ctx, d.conn, `comments`, model.KindCommentLike, "comment", id)
}

func (d *CommentDB) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := d.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: checking comment %s: %w", id, err)
	}
	return exists, nil
}

// deleteWithLikes deletes one row of table and the likes pointing at it in
// a single transaction. table is always a constant.
func deleteWithLikes(ctx context.Context, conn *sql.DB, table string, kind model.RelationKind, resource, id string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning %s delete: %w", resource, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE target_kind = ? AND target_id = ?`, string(kind), id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting likes of %s %s: %w", resource, id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s %s: %w", resource, id, err)
	}
	if err := rowsAffected(res, apperror.NotFound(resource, id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing %s delete: %w", resource, err)
	}
	return nil
}
