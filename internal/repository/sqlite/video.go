package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

var _ repository.VideoRepository = (*VideoDB)(nil)

type VideoDB struct {
	conn *sql.DB
}

// videoSortColumns whitelists the sortable fields; anything else falls
// back to created_at.
var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"title":     "v.title",
	"views":     "v.views",
	"duration":  "v.duration",
}

const videoSelect = `SELECT v.id, v.owner_id, v.title, v.description, v.video_file, v.thumbnail,
       v.duration, v.views, v.is_published, v.created_at, v.updated_at,
       u.user_name, u.full_name, u.avatar
FROM videos v
JOIN users u ON u.id = v.owner_id`

func scanVideo(s scanner) (*model.Video, error) {
	var (
		v     model.Video
		owner model.UserSummary
	)
	if err := s.Scan(
		&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoFile, &v.Thumbnail,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
		&owner.UserName, &owner.FullName, &owner.Avatar,
	); err != nil {
		return nil, err
	}
	owner.ID = v.OwnerID
	v.Owner = &owner
	return &v, nil
}

// Create inserts v, filling ID and timestamps.
func (d *VideoDB) Create(ctx context.Context, v *model.Video) error {
	now := time.Now().UTC()
	v.ID = xid.New().String()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO videos (id, owner_id, title, description, video_file, thumbnail,
		                     duration, views, is_published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OwnerID, v.Title, v.Description, v.VideoFile, v.Thumbnail,
		v.Duration, v.Views, v.IsPublished, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating video: %w", err)
	}
	return nil
}

func (d *VideoDB) GetByID(ctx context.Context, id string) (*model.Video, error) {
	v, err := scanVideo(d.conn.QueryRowContext(ctx, videoSelect+` WHERE v.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("video", id)
		}
		return nil, fmt.Errorf("sqlite: getting video %s: %w", id, err)
	}
	return v, nil
}

// List returns one page of videos plus the total number of matches.
func (d *VideoDB) List(ctx context.Context, q repository.VideoQuery) ([]model.Video, int64, error) {
	limit, offset := clamp(q.ListOptions)

	var (
		where []string
		args  []any
	)
	// Published videos are public; unpublished ones only show up for their owner.
	where = append(where, `(v.is_published = 1 OR v.owner_id = ?)`)
	args = append(args, q.ViewerID)

	if q.OwnerID != "" {
		where = append(where, `v.owner_id = ?`)
		args = append(args, q.OwnerID)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, `(v.title LIKE ? ESCAPE '\' OR v.description LIKE ? ESCAPE '\')`)
		p := likePattern(s)
		args = append(args, p, p)
	}
	whereSQL := ` WHERE ` + strings.Join(where, ` AND `)

	var total int64
	if err := d.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos v`+whereSQL, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting videos: %w", err)
	}

	col, ok := videoSortColumns[q.SortBy]
	if !ok {
		col = videoSortColumns["createdAt"]
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}

	rows, err := d.conn.QueryContext(ctx,
		videoSelect+whereSQL+` ORDER BY `+col+` `+dir+`, v.id `+dir+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.Video, 0, limit)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning video row: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating videos: %w", err)
	}

	return videos, total, nil
}

func (d *VideoDB) UpdateDetails(ctx context.Context, id, title, description string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE videos SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		title, description, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating video %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("video", id))
}

func (d *VideoDB) UpdateThumbnail(ctx context.Context, id, url string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE videos SET thumbnail = ?, updated_at = ? WHERE id = ?`,
		url, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating thumbnail of video %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("video", id))
}

func (d *VideoDB) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE videos SET is_published = ?, updated_at = ? WHERE id = ?`,
		published, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: publishing video %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("video", id))
}

func (d *VideoDB) IncrementViews(ctx context.Context, id string) error {
	res, err := d.conn.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: counting view of video %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("video", id))
}

// Delete removes the video and the likes that would otherwise dangle.
// Comments and playlist entries go through ON DELETE CASCADE.
func (d *VideoDB) Delete(ctx context.Context, id string) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning video delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM likes
		 WHERE (target_kind = ? AND target_id = ?)
		    OR (target_kind = ? AND target_id IN (SELECT id FROM comments WHERE video_id = ?))`,
		string(model.KindVideoLike), id, string(model.KindCommentLike), id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting likes of video %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting video %s: %w", id, err)
	}
	if err := rowsAffected(res, apperror.NotFound("video", id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing video delete: %w", err)
	}
	return nil
}

func (d *VideoDB) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := d.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM videos WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: checking video %s: %w", id, err)
	}
	return exists, nil
}
