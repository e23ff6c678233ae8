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

var _ repository.PlaylistRepository = (*PlaylistDB)(nil)

type PlaylistDB struct {
	conn *sql.DB
}

func (d *PlaylistDB) Create(ctx context.Context, p *model.Playlist) error {
	now := time.Now().UTC()
	p.ID = xid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.VideoIDs == nil {
		p.VideoIDs = []string{}
	}

	if _, err := d.conn.ExecContext(ctx,
		`INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: creating playlist: %w", err)
	}
	return nil
}

// GetByID loads a playlist with its videos in insertion order.
func (d *PlaylistDB) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	var p model.Playlist
	err := d.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at FROM playlists WHERE id = ?`, id,
	).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("playlist", id)
		}
		return nil, fmt.Errorf("sqlite: getting playlist %s: %w", id, err)
	}

	ids, err := d.videoIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	p.VideoIDs = ids
	return &p, nil
}

func (d *PlaylistDB) videoIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT video_id FROM playlist_videos WHERE playlist_id = ? ORDER BY position`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlist videos: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning playlist video: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByOwner returns the owner's playlists without their video lists.
func (d *PlaylistDB) ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at
		 FROM playlists WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]model.Playlist, 0)
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning playlist: %w", err)
		}
		p.VideoIDs = []string{}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating playlists: %w", err)
	}
	return playlists, nil
}

func (d *PlaylistDB) UpdateDetails(ctx context.Context, id, name, description string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, description, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating playlist %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("playlist", id))
}

// AddVideo appends videoID at the end of the playlist.
func (d *PlaylistDB) AddVideo(ctx context.Context, playlistID, videoID string) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO playlist_videos (playlist_id, video_id, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_videos WHERE playlist_id = ?))`,
		playlistID, videoID, playlistID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "video is already in the playlist"}
		}
		return fmt.Errorf("sqlite: adding video to playlist %s: %w", playlistID, err)
	}
	return nil
}

func (d *PlaylistDB) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	res, err := d.conn.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("sqlite: removing video from playlist %s: %w", playlistID, err)
	}
	return rowsAffected(res, &apperror.AppError{Err: apperror.ErrNotFound, Message: "video is not in the playlist"})
}

func (d *PlaylistDB) Delete(ctx context.Context, id string) error {
	res, err := d.conn.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting playlist %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("playlist", id))
}
