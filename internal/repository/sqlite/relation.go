package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

var _ repository.RelationRepository = (*RelationDB)(nil)

// RelationDB stores likes and subscriptions. Every kind is backed by a
// UNIQUE index on (actor, [kind,] target); that index is what keeps two
// concurrent toggles from creating duplicates.
type RelationDB struct {
	conn *sql.DB
}

// relationTable describes where one relation kind lives. Every query is
// built from these constants, never from input.
type relationTable struct {
	exists string
	insert string
	delete string
	args   func(kind model.RelationKind, actorID, targetID string) []any
}

var (
	likeTable = relationTable{
		exists: `SELECT EXISTS(SELECT 1 FROM likes WHERE liked_by = ? AND target_kind = ? AND target_id = ?)`,
		insert: `INSERT INTO likes (id, created_at, liked_by, target_kind, target_id) VALUES (?, ?, ?, ?, ?)`,
		delete: `DELETE FROM likes WHERE liked_by = ? AND target_kind = ? AND target_id = ?`,
		args: func(kind model.RelationKind, actorID, targetID string) []any {
			return []any{actorID, string(kind), targetID}
		},
	}
	subscriptionTable = relationTable{
		exists: `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?)`,
		insert: `INSERT INTO subscriptions (id, created_at, subscriber_id, channel_id) VALUES (?, ?, ?, ?)`,
		delete: `DELETE FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`,
		args: func(_ model.RelationKind, actorID, targetID string) []any {
			return []any{actorID, targetID}
		},
	}
)

func tableFor(kind model.RelationKind) (relationTable, error) {
	switch {
	case kind.IsLike():
		return likeTable, nil
	case kind == model.KindSubscription:
		return subscriptionTable, nil
	default:
		return relationTable{}, apperror.ValidationFailed("kind", fmt.Sprintf("unknown relation kind %q", kind))
	}
}

func (d *RelationDB) Exists(ctx context.Context, kind model.RelationKind, actorID, targetID string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := d.conn.QueryRowContext(ctx, t.exists, t.args(kind, actorID, targetID)...).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: checking %s: %w", kind, err)
	}
	return exists, nil
}

// Create inserts the relation. Losing a race against an identical insert
// surfaces as apperror.ErrConflict.
func (d *RelationDB) Create(ctx context.Context, kind model.RelationKind, actorID, targetID string) (*model.Relation, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rel := &model.Relation{
		ID:        xid.New().String(),
		Kind:      kind,
		ActorID:   actorID,
		TargetID:  targetID,
		CreatedAt: time.Now().UTC(),
	}
	args := append([]any{rel.ID, rel.CreatedAt}, t.args(kind, actorID, targetID)...)
	if _, err := d.conn.ExecContext(ctx, t.insert, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: fmt.Sprintf("%s already exists", kind),
			}
		}
		return nil, fmt.Errorf("sqlite: creating %s: %w", kind, err)
	}
	return rel, nil
}

// Delete removes the relation; zero affected rows means someone else
// removed it first.
func (d *RelationDB) Delete(ctx context.Context, kind model.RelationKind, actorID, targetID string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := d.conn.ExecContext(ctx, t.delete, t.args(kind, actorID, targetID)...)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s: %w", kind, err)
	}
	return rowsAffected(res, &apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: fmt.Sprintf("%s does not exist", kind),
	})
}

// LikedVideos lists the published videos userID liked, most recent like first.
func (d *RelationDB) LikedVideos(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Video, error) {
	limit, offset := clamp(opts)

	rows, err := d.conn.QueryContext(ctx,
		videoSelect+`
		 JOIN likes l ON l.target_kind = ? AND l.target_id = v.id
		 WHERE l.liked_by = ? AND v.is_published = 1
		 ORDER BY l.created_at DESC, l.id DESC
		 LIMIT ? OFFSET ?`,
		string(model.KindVideoLike), userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing liked videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning liked video: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating liked videos: %w", err)
	}
	return videos, nil
}

// Subscribers lists the users subscribed to channelID.
func (d *RelationDB) Subscribers(ctx context.Context, channelID string) ([]model.UserSummary, error) {
	return d.summaries(ctx,
		`SELECT u.id, u.user_name, u.full_name, u.avatar
		 FROM subscriptions s JOIN users u ON u.id = s.subscriber_id
		 WHERE s.channel_id = ?
		 ORDER BY s.created_at DESC, s.id DESC`,
		channelID)
}

// SubscribedChannels lists the channels subscriberID is subscribed to.
func (d *RelationDB) SubscribedChannels(ctx context.Context, subscriberID string) ([]model.UserSummary, error) {
	return d.summaries(ctx,
		`SELECT u.id, u.user_name, u.full_name, u.avatar
		 FROM subscriptions s JOIN users u ON u.id = s.channel_id
		 WHERE s.subscriber_id = ?
		 ORDER BY s.created_at DESC, s.id DESC`,
		subscriberID)
}

func (d *RelationDB) summaries(ctx context.Context, query, id string) ([]model.UserSummary, error) {
	rows, err := d.conn.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subscriptions: %w", err)
	}
	defer rows.Close()

	out := make([]model.UserSummary, 0)
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.UserName, &s.FullName, &s.Avatar); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subscription: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subscriptions: %w", err)
	}
	return out, nil
}
