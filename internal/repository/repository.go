// Package repository declares the storage contracts the services depend on.
// internal/repository/sqlite provides the implementation; service tests use
// in-memory fakes.
package repository

import (
	"context"

	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// VideoQuery filters and orders a video listing.
type VideoQuery struct {
	ListOptions
	Search   string // case-insensitive match on title or description
	OwnerID  string // only videos of this channel when set
	ViewerID string // unpublished videos are visible to their owner only
	SortBy   string // "createdAt", "title", "views" or "duration"
	SortDesc bool
}

type UserRepository interface {
	// Create inserts u and fills ID and timestamps. A taken email or user
	// name is an apperror.ErrConflict.
	Create(ctx context.Context, u *model.User) error
	// GetByID returns the public projection (no secrets).
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByIDWithSecrets also loads the password and refresh token hashes.
	GetByIDWithSecrets(ctx context.Context, id string) (*model.User, error)
	// GetByLogin matches a user name or an email and loads secrets.
	GetByLogin(ctx context.Context, userNameOrEmail string) (*model.User, error)
	GetByUserName(ctx context.Context, userName string) (*model.User, error)
	ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error)
	// SetRefreshTokenHash overwrites the stored hash; "" revokes.
	// apperror.ErrNotFound when the user does not exist.
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	// RotateRefreshTokenHash replaces oldHash with newHash only if oldHash is
	// still the stored value. It reports whether the swap happened.
	RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateAccount(ctx context.Context, id, fullName, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateCoverImage(ctx context.Context, id, url string) error
	// UpsertGitHub links u.GitHubID to an existing account (same GitHub id,
	// else same email) or creates a new one. u is filled from the stored row.
	UpsertGitHub(ctx context.Context, u *model.User) error
	ChannelProfile(ctx context.Context, userName, viewerID string) (*model.ChannelProfile, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type VideoRepository interface {
	Create(ctx context.Context, v *model.Video) error
	GetByID(ctx context.Context, id string) (*model.Video, error)
	List(ctx context.Context, q VideoQuery) ([]model.Video, int64, error)
	UpdateDetails(ctx context.Context, id, title, description string) error
	UpdateThumbnail(ctx context.Context, id, url string) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	// Delete removes the video together with its comments and every like
	// pointing at the video or its comments.
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// RelationRepository stores toggleable relations. The compound uniqueness
// of (kind, actor, target) is enforced by the storage itself.
type RelationRepository interface {
	Exists(ctx context.Context, kind model.RelationKind, actorID, targetID string) (bool, error)
	// Create returns apperror.ErrConflict if the relation already exists.
	Create(ctx context.Context, kind model.RelationKind, actorID, targetID string) (*model.Relation, error)
	// Delete returns apperror.ErrNotFound if nothing was removed.
	Delete(ctx context.Context, kind model.RelationKind, actorID, targetID string) error
	LikedVideos(ctx context.Context, userID string, opts ListOptions) ([]model.Video, error)
	Subscribers(ctx context.Context, channelID string) ([]model.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]model.UserSummary, error)
}

type TweetRepository interface {
	Create(ctx context.Context, t *model.Tweet) error
	GetByID(ctx context.Context, id string) (*model.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByVideo(ctx context.Context, videoID string, opts ListOptions) ([]model.Comment, int64, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type PlaylistRepository interface {
	Create(ctx context.Context, p *model.Playlist) error
	GetByID(ctx context.Context, id string) (*model.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error)
	UpdateDetails(ctx context.Context, id, name, description string) error
	// AddVideo returns apperror.ErrConflict if the video is already listed.
	AddVideo(ctx context.Context, playlistID, videoID string) error
	// RemoveVideo returns apperror.ErrNotFound if the video was not listed.
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Delete(ctx context.Context, id string) error
}
