package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

const maxContentLength = 1000

func validContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.ValidationFailed("content", "content is required")
	}
	if len([]rune(content)) > maxContentLength {
		return "", apperror.ValidationFailed("content", fmt.Sprintf("content must be %d characters or fewer", maxContentLength))
	}
	return content, nil
}

// =========================================================================
// TWEETS
// =========================================================================

type TweetService struct {
	tweets repository.TweetRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewTweetService(tweets repository.TweetRepository, users repository.UserRepository, logger *slog.Logger) *TweetService {
	return &TweetService{tweets: tweets, users: users, logger: logger}
}

func (s *TweetService) Create(ctx context.Context, ownerID, content string) (*model.Tweet, error) {
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	t := &model.Tweet{OwnerID: ownerID, Content: content}
	if err := s.tweets.Create(ctx, t); err != nil {
		return nil, apperror.Persistence("tweet", err)
	}
	return t, nil
}

// ListByUser returns the tweets of userID, newest first.
func (s *TweetService) ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Tweet, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/tweet: checking user %s: %w", userID, err)
	}
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	opts, _, _ := pageOptions(page, limit)
	return s.tweets.ListByOwner(ctx, userID, opts)
}

func (s *TweetService) Update(ctx context.Context, actorID, id, content string) (*model.Tweet, error) {
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	t, err := s.tweets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, t.OwnerID, "tweet"); err != nil {
		return nil, err
	}
	if err := s.tweets.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.tweets.GetByID(ctx, id)
}

func (s *TweetService) Delete(ctx context.Context, actorID, id string) error {
	t, err := s.tweets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actorID, t.OwnerID, "tweet"); err != nil {
		return err
	}
	return s.tweets.Delete(ctx, id)
}

// =========================================================================
// COMMENTS
// =========================================================================

type CommentService struct {
	comments repository.CommentRepository
	videos   repository.VideoRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, videos: videos, logger: logger}
}

// List returns one page of the comments on videoID, newest first.
func (s *CommentService) List(ctx context.Context, videoID string, page, limit int) (model.Page[model.Comment], error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return model.Page[model.Comment]{}, err
	}
	opts, page, limit := pageOptions(page, limit)
	comments, total, err := s.comments.ListByVideo(ctx, videoID, opts)
	if err != nil {
		return model.Page[model.Comment]{}, err
	}
	return model.NewPage(comments, total, page, limit), nil
}

func (s *CommentService) Create(ctx context.Context, ownerID, videoID, content string) (*model.Comment, error) {
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	c := &model.Comment{VideoID: videoID, OwnerID: ownerID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, apperror.Persistence("comment", err)
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actorID, id, content string) (*model.Comment, error) {
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, c.OwnerID, "comment"); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, actorID, id string) error {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actorID, c.OwnerID, "comment"); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

func (s *CommentService) requireVideo(ctx context.Context, videoID string) error {
	ok, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return fmt.Errorf("service/comment: checking video %s: %w", videoID, err)
	}
	if !ok {
		return apperror.NotFound("video", videoID)
	}
	return nil
}

// =========================================================================
// PLAYLISTS
// =========================================================================

type PlaylistService struct {
	playlists repository.PlaylistRepository
	videos    repository.VideoRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

func NewPlaylistService(playlists repository.PlaylistRepository, videos repository.VideoRepository, users repository.UserRepository, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{playlists: playlists, videos: videos, users: users, logger: logger}
}

func (s *PlaylistService) Create(ctx context.Context, ownerID, name, description string) (*model.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	p := &model.Playlist{OwnerID: ownerID, Name: name, Description: strings.TrimSpace(description)}
	if err := s.playlists.Create(ctx, p); err != nil {
		return nil, apperror.Persistence("playlist", err)
	}
	return p, nil
}

func (s *PlaylistService) Get(ctx context.Context, id string) (*model.Playlist, error) {
	return s.playlists.GetByID(ctx, id)
}

func (s *PlaylistService) ListByUser(ctx context.Context, userID string) ([]model.Playlist, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/playlist: checking user %s: %w", userID, err)
	}
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	return s.playlists.ListByOwner(ctx, userID)
}

// Update renames the playlist; an empty description keeps the current one.
func (s *PlaylistService) Update(ctx context.Context, actorID, id, name, description string) (*model.Playlist, error) {
	p, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = p.Name
	}
	if d := strings.TrimSpace(description); d != "" {
		p.Description = d
	}
	if err := s.playlists.UpdateDetails(ctx, id, name, p.Description); err != nil {
		return nil, err
	}
	return s.playlists.GetByID(ctx, id)
}

// AddVideo appends videoID to the playlist. Adding it twice is a conflict.
func (s *PlaylistService) AddVideo(ctx context.Context, actorID, playlistID, videoID string) (*model.Playlist, error) {
	if _, err := s.owned(ctx, actorID, playlistID); err != nil {
		return nil, err
	}
	ok, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("service/playlist: checking video %s: %w", videoID, err)
	}
	if !ok {
		return nil, apperror.NotFound("video", videoID)
	}
	if err := s.playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		return nil, err
	}
	return s.playlists.GetByID(ctx, playlistID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (*model.Playlist, error) {
	if _, err := s.owned(ctx, actorID, playlistID); err != nil {
		return nil, err
	}
	if err := s.playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		return nil, err
	}
	return s.playlists.GetByID(ctx, playlistID)
}

func (s *PlaylistService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.playlists.Delete(ctx, id)
}

func (s *PlaylistService) owned(ctx context.Context, actorID, id string) (*model.Playlist, error) {
	p, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, p.OwnerID, "playlist"); err != nil {
		return nil, err
	}
	return p, nil
}
