package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/media"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

type VideoService struct {
	videos    repository.VideoRepository
	relations repository.RelationRepository
	users     repository.UserRepository
	media     *MediaService
	logger    *slog.Logger
}

func NewVideoService(
	videos repository.VideoRepository,
	relations repository.RelationRepository,
	users repository.UserRepository,
	mediaSvc *MediaService,
	logger *slog.Logger,
) *VideoService {
	return &VideoService{videos: videos, relations: relations, users: users, media: mediaSvc, logger: logger}
}

// PublishInput is a parsed upload form. VideoPath and ThumbnailPath are
// staged temp files.
type PublishInput struct {
	Title         string
	Description   string
	Duration      float64
	VideoPath     string
	ThumbnailPath string
}

// Publish uploads the video file and thumbnail together and creates the
// video row. If the row cannot be written both uploads are destroyed.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishInput) (*model.Video, error) {
	files := []StagedFile{
		{Kind: media.KindVideo, Path: in.VideoPath},
		{Kind: media.KindThumbnail, Path: in.ThumbnailPath},
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	var invalid error
	switch {
	case in.Title == "" || in.Description == "":
		invalid = apperror.ValidationFailed("title", "title and description are required")
	case in.VideoPath == "":
		invalid = apperror.ValidationFailed("videoFile", "video file is required")
	case in.ThumbnailPath == "":
		invalid = apperror.ValidationFailed("thumbnail", "thumbnail is required")
	case in.Duration < 0:
		invalid = apperror.ValidationFailed("duration", "duration must not be negative")
	}
	if invalid != nil {
		for _, f := range files {
			s.media.removeTemp(f.Path)
		}
		return nil, invalid
	}

	batch, err := s.media.UploadSet(ctx, files...)
	if err != nil {
		return nil, err
	}

	v := &model.Video{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		VideoFile:   batch.URL(media.KindVideo),
		Thumbnail:   batch.URL(media.KindThumbnail),
		Duration:    in.Duration,
		IsPublished: true,
	}
	if err := s.videos.Create(ctx, v); err != nil {
		batch.Rollback(ctx)
		return nil, apperror.Persistence("video", err)
	}

	s.logger.Info("video published",
		slog.String("videoID", v.ID),
		slog.String("ownerID", ownerID),
	)
	return s.videos.GetByID(ctx, v.ID)
}

// ListInput carries the query parameters of a video listing.
type ListInput struct {
	Page     int
	Limit    int
	Query    string
	SortBy   string
	SortType string // "asc" or "desc"
	UserID   string
}

// List returns one page of the videos visible to viewerID.
func (s *VideoService) List(ctx context.Context, viewerID string, in ListInput) (model.Page[model.Video], error) {
	opts, page, limit := pageOptions(in.Page, in.Limit)

	if in.UserID != "" {
		ok, err := s.users.Exists(ctx, in.UserID)
		if err != nil {
			return model.Page[model.Video]{}, fmt.Errorf("service/video: checking user %s: %w", in.UserID, err)
		}
		if !ok {
			return model.Page[model.Video]{}, apperror.NotFound("user", in.UserID)
		}
	}

	videos, total, err := s.videos.List(ctx, repository.VideoQuery{
		ListOptions: opts,
		Search:      in.Query,
		OwnerID:     in.UserID,
		ViewerID:    viewerID,
		SortBy:      in.SortBy,
		SortDesc:    !strings.EqualFold(in.SortType, "asc"),
	})
	if err != nil {
		return model.Page[model.Video]{}, err
	}
	return model.NewPage(videos, total, page, limit), nil
}

// Get returns a video. Unpublished videos exist only for their owner.
// A view by anyone else is counted.
func (s *VideoService) Get(ctx context.Context, viewerID, id string) (*model.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.OwnerID == viewerID {
		return v, nil
	}
	if !v.IsPublished {
		return nil, apperror.NotFound("video", id)
	}

	if err := s.videos.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("counting video view failed",
			slog.String("videoID", id),
			slog.String("error", err.Error()),
		)
	} else {
		v.Views++
	}
	return v, nil
}

// UpdateInput changes a video. Empty fields are left as they are;
// ThumbnailPath is an optional staged file.
type UpdateInput struct {
	Title         string
	Description   string
	ThumbnailPath string
}

// Update edits title and description and, if a thumbnail was staged,
// replaces the thumbnail.
func (s *VideoService) Update(ctx context.Context, actorID, id string, in UpdateInput) (*model.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err == nil {
		err = requireOwner(actorID, v.OwnerID, "video")
	}
	if err == nil && in.Title == "" && in.Description == "" && in.ThumbnailPath == "" {
		err = apperror.ValidationFailed("title", "Nothing to update")
	}
	if err != nil {
		s.media.removeTemp(in.ThumbnailPath)
		return nil, err
	}

	title, description := v.Title, v.Description
	if t := strings.TrimSpace(in.Title); t != "" {
		title = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		description = d
	}
	if title != v.Title || description != v.Description {
		if err := s.videos.UpdateDetails(ctx, id, title, description); err != nil {
			s.media.removeTemp(in.ThumbnailPath)
			return nil, err
		}
	}

	if in.ThumbnailPath != "" {
		_, err := s.media.ReplaceAsset(ctx, media.KindThumbnail, v.Thumbnail, in.ThumbnailPath, func(ctx context.Context, url string) error {
			return s.videos.UpdateThumbnail(ctx, id, url)
		})
		if err != nil {
			return nil, err
		}
	}

	return s.videos.GetByID(ctx, id)
}

// Delete removes the video's media first and the row afterwards. Media
// that could not be deleted is logged and left behind.
func (s *VideoService) Delete(ctx context.Context, actorID, id string) error {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actorID, v.OwnerID, "video"); err != nil {
		return err
	}

	s.media.DeleteAssets(ctx, v.VideoFile, v.Thumbnail)

	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return apperror.Persistence("video", err)
	}

	s.logger.Info("video deleted", slog.String("videoID", id), slog.String("ownerID", actorID))
	return nil
}

// TogglePublish flips the published flag and returns the updated video.
func (s *VideoService) TogglePublish(ctx context.Context, actorID, id string) (*model.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, v.OwnerID, "video"); err != nil {
		return nil, err
	}
	if err := s.videos.SetPublished(ctx, id, !v.IsPublished); err != nil {
		return nil, err
	}
	v.IsPublished = !v.IsPublished
	return v, nil
}

// LikedVideos lists the published videos userID has liked.
func (s *VideoService) LikedVideos(ctx context.Context, userID string, page, limit int) ([]model.Video, error) {
	opts, _, _ := pageOptions(page, limit)
	return s.relations.LikedVideos(ctx, userID, opts)
}
