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

// ChannelService covers a user seen as a channel: profile media, the public
// profile and subscriptions.
type ChannelService struct {
	users     repository.UserRepository
	relations repository.RelationRepository
	media     *MediaService
	logger    *slog.Logger
}

func NewChannelService(users repository.UserRepository, relations repository.RelationRepository, mediaSvc *MediaService, logger *slog.Logger) *ChannelService {
	return &ChannelService{users: users, relations: relations, media: mediaSvc, logger: logger}
}

// ChangeAvatar replaces the avatar of user with the staged file at path.
func (s *ChannelService) ChangeAvatar(ctx context.Context, user *model.User, path string) (*model.User, error) {
	_, err := s.media.ReplaceAsset(ctx, media.KindAvatar, user.Avatar, path, func(ctx context.Context, url string) error {
		return s.users.UpdateAvatar(ctx, user.ID, url)
	})
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

// ChangeCoverImage replaces the cover image of user with the staged file at
// path.
func (s *ChannelService) ChangeCoverImage(ctx context.Context, user *model.User, path string) (*model.User, error) {
	_, err := s.media.ReplaceAsset(ctx, media.KindCoverImage, user.CoverImage, path, func(ctx context.Context, url string) error {
		return s.users.UpdateCoverImage(ctx, user.ID, url)
	})
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

// Profile returns the channel named channelName as seen by viewerID.
func (s *ChannelService) Profile(ctx context.Context, channelName, viewerID string) (*model.ChannelProfile, error) {
	if strings.TrimSpace(channelName) == "" {
		return nil, apperror.ValidationFailed("channelName", "Channel name is missing")
	}
	p, err := s.users.ChannelProfile(ctx, channelName, viewerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "channel not found"}
		}
		return nil, err
	}
	return p, nil
}

// Subscribe subscribes actorID to the channel named channelName. Already
// being subscribed is a conflict.
func (s *ChannelService) Subscribe(ctx context.Context, actorID, channelName string) (*model.Relation, error) {
	channel, err := s.channelByName(ctx, channelName)
	if err != nil {
		return nil, err
	}
	if channel.ID == actorID {
		return nil, apperror.ValidationFailed("channelName", "You cannot subscribe to your own channel")
	}

	rel, err := s.relations.Create(ctx, model.KindSubscription, actorID, channel.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: "Channel already subscribed"}
		}
		return nil, fmt.Errorf("service/channel: subscribing to %s: %w", channel.ID, err)
	}

	s.logger.Info("channel subscribed",
		slog.String("subscriberID", actorID),
		slog.String("channelID", channel.ID),
	)
	return rel, nil
}

// Unsubscribe removes the subscription of actorID to channelName. Not being
// subscribed is ErrNotFound.
func (s *ChannelService) Unsubscribe(ctx context.Context, actorID, channelName string) error {
	channel, err := s.channelByName(ctx, channelName)
	if err != nil {
		return err
	}
	if err := s.relations.Delete(ctx, model.KindSubscription, actorID, channel.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &apperror.AppError{Err: apperror.ErrNotFound, Message: "Subscription not found"}
		}
		return fmt.Errorf("service/channel: unsubscribing from %s: %w", channel.ID, err)
	}
	return nil
}

// Subscribers lists the users subscribed to channelID.
func (s *ChannelService) Subscribers(ctx context.Context, channelID string) ([]model.UserSummary, error) {
	if err := s.requireUser(ctx, channelID, "channelId"); err != nil {
		return nil, err
	}
	return s.relations.Subscribers(ctx, channelID)
}

// SubscribedChannels lists the channels subscriberID is subscribed to.
func (s *ChannelService) SubscribedChannels(ctx context.Context, subscriberID string) ([]model.UserSummary, error) {
	if err := s.requireUser(ctx, subscriberID, "subscriberId"); err != nil {
		return nil, err
	}
	return s.relations.SubscribedChannels(ctx, subscriberID)
}

func (s *ChannelService) channelByName(ctx context.Context, channelName string) (*model.User, error) {
	if strings.TrimSpace(channelName) == "" {
		return nil, apperror.ValidationFailed("channelName", "Username is missing")
	}
	channel, err := s.users.GetByUserName(ctx, channelName)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "Channel not found"}
		}
		return nil, err
	}
	return channel, nil
}

func (s *ChannelService) requireUser(ctx context.Context, id, field string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed(field, field+" is required")
	}
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("service/channel: checking user %s: %w", id, err)
	}
	if !ok {
		return apperror.NotFound("user", id)
	}
	return nil
}
