package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

// TargetResolver reports whether the target of a relation exists and is
// visible to actorID.
type TargetResolver func(ctx context.Context, actorID, id string) (bool, error)

// anyActor adapts a plain existence check into a TargetResolver.
func anyActor(check func(ctx context.Context, id string) (bool, error)) TargetResolver {
	return func(ctx context.Context, _, id string) (bool, error) {
		return check(ctx, id)
	}
}

// visibleVideo resolves a video only when it is published or owned by the
// actor, matching what VideoService.Get lets the actor see.
func visibleVideo(videos repository.VideoRepository) TargetResolver {
	return func(ctx context.Context, actorID, id string) (bool, error) {
		v, err := videos.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return v.IsPublished || v.OwnerID == actorID, nil
	}
}

// toggleTarget describes one relation kind: how to find its target and
// what to call it in messages.
type toggleTarget struct {
	name    string
	resolve TargetResolver
}

// ToggleService flips a relation between an actor and a target: a first
// call creates it, the next removes it. Likes of videos, comments and
// tweets and channel subscriptions all go through Toggle.
//
// There is no lock around exists/create/delete. Two racing creates are
// settled by the unique index behind RelationRepository.Create, which makes
// the loser fail with ErrConflict.
type ToggleService struct {
	relations repository.RelationRepository
	targets   map[model.RelationKind]toggleTarget
	logger    *slog.Logger
}

func NewToggleService(
	relations repository.RelationRepository,
	users repository.UserRepository,
	videos repository.VideoRepository,
	comments repository.CommentRepository,
	tweets repository.TweetRepository,
	logger *slog.Logger,
) *ToggleService {
	return &ToggleService{
		relations: relations,
		targets: map[model.RelationKind]toggleTarget{
			model.KindVideoLike:    {name: "video", resolve: visibleVideo(videos)},
			model.KindCommentLike:  {name: "comment", resolve: anyActor(comments.Exists)},
			model.KindTweetLike:    {name: "tweet", resolve: anyActor(tweets.Exists)},
			model.KindSubscription: {name: "channel", resolve: anyActor(users.Exists)},
		},
		logger: logger,
	}
}

// Toggle creates the (kind, actorID, targetID) relation if it is absent and
// deletes it if it is present. Created is only true after a confirmed
// insert and only false after a confirmed delete.
func (s *ToggleService) Toggle(ctx context.Context, kind model.RelationKind, actorID, targetID string) (model.ToggleResult, error) {
	target, ok := s.targets[kind]
	if !ok {
		return model.ToggleResult{}, apperror.ValidationFailed("kind", fmt.Sprintf("unknown relation kind %q", kind))
	}
	if strings.TrimSpace(actorID) == "" {
		return model.ToggleResult{}, apperror.ValidationFailed("actorId", "actorId is required")
	}
	if strings.TrimSpace(targetID) == "" {
		return model.ToggleResult{}, apperror.ValidationFailed(target.name+"Id", target.name+"Id is required")
	}
	if kind == model.KindSubscription && actorID == targetID {
		return model.ToggleResult{}, apperror.ValidationFailed("channelId", "You cannot subscribe to your own channel")
	}

	found, err := target.resolve(ctx, actorID, targetID)
	if err != nil {
		return model.ToggleResult{}, fmt.Errorf("service/toggle: resolving %s %s: %w", target.name, targetID, err)
	}
	if !found {
		return model.ToggleResult{}, apperror.NotFound(target.name, targetID)
	}

	exists, err := s.relations.Exists(ctx, kind, actorID, targetID)
	if err != nil {
		return model.ToggleResult{}, fmt.Errorf("service/toggle: checking %s: %w", kind, err)
	}

	result := model.ToggleResult{Kind: kind, TargetID: targetID}
	if !exists {
		if _, err := s.relations.Create(ctx, kind, actorID, targetID); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				return model.ToggleResult{}, err
			}
			return model.ToggleResult{}, apperror.Persistence(string(kind), err)
		}
		result.Created = true
	} else {
		if err := s.relations.Delete(ctx, kind, actorID, targetID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return model.ToggleResult{}, err
			}
			return model.ToggleResult{}, apperror.Persistence(string(kind), err)
		}
	}

	s.logger.Debug("relation toggled",
		slog.String("kind", string(kind)),
		slog.String("actorID", actorID),
		slog.String("targetID", targetID),
		slog.Bool("created", result.Created),
	)
	return result, nil
}
