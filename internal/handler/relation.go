package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
)

// Toggler flips a like or subscription. Satisfied by *service.ToggleService.
type Toggler interface {
	Toggle(ctx context.Context, kind model.RelationKind, actorID, targetID string) (model.ToggleResult, error)
}

// LikedVideosLister lists the videos a user has liked.
type LikedVideosLister interface {
	LikedVideos(ctx context.Context, userID string, page, limit int) ([]model.Video, error)
}

// ChannelService covers channel profiles and subscription listings.
type ChannelService interface {
	Profile(ctx context.Context, channelName, viewerID string) (*model.ChannelProfile, error)
	Subscribe(ctx context.Context, actorID, channelName string) (*model.Relation, error)
	Unsubscribe(ctx context.Context, actorID, channelName string) error
	Subscribers(ctx context.Context, channelID string) ([]model.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]model.UserSummary, error)
}

// RelationHandler serves /likes, /subscriptions and /channel.
type RelationHandler struct {
	responder
	toggles  Toggler
	liked    LikedVideosLister
	channels ChannelService
}

func NewRelationHandler(toggles Toggler, liked LikedVideosLister, channels ChannelService, logger *slog.Logger) *RelationHandler {
	return &RelationHandler{
		responder: responder{logger: logger},
		toggles:   toggles,
		liked:     liked,
		channels:  channels,
	}
}

// toggleMessages are the success messages per kind: [created, removed].
var toggleMessages = map[model.RelationKind][2]string{
	model.KindVideoLike:    {"Video liked successfully", "Video unliked successfully"},
	model.KindCommentLike:  {"Comment liked successfully", "Comment unliked successfully"},
	model.KindTweetLike:    {"Tweet liked successfully", "Tweet unliked successfully"},
	model.KindSubscription: {"Subscribed successfully", "Unsubscribed successfully"},
}

// HandleToggle returns a handler that toggles kind on the target named by
// the path parameter param.
//
// HTTP: POST /api/v1/likes/toggle/v/{videoId}
//
//	POST /api/v1/likes/toggle/c/{commentId}
//	POST /api/v1/likes/toggle/t/{tweetId}
//	POST /api/v1/subscriptions/c/{channelId}
func (h *RelationHandler) HandleToggle(kind model.RelationKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, target, err := userAndParam(r, param)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		result, err := h.toggles.Toggle(r.Context(), kind, user.ID, target)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		msgs := toggleMessages[kind]
		msg := msgs[1]
		if result.Created {
			msg = msgs[0]
		}
		writeOK(w, http.StatusOK, result, msg)
	}
}

// HandleLikedVideos
//
// HTTP: GET /api/v1/likes/videos
func (h *RelationHandler) HandleLikedVideos(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, limit, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	videos, err := h.liked.LikedVideos(r.Context(), user.ID, page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, videos, "Liked videos fetched successfully")
}

// HandleSubscribers lists the subscribers of a channel.
//
// HTTP: GET /api/v1/subscriptions/c/{channelId}
func (h *RelationHandler) HandleSubscribers(w http.ResponseWriter, r *http.Request) {
	_, channelID, err := userAndParam(r, "channelId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subs, err := h.channels.Subscribers(r.Context(), channelID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, subs, "Subscribers fetched successfully")
}

// HandleSubscribedChannels lists the channels a user subscribes to.
//
// HTTP: GET /api/v1/subscriptions/u/{subscriberId}
func (h *RelationHandler) HandleSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	_, subscriberID, err := userAndParam(r, "subscriberId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	channels, err := h.channels.SubscribedChannels(r.Context(), subscriberID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, channels, "Subscribed channels fetched successfully")
}

// HandleChannelProfile
//
// HTTP: GET /api/v1/channel/profile/{channelName}
func (h *RelationHandler) HandleChannelProfile(w http.ResponseWriter, r *http.Request) {
	user, name, err := userAndParam(r, "channelName")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profile, err := h.channels.Profile(r.Context(), name, user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, profile, "User channel fetched successfully")
}

// HandleSubscribe is the explicit, non-toggling subscribe.
//
// HTTP: POST /api/v1/channel/subscription/{channelName}
func (h *RelationHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	user, name, err := userAndParam(r, "channelName")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rel, err := h.channels.Subscribe(r.Context(), user.ID, name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, rel, "Channel subscribed successfully")
}

// HandleUnsubscribe
//
// HTTP: DELETE /api/v1/channel/subscription/{channelName}
func (h *RelationHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	user, name, err := userAndParam(r, "channelName")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.channels.Unsubscribe(r.Context(), user.ID, name); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, struct{}{}, "Channel unsubscribed successfully")
}
