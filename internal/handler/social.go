package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
)

type TweetService interface {
	Create(ctx context.Context, ownerID, content string) (*model.Tweet, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Tweet, error)
	Update(ctx context.Context, actorID, id, content string) (*model.Tweet, error)
	Delete(ctx context.Context, actorID, id string) error
}

type CommentService interface {
	List(ctx context.Context, videoID string, page, limit int) (model.Page[model.Comment], error)
	Create(ctx context.Context, ownerID, videoID, content string) (*model.Comment, error)
	Update(ctx context.Context, actorID, id, content string) (*model.Comment, error)
	Delete(ctx context.Context, actorID, id string) error
}

type PlaylistService interface {
	Create(ctx context.Context, ownerID, name, description string) (*model.Playlist, error)
	Get(ctx context.Context, id string) (*model.Playlist, error)
	ListByUser(ctx context.Context, userID string) ([]model.Playlist, error)
	Update(ctx context.Context, actorID, id, name, description string) (*model.Playlist, error)
	AddVideo(ctx context.Context, actorID, playlistID, videoID string) (*model.Playlist, error)
	RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (*model.Playlist, error)
	Delete(ctx context.Context, actorID, id string) error
}

// SocialHandler serves /tweets, /comments and /playlists.
type SocialHandler struct {
	responder
	tweets    TweetService
	comments  CommentService
	playlists PlaylistService
}

func NewSocialHandler(tweets TweetService, comments CommentService, playlists PlaylistService, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{
		responder: responder{logger: logger},
		tweets:    tweets,
		comments:  comments,
		playlists: playlists,
	}
}

type contentRequest struct {
	Content string `json:"content"`
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ===== TWEETS =====

// HandleCreateTweet
//
// HTTP: POST /api/v1/tweets  BODY: {"content": "..."}
func (h *SocialHandler) HandleCreateTweet(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	tweet, err := h.tweets.Create(r.Context(), user.ID, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, tweet, "Tweet created successfully")
}

// HandleUserTweets
//
// HTTP: GET /api/v1/tweets/user/{userId}
func (h *SocialHandler) HandleUserTweets(w http.ResponseWriter, r *http.Request) {
	_, userID, err := userAndParam(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, limit, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tweets, err := h.tweets.ListByUser(r.Context(), userID, page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, tweets, "Tweets fetched successfully")
}

// HandleUpdateTweet
//
// HTTP: PATCH /api/v1/tweets/{tweetId}  BODY: {"content": "..."}
func (h *SocialHandler) HandleUpdateTweet(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "tweetId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	tweet, err := h.tweets.Update(r.Context(), user.ID, id, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, tweet, "Tweet updated successfully")
}

// HandleDeleteTweet
//
// HTTP: DELETE /api/v1/tweets/{tweetId}
func (h *SocialHandler) HandleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "tweetId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.tweets.Delete(r.Context(), user.ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, struct{}{}, "Tweet deleted successfully")
}

// ===== COMMENTS =====

// HandleVideoComments
//
// HTTP: GET /api/v1/comments/{videoId}?page=&limit=
func (h *SocialHandler) HandleVideoComments(w http.ResponseWriter, r *http.Request) {
	_, videoID, err := userAndParam(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, limit, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	comments, err := h.comments.List(r.Context(), videoID, page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, comments, "Comments fetched successfully")
}

// HandleCreateComment
//
// HTTP: POST /api/v1/comments/{videoId}  BODY: {"content": "..."}
func (h *SocialHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	user, videoID, err := userAndParam(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	comment, err := h.comments.Create(r.Context(), user.ID, videoID, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, comment, "Comment added successfully")
}

// HandleUpdateComment
//
// HTTP: PATCH /api/v1/comments/c/{commentId}  BODY: {"content": "..."}
func (h *SocialHandler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	comment, err := h.comments.Update(r.Context(), user.ID, id, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, comment, "Comment updated successfully")
}

// HandleDeleteComment
//
// HTTP: DELETE /api/v1/comments/c/{commentId}
func (h *SocialHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.comments.Delete(r.Context(), user.ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, struct{}{}, "Comment deleted successfully")
}

// ===== PLAYLISTS =====

// HandleCreatePlaylist
//
// HTTP: POST /api/v1/playlists  BODY: {"name": "...", "description": "..."}
func (h *SocialHandler) HandleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.playlists.Create(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, p, "Playlist created successfully")
}

// HandleGetPlaylist
//
// HTTP: GET /api/v1/playlists/{playlistId}
func (h *SocialHandler) HandleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	_, id, err := userAndParam(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.playlists.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p, "Playlist fetched successfully")
}

// HandleUserPlaylists
//
// HTTP: GET /api/v1/playlists/user/{userId}
func (h *SocialHandler) HandleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	_, userID, err := userAndParam(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.playlists.ListByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, list, "Playlists fetched successfully")
}

// HandleUpdatePlaylist
//
// HTTP: PATCH /api/v1/playlists/{playlistId}  BODY: {"name": "...", "description": "..."}
func (h *SocialHandler) HandleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.playlists.Update(r.Context(), user.ID, id, req.Name, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p, "Playlist updated successfully")
}

// HandleAddToPlaylist
//
// HTTP: PATCH /api/v1/playlists/add/{videoId}/{playlistId}
func (h *SocialHandler) HandleAddToPlaylist(w http.ResponseWriter, r *http.Request) {
	h.editPlaylist(w, r, h.playlists.AddVideo, "Video added to playlist")
}

// HandleRemoveFromPlaylist
//
// HTTP: PATCH /api/v1/playlists/remove/{videoId}/{playlistId}
func (h *SocialHandler) HandleRemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	h.editPlaylist(w, r, h.playlists.RemoveVideo, "Video removed from playlist")
}

func (h *SocialHandler) editPlaylist(
	w http.ResponseWriter,
	r *http.Request,
	edit func(ctx context.Context, actorID, playlistID, videoID string) (*model.Playlist, error),
	message string,
) {
	user, videoID, err := userAndParam(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	playlistID, err := pathParam(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := edit(r.Context(), user.ID, playlistID, videoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, p, message)
}

// HandleDeletePlaylist
//
// HTTP: DELETE /api/v1/playlists/{playlistId}
func (h *SocialHandler) HandleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.playlists.Delete(r.Context(), user.ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, struct{}{}, "Playlist deleted successfully")
}
