package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/service"
)

// VideoService is the video catalogue as the HTTP layer sees it.
type VideoService interface {
	Publish(ctx context.Context, ownerID string, in service.PublishInput) (*model.Video, error)
	List(ctx context.Context, viewerID string, in service.ListInput) (model.Page[model.Video], error)
	Get(ctx context.Context, viewerID, id string) (*model.Video, error)
	Update(ctx context.Context, actorID, id string, in service.UpdateInput) (*model.Video, error)
	Delete(ctx context.Context, actorID, id string) error
	TogglePublish(ctx context.Context, actorID, id string) (*model.Video, error)
	LikedVideos(ctx context.Context, userID string, page, limit int) ([]model.Video, error)
}

// VideoHandler serves /videos.
type VideoHandler struct {
	responder
	videos   VideoService
	stager   Stager
	maxBytes int64
}

func NewVideoHandler(videos VideoService, stager Stager, maxUploadBytes int64, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		responder: responder{logger: logger},
		videos:    videos,
		stager:    stager,
		maxBytes:  maxUploadBytes,
	}
}

// HandleList
//
// HTTP: GET /api/v1/videos?page=&limit=&query=&sortBy=&sortType=&userId=
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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
	q := r.URL.Query()
	result, err := h.videos.List(r.Context(), user.ID, service.ListInput{
		Page:     page,
		Limit:    limit,
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		UserID:   q.Get("userId"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, result, "Videos fetched successfully")
}

// HandlePublish uploads a video with its thumbnail.
//
// HTTP: POST /api/v1/videos
// FORM: title, description, duration (optional, seconds), videoFile (file), thumbnail (file)
func (h *VideoHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := parseUpload(w, r, h.stager, h.maxBytes, "videoFile", "thumbnail")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer form.cleanup()

	var duration float64
	if raw := form.value("duration"); raw != "" {
		duration, err = strconv.ParseFloat(raw, 64)
		if err != nil || duration < 0 {
			h.fail(w, r, apperror.ValidationFailed("duration", "duration must be a non-negative number of seconds"))
			return
		}
	}

	video, err := h.videos.Publish(r.Context(), user.ID, service.PublishInput{
		Title:         form.value("title"),
		Description:   form.value("description"),
		Duration:      duration,
		VideoPath:     form.file("videoFile"),
		ThumbnailPath: form.file("thumbnail"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, video, "Video published successfully")
}

// HandleGet
//
// HTTP: GET /api/v1/videos/{videoId}
func (h *VideoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	video, err := h.videos.Get(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, video, "Video fetched successfully")
}

// HandleUpdate changes title/description and optionally the thumbnail.
//
// HTTP: PATCH /api/v1/videos/{videoId} (multipart: title, description, thumbnail)
func (h *VideoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := parseUpload(w, r, h.stager, h.maxBytes, "thumbnail")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer form.cleanup()

	video, err := h.videos.Update(r.Context(), user.ID, id, service.UpdateInput{
		Title:         form.value("title"),
		Description:   form.value("description"),
		ThumbnailPath: form.file("thumbnail"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, video, "Video updated successfully")
}

// HandleDelete
//
// HTTP: DELETE /api/v1/videos/{videoId}
func (h *VideoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.videos.Delete(r.Context(), user.ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, struct{}{}, "Video deleted successfully")
}

// HandleTogglePublish
//
// HTTP: PATCH /api/v1/videos/toggle/publish/{videoId}
func (h *VideoHandler) HandleTogglePublish(w http.ResponseWriter, r *http.Request) {
	user, id, err := userAndParam(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	video, err := h.videos.TogglePublish(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"isPublished": video.IsPublished}, "Video publish status toggled successfully")
}

// userAndParam is the prologue shared by routes acting on one resource.
func userAndParam(r *http.Request, name string) (*model.User, string, error) {
	user, err := currentUser(r)
	if err != nil {
		return nil, "", err
	}
	id, err := pathParam(r, name)
	if err != nil {
		return nil, "", err
	}
	return user, id, nil
}
