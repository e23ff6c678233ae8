package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/media"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

// In-memory fakes of the repositories and the media store. Using fakes (not
// a mock framework) keeps each test readable: the fake does what a real
// store would do, and tests poke at its state directly.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type idGen struct {
	mu sync.Mutex
	n  int
}

func (g *idGen) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

// =========================================================================
// USERS
// =========================================================================

type fakeUserRepo struct {
	mu    sync.Mutex
	ids   idGen
	users map[string]*model.User

	createErr error
	setErr    error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func public(u *model.User) *model.User {
	cp := *u
	cp.PasswordHash = ""
	cp.RefreshTokenHash = ""
	return &cp
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, other := range f.users {
		if other.Email == u.Email || other.UserName == u.UserName {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "User with email or username already exists"}
		}
	}
	u.ID = f.ids.next("user")
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) get(id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return public(u), nil
}

func (f *fakeUserRepo) GetByIDWithSecrets(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	login = strings.ToLower(strings.TrimSpace(login))
	for _, u := range f.users {
		if u.UserName == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "User does not exist"}
}

func (f *fakeUserRepo) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := strings.ToLower(strings.TrimSpace(userName))
	for _, u := range f.users {
		if u.UserName == name {
			return public(u), nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "channel does not exist"}
}

func (f *fakeUserRepo) ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email || u.UserName == userName {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.RefreshTokenHash = hash
	return nil
}

func (f *fakeUserRepo) RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return false, nil
	}
	if oldHash == "" || u.RefreshTokenHash != oldHash {
		return false, nil
	}
	u.RefreshTokenHash = newHash
	return true, nil
}

func (f *fakeUserRepo) storedHash(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].RefreshTokenHash
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) UpdateAccount(ctx context.Context, id, fullName, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	for _, other := range f.users {
		if other.ID != id && other.Email == email {
			return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: "email is already in use"}
		}
	}
	u.FullName, u.Email = fullName, email
	return public(u), nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.Avatar = url
	return nil
}

func (f *fakeUserRepo) UpdateCoverImage(ctx context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.CoverImage = url
	return nil
}

func (f *fakeUserRepo) UpsertGitHub(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.users {
		if other.GitHubID == u.GitHubID || other.Email == u.Email {
			other.GitHubID = u.GitHubID
			*u = *public(other)
			return nil
		}
	}
	for _, other := range f.users {
		if other.UserName == u.UserName {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "User with email or username already exists"}
		}
	}
	u.ID = f.ids.next("user")
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) ChannelProfile(ctx context.Context, userName, viewerID string) (*model.ChannelProfile, error) {
	u, err := f.GetByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	status := model.StatusNotSubscribed
	if u.ID == viewerID {
		status = model.StatusSameUser
	}
	return &model.ChannelProfile{ID: u.ID, UserName: u.UserName, SubscriptionStatus: status}, nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

// =========================================================================
// VIDEOS
// =========================================================================

type fakeVideoRepo struct {
	mu     sync.Mutex
	ids    idGen
	videos map[string]*model.Video

	createErr error
}

var _ repository.VideoRepository = (*fakeVideoRepo)(nil)

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]*model.Video)}
}

func (f *fakeVideoRepo) Create(ctx context.Context, v *model.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	v.ID = f.ids.next("video")
	v.CreatedAt = time.Now().UTC()
	cp := *v
	f.videos[v.ID] = &cp
	return nil
}

func (f *fakeVideoRepo) GetByID(ctx context.Context, id string) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return nil, apperror.NotFound("video", id)
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideoRepo) List(ctx context.Context, q repository.VideoQuery) ([]model.Video, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Video
	for _, v := range f.videos {
		if !v.IsPublished && v.OwnerID != q.ViewerID {
			continue
		}
		if q.OwnerID != "" && v.OwnerID != q.OwnerID {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	total := int64(len(out))
	if q.Offset >= len(out) {
		return []model.Video{}, total, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (f *fakeVideoRepo) update(id string, fn func(v *model.Video)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return apperror.NotFound("video", id)
	}
	fn(v)
	return nil
}

func (f *fakeVideoRepo) UpdateDetails(ctx context.Context, id, title, description string) error {
	return f.update(id, func(v *model.Video) { v.Title, v.Description = title, description })
}

func (f *fakeVideoRepo) UpdateThumbnail(ctx context.Context, id, url string) error {
	return f.update(id, func(v *model.Video) { v.Thumbnail = url })
}

func (f *fakeVideoRepo) SetPublished(ctx context.Context, id string, published bool) error {
	return f.update(id, func(v *model.Video) { v.IsPublished = published })
}

func (f *fakeVideoRepo) IncrementViews(ctx context.Context, id string) error {
	return f.update(id, func(v *model.Video) { v.Views++ })
}

func (f *fakeVideoRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[id]; !ok {
		return apperror.NotFound("video", id)
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeVideoRepo) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.videos[id]
	return ok, nil
}

// =========================================================================
// RELATIONS
// =========================================================================

type relationKey struct {
	kind          model.RelationKind
	actor, target string
}

// fakeRelationRepo enforces the (kind, actor, target) uniqueness the way
// the unique index does: the check and the insert happen under one lock.
type fakeRelationRepo struct {
	mu   sync.Mutex
	ids  idGen
	rels map[relationKey]model.Relation

	videos *fakeVideoRepo
	users  *fakeUserRepo
}

var _ repository.RelationRepository = (*fakeRelationRepo)(nil)

func newFakeRelationRepo(videos *fakeVideoRepo, users *fakeUserRepo) *fakeRelationRepo {
	return &fakeRelationRepo{rels: make(map[relationKey]model.Relation), videos: videos, users: users}
}

func (f *fakeRelationRepo) Exists(ctx context.Context, kind model.RelationKind, actorID, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rels[relationKey{kind, actorID, targetID}]
	return ok, nil
}

func (f *fakeRelationRepo) Create(ctx context.Context, kind model.RelationKind, actorID, targetID string) (*model.Relation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := relationKey{kind, actorID, targetID}
	if _, ok := f.rels[k]; ok {
		return nil, apperror.Conflict(string(kind), targetID)
	}
	rel := model.Relation{ID: f.ids.next("rel"), Kind: kind, ActorID: actorID, TargetID: targetID, CreatedAt: time.Now().UTC()}
	f.rels[k] = rel
	return &rel, nil
}

func (f *fakeRelationRepo) Delete(ctx context.Context, kind model.RelationKind, actorID, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := relationKey{kind, actorID, targetID}
	if _, ok := f.rels[k]; !ok {
		return apperror.NotFound(string(kind), targetID)
	}
	delete(f.rels, k)
	return nil
}

func (f *fakeRelationRepo) count(kind model.RelationKind, actorID, targetID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rels[relationKey{kind, actorID, targetID}]; ok {
		return 1
	}
	return 0
}

func (f *fakeRelationRepo) LikedVideos(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Video, error) {
	f.mu.Lock()
	var ids []string
	for k := range f.rels {
		if k.kind == model.KindVideoLike && k.actor == userID {
			ids = append(ids, k.target)
		}
	}
	f.mu.Unlock()

	out := []model.Video{}
	for _, id := range ids {
		v, err := f.videos.GetByID(ctx, id)
		if err == nil && v.IsPublished {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeRelationRepo) summaries(ctx context.Context, match func(relationKey) (string, bool)) ([]model.UserSummary, error) {
	f.mu.Lock()
	var ids []string
	for k := range f.rels {
		if id, ok := match(k); ok {
			ids = append(ids, id)
		}
	}
	f.mu.Unlock()

	out := []model.UserSummary{}
	for _, id := range ids {
		u, err := f.users.GetByID(ctx, id)
		if err == nil {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (f *fakeRelationRepo) Subscribers(ctx context.Context, channelID string) ([]model.UserSummary, error) {
	return f.summaries(ctx, func(k relationKey) (string, bool) {
		return k.actor, k.kind == model.KindSubscription && k.target == channelID
	})
}

func (f *fakeRelationRepo) SubscribedChannels(ctx context.Context, subscriberID string) ([]model.UserSummary, error) {
	return f.summaries(ctx, func(k relationKey) (string, bool) {
		return k.target, k.kind == model.KindSubscription && k.actor == subscriberID
	})
}

// =========================================================================
// TWEETS / COMMENTS / PLAYLISTS
// =========================================================================

type fakeTweetRepo struct {
	mu     sync.Mutex
	ids    idGen
	tweets map[string]*model.Tweet
}

var _ repository.TweetRepository = (*fakeTweetRepo)(nil)

func newFakeTweetRepo() *fakeTweetRepo {
	return &fakeTweetRepo{tweets: make(map[string]*model.Tweet)}
}

func (f *fakeTweetRepo) Create(ctx context.Context, t *model.Tweet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.ids.next("tweet")
	cp := *t
	f.tweets[t.ID] = &cp
	return nil
}

func (f *fakeTweetRepo) GetByID(ctx context.Context, id string) (*model.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tweets[id]
	if !ok {
		return nil, apperror.NotFound("tweet", id)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTweetRepo) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Tweet{}
	for _, t := range f.tweets {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTweetRepo) UpdateContent(ctx context.Context, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tweets[id]
	if !ok {
		return apperror.NotFound("tweet", id)
	}
	t.Content = content
	return nil
}

func (f *fakeTweetRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tweets[id]; !ok {
		return apperror.NotFound("tweet", id)
	}
	delete(f.tweets, id)
	return nil
}

func (f *fakeTweetRepo) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tweets[id]
	return ok, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	ids      idGen
	comments map[string]*model.Comment
}

var _ repository.CommentRepository = (*fakeCommentRepo)(nil)

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment)}
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.ids.next("comment")
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommentRepo) ListByVideo(ctx context.Context, videoID string, opts repository.ListOptions) ([]model.Comment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.VideoID == videoID {
			out = append(out, *c)
		}
	}
	total := int64(len(out))
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, total, nil
}

func (f *fakeCommentRepo) UpdateContent(ctx context.Context, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return apperror.NotFound("comment", id)
	}
	c.Content = content
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.comments[id]
	return ok, nil
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	ids       idGen
	playlists map[string]*model.Playlist
}

var _ repository.PlaylistRepository = (*fakePlaylistRepo)(nil)

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: make(map[string]*model.Playlist)}
}

func (f *fakePlaylistRepo) Create(ctx context.Context, p *model.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.ids.next("playlist")
	p.VideoIDs = []string{}
	cp := *p
	f.playlists[p.ID] = &cp
	return nil
}

func (f *fakePlaylistRepo) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[id]
	if !ok {
		return nil, apperror.NotFound("playlist", id)
	}
	cp := *p
	cp.VideoIDs = append([]string{}, p.VideoIDs...)
	return &cp, nil
}

func (f *fakePlaylistRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Playlist{}
	for _, p := range f.playlists {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlaylistRepo) UpdateDetails(ctx context.Context, id, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[id]
	if !ok {
		return apperror.NotFound("playlist", id)
	}
	p.Name, p.Description = name, description
	return nil
}

func (f *fakePlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[playlistID]
	if !ok {
		return apperror.NotFound("playlist", playlistID)
	}
	for _, id := range p.VideoIDs {
		if id == videoID {
			return apperror.Conflict("playlist video", videoID)
		}
	}
	p.VideoIDs = append(p.VideoIDs, videoID)
	return nil
}

func (f *fakePlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[playlistID]
	if !ok {
		return apperror.NotFound("playlist", playlistID)
	}
	for i, id := range p.VideoIDs {
		if id == videoID {
			p.VideoIDs = append(p.VideoIDs[:i], p.VideoIDs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("playlist video", videoID)
}

func (f *fakePlaylistRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.playlists[id]; !ok {
		return apperror.NotFound("playlist", id)
	}
	delete(f.playlists, id)
	return nil
}

// =========================================================================
// MEDIA STORE
// =========================================================================

const fakeCDN = "https://cdn.test/media"

// fakeStore is an in-memory media.Store. failUpload fails uploads of the
// given kinds; destroyErr fails every delete.
type fakeStore struct {
	mu         sync.Mutex
	ids        idGen
	objects    map[string]string // key → uploaded file content
	destroyed  []string
	failUpload map[media.Kind]error
	destroyErr error
}

var _ media.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]string), failUpload: make(map[media.Kind]error)}
}

func (f *fakeStore) Upload(ctx context.Context, localPath string, kind media.Kind) (media.Asset, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return media.Asset{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failUpload[kind]; err != nil {
		return media.Asset{}, err
	}
	key := string(kind) + "/" + f.ids.next("obj") + filepath.Ext(localPath)
	f.objects[key] = string(data)
	return media.Asset{Key: key, URL: fakeCDN + "/" + key, Size: int64(len(data))}, nil
}

func (f *fakeStore) Destroy(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, key)
	if f.destroyErr != nil {
		return f.destroyErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Stat(ctx context.Context, key string) (media.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return media.ObjectInfo{}, apperror.NotFound("object", key)
	}
	return media.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStore) KeyFromURL(url string) string {
	key, ok := strings.CutPrefix(url, fakeCDN+"/")
	if !ok {
		return ""
	}
	return key
}

func (f *fakeStore) objectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeStore) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[f.keyFromURLLocked(url)]
	return ok
}

func (f *fakeStore) keyFromURLLocked(url string) string {
	key, _ := strings.CutPrefix(url, fakeCDN+"/")
	return key
}

// =========================================================================
// STAGING HELPERS
// =========================================================================

// newTestStaging returns a Staging over a fresh temp dir.
func newTestStaging(t *testing.T) *media.Staging {
	t.Helper()
	st, err := media.NewStaging(t.TempDir(), 0)
	require.NoError(t, err)
	return st
}

// stage writes content as a staged upload named name.
func stage(t *testing.T, st *media.Staging, name, content string) string {
	t.Helper()
	path, err := st.Save(strings.NewReader(content), name)
	require.NoError(t, err)
	return path
}

// stagedFiles lists what is left in the staging dir.
func stagedFiles(t *testing.T, st *media.Staging) []string {
	t.Helper()
	entries, err := os.ReadDir(st.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func defaultListOptions() repository.ListOptions {
	opts, _, _ := pageOptions(1, 0)
	return opts
}
