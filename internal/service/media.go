package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/media"
)

// MediaService runs the upload transactions that move staged files into the
// media store and point rows at them.
//
// Ordering rules:
//
//	upload new → remove temp → persist new URL → delete old
//
// The old object is only deleted once the row references the new one, so a
// failure at any step leaves the row pointing at a live object. Temp files
// never outlive the call that was handed them.
type MediaService struct {
	store   media.Store
	staging *media.Staging
	logger  *slog.Logger
}

func NewMediaService(store media.Store, staging *media.Staging, logger *slog.Logger) *MediaService {
	return &MediaService{store: store, staging: staging, logger: logger}
}

// PersistFunc stores url on the owning row.
type PersistFunc func(ctx context.Context, url string) error

// ReplaceAsset uploads the staged file at localPath as the new asset of a
// slot, persists its URL and then deletes oldURL from the store.
//
// A persistence failure destroys the freshly uploaded object and returns
// ErrPersistence (or the persister's own AppError). Failing to delete the
// old object is logged and does not fail the call.
func (s *MediaService) ReplaceAsset(ctx context.Context, kind media.Kind, oldURL, localPath string, persist PersistFunc) (string, error) {
	if localPath == "" {
		return "", apperror.ValidationFailed(string(kind), fmt.Sprintf("%s file is missing", kind))
	}
	defer s.removeTemp(localPath)

	asset, err := s.store.Upload(ctx, localPath, kind)
	if err != nil {
		return "", apperror.Upload(string(kind), err)
	}
	s.removeTemp(localPath)

	if err := persist(ctx, asset.URL); err != nil {
		s.destroy(ctx, asset.Key, "compensating upload")
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", apperror.Persistence(string(kind), err)
	}

	if oldURL != "" {
		s.destroyExisting(ctx, s.store.KeyFromURL(oldURL), "replaced asset")
	}

	s.logger.Info("media asset replaced",
		slog.String("kind", string(kind)),
		slog.String("key", asset.Key),
	)
	return asset.URL, nil
}

// StagedFile is a temp file waiting to be uploaded under Kind.
type StagedFile struct {
	Kind media.Kind
	Path string
}

// UploadBatch is the set of assets uploaded by one UploadSet call.
type UploadBatch struct {
	svc    *MediaService
	assets map[media.Kind]media.Asset
}

// URL returns the public URL of the asset uploaded for kind, or "".
func (b *UploadBatch) URL(kind media.Kind) string {
	return b.assets[kind].URL
}

// Rollback destroys every asset of the batch. It is called when the row
// that would have referenced them could not be written.
func (b *UploadBatch) Rollback(ctx context.Context) {
	for _, a := range b.assets {
		b.svc.destroy(ctx, a.Key, "rollback")
	}
}

// UploadSet uploads files concurrently. Every temp file is removed whatever
// the outcome. If any upload fails the ones that succeeded are destroyed
// and the first failure is returned as ErrUpload.
func (s *MediaService) UploadSet(ctx context.Context, files ...StagedFile) (*UploadBatch, error) {
	defer func() {
		for _, f := range files {
			s.removeTemp(f.Path)
		}
	}()

	for _, f := range files {
		if f.Path == "" {
			return nil, apperror.ValidationFailed(string(f.Kind), fmt.Sprintf("%s file is missing", f.Kind))
		}
	}

	batch := &UploadBatch{svc: s, assets: make(map[media.Kind]media.Asset, len(files))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			asset, err := s.store.Upload(gctx, f.Path, f.Kind)
			if err != nil {
				return apperror.Upload(string(f.Kind), err)
			}
			mu.Lock()
			batch.assets[f.Kind] = asset
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// gctx is already cancelled here.
		batch.Rollback(context.WithoutCancel(ctx))
		return nil, err
	}
	return batch, nil
}

// DeleteAssets deletes the objects behind urls and waits for every delete.
// URLs the store does not own, and objects that are already gone, are
// skipped. Failures are logged as orphaned
// objects and never returned, so the caller can go on deleting the row.
func (s *MediaService) DeleteAssets(ctx context.Context, urls ...string) {
	var wg sync.WaitGroup
	for _, u := range urls {
		key := s.store.KeyFromURL(u)
		if key == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.destroyExisting(ctx, key, "orphaned object")
		}()
	}
	wg.Wait()
}

func (s *MediaService) destroy(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if err := s.store.Destroy(ctx, key); err != nil {
		s.logger.Warn("media delete failed",
			slog.String("key", key),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
	}
}

// destroyExisting deletes key unless the store reports it missing. A
// failed Stat still attempts the delete.
func (s *MediaService) destroyExisting(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if _, err := s.store.Stat(ctx, key); errors.Is(err, apperror.ErrNotFound) {
		s.logger.Debug("media object already gone",
			slog.String("key", key),
			slog.String("reason", reason),
		)
		return
	}
	s.destroy(ctx, key, reason)
}

func (s *MediaService) removeTemp(path string) {
	if err := s.staging.Remove(path); err != nil {
		s.logger.Error("temp file cleanup failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
