package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
)

// DiskStore keeps media in a local directory. It is the development
// fallback when no bucket is configured; the server exposes Root under
// the URL prefix the store was created with.
type DiskStore struct {
	root    string
	baseURL string
}

var _ Store = (*DiskStore)(nil)

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("disk store: creating %s: %w", root, err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *DiskStore) Root() string {
	return d.root
}

func (d *DiskStore) Upload(ctx context.Context, localPath string, kind Kind) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("disk store: opening %s: %w", localPath, err)
	}
	defer src.Close()

	key := joinKey("", kind, uuid.NewString()+strings.ToLower(filepath.Ext(localPath)))
	dest := d.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Asset{}, fmt.Errorf("disk store: creating %s: %w", filepath.Dir(dest), err)
	}

	dst, err := os.Create(dest)
	if err != nil {
		return Asset{}, fmt.Errorf("disk store: creating %s: %w", dest, err)
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return Asset{}, fmt.Errorf("disk store: writing %s: %w", dest, err)
	}

	return Asset{
		Key:         key,
		URL:         d.baseURL + "/" + key,
		Size:        size,
		ContentType: detectContentType(src),
	}, nil
}

func (d *DiskStore) Destroy(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("disk store: deleting %s: %w", key, err)
	}
	return nil
}

func (d *DiskStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	f, err := os.Open(d.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ObjectInfo{}, apperror.NotFound("object", key)
		}
		return ObjectInfo{}, fmt.Errorf("disk store: stat %s: %w", key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("disk store: stat %s: %w", key, err)
	}
	return ObjectInfo{Key: key, Size: info.Size(), ContentType: detectContentType(f)}, nil
}

func (d *DiskStore) KeyFromURL(rawURL string) string {
	return keyFromBase(d.baseURL, rawURL)
}

// path maps key into root. Keys that would escape root map to an
// unreachable name.
func (d *DiskStore) path(key string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	return filepath.Join(d.root, clean)
}
