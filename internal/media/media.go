// Package media moves uploaded files from local staging to a remote object
// store and back out again.
//
// Uploads arrive as multipart parts, are written to a temp file by Staging,
// pushed to a Store (S3 in production, a directory in development) and the
// temp file is removed. Rows only ever reference assets by public URL; the
// store derives the object key back from that URL when it must delete it.
package media

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the folder an asset is stored under.
type Kind string

const (
	KindAvatar     Kind = "avatar"
	KindCoverImage Kind = "cover-image"
	KindVideo      Kind = "video"
	KindThumbnail  Kind = "thumbnail"
)

// Asset is an object that has been uploaded to the store.
type Asset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is a remote media store.
type Store interface {
	// Upload copies the file at localPath into the store under kind.
	// It never removes localPath; that is the caller's job.
	Upload(ctx context.Context, localPath string, kind Kind) (Asset, error)
	// Destroy deletes the object. An empty key is a no-op.
	Destroy(ctx context.Context, key string) error
	// Stat returns apperror.ErrNotFound for a missing object.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// KeyFromURL returns the key of an asset URL issued by this store, or ""
	// for URLs it does not own (for example a GitHub avatar).
	KeyFromURL(url string) string
}

// joinKey builds "<prefix>/<kind>/<name>" without doubled slashes.
func joinKey(prefix string, kind Kind, name string) string {
	parts := make([]string, 0, 3)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, string(kind), name)
	return strings.Join(parts, "/")
}

// keyFromBase strips base from rawURL. It returns "" when rawURL does not
// start with base.
func keyFromBase(base, rawURL string) string {
	base = strings.TrimRight(base, "/")
	if base == "" || rawURL == "" {
		return ""
	}
	rest, ok := strings.CutPrefix(rawURL, base+"/")
	if !ok {
		return ""
	}
	return rest
}

// detectContentType prefers the extension and falls back to sniffing the
// first 512 bytes.
func detectContentType(f *os.File) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name()))); ct != "" {
		return ct
	}
	buf := make([]byte, 512)
	n, _ := f.ReadAt(buf, 0)
	return http.DetectContentType(buf[:n])
}
