package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
)

// MediaPrefix is the URL path disk uploads are served under.
const MediaPrefix = "/media/"

// DiskUploader writes objects below Dir and serves them from
// BaseURL + MediaPrefix. Keys cannot escape Dir.
type DiskUploader struct {
	Dir     string
	BaseURL string
}

func (u *DiskUploader) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o750); err != nil {
		return "", err
	}
	root, err := os.OpenRoot(u.Dir)
	if err != nil {
		return "", err
	}
	defer root.Close()

	if err := root.MkdirAll(path.Dir(key), 0o750); err != nil {
		return "", fmt.Errorf("create %s: %w", path.Dir(key), err)
	}
	if err := root.WriteFile(key, data, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return strings.TrimRight(u.BaseURL, "/") + MediaPrefix + key, nil
}

// Handler serves the stored files under MediaPrefix.
func (u *DiskUploader) Handler() http.Handler {
	return http.StripPrefix(MediaPrefix, http.FileServerFS(os.DirFS(u.Dir)))
}
