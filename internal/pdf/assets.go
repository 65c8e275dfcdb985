package pdf

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// AssetResolver finds images on local disk and inlines them as data URIs so
// the headless browser never has to fetch anything
type AssetResolver struct {
	dirs []string
}

// NewAssetResolver searches each path under the given directories in order.
// An empty list searches the working directory only.
func NewAssetResolver(dirs []string) *AssetResolver {
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	return &AssetResolver{dirs: dirs}
}

// DataURI returns the first candidate found as a data URI, or "" when none of
// them exist
func (r *AssetResolver) DataURI(candidates ...string) string {
	for _, candidate := range candidates {
		candidate = strings.TrimLeft(strings.TrimSpace(candidate), "/")
		if candidate == "" {
			continue
		}
		for _, dir := range r.dirs {
			path := filepath.Join(dir, filepath.FromSlash(candidate))
			buf, err := os.ReadFile(path)
			if err != nil || len(buf) == 0 {
				continue
			}
			return "data:" + mimeOf(path, buf) + ";base64," + base64.StdEncoding.EncodeToString(buf)
		}
	}
	return ""
}

func mimeOf(path string, buf []byte) string {
	if kind, err := filetype.Match(buf); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
