package content

import (
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/MrSnakeDoc/quill/internal/post"
	"github.com/MrSnakeDoc/quill/internal/utils"
)

// resolveHeroImage turns a relative heroImage path into a resolved asset handle.
// Paths that cannot be resolved are left untouched for the schema to reject.
// raw is modified in place; it belongs to the loader.
func (l *Loader) resolveHeroImage(raw map[string]any, file string) {
	items, ok := raw[post.KeyHeroImage].([]any)
	if !ok || len(items) == 0 {
		return
	}
	ref, ok := items[0].(string)
	if !ok || !isRelativeAsset(ref) {
		return
	}

	asset, ok := l.decodeAsset(filepath.Join(filepath.Dir(file), filepath.FromSlash(ref)))
	if !ok {
		return
	}

	resolved := make([]any, len(items))
	copy(resolved, items)
	resolved[0] = asset
	raw[post.KeyHeroImage] = resolved
}

func isRelativeAsset(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "/") {
		return false
	}
	return !strings.Contains(ref, "://")
}

func (l *Loader) decodeAsset(file string) (*post.ImageAsset, bool) {
	rel, err := filepath.Rel(l.root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, false
	}
	defer utils.Close(f)

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, false
	}

	return &post.ImageAsset{
		Src:    path.Join(l.assetPrefix, filepath.ToSlash(rel)),
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, true
}

// IsAssetPath reports whether a request path names an image format the
// loader can resolve. Used to keep the asset route from serving sources.
func IsAssetPath(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}
