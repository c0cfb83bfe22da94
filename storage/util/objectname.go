package util

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var preferredExt = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// ObjectName derives a unique, URL-safe object name and extension from an
// uploaded file's name and declared content type. "My Photo.PNG" becomes
// ("my-photo-1a2b3c4d", ".png").
func ObjectName(filename string, contentType string) (string, string) {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}

	ext := strings.ToLower(filepath.Ext(base))
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))

	if ext == "" && contentType != "" {
		ext = extensionFor(contentType)
	}

	if stem == "" {
		stem = "upload"
	}

	return stem + "-" + uuid.New().String()[:8], ext
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	if ext, ok := preferredExt[mediaType]; ok {
		return ext
	}

	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}

	return ""
}
