package storage

import (
	"context"
	"io"
	"strings"
)

// AvatarStorage persists an uploaded avatar and returns a durable URL.
// Two implementations exist: local filesystem and S3, selected at
// construction time by the AVATAR_STORAGE config flag.
type AvatarStorage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

func contentTypeFor(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
