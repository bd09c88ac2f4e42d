package storage

import (
	"context"
	"io"

	s3infra "github.com/go-accounts-api/internal/infrastructure/s3"
)

// S3Storage stores avatars in an S3 bucket under an avatars/ prefix.
type S3Storage struct {
	store *s3infra.Store
}

func NewS3Storage(store *s3infra.Store) *S3Storage {
	return &S3Storage{store: store}
}

func (s *S3Storage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	return s.store.Upload(ctx, "avatars/"+filename, r, contentTypeFor(filename))
}
