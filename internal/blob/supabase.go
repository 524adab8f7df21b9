package blob

import (
	"bytes"
	"context"
	"errors"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type Supabase struct {
	client *storage.Client
	bucket string
}

func NewSupabase(url, key, bucket string) (*Supabase, error) {
	if url == "" || key == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_KEY must be set")
	}
	if bucket == "" {
		return nil, errors.New("SUPABASE_BUCKET is not set")
	}
	client := storage.NewClient(strings.TrimSuffix(url, "/")+"/storage/v1", key, nil)
	return &Supabase{client: client, bucket: bucket}, nil
}

// Upload overwrites any object already stored at path.
func (s *Supabase) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyObject
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), options); err != nil {
		return "", err
	}
	return s.client.GetPublicUrl(s.bucket, path).SignedURL, nil
}
