package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flipquiz/internal/config"

	"github.com/google/uuid"
)

// Store uploads an object to a path and returns the URL clients fetch it from.
type Store interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// New builds the store selected by cfg.BlobDriver.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch strings.ToLower(cfg.BlobDriver) {
	case "", "memory":
		return NewMemory("/blobs"), nil
	case "minio":
		store, err := NewMinio(ctx, MinioOptions{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKeyID,
			SecretAccessKey: cfg.MinioSecretAccessKey,
			UseSSL:          cfg.MinioUseSSL,
			Bucket:          cfg.MinioBucket,
			PublicURL:       cfg.MinioPublicURL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "supabase":
		store, err := NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}

var errEmptyObject = errors.New("blob data is empty")

func QuestionImagePath(roomID uint, ext string) string {
	return fmt.Sprintf("questions/%d/%s%s", roomID, uuid.NewString(), ext)
}

// HistoryImagePath is stable per (room, question, uid) so a retried close
// overwrites rather than duplicates.
func HistoryImagePath(roomID, questionID uint, uid string) string {
	return fmt.Sprintf("history/%d/%d/%s.png", roomID, questionID, sanitizeSegment(uid))
}

func AvatarPath(uid, ext string) string {
	return fmt.Sprintf("avatars/%s/%s%s", sanitizeSegment(uid), uuid.NewString(), ext)
}

func sanitizeSegment(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
