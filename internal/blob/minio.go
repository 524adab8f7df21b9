package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

type MinioOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	PublicURL       string
}

type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinio connects to the endpoint and makes sure the bucket exists.
func NewMinio(ctx context.Context, opts MinioOptions) (*Minio, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("MINIO_ENDPOINT is not set")
	}
	if opts.Bucket == "" {
		return nil, errors.New("MINIO_BUCKET is not set")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, opts.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
		log.Debug().Str("bucket", opts.Bucket).Msg("minio bucket already exists")
	} else {
		log.Info().Str("bucket", opts.Bucket).Msg("minio bucket created")
	}
	publicURL := strings.TrimSuffix(opts.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, opts.Endpoint)
	}
	return &Minio{client: client, bucket: opts.Bucket, publicURL: publicURL}, nil
}

func (m *Minio) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyObject
	}
	info, err := m.client.PutObject(ctx, m.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, info.Key), nil
}
