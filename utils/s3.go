package utils

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// ObjectStorage stores uploaded media and turns object keys into browser-usable URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, body io.Reader, objectKey, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
}

// S3Storage is the S3 backed ObjectStorage.
type S3Storage struct {
	Client        *s3.Client
	PresignClient *s3.PresignClient
	Bucket        string
	// PublicBaseURL, when set, is used instead of presigning (bucket behind a CDN or public-read).
	PublicBaseURL string
}

// InitS3 initializes the S3 client
func InitS3(ctx context.Context, region, bucket, publicBaseURL string) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	Logger.Info("S3 Client Initialized", zap.String("bucket", bucket))
	return &S3Storage{
		Client:        client,
		PresignClient: s3.NewPresignClient(client),
		Bucket:        bucket,
		PublicBaseURL: publicBaseURL,
	}, nil
}

// Upload uploads a file to S3 and returns the Object Key
func (s *S3Storage) Upload(ctx context.Context, file io.Reader, objectKey string, contentType string) (string, error) {
	if s.Bucket == "" {
		return "", fmt.Errorf("AWS_BUCKET_NAME is not set")
	}

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return objectKey, nil
}

// URL returns the public URL for objectKey, or a presigned GET valid for one hour.
func (s *S3Storage) URL(ctx context.Context, objectKey string) (string, error) {
	if s.PublicBaseURL != "" {
		return s.PublicBaseURL + "/" + escapeKey(objectKey), nil
	}

	request, err := s.PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	return request.URL, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// IsAbsoluteURL reports whether ref already points somewhere a browser can fetch.
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ResolveImageRefs rewrites every object key in refs to a URL in place.
// Absolute URLs and empty values are left alone; a key that fails to resolve is kept as is.
func ResolveImageRefs(ctx context.Context, storage ObjectStorage, refs []*string) {
	if storage == nil {
		return
	}
	for _, ref := range refs {
		if ref == nil || *ref == "" || IsAbsoluteURL(*ref) {
			continue
		}
		if u, err := storage.URL(ctx, *ref); err == nil {
			*ref = u
		} else {
			Logger.Warn("resolve image", zap.String("key", *ref), zap.Error(err))
		}
	}
}
