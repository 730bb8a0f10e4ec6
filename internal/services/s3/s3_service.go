package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Service struct {
	client *s3.Client
}

func NewS3Service(client *s3.Client) *S3Service {
	return &S3Service{client: client}
}

// ParseS3URI splits an s3://bucket/prefix URI into bucket and prefix.
func ParseS3URI(s3Uri string) (string, string, error) {
	if !strings.HasPrefix(s3Uri, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URI: must start with 's3://'")
	}

	uriPath := strings.TrimPrefix(s3Uri, "s3://")

	parts := strings.SplitN(uriPath, "/", 2)
	if len(parts) < 1 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URI: missing bucket name")
	}

	bucket := parts[0]
	prefix := ""
	if len(parts) > 1 {
		prefix = strings.TrimSuffix(parts[1], "/")
	}

	return bucket, prefix, nil
}

// FormatS3URI is the inverse of ParseS3URI.
func FormatS3URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

// ParseBucketRef accepts either a bare bucket name or an s3:// URI and
// returns the bucket plus any key prefix embedded in the URI.
func ParseBucketRef(ref string) (string, string, error) {
	if strings.HasPrefix(ref, "s3://") {
		return ParseS3URI(ref)
	}
	if ref == "" || strings.Contains(ref, "/") {
		return "", "", fmt.Errorf("invalid bucket %q: expected a bucket name or an s3:// URI", ref)
	}
	return ref, "", nil
}

// CheckBucketAccess verifies the bucket exists and the caller can reach it.
func (s *S3Service) CheckBucketAccess(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: &bucket,
	})
	if err != nil {
		return fmt.Errorf("bucket %s is not accessible: %w", bucket, err)
	}
	return nil
}

// Upload puts an object and returns its s3:// URI.
func (s *S3Service) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return FormatS3URI(bucket, key), nil
}
