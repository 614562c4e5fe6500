// internal/media/s3.go
package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"captain-smart/internal/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Store is the interface the rest of the application uses for media files.
// DeleteFile failures are per-call and catchable so a batch caller can keep
// going past a single bad file.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// S3Store stores media objects in an S3 (or S3-compatible) bucket.
type S3Store struct {
	client   s3iface.S3API
	bucket   string
	region   string
	endpoint string
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds a store against the given bucket. endpoint may be empty
// for AWS proper, or point at an S3-compatible service.
func NewS3Store(region, bucket, endpoint string) (*S3Store, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Store{
		client:   s3.New(sess),
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}, nil
}

// Upload writes an object and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", utils.NewAppError(utils.ErrDatabase, "failed to upload media object", err)
	}

	return s.objectURL(key), nil
}

// DeleteFile removes the object referenced by fileURL.
func (s *S3Store) DeleteFile(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return utils.NewAppError(utils.ErrMediaDeleteFailed, "unparseable media URL: "+fileURL, err)
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return utils.NewAppError(utils.ErrMediaDeleteFailed, "failed to delete media object: "+key, err)
	}

	log.Printf("MediaStore: deleted object %s", key)
	return nil
}

func (s *S3Store) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// keyFromURL recovers the object key from either virtual-hosted or
// path-style URLs.
func (s *S3Store) keyFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("no object key in URL %q", fileURL)
	}

	// Path-style URLs carry the bucket as the first path segment.
	if rest, found := strings.CutPrefix(path, s.bucket+"/"); found && !strings.HasPrefix(u.Host, s.bucket+".") {
		return rest, nil
	}
	return path, nil
}
