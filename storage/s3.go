package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// S3Store exports payloads to Amazon S3 or a compatible service.
type S3Store struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Store creates an S3 destination.
// Without accessKey and secretKey the default AWS credential chain is used.
// A custom endpoint switches to path-style addressing, which S3-compatible
// services such as MinIO expect.
func NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Store, error) {
	prefix = strings.Trim(prefix, "/")

	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if accessKey != "" {
		uri = fmt.Sprintf("s3://%s:***@%s/%s?region=%s", accessKey, bucketName, prefix, region)
	}
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := &aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		client:      s3.New(sess),
		bucketName:  bucketName,
		prefix:      prefix,
		log:         log,
		locationURI: uri,
	}, nil
}

// Put uploads the payload with its content type and original filename and
// returns the s3:// location of the object.
func (s *S3Store) Put(ctx context.Context, file *interfaces.RetrievedFile) (string, error) {
	start := time.Now()
	key := s.objectKey(file)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(file.Data),
	}
	if file.MIMEType != "" {
		input.ContentType = aws.String(file.MIMEType)
	}
	if file.Filename != "" {
		input.ContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		s.log.Error("Failed to upload object to S3",
			slog.String("bucket", s.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("failed to upload object to S3: %w", err)
	}

	s.log.Debug("Exported file to S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", key),
		slog.Int("size", file.Size()),
		slog.Duration("duration", time.Since(start)))

	return fmt.Sprintf("s3://%s/%s", s.bucketName, key), nil
}

// Available heads the bucket.
func (s *S3Store) Available(ctx context.Context) bool {
	start := time.Now()

	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		s.log.Warn("S3 destination unavailable",
			slog.String("bucket", s.bucketName),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return false
	}

	return true
}

func (s *S3Store) Name() string {
	return fmt.Sprintf("s3-%s", s.bucketName)
}

func (s *S3Store) LocationURI() string {
	return s.locationURI
}

func (s *S3Store) objectKey(file *interfaces.RetrievedFile) string {
	if s.prefix == "" {
		return ObjectKey(file)
	}
	return path.Join(s.prefix, ObjectKey(file))
}
