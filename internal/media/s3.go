package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"

	"github.com/yatube/yatube/pkg/config"
	"github.com/yatube/yatube/pkg/logging"
)

// S3Store uploads images to an S3 (or S3-compatible) bucket. Credentials
// come from the default AWS chain.
type S3Store struct {
	bucket   string
	region   string
	endpoint string
	uploader *s3manager.Uploader
	logger   *zap.Logger
}

// NewS3Store creates an S3 store from media configuration
func NewS3Store(cfg *config.MediaConfig) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		endpoint: cfg.S3Endpoint,
		uploader: s3manager.NewUploader(sess),
		logger:   logging.WithComponent("media"),
	}, nil
}

// Save uploads the image and returns its key
func (s *S3Store) Save(ctx context.Context, filename string, body io.Reader) (string, error) {
	data, contentType, key, err := sniff(body)
	if err != nil {
		return "", err
	}

	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader(data),
		ContentType: aws.String(contentType),
	}
	if disposition := contentDisposition(filename); disposition != "" {
		input.ContentDisposition = aws.String(disposition)
	}

	result, err := s.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.Debug("Image uploaded",
		zap.String("filename", filename),
		zap.String("key", key),
		zap.String("location", result.Location))
	return key, nil
}

// contentDisposition keeps the uploader's file name for downloads. Names
// that cannot be encoded are dropped.
func contentDisposition(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return mime.FormatMediaType("inline", map[string]string{"filename": name})
}

// URL returns the public object URL
func (s *S3Store) URL(key string) string {
	if key == "" {
		return ""
	}
	if s.endpoint != "" {
		return strings.TrimSuffix(s.endpoint, "/") + "/" + s.bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
