// Package media stores images attached to posts.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/yatube/yatube/pkg/config"
)

// MaxImageSize bounds a single upload
const MaxImageSize = 10 << 20

// MaxDimension is the largest width or height kept; bigger images are
// scaled down to fit.
const MaxDimension = 960

// MaxPixels bounds width*height of a decodable upload
const MaxPixels = 40_000_000

// keyPrefix groups post images under one directory or S3 prefix
const keyPrefix = "posts/"

// allowedTypes are the raster formats accepted for posts
var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	// ErrNotImage is returned when the upload does not sniff as an image
	ErrNotImage = errors.New("upload is not an image")
	// ErrTooLarge is returned when the upload exceeds MaxImageSize
	ErrTooLarge = errors.New("image is too large")
)

// Store persists uploaded images and resolves their public URLs
type Store interface {
	Save(ctx context.Context, filename string, body io.Reader) (string, error)
	URL(key string) string
}

// New builds the store selected by cfg.Backend
func New(cfg *config.MediaConfig) (Store, error) {
	switch cfg.Backend {
	case "disk":
		return NewDiskStore(cfg.Dir, "/media/"), nil
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unsupported media backend: %s", cfg.Backend)
	}
}

// ValidationMessage returns a user-facing message for upload errors caused
// by the file itself, or "" for infrastructure failures.
func ValidationMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotImage):
		return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	case errors.Is(err, ErrTooLarge):
		return fmt.Sprintf("Image must be at most %d MB and %d megapixels.", MaxImageSize>>20, MaxPixels/1_000_000)
	default:
		return ""
	}
}

// sniff reads the whole upload, checks it is an image and returns the
// (possibly downscaled) data, its MIME type and a fresh storage key.
func sniff(body io.Reader) ([]byte, string, string, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, "", "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !allowedTypes[mtype.String()] {
		return nil, "", "", ErrNotImage
	}

	data, contentType, ext, err := downscale(data, mtype)
	if err != nil {
		return nil, "", "", err
	}

	key := keyPrefix + uuid.NewString() + ext
	return data, contentType, key, nil
}

// downscale re-encodes still images larger than MaxDimension as JPEG. GIF
// (possibly animated) and WebP (no decoder) are stored as uploaded.
func downscale(data []byte, mtype *mimetype.MIME) ([]byte, string, string, error) {
	if mtype.Is("image/webp") {
		return data, mtype.String(), mtype.Extension(), nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", "", ErrNotImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", "", ErrTooLarge
	}
	if mtype.Is("image/gif") || (cfg.Width <= MaxDimension && cfg.Height <= MaxDimension) {
		return data, mtype.String(), mtype.Extension(), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", ErrNotImage
	}
	thumb := resize.Thumbnail(MaxDimension, MaxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", ".jpg", nil
}

func reader(data []byte) io.ReadSeeker {
	return bytes.NewReader(data)
}
