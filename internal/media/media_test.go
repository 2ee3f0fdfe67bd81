package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yatube/yatube/pkg/config"
)

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring a grayscale
// image of the given size, with no pixel data behind it.
func pngHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, width)
	chunk = binary.BigEndian.AppendUint32(chunk, height)
	chunk = append(chunk, 8, 0, 0, 0, 0) // 8-bit gray, no interlace

	binary.Write(&buf, binary.BigEndian, uint32(len(chunk)-4))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDiskStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/media/")
	data := pngBytes(t)

	key, err := store.Save(context.Background(), "cat.png", bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	written, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, data, written)
	assert.Equal(t, "/media/"+key, store.URL(key))
	assert.Empty(t, store.URL(""))
}

func TestDiskStore_RejectsNonImages(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/media/")

	_, err := store.Save(context.Background(), "notes.txt", strings.NewReader("just some text"))
	require.ErrorIs(t, err, ErrNotImage)
	assert.NotEmpty(t, ValidationMessage(err))
}

func TestDiskStore_DownscalesLargeImages(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/media/")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2000, 1000))))

	key, err := store.Save(context.Background(), "wide.png", &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	file, err := os.Open(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	defer file.Close()
	cfg, format, err := image.DecodeConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, MaxDimension, cfg.Width)
	assert.Equal(t, MaxDimension/2, cfg.Height)
}

func TestDiskStore_RejectsUnsafeOrBrokenImages(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/media/")

	tests := []struct {
		name string
		body []byte
	}{
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)},
		{"truncated png", pngBytes(t)[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(context.Background(), tt.name, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, ErrNotImage)
		})
	}
}

func TestDiskStore_RejectsLargeUploads(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/media/")
	data := append(pngBytes(t), make([]byte, MaxImageSize)...)

	_, err := store.Save(context.Background(), "huge.png", bytes.NewReader(data))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestDiskStore_RejectsHugeDimensions(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/media/")

	tests := []struct {
		name          string
		width, height uint32
	}{
		{"square", 30000, 30000},
		{"strip", 1, MaxPixels + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(context.Background(), "bomb.png", bytes.NewReader(pngHeader(tt.width, tt.height)))
			require.ErrorIs(t, err, ErrTooLarge)
			assert.NotEmpty(t, ValidationMessage(err))
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written for rejected uploads")
}

func TestDiskStore_LogsOriginalFilename(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := NewDiskStore(t.TempDir(), "/media/")
	store.logger = zap.New(core)

	key, err := store.Save(context.Background(), "holiday.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	entries := logs.FilterMessage("Image stored").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "holiday.png", fields["filename"])
	assert.Equal(t, key, fields["key"])
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"cat.png", `inline; filename=cat.png`},
		{"my cat.png", `inline; filename="my cat.png"`},
		{"C:\\photos\\cat.png", `inline; filename=cat.png`},
		{"../../etc/cat.png", `inline; filename=cat.png`},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, contentDisposition(tt.filename))
		})
	}
}

func TestS3Store_URL(t *testing.T) {
	store, err := NewS3Store(&config.MediaConfig{S3Bucket: "pics", S3Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://pics.s3.eu-west-1.amazonaws.com/posts/a.png", store.URL("posts/a.png"))

	custom, err := NewS3Store(&config.MediaConfig{S3Bucket: "pics", S3Region: "us-east-1", S3Endpoint: "http://minio:9000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/pics/posts/a.png", custom.URL("posts/a.png"))
}

func TestNew(t *testing.T) {
	store, err := New(&config.MediaConfig{Backend: "disk", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, store)

	_, err = New(&config.MediaConfig{Backend: "ftp"})
	assert.Error(t, err)
}
