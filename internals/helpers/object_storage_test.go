package helper

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okrku_backend/internals/configs"
)

func TestOSSStore_PublicURLAndKey(t *testing.T) {
	s := &OSSStore{Endpoint: "https://oss-ap-southeast-5.aliyuncs.com", BucketName: "okrku", Prefix: "prod"}

	key := s.objectKey("/avatars/a.webp")
	assert.Equal(t, "prod/avatars/a.webp", key)

	url := s.PublicURL(key)
	assert.Equal(t, "https://okrku.oss-ap-southeast-5.aliyuncs.com/prod/avatars/a.webp", url)

	got, ok := s.KeyFromPublicURL(url)
	require.True(t, ok)
	assert.Equal(t, key, got)

	_, ok = s.KeyFromPublicURL("https://example.com/uploads/a.webp")
	assert.False(t, ok)
	_, ok = s.KeyFromPublicURL("https://okrku.oss-ap-southeast-5.aliyuncs.com/../etc")
	assert.False(t, ok)

	s.PublicBase = "https://cdn.okrku.id"
	assert.Equal(t, "https://cdn.okrku.id/prod/x.webp", s.PublicURL("prod/x.webp"))
	got, ok = s.KeyFromPublicURL("https://cdn.okrku.id/prod/x.webp")
	require.True(t, ok)
	assert.Equal(t, "prod/x.webp", got)
}

func TestNewOSSStoreFromEnv(t *testing.T) {
	for _, k := range []string{"ALI_OSS_ENDPOINT", "ALI_OSS_ACCESS_KEY", "ALI_OSS_SECRET_KEY", "ALI_OSS_BUCKET"} {
		t.Setenv(k, "")
	}
	s, err := NewOSSStoreFromEnv()
	require.NoError(t, err)
	assert.Nil(t, s)

	t.Setenv("ALI_OSS_BUCKET", "okrku")
	_, err = NewOSSStoreFromEnv()
	assert.Error(t, err)
}

func pngUpload(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, x%20, color.RGBA{R: 200, A: 255})
	}
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, img))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestSaveImageAsWebP_LocalDisk(t *testing.T) {
	UseObjectStore(nil)
	prevDir, prevBase := configs.UploadDir, configs.PublicBaseURL
	t.Cleanup(func() { configs.UploadDir, configs.PublicBaseURL = prevDir, prevBase })
	configs.UploadDir = t.TempDir()
	configs.PublicBaseURL = "http://localhost:3000"

	ctx := context.Background()
	url, err := SaveImageAsWebP(ctx, "avatars", pngUpload(t, "muka saya.png"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:3000/uploads/avatars/"), url)
	assert.True(t, strings.HasSuffix(url, "-muka_saya.webp"), url)

	rel := strings.TrimPrefix(url, "http://localhost:3000/uploads/")
	full := filepath.Join(configs.UploadDir, filepath.FromSlash(rel))
	_, err = os.Stat(full)
	require.NoError(t, err)

	require.NoError(t, DeleteUploadedFile(ctx, url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// URL asing diabaikan
	assert.NoError(t, DeleteUploadedFile(ctx, "https://elsewhere.example/a.webp"))

	_, err = SaveImageAsWebP(ctx, "avatars", pngUpload(t, "doc.pdf"))
	assert.Error(t, err)
}
