package helper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/constants"
)

const (
	maxImageSide = 1024
	webpQuality  = 80
)

var reUnsafeName = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func sanitizeFilename(filename string) string {
	return reUnsafeName.ReplaceAllString(filename, "_")
}

// GenerateUniqueFilename: <folder>/<yyyymmdd>-<uuid>-<nama-aman>
func GenerateUniqueFilename(folder, originalFilename string) string {
	timestamp := time.Now().Format("20060102")
	base := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	return path.Join(folder, fmt.Sprintf("%s-%s-%s", timestamp, uuid.New().String(), sanitizeFilename(base)))
}

// ConvertToWebP decode gambar (jpeg/png/gif), resize supaya sisi terpanjang <= maxImageSide,
// lalu encode ulang ke webp.
func ConvertToWebP(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gagal decode gambar: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxImageSide || b.Dy() > maxImageSide {
		img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := webp.Encode(&out, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("gagal encode webp: %w", err)
	}
	return out.Bytes(), nil
}

// SaveImageAsWebP menyimpan file upload sebagai .webp ke object storage (kalau dipasang)
// atau ke UPLOAD_DIR/<folder>, lalu mengembalikan URL publiknya.
func SaveImageAsWebP(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "file kosong")
	}
	if constants.DetectFileTypeFromExt(fh.Filename) != constants.FileTypeImage {
		return "", fiber.NewError(fiber.StatusUnsupportedMediaType, "format file tidak didukung")
	}
	if fh.Size > constants.MaxImageUploadBytes {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("ukuran gambar melebihi %dKB", constants.MaxImageUploadBytes/1024))
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("gagal membuka file gambar: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return "", fmt.Errorf("gagal membaca file gambar: %w", err)
	}

	encoded, err := ConvertToWebP(buf.Bytes())
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rel := GenerateUniqueFilename(folder, fh.Filename) + ".webp"
	if store := currentStore(); store != nil {
		return store.Put(ctx, rel, encoded, "image/webp")
	}

	full := filepath.Join(configs.UploadDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("gagal membuat folder upload: %w", err)
	}
	if err := os.WriteFile(full, encoded, 0o644); err != nil {
		return "", fmt.Errorf("gagal menyimpan gambar: %w", err)
	}

	return PublicFileURL(rel), nil
}

// PublicFileURL: PUBLIC_BASE_URL + /uploads/<rel>
func PublicFileURL(rel string) string {
	return configs.PublicBaseURL + "/uploads/" + strings.TrimLeft(rel, "/")
}

// DeleteUploadedFile menghapus file lama berdasarkan URL publik (best-effort).
// URL yang bukan milik storage aktif diabaikan.
func DeleteUploadedFile(ctx context.Context, publicURL string) error {
	if store := currentStore(); store != nil {
		if _, ok := store.KeyFromPublicURL(publicURL); ok {
			return store.DeleteByPublicURL(ctx, publicURL)
		}
	}
	prefix := configs.PublicBaseURL + "/uploads/"
	if publicURL == "" || !strings.HasPrefix(publicURL, prefix) {
		return nil
	}
	rel := strings.TrimPrefix(publicURL, prefix)
	if strings.Contains(rel, "..") {
		return fmt.Errorf("path tidak valid")
	}
	err := os.Remove(filepath.Join(configs.UploadDir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
