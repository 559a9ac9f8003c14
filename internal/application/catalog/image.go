package catalog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Upload limits for product images
const (
	MaxImagesPerProduct = 5
	MaxImageSize        = 5 << 20
)

var allowedImageTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ImageUpload is one uploaded image file
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// StoredImage identifies an image held by an ImageStore
type StoredImage struct {
	Key string
	URL string
}

// ImageStore persists product image files.
// Implemented by the infrastructure layer (local disk, S3).
type ImageStore interface {
	// Save stores content under key and returns where it can be fetched
	Save(ctx context.Context, key, contentType string, content io.Reader) (StoredImage, error)

	// Delete removes the file stored under key. A missing file is not an error.
	Delete(ctx context.Context, key string) error
}

type checkedImage struct {
	upload      ImageUpload
	contentType string
}

// checkImages enforces the count, size and type rules on uploads.
// Both the extension and the sniffed content must name an accepted image type.
func checkImages(uploads []ImageUpload) ([]checkedImage, error) {
	if len(uploads) > MaxImagesPerProduct {
		return nil, shared.NewValidationError("At most %d images are allowed", MaxImagesPerProduct)
	}

	checked := make([]checkedImage, 0, len(uploads))
	for _, u := range uploads {
		if u.Size > MaxImageSize {
			return nil, shared.NewValidationError("Image %s exceeds the %d MB limit", u.Filename, MaxImageSize>>20)
		}
		expected, ok := allowedImageTypes[strings.ToLower(filepath.Ext(u.Filename))]
		if !ok {
			return nil, shared.NewValidationError("Image %s must be a jpeg, jpg, png or gif file", u.Filename)
		}

		mime, err := mimetype.DetectReader(u.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", u.Filename, err)
		}
		if _, err := u.Content.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind image %s: %w", u.Filename, err)
		}
		if !mime.Is(expected) {
			return nil, shared.NewValidationError("Image %s content is %s, not %s", u.Filename, mime.String(), expected)
		}

		checked = append(checked, checkedImage{upload: u, contentType: expected})
	}
	return checked, nil
}

// storageKey builds "<unix-millis>-<name>" with the name reduced to a safe file name
func storageKey(now time.Time, filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}
