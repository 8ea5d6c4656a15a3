package storage

import (
	"errors"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxCoverSize is the largest accepted cover image.
	MaxCoverSize = 5 << 20

	// CoverURLExpiry is the lifetime of presigned cover URLs.
	CoverURLExpiry = time.Hour
)

var (
	ErrNotImage    = errors.New("cover must be an image")
	ErrCoverTooBig = errors.New("cover exceeds 5 MiB")
	ErrEmptyUpload = errors.New("upload is empty")
)

// CoverKey builds a fresh object key for a course cover: courses/<courseID>/<uuid><ext>.
// The extension comes from the original filename, or from the content type when the name has none.
func CoverKey(courseID, originalFilename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return path.Join("courses", courseID, uuid.NewString()+ext)
}

// ValidateCover checks the declared content type and size of a cover upload.
func ValidateCover(contentType string, size int64) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return ErrNotImage
	}
	if size == 0 {
		return ErrEmptyUpload
	}
	if size > MaxCoverSize {
		return ErrCoverTooBig
	}
	return nil
}
