// Package media handles image uploads for content resources. Storage and
// delivery are delegated to Cloudinary; this package only validates what
// comes in and keeps track of what to delete.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxImageSize caps uploaded files at 5 MiB.
const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("only jpeg, jpg, png and webp images are allowed")
	ErrTooLarge        = fmt.Errorf("image exceeds the %d byte limit", MaxImageSize)
	ErrUploadsDisabled = errors.New("media uploads are not configured")
)

type Uploader interface {
	// Upload stores the image and returns its delivery URL.
	Upload(ctx context.Context, folder, filename string, file io.Reader) (string, error)

	// Destroy removes a previously uploaded image by its delivery URL.
	// Unknown or foreign URLs are ignored.
	Destroy(ctx context.Context, url string) error
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func ValidateImage(filename string, size int64) error {
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrUnsupportedType
	}

	if size > MaxImageSize {
		return ErrTooLarge
	}

	return nil
}

// Delivery URL shape: https://res.cloudinary.com/<cloud>/image/upload/v<ver>/<folder>/<public_id>.<fmt>
var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?(.+)\.\w+$`)

// PublicIDFromURL extracts the Cloudinary public id from a delivery URL.
// Returns "" for anything that is not a Cloudinary URL.
func PublicIDFromURL(url string) string {
	if !strings.Contains(url, "cloudinary.com") {
		return ""
	}

	match := publicIDPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}

	return match[1]
}

// Disabled is the uploader used when no CLOUDINARY_URL is configured:
// uploads fail loudly, deletes are a no-op.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrUploadsDisabled
}

func (Disabled) Destroy(context.Context, string) error { return nil }
