package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	sl "rencar/internal/lib/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
	log *slog.Logger
}

func NewCloudinary(rawURL string, log *slog.Logger) (*CloudinaryUploader, error) {
	const op = "media.NewCloudinary"

	cld, err := cloudinary.NewFromURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &CloudinaryUploader{
		cld: cld,
		log: log,
	}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, folder, filename string, file io.Reader) (string, error) {
	const op = "media.cloudinary.Upload"

	if err := ValidateImage(filename, 0); err != nil {
		return "", err
	}

	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("%s: %s", op, result.Error.Message)
	}

	return result.SecureURL, nil
}

// Destroy removes the asset behind a delivery URL. Failures are logged and
// swallowed: a stale remote image must never fail the owning request.
func (u *CloudinaryUploader) Destroy(ctx context.Context, url string) error {
	const op = "media.cloudinary.Destroy"

	publicID := PublicIDFromURL(url)
	if publicID == "" {
		return nil
	}

	_, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil && !errors.Is(err, context.Canceled) {
		u.log.Warn("failed to delete cloudinary image",
			slog.String("op", op),
			slog.String("public_id", publicID),
			sl.Err(err),
		)
	}

	return nil
}
