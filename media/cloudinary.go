// Package media stores restaurant images with an external host and returns
// their public URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	restaurantFolder = "restaurants"

	MaxImageSize = 5 << 20
)

var ErrImageTooLarge = errors.New("image must be 5MB or smaller")

type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
}

type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload image: %s: %v", e.Message, e.Err)
	}
	return "upload image: " + e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: restaurantFolder,
	})
	if err != nil {
		return "", &UploadError{Message: "request failed", Err: err}
	}
	if resp.Error.Message != "" {
		return "", &UploadError{Message: resp.Error.Message}
	}
	return resp.SecureURL, nil
}
